package redisx

import "time"

const (
	// Session cart blob: cart:{session_id} -> serialized cart
	KeyCart = "cart:%s"

	// Order status cache: order_status:{order_code} -> {"status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
