// Package fulfillment consumes order.created events and moves fresh orders
// into processing, standing in for the back-office that picks them up.
package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/Sadragit2004/sumsungmarkaz/internal/kafka"
	"github.com/Sadragit2004/sumsungmarkaz/internal/orders"
	"github.com/Sadragit2004/sumsungmarkaz/internal/redisx"
)

// StatusStore advances an order through its status machine.
type StatusStore interface {
	UpdateStatus(ctx context.Context, orderID string, to orders.Status) error
}

// Publisher matches the async kafka producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Service struct {
	Orders      StatusStore
	Redis       *redis.Client
	Producer    Publisher // publishes order.status.changed
	ServiceName string
	Log         *zap.Logger
}

// HandleOrderCreated is mounted as the consumer handler. Redelivered events
// are dropped via a redis dedup key; an order already past pending is
// likewise treated as done.
func (s *Service) HandleOrderCreated(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderCreated {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, "fulfillment", env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
	if err != nil {
		return err
	}

	err = s.Orders.UpdateStatus(ctx, p.OrderID, orders.StatusProcessing)
	if errors.Is(err, orders.ErrInvalidTransition) {
		// Someone beat us to it (or the order was canceled); nothing to do.
		s.Log.Info("order already moved on", zap.String("order_id", p.OrderID))
		return nil
	}
	if err != nil {
		return err
	}

	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, p.OrderCode)
	_ = s.Redis.Set(ctx, statusKey, `{"status":"processing"}`, redisx.TTLStatusCache).Err()

	s.publishStatusChanged(p, env.TraceID)
	return nil
}

func (s *Service) publishStatusChanged(p orders.OrderCreatedPayload, trace string) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       trace,
		CorrelationID: p.OrderID,
		Payload: kafkax.MustMarshal(orders.OrderStatusChangedPayload{
			OrderID:   p.OrderID,
			OrderCode: p.OrderCode,
			From:      orders.StatusPending,
			To:        orders.StatusProcessing,
		}),
	}
	s.Producer.Publish(orders.PartitionKey(p.OrderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderStatusChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
