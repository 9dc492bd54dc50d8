package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Sadragit2004/sumsungmarkaz/internal/checkout"
	kafkax "github.com/Sadragit2004/sumsungmarkaz/internal/kafka"
	"github.com/Sadragit2004/sumsungmarkaz/internal/orders"
	"github.com/Sadragit2004/sumsungmarkaz/internal/redisx"
)

// OrderReader is the read side of the orders repo.
type OrderReader interface {
	GetByCode(ctx context.Context, code string) (*orders.Order, error)
}

// Publisher matches the async kafka producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type OrdersHandler struct {
	Builder  *orders.Builder
	Orders   OrderReader
	Producer Publisher
	Redis    *redis.Client
	Service  string
	TaxRate  int
	Log      *zap.Logger
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{code}", h.getOrder)
	r.Get("/orders/{code}/status", h.getStatus)
}

type createOrderReq struct {
	Description string `json:"description"`
	Discount    int    `json:"discount"`
}

type createOrderResp struct {
	Success         bool             `json:"success"`
	OrderCode       string           `json:"order_code"`
	Status          orders.Status    `json:"status"`
	Checkout        checkout.Summary `json:"checkout"`
	SkippedProducts []string         `json:"skipped_products,omitempty"`
	Redirect        string           `json:"redirect"`
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	customerID := r.Header.Get("X-User-Id")
	if customerID == "" {
		writeErr(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createOrderReq
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sid := sessionID(w, r)
	o, skipped, err := h.Builder.CreateOrder(ctx, customerID, sid, orders.CreateOptions{
		Description: req.Description,
		Discount:    req.Discount,
	})
	switch {
	case errors.Is(err, orders.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, errResp{Error: "cart is empty", Redirect: "/products"})
		return
	case errors.Is(err, orders.ErrInvalidDiscount):
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.Log.Error("create order", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "order could not be created")
		return
	}

	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, o.OrderCode)
	_ = h.Redis.Set(ctx, statusKey, `{"status":"pending"}`, redisx.TTLStatusCache).Err()

	h.publishCreated(o, skipped, r.Header.Get("X-Request-Id"))

	writeJSON(w, http.StatusCreated, createOrderResp{
		Success:         true,
		OrderCode:       o.OrderCode,
		Status:          o.Status,
		Checkout:        checkout.Summarize(o, h.TaxRate),
		SkippedProducts: skipped,
		Redirect:        "/orders/" + o.OrderCode,
	})
}

func (h *OrdersHandler) publishCreated(o *orders.Order, skipped []string, trace string) {
	items := make([]orders.ItemPrice, 0, len(o.Details))
	for _, d := range o.Details {
		items = append(items, orders.ItemPrice{ProductID: d.ProductID, Qty: d.Qty, PriceCents: d.PriceCents})
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       trace,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(orders.OrderCreatedPayload{
			OrderID:         o.ID,
			OrderCode:       o.OrderCode,
			CustomerID:      o.CustomerID,
			Items:           items,
			TotalCents:      o.TotalPrice(),
			SkippedProducts: skipped,
		}),
	}
	h.Producer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

type orderDetailResp struct {
	ProductID       string  `json:"product_id"`
	BrandID         *string `json:"brand_id,omitempty"`
	Qty             int     `json:"quantity"`
	PriceCents      int     `json:"unit_price"`
	SelectedOptions string  `json:"detail,omitempty"`
	TotalCents      int     `json:"line_total"`
}

type orderResp struct {
	Success   bool              `json:"success"`
	OrderCode string            `json:"order_code"`
	Status    orders.Status     `json:"status"`
	Discount  int               `json:"discount"`
	CreatedAt time.Time         `json:"created_at"`
	Details   []orderDetailResp `json:"details"`
	Checkout  checkout.Summary  `json:"checkout"`
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Orders.GetByCode(ctx, code)
	if errors.Is(err, orders.ErrNotFound) {
		writeErr(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		h.Log.Error("get order", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}

	details := make([]orderDetailResp, 0, len(o.Details))
	for _, d := range o.Details {
		details = append(details, orderDetailResp{
			ProductID:       d.ProductID,
			BrandID:         d.BrandID,
			Qty:             d.Qty,
			PriceCents:      d.PriceCents,
			SelectedOptions: d.SelectedOptions,
			TotalCents:      d.TotalPrice(),
		})
	}
	writeJSON(w, http.StatusOK, orderResp{
		Success:   true,
		OrderCode: o.OrderCode,
		Status:    o.Status,
		Discount:  o.Discount,
		CreatedAt: o.CreatedAt,
		Details:   details,
		Checkout:  checkout.Summarize(o, h.TaxRate),
	})
}

// getStatus serves the hot path from the redis cache and falls back to the
// database, refilling the cache on the way out.
func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, code)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	o, err := h.Orders.GetByCode(ctx, code)
	if err != nil {
		writeErr(w, http.StatusNotFound, "order not found")
		return
	}
	b, _ := json.Marshal(map[string]any{"status": o.Status})
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
