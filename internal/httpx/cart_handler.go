package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Sadragit2004/sumsungmarkaz/internal/cart"
	"github.com/Sadragit2004/sumsungmarkaz/internal/catalog"
)

type CartHandler struct {
	Engine *cart.Engine
	Log    *zap.Logger
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Post("/cart/add", h.add)
	r.Post("/cart/remove", h.remove)
	r.Post("/cart/update", h.updateQuantity)
	r.Post("/cart/clear", h.clear)
	r.Get("/cart", h.summary)
	r.Get("/cart/count", h.count)
}

type cartMutationReq struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Detail    string `json:"detail"`
}

type cartResp struct {
	Success    bool                `json:"success"`
	CartCount  int                 `json:"cart_count"`
	TotalPrice int                 `json:"total_price"`
	Items      []cart.SnapshotLine `json:"items"`
}

func (h *CartHandler) respond(ctx context.Context, w http.ResponseWriter, sid string) {
	sum, err := h.Engine.Summarize(ctx, sid)
	if err != nil {
		h.fail(w, err)
		return
	}
	if sum.Items == nil {
		sum.Items = []cart.SnapshotLine{}
	}
	writeJSON(w, http.StatusOK, cartResp{
		Success:    true,
		CartCount:  sum.Count,
		TotalPrice: sum.TotalPrice,
		Items:      sum.Items,
	})
}

// fail maps domain errors onto status codes; anything unknown is logged and
// surfaced as an opaque failure.
func (h *CartHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeErr(w, http.StatusNotFound, "product not found")
	case errors.Is(err, cart.ErrLineNotFound):
		writeErr(w, http.StatusNotFound, "product not in cart")
	case errors.Is(err, cart.ErrInvalidQuantity):
		writeErr(w, http.StatusBadRequest, "invalid quantity")
	default:
		h.Log.Error("cart operation", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *CartHandler) decode(w http.ResponseWriter, r *http.Request, req *cartMutationReq) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return false
	}
	if req.ProductID == "" {
		writeErr(w, http.StatusBadRequest, "missing product_id")
		return false
	}
	return true
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	req := cartMutationReq{Quantity: 1}
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sid := sessionID(w, r)
	if err := h.Engine.Add(ctx, sid, req.ProductID, req.Quantity, req.Detail); err != nil {
		h.fail(w, err)
		return
	}
	h.respond(ctx, w, sid)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	var req cartMutationReq
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sid := sessionID(w, r)
	if err := h.Engine.Remove(ctx, sid, req.ProductID, req.Detail); err != nil {
		h.fail(w, err)
		return
	}
	h.respond(ctx, w, sid)
}

func (h *CartHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var req cartMutationReq
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sid := sessionID(w, r)
	if err := h.Engine.UpdateQuantity(ctx, sid, req.ProductID, req.Quantity, req.Detail); err != nil {
		h.fail(w, err)
		return
	}
	h.respond(ctx, w, sid)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sid := sessionID(w, r)
	if err := h.Engine.Clear(ctx, sid); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResp{Success: true, Items: []cart.SnapshotLine{}})
}

func (h *CartHandler) summary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	h.respond(ctx, w, sessionID(w, r))
}

func (h *CartHandler) count(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sum, err := h.Engine.Summarize(ctx, sessionID(w, r))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"cart_count":  sum.Count,
		"total_price": sum.TotalPrice,
	})
}
