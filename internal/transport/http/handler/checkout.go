package handler

import (
	"encoding/json"
	"net/http"

	"github.com/klikk/verify-api/internal/application/checkout"
	"github.com/klikk/verify-api/internal/domain"
	"github.com/klikk/verify-api/internal/pkg/validate"
	"github.com/klikk/verify-api/internal/transport/http/middleware"
)

// CheckoutHandler places simulated orders for verified shoppers.
type CheckoutHandler struct {
	svc checkout.Service
}

func NewCheckoutHandler(svc checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req domain.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.svc.PlaceOrder(r.Context(), claims.Identity, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, OrderEnvelope{Order: order})
}
