package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/klikk/verify-api/internal/application/directory"
	"github.com/klikk/verify-api/internal/pkg/validate"
)

// AccountHandler exposes the shopper directory.
type AccountHandler struct {
	svc directory.Service
}

func NewAccountHandler(svc directory.Service) *AccountHandler {
	return &AccountHandler{svc: svc}
}

type lookupBody struct {
	Email string `json:"email" validate:"required,email"`
}

// Lookup resolves an email to a recognized account with a masked phone number.
// Unknown emails return exists=false rather than 404 so the storefront can
// fall through to guest checkout without special-casing an error.
func (h *AccountHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var body lookupBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Lookup(r.Context(), body.Email)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountEnvelope{Account: a})
}

// Seed loads the demo shoppers. Idempotent; re-seeding reports zero created.
func (h *AccountHandler) Seed(w http.ResponseWriter, r *http.Request) {
	created, err := h.svc.Seed(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SeedEnvelope{Created: created, Message: "demo accounts seeded"})
}
