package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/klikk/verify-api/internal/application/directory"
	"github.com/klikk/verify-api/internal/application/verification"
	"github.com/klikk/verify-api/internal/domain"
	jwtinfra "github.com/klikk/verify-api/internal/infrastructure/jwt"
	"github.com/klikk/verify-api/internal/pkg/validate"
)

// VerificationHandler handles the one-time-code request/check endpoints.
// The JWT provider is optional; without it a successful check simply omits
// the checkout token.
type VerificationHandler struct {
	svc       verification.Service
	directory directory.Service
	jwt       *jwtinfra.Provider
}

func NewVerificationHandler(svc verification.Service, dir directory.Service, jwt *jwtinfra.Provider) *VerificationHandler {
	return &VerificationHandler{svc: svc, directory: dir, jwt: jwt}
}

type requestCodeBody struct {
	PhoneNumber string `json:"phone_number" validate:"required_without=AccountID"`
	AccountID   string `json:"account_id"`
}

type checkCodeBody struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
}

// Request issues a fresh code for the phone number and sends it by SMS.
// A recognized shopper may pass account_id instead; the number on file wins.
func (h *VerificationHandler) Request(w http.ResponseWriter, r *http.Request) {
	var body requestCodeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	identity := body.PhoneNumber
	if body.AccountID != "" {
		p, err := h.directory.PhoneForAccount(r.Context(), body.AccountID)
		if err != nil {
			httpError(w, err)
			return
		}
		identity = p
	}

	result, err := h.svc.RequestCode(r.Context(), identity)
	if err != nil {
		httpError(w, err)
		return
	}

	resp := RequestEnvelope{Success: true, Message: "Verification code sent"}
	if result.Code != "" {
		resp.Message = "Development mode: Code is " + result.Code
		resp.Code = result.Code
	}
	writeJSON(w, http.StatusOK, resp)
}

// Check verifies a submitted code and, on success, returns a checkout token.
func (h *VerificationHandler) Check(w http.ResponseWriter, r *http.Request) {
	var body checkCodeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	remaining, err := h.svc.VerifyCode(r.Context(), body.PhoneNumber, body.Code)
	if err != nil {
		h.checkError(w, err, remaining)
		return
	}

	resp := VerifyEnvelope{
		Success:           true,
		Message:           "Phone number verified successfully",
		RemainingAttempts: &remaining,
	}
	if h.jwt != nil {
		token, err := h.jwt.Sign(body.PhoneNumber)
		if err != nil {
			slog.Warn("failed to sign checkout token", "err", err)
		} else {
			resp.CheckoutToken = token
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// checkError maps verification outcomes onto the check envelope. Only a
// mismatch reports remaining attempts; the terminal states report none.
func (h *VerificationHandler) checkError(w http.ResponseWriter, err error, remaining int) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, VerifyEnvelope{Error: "No verification code found for this phone number"})
	case errors.Is(err, domain.ErrExpired):
		writeJSON(w, http.StatusBadRequest, VerifyEnvelope{Error: "Verification code has expired"})
	case errors.Is(err, domain.ErrExhausted):
		writeJSON(w, http.StatusBadRequest, VerifyEnvelope{Error: "Maximum verification attempts exceeded"})
	case errors.Is(err, domain.ErrCodeMismatch):
		writeJSON(w, http.StatusBadRequest, VerifyEnvelope{
			Error:             "Invalid verification code",
			RemainingAttempts: &remaining,
		})
	default:
		httpError(w, err)
	}
}
