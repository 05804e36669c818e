package handler

import (
	"encoding/json"
	"net/http"

	"github.com/klikk/verify-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// RequestEnvelope wraps code-request responses. Code is populated only in
// development when SMS dispatch is unavailable.
type RequestEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}

// VerifyEnvelope wraps code-check responses. RemainingAttempts is a pointer so
// the field is omitted entirely on responses where it carries no meaning.
type VerifyEnvelope struct {
	Success           bool   `json:"success"`
	Message           string `json:"message,omitempty"`
	RemainingAttempts *int   `json:"remaining_attempts,omitempty"`
	CheckoutToken     string `json:"checkout_token,omitempty"`
	Error             string `json:"error,omitempty"`
}

// AccountEnvelope wraps single-account responses.
type AccountEnvelope struct {
	Account *domain.Account `json:"account,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// SeedEnvelope reports how many demo accounts a seed call created.
type SeedEnvelope struct {
	Created int    `json:"created"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OrderEnvelope wraps order confirmation responses.
type OrderEnvelope struct {
	Order *domain.Order `json:"order,omitempty"`
	Error string        `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
