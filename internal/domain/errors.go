package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")

	// Verification outcome errors. A wrapped ErrCodeMismatch still carries
	// a remaining-attempts count; the other three always report zero.
	ErrExpired        = errors.New("code expired")
	ErrExhausted      = errors.New("attempt limit reached")
	ErrCodeMismatch   = errors.New("code mismatch")
	ErrDispatchFailed = errors.New("dispatch failed")
)
