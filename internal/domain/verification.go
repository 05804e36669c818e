package domain

import "time"

// VerificationCode is one issued one-time code for an identity.
// PK: code_id (ULID, sortable by creation time).
// The durable store never deletes rows: a reissue soft-invalidates prior
// active rows by setting consumed, preserving the history for abuse analysis.
type VerificationCode struct {
	CodeID    string    `json:"code_id" dynamodbav:"code_id"`
	Identity  string    `json:"identity" dynamodbav:"identity"` // phone number or email the code was sent to
	Code      string    `json:"code" dynamodbav:"code"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	ExpiresAt time.Time `json:"expires_at" dynamodbav:"expires_at"`
	Attempts  int       `json:"attempts" dynamodbav:"attempts"`
	Consumed  bool      `json:"consumed" dynamodbav:"consumed"`
}

// Active reports whether the record is still usable for matching:
// not consumed and not past its expiry.
func (v *VerificationCode) Active(now time.Time) bool {
	return !v.Consumed && !now.After(v.ExpiresAt)
}
