package domain

import "time"

// Account is a returning shopper in the directory: the saved profile that
// makes one-click checkout possible once the phone number is verified.
type Account struct {
	AccountID      string          `json:"id" dynamodbav:"account_id"`
	Email          string          `json:"email" dynamodbav:"email"`
	Phone          string          `json:"phone" dynamodbav:"phone"`
	FirstName      string          `json:"first_name" dynamodbav:"first_name"`
	LastName       string          `json:"last_name" dynamodbav:"last_name"`
	AddressLine1   string          `json:"address_line1" dynamodbav:"address_line1"`
	City           string          `json:"city" dynamodbav:"city"`
	PostalCode     string          `json:"postal_code" dynamodbav:"postal_code"`
	Country        string          `json:"country" dynamodbav:"country"`
	PaymentMethods []PaymentMethod `json:"payment_methods" dynamodbav:"payment_methods"`
	CreatedAt      time.Time       `json:"created" dynamodbav:"created_at"`
}

// PaymentMethod is a saved payment instrument. Only display data is kept;
// there is no card number and no processing here.
type PaymentMethod struct {
	PaymentMethodID string `json:"id" dynamodbav:"payment_method_id"`
	MethodType      string `json:"method_type" dynamodbav:"method_type"` // "visa" | "mastercard" | "amex" | "Aur"
	Label           string `json:"label" dynamodbav:"label"`
	LastFour        string `json:"last_four,omitempty" dynamodbav:"last_four"`
	ExpiryDate      string `json:"expiry_date,omitempty" dynamodbav:"expiry_date"` // MM/YY
	IsDefault       bool   `json:"is_default" dynamodbav:"is_default"`
}

// FullName joins first and last name for display.
func (a *Account) FullName() string {
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// DefaultPaymentMethod returns the method flagged as default, or the first
// one when none is flagged, or nil for an account without saved methods.
func (a *Account) DefaultPaymentMethod() *PaymentMethod {
	for i := range a.PaymentMethods {
		if a.PaymentMethods[i].IsDefault {
			return &a.PaymentMethods[i]
		}
	}
	if len(a.PaymentMethods) > 0 {
		return &a.PaymentMethods[0]
	}
	return nil
}
