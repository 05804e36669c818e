package directory

import (
	"time"

	"github.com/klikk/verify-api/internal/domain"
	"github.com/klikk/verify-api/internal/pkg/id"
)

// demoAccounts returns the demo shoppers used by the storefront. IDs are
// generated fresh per seed run; lookups key off email and phone.
func demoAccounts() []*domain.Account {
	now := time.Now().UTC()
	return []*domain.Account{
		{
			AccountID:    id.New(),
			Email:        "jon@smartmedia.is",
			Phone:        "+3546478000",
			FirstName:    "Jón Andreas",
			LastName:     "Gunnlaugsson",
			AddressLine1: "Ásbúð 29",
			City:         "Garðabær",
			PostalCode:   "210",
			Country:      "Ísland",
			PaymentMethods: []domain.PaymentMethod{
				{PaymentMethodID: "pm_001", MethodType: "visa", Label: "Visa •••• 4242", LastFour: "4242", ExpiryDate: "09/26", IsDefault: true},
				{PaymentMethodID: "pm_002", MethodType: "Aur", Label: "AUR (6478000)"},
			},
			CreatedAt: now,
		},
		{
			AccountID:    id.New(),
			Email:        "jane@example.com",
			Phone:        "+3546478002",
			FirstName:    "Jane",
			LastName:     "Smith",
			AddressLine1: "456 Maple Ave",
			City:         "Kopavogur",
			PostalCode:   "200",
			Country:      "Iceland",
			PaymentMethods: []domain.PaymentMethod{
				{PaymentMethodID: "pm_003", MethodType: "mastercard", Label: "Mastercard •••• 5555", LastFour: "5555", ExpiryDate: "12/25", IsDefault: true},
			},
			CreatedAt: now,
		},
		{
			AccountID:    id.New(),
			Email:        "alex@business.com",
			Phone:        "+3546478003",
			FirstName:    "Alex",
			LastName:     "Johnson",
			AddressLine1: "789 Pine St",
			City:         "Akureyri",
			PostalCode:   "600",
			Country:      "Iceland",
			PaymentMethods: []domain.PaymentMethod{
				{PaymentMethodID: "pm_004", MethodType: "amex", Label: "Amex •••• 9876", LastFour: "9876", ExpiryDate: "03/27", IsDefault: true},
				{PaymentMethodID: "pm_005", MethodType: "visa", Label: "Visa •••• 1122", LastFour: "1122", ExpiryDate: "11/24"},
			},
			CreatedAt: now,
		},
		{
			AccountID:    id.New(),
			Email:        "sarah@gmail.com",
			Phone:        "+3546478004",
			FirstName:    "Sarah",
			LastName:     "Williams",
			AddressLine1: "321 Oak Ln",
			City:         "Reykjavik",
			PostalCode:   "105",
			Country:      "Iceland",
			PaymentMethods: []domain.PaymentMethod{
				{PaymentMethodID: "pm_006", MethodType: "visa", Label: "Visa •••• 1234", LastFour: "1234", ExpiryDate: "08/25", IsDefault: true},
			},
			CreatedAt: now,
		},
		{
			AccountID:    id.New(),
			Email:        "michael@company.com",
			Phone:        "+3546478005",
			FirstName:    "Michael",
			LastName:     "Brown",
			AddressLine1: "567 Birch Rd",
			City:         "Keflavik",
			PostalCode:   "230",
			Country:      "Iceland",
			PaymentMethods: []domain.PaymentMethod{
				{PaymentMethodID: "pm_007", MethodType: "mastercard", Label: "Mastercard •••• 6789", LastFour: "6789", ExpiryDate: "04/26", IsDefault: true},
			},
			CreatedAt: now,
		},
	}
}
