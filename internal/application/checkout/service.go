package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/klikk/verify-api/internal/application/directory"
	"github.com/klikk/verify-api/internal/domain"
	"github.com/klikk/verify-api/internal/pkg/id"
)

// Service simulates order placement for a verified identity. Nothing is
// charged and nothing is persisted; the confirmation reference is the whole
// point of the demo flow.
type Service interface {
	PlaceOrder(ctx context.Context, identity string, req domain.PlaceOrderRequest) (*domain.Order, error)
}

type service struct {
	accounts directory.AccountStore
}

func NewService(accounts directory.AccountStore) Service {
	return &service{accounts: accounts}
}

func (s *service) PlaceOrder(ctx context.Context, identity string, req domain.PlaceOrderRequest) (*domain.Order, error) {
	if identity == "" {
		return nil, fmt.Errorf("verified identity required: %w", domain.ErrUnauthorized)
	}
	if req.AmountISK <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", domain.ErrBadRequest)
	}

	order := &domain.Order{
		OrderRef:  "KLK-" + id.New(),
		Identity:  identity,
		AmountISK: req.AmountISK,
		Status:    "confirmed",
		PlacedAt:  time.Now().UTC(),
	}

	// A recognized account can pay with a saved method; guests just confirm.
	a, err := s.accounts.GetByPhone(ctx, identity)
	switch {
	case err == nil:
		order.AccountID = a.AccountID
		pm, err := s.resolvePaymentMethod(a, req.PaymentMethodID)
		if err != nil {
			return nil, err
		}
		if pm != nil {
			order.PaymentMethodID = pm.PaymentMethodID
		}
	case errors.Is(err, domain.ErrNotFound):
		if req.PaymentMethodID != "" {
			return nil, fmt.Errorf("no saved payment methods for guest checkout: %w", domain.ErrBadRequest)
		}
	default:
		return nil, fmt.Errorf("resolve account: %w", err)
	}

	slog.Info("order confirmed", "order_ref", order.OrderRef, "identity", identity, "amount_isk", req.AmountISK)
	return order, nil
}

func (s *service) resolvePaymentMethod(a *domain.Account, paymentMethodID string) (*domain.PaymentMethod, error) {
	if paymentMethodID == "" {
		return a.DefaultPaymentMethod(), nil
	}
	for i := range a.PaymentMethods {
		if a.PaymentMethods[i].PaymentMethodID == paymentMethodID {
			return &a.PaymentMethods[i], nil
		}
	}
	return nil, fmt.Errorf("payment method not on account: %w", domain.ErrBadRequest)
}
