package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
)

// Payment statuses reported by Mercado Pago.
const (
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusInProcess = "in_process"
)

// PreferenceItem is one line of a provider-side preference.
type PreferenceItem struct {
	ID        string
	Title     string
	Quantity  int
	UnitPrice int64 // integer currency units (ARS)
}

// CardPayment is the payment form forwarded from the client-side widget.
type CardPayment struct {
	Token             string
	PaymentMethodID   string
	Issuer            string
	Installments      int
	TransactionAmount int64
	PayerEmail        string
	Description       string
}

// Result is the provider's verdict on a payment attempt.
type Result struct {
	PaymentID    string
	Status       string
	StatusDetail string
}

// Provider abstracts the payment gateway so the checkout orchestrator can be
// tested without network calls.
type Provider interface {
	// CreatePreference builds a provider-side preference and returns its
	// opaque id. Nothing is persisted locally.
	CreatePreference(ctx context.Context, items []PreferenceItem) (string, error)
	// CreatePayment submits a card payment and returns the provider's status.
	CreatePayment(ctx context.Context, p CardPayment) (*Result, error)
	// CancelPayment voids an approved payment whose order could not be
	// recorded, so the customer is not charged for nothing.
	CancelPayment(ctx context.Context, paymentID string) error
}

// MercadoPago implements Provider on top of the official SDK.
type MercadoPago struct {
	preferences preference.Client
	payments    mppayment.Client
}

// NewMercadoPago builds a provider client from a server-side access token.
func NewMercadoPago(accessToken string) (*MercadoPago, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to configure mercadopago client: %w", err)
	}

	return &MercadoPago{
		preferences: preference.NewClient(cfg),
		payments:    mppayment.NewClient(cfg),
	}, nil
}

func (m *MercadoPago) CreatePreference(ctx context.Context, items []PreferenceItem) (string, error) {
	request := preference.Request{
		Items: make([]preference.ItemRequest, 0, len(items)),
	}

	for _, item := range items {
		request.Items = append(request.Items, preference.ItemRequest{
			ID:         item.ID,
			Title:      item.Title,
			Quantity:   item.Quantity,
			UnitPrice:  float64(item.UnitPrice),
			CurrencyID: "ARS",
		})
	}

	resp, err := m.preferences.Create(ctx, request)
	if err != nil {
		return "", fmt.Errorf("mercadopago preference creation failed: %w", err)
	}

	return resp.ID, nil
}

func (m *MercadoPago) CreatePayment(ctx context.Context, p CardPayment) (*Result, error) {
	request := mppayment.Request{
		TransactionAmount: float64(p.TransactionAmount),
		Token:             p.Token,
		Description:       p.Description,
		Installments:      p.Installments,
		PaymentMethodID:   p.PaymentMethodID,
		Payer: &mppayment.PayerRequest{
			Email: p.PayerEmail,
		},
	}

	resp, err := m.payments.Create(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("mercadopago payment failed: %w", err)
	}

	return &Result{
		PaymentID:    strconv.Itoa(resp.ID),
		Status:       resp.Status,
		StatusDetail: resp.StatusDetail,
	}, nil
}

func (m *MercadoPago) CancelPayment(ctx context.Context, paymentID string) error {
	id, err := strconv.Atoi(paymentID)
	if err != nil {
		return fmt.Errorf("invalid payment id %q: %w", paymentID, err)
	}

	if _, err := m.payments.Cancel(ctx, id); err != nil {
		return fmt.Errorf("mercadopago payment cancellation failed: %w", err)
	}

	return nil
}
