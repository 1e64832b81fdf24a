package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"drop-store/internal/payment"
	"drop-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Stub payment provider for handler tests
type stubProvider struct {
	preferenceID string
	result       *payment.Result
	err          error
}

func (s *stubProvider) CreatePreference(ctx context.Context, items []payment.PreferenceItem) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.preferenceID, nil
}

func (s *stubProvider) CreatePayment(ctx context.Context, p payment.CardPayment) (*payment.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubProvider) CancelPayment(ctx context.Context, paymentID string) error {
	return nil
}

func newPaymentRouter(provider payment.Provider) chi.Router {
	router := chi.NewRouter()
	checkout := service.NewCheckoutService(nil, provider, zap.NewNop())
	handler := NewPaymentHandler(checkout, zap.NewNop())
	handler.RegisterRoutes(router)
	return router
}

func postJSON(t *testing.T, router chi.Router, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	reqBody, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	req := httptest.NewRequest("POST", path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)
	return w
}

func TestCreatePreferenceEndpoint(t *testing.T) {
	router := newPaymentRouter(&stubProvider{preferenceID: "pref-abc"})

	body := PreferenceRequest{
		Items: []service.CartItem{
			{ProductID: uuid.New().String(), Name: "Hoodie", Size: "M", Quantity: 1, UnitPrice: 45000},
		},
		ShippingCost: 7000,
	}

	w := postJSON(t, router, "/api/payments/create-mercadopago-preference", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp PreferenceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.PreferenceID != "pref-abc" {
		t.Errorf("preference id = %s, want pref-abc", resp.PreferenceID)
	}
}

func TestCreatePreferenceRejectsEmptyCart(t *testing.T) {
	router := newPaymentRouter(&stubProvider{preferenceID: "pref-abc"})

	w := postJSON(t, router, "/api/payments/create-mercadopago-preference", PreferenceRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestProcessPaymentRejectedReturnsVerdict(t *testing.T) {
	router := newPaymentRouter(&stubProvider{
		result: &payment.Result{PaymentID: "55", Status: payment.StatusRejected, StatusDetail: "cc_rejected_bad_filled_security_code"},
	})

	body := ProcessPaymentRequest{
		Token:           "tok",
		PaymentMethodID: "visa",
		Installments:    1,
		Order: service.OrderContext{
			Items: []service.CartItem{
				{ProductID: uuid.New().String(), Name: "Hoodie", Size: "M", Quantity: 1, UnitPrice: 45000},
			},
			Customer: service.CustomerInfo{Email: "ana@example.com"},
		},
	}

	w := postJSON(t, router, "/api/payments/process-payment", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var outcome service.PaymentOutcome
	if err := json.Unmarshal(w.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if outcome.Status != payment.StatusRejected {
		t.Errorf("status = %s, want rejected", outcome.Status)
	}
	if outcome.Order != nil {
		t.Error("rejected payment must not carry an order")
	}
}

func TestProcessPaymentProviderFailure(t *testing.T) {
	router := newPaymentRouter(&stubProvider{err: errors.New("gateway down")})

	body := ProcessPaymentRequest{
		Token:           "tok",
		PaymentMethodID: "visa",
		Installments:    1,
		Order: service.OrderContext{
			Items: []service.CartItem{
				{ProductID: uuid.New().String(), Name: "Hoodie", Size: "M", Quantity: 1, UnitPrice: 45000},
			},
			Customer: service.CustomerInfo{Email: "ana@example.com"},
		},
	}

	w := postJSON(t, router, "/api/payments/process-payment", body)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestCheckoutErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"empty cart", service.ErrEmptyCart, http.StatusBadRequest},
		{"invalid item", service.ErrInvalidItem, http.StatusBadRequest},
		{"out of stock", &service.OutOfStockError{ProductID: "p", Size: "M", Quantity: 2}, http.StatusConflict},
		{"out of stock after approval", &service.FinalizationError{PaymentID: "777", Err: &service.OutOfStockError{ProductID: "p", Size: "M", Quantity: 2}}, http.StatusConflict},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			respondCheckoutError(w, zap.NewNop(), tt.err, "fallback")
			if w.Code != tt.code {
				t.Errorf("status = %d, want %d", w.Code, tt.code)
			}
		})
	}
}
