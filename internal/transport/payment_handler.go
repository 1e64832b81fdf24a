package transport

import (
	"net/http"

	"drop-store/internal/middleware"
	"drop-store/internal/payment"
	"drop-store/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PreferenceRequest is the storefront payload for preference creation.
type PreferenceRequest struct {
	Items        []service.CartItem `json:"items" validate:"required,min=1,dive"`
	ShippingCost int64              `json:"shippingCost" validate:"gte=0"`
}

// PreferenceResponse carries the opaque provider preference id.
type PreferenceResponse struct {
	PreferenceID string `json:"preferenceId"`
}

// ProcessPaymentRequest is the card-widget form plus the order context.
type ProcessPaymentRequest struct {
	Token           string               `json:"token" validate:"required"`
	PaymentMethodID string               `json:"paymentMethodId" validate:"required"`
	Issuer          string               `json:"issuer"`
	Installments    int                  `json:"installments" validate:"gte=1"`
	PayerEmail      string               `json:"payerEmail"`
	Order           service.OrderContext `json:"order"`
}

// PaymentHandler handles the checkout endpoints.
type PaymentHandler struct {
	checkout *service.CheckoutService
	logger   *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(checkout *service.CheckoutService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{checkout: checkout, logger: logger}
}

// RegisterRoutes registers the payment routes. Both are public: they are
// called by the storefront before any customer exists.
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/payments", func(r chi.Router) {
		r.Post("/create-mercadopago-preference", h.CreatePreference)
		r.Post("/process-payment", h.ProcessPayment)
	})
}

func (h *PaymentHandler) CreatePreference(w http.ResponseWriter, r *http.Request) {
	var req PreferenceRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	preferenceID, err := h.checkout.CreatePreference(r.Context(), service.OrderContext{
		Items:        req.Items,
		ShippingCost: req.ShippingCost,
	})
	if err != nil {
		respondCheckoutError(w, h.logger, err, "failed to create payment preference")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, PreferenceResponse{PreferenceID: preferenceID})
}

func (h *PaymentHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req ProcessPaymentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	card := payment.CardPayment{
		Token:           req.Token,
		PaymentMethodID: req.PaymentMethodID,
		Issuer:          req.Issuer,
		Installments:    req.Installments,
		PayerEmail:      req.PayerEmail,
		Description:     "Compra drop-store",
	}

	outcome, err := h.checkout.ProcessPayment(r.Context(), card, req.Order)
	if err != nil {
		respondCheckoutError(w, h.logger, err, "failed to process payment")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, outcome)
}
