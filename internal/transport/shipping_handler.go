package transport

import (
	"net/http"

	"drop-store/internal/middleware"
	"drop-store/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ShippingRequest is the quote payload.
type ShippingRequest struct {
	PostalCode string `json:"postalCode" validate:"required"`
}

// ShippingResponse carries the ordered quote list.
type ShippingResponse struct {
	Options []service.ShippingOption `json:"options"`
}

// ShippingHandler handles shipping quotes.
type ShippingHandler struct {
	shipping *service.ShippingService
	logger   *zap.Logger
}

// NewShippingHandler creates a new ShippingHandler.
func NewShippingHandler(shipping *service.ShippingService, logger *zap.Logger) *ShippingHandler {
	return &ShippingHandler{shipping: shipping, logger: logger}
}

// RegisterRoutes registers the shipping routes.
func (h *ShippingHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/shipping/calculate", h.Calculate)
}

func (h *ShippingHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req ShippingRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	options := h.shipping.Quote(req.PostalCode)
	middleware.RespondWithJSON(w, http.StatusOK, ShippingResponse{Options: options})
}
