package transport

import (
	"errors"
	"net/http"

	"drop-store/internal/domain"
	"drop-store/internal/middleware"
	"drop-store/internal/repository"
	"drop-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderStatusRequest is the admin status-change payload.
type OrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orders    repository.OrderRepository
	customers repository.CustomerRepository
	checkout  *service.CheckoutService
	logger    *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(
	orders repository.OrderRepository,
	customers repository.CustomerRepository,
	checkout *service.CheckoutService,
	logger *zap.Logger,
) *OrderHandler {
	return &OrderHandler{
		orders:    orders,
		customers: customers,
		checkout:  checkout,
		logger:    logger,
	}
}

// RegisterRoutes registers all order routes.
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", h.Create)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/", h.List)
			r.Get("/{id}", h.GetByID)
			r.Put("/{id}/status", h.UpdateStatus)
			r.Get("/customer/{id}", h.ListByCustomer)
		})
	})
}

// Create persists an order outside the card flow (bank transfer / manual
// entry) with the same transactional side effects as checkout.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.OrderContext
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.checkout.CreateOrder(r.Context(), req)
	if err != nil {
		respondCheckoutError(w, h.logger, err, "failed to create order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to get order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req OrderStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status := domain.OrderStatus(req.Status)
	if !domain.ValidOrderStatus(status) {
		middleware.RespondWithError(w, http.StatusBadRequest, "unknown order status")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.orders.UpdateStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to update order status", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update order status")
		return
	}

	h.logger.Info("Order status updated",
		zap.String("order_id", id),
		zap.String("status", req.Status),
	)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"id": id, "status": req.Status})
}

// ListByCustomer resolves the customer id to its email and returns that
// customer's orders (orders denormalize the email, not the id).
func (h *OrderHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	customer, err := h.customers.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.logger.Error("Failed to find customer", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	orders, err := h.orders.ListByCustomerEmail(r.Context(), customer.Email)
	if err != nil {
		h.logger.Error("Failed to list customer orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// respondCheckoutError maps checkout failures onto HTTP statuses: malformed
// carts are 400, failed stock conditions 409, anything else 500 with the
// underlying message attached.
func respondCheckoutError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	var outOfStock *service.OutOfStockError

	switch {
	case errors.Is(err, service.ErrEmptyCart), errors.Is(err, service.ErrInvalidItem):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &outOfStock):
		// err.Error() rather than outOfStock.Error(): when the failure
		// happened after an approved charge, the wrapper's payment id
		// must reach the storefront.
		middleware.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, err.Error())
	}
}
