package transport

import (
	"errors"
	"net/http"

	"drop-store/internal/middleware"
	"drop-store/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerHandler handles admin HTTP requests for customers.
type CustomerHandler struct {
	customers repository.CustomerRepository
	orders    repository.OrderRepository
	logger    *zap.Logger
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(
	customers repository.CustomerRepository,
	orders repository.OrderRepository,
	logger *zap.Logger,
) *CustomerHandler {
	return &CustomerHandler{customers: customers, orders: orders, logger: logger}
}

// RegisterRoutes registers all customer routes. The whole surface is admin-only.
func (h *CustomerHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/customers", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)
		r.Get("/{id}/orders", h.ListOrders)
	})
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list customers", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list customers")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
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
		h.logger.Error("Failed to get customer", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get customer")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
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
		h.logger.Error("Failed to get customer", zap.Error(err))
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
