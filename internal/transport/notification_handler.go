package transport

import (
	"errors"
	"net/http"

	"drop-store/internal/middleware"
	"drop-store/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SubscribeRequest is the drop-notification signup payload.
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// NotificationHandler handles drop-notification signups.
type NotificationHandler struct {
	notifications repository.DropNotificationRepository
	logger        *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications repository.DropNotificationRepository, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

// RegisterRoutes registers the notification routes.
func (h *NotificationHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/notifications", func(r chi.Router) {
		r.Post("/subscribe", h.Subscribe)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/", h.List)
		})
	})
}

func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	notification, err := h.notifications.Subscribe(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadySubscribed) {
			middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "already subscribed"})
			return
		}
		h.logger.Error("Failed to subscribe email", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, notification)
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notifications.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list notifications", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, notifications)
}
