package transport

import (
	"encoding/json"
	"net/http"

	"drop-store/internal/domain"
	"drop-store/internal/middleware"
	"drop-store/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SettingsHandler handles the site settings blob.
type SettingsHandler struct {
	settings repository.SettingsRepository
	logger   *zap.Logger
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settings repository.SettingsRepository, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, logger: logger}
}

// RegisterRoutes registers the settings routes. Reading is public (the
// storefront needs banner/drop info); writing is admin-only.
func (h *SettingsHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/settings", func(r chi.Router) {
		r.Get("/", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", h.Save)
		})
	})
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		h.logger.Error("Failed to read settings", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to read settings")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var settings domain.SiteSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.settings.Save(r.Context(), settings); err != nil {
		h.logger.Error("Failed to save settings", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, settings)
}
