package transport

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"drop-store/internal/domain"
	"drop-store/internal/middleware"
	"drop-store/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductRequest is the admin create/update payload.
type ProductRequest struct {
	Name         string         `json:"name" validate:"required"`
	Price        int64          `json:"price" validate:"gte=0"`
	Images       []string       `json:"images"`
	Category     string         `json:"category"`
	Description  string         `json:"description"`
	Details      string         `json:"details"`
	Sizes        domain.SizeMap `json:"sizes"`
	IsNew        bool           `json:"isNew"`
	IsBestSeller bool           `json:"isBestSeller"`
	IsActive     *bool          `json:"isActive"`
}

// ProductListResponse is the paginated storefront listing.
type ProductListResponse struct {
	Products []*domain.Product `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(products repository.ProductRepository, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

// RegisterRoutes registers all product routes.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/all", h.ListAll)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List returns active products with category filter, sorting and pagination.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := parseIntOrDefault(q.Get("page"), 1)
	limit := parseIntOrDefault(q.Get("limit"), 12)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 12
	}

	sortBy, sortOrder := parseSort(q.Get("sortBy"))

	products, total, err := h.products.List(r.Context(), q.Get("category"), page, limit, sortBy, sortOrder)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products: products,
		Total:    total,
		Page:     page,
		Limit:    limit,
	})
}

// ListAll returns every product, active or not, for the admin screens.
func (h *ProductHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list all products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := time.Now()
	product := &domain.Product{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
		IsActive:  true,
	}
	applyProductRequest(product, &req)

	if err := h.products.Create(r.Context(), product); err != nil {
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	existing, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to load product for update", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	applyProductRequest(existing, &req)
	existing.UpdatedAt = time.Now()

	if err := h.products.Update(r.Context(), existing); err != nil {
		h.logger.Error("Failed to update product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, existing)
}

// Delete soft-deletes the product; the row is kept for existing orders.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.products.SoftDelete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to delete product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func applyProductRequest(product *domain.Product, req *ProductRequest) {
	product.Name = req.Name
	product.Price = req.Price
	product.Images = req.Images
	product.Category = req.Category
	product.Description = req.Description
	product.Details = req.Details
	product.Sizes = req.Sizes
	product.IsNew = req.IsNew
	product.IsBestSeller = req.IsBestSeller
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if product.Images == nil {
		product.Images = []string{}
	}
	if product.Sizes == nil {
		product.Sizes = domain.SizeMap{}
	}
}

func parseIntOrDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// parseSort maps storefront sort keys ("price_asc", "newest", ...) onto a
// column and direction.
func parseSort(sortBy string) (string, repository.SortOrder) {
	switch strings.ToLower(sortBy) {
	case "price_asc":
		return "price", repository.SortOrderAsc
	case "price_desc":
		return "price", repository.SortOrderDesc
	case "name":
		return "name", repository.SortOrderAsc
	case "newest", "":
		return "created_at", repository.SortOrderDesc
	default:
		return "created_at", repository.SortOrderDesc
	}
}
