package domain

import (
	"time"

	"github.com/google/uuid"
)

// SizeStock holds availability for a single size label.
type SizeStock struct {
	Available bool `json:"available"`
	Stock     int  `json:"stock"`
}

// SizeMap maps a size label ("S", "M", "L", ...) to its stock entry.
// It is persisted as a jsonb column inside the products row. Purchasability
// is not derived here: the stock condition is enforced by the conditional
// decrement in the product repository, where it cannot race.
type SizeMap map[string]SizeStock

// Product represents a garment in the catalog.
type Product struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Price        int64     `json:"price"` // integer currency units (ARS)
	Images       []string  `json:"images"`
	Category     string    `json:"category"` // free text, no FK to categories
	Description  string    `json:"description"`
	Details      string    `json:"details"`
	Sizes        SizeMap   `json:"sizes"`
	IsNew        bool      `json:"isNew"`
	IsBestSeller bool      `json:"isBestSeller"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Category represents a storefront category. Its lifecycle is independent
// from products: deleting a category leaves product category strings alone.
type Category struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	DisplayOrder int       `json:"displayOrder"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}
