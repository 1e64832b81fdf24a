package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"drop-store/internal/domain"

	"github.com/google/uuid"
)

func newTestCategory(name, slug string) *domain.Category {
	return &domain.Category{
		ID:           uuid.New(),
		Name:         name,
		Slug:         slug,
		DisplayOrder: 1,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
}

func TestCategoryCreateFindRoundTrip(t *testing.T) {
	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	category := newTestCategory("Hoodies", "hoodies")
	if err := repo.Create(ctx, category); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := repo.FindByID(ctx, category.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Name != "Hoodies" || found.Slug != "hoodies" || !found.IsActive {
		t.Errorf("round trip mismatch: %+v", found)
	}

	// name and slug are unique
	duplicate := newTestCategory("Hoodies", "hoodies-2")
	if err := repo.Create(ctx, duplicate); !errors.Is(err, ErrCategoryAlreadyExists) {
		t.Errorf("duplicate name error = %v, want ErrCategoryAlreadyExists", err)
	}
}

func TestCategorySoftDeleteHidesFromStorefront(t *testing.T) {
	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	category := newTestCategory("Accesorios", "accesorios")
	if err := repo.Create(ctx, category); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.SoftDelete(ctx, category.ID); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	active, err := repo.List(ctx, false)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, c := range active {
		if c.ID == category.ID {
			t.Error("soft-deleted category still listed for the storefront")
		}
	}

	// The row survives for admin views.
	found, err := repo.FindByID(ctx, category.ID)
	if err != nil {
		t.Fatalf("FindByID after soft delete failed: %v", err)
	}
	if found.IsActive {
		t.Error("soft-deleted category still active")
	}

	if err := repo.SoftDelete(ctx, uuid.New()); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("unknown id error = %v, want ErrCategoryNotFound", err)
	}
}

func TestCategoryDeleteLeavesProductCategoryAlone(t *testing.T) {
	categories := NewCategoryRepository(testDB)
	products := NewProductRepository(testDB)
	ctx := context.Background()

	category := newTestCategory("Hoodies Invierno", "hoodies-invierno")
	if err := categories.Create(ctx, category); err != nil {
		t.Fatalf("Create category failed: %v", err)
	}

	product := newTestProduct(3)
	product.Category = "hoodies-invierno"
	if err := products.Create(ctx, product); err != nil {
		t.Fatalf("Create product failed: %v", err)
	}

	if err := categories.SoftDelete(ctx, category.ID); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	// Products store the category as a plain string with no FK; deleting the
	// category must not touch them.
	found, err := products.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Category != "hoodies-invierno" {
		t.Errorf("product category = %q after category delete, want %q unchanged", found.Category, "hoodies-invierno")
	}
	if !found.IsActive {
		t.Error("product deactivated by category delete")
	}
}
