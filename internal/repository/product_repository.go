package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"drop-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrSizeNotFound      = errors.New("size not found on product")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// SortOrder represents the sort direction.
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	// SoftDelete flips is_active off; product rows are never hard-deleted.
	SoftDelete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	// List returns active products with optional category filter, pagination
	// and sorting. Used by the storefront.
	List(ctx context.Context, category string, page, pageSize int, sortBy string, sortOrder SortOrder) ([]*domain.Product, int, error)
	// ListAll returns every product regardless of is_active. Used by the admin.
	ListAll(ctx context.Context) ([]*domain.Product, error)
	// DecrementStock atomically subtracts quantity from the given size's stock,
	// only if enough stock remains. The conditional update is enforced in SQL
	// so concurrent checkouts cannot drive stock below zero.
	DecrementStock(ctx context.Context, id uuid.UUID, size string, quantity int) error
}

type productRepository struct {
	db DBTX
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, price, images, category, description, details, sizes, is_new, is_best_seller, is_active, created_at, updated_at`

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	images, err := json.Marshal(product.Images)
	if err != nil {
		return fmt.Errorf("failed to encode images: %w", err)
	}
	sizes, err := json.Marshal(product.Sizes)
	if err != nil {
		return fmt.Errorf("failed to encode sizes: %w", err)
	}

	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Price,
		images,
		product.Category,
		product.Description,
		product.Details,
		sizes,
		product.IsNew,
		product.IsBestSeller,
		product.IsActive,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	images, err := json.Marshal(product.Images)
	if err != nil {
		return fmt.Errorf("failed to encode images: %w", err)
	}
	sizes, err := json.Marshal(product.Sizes)
	if err != nil {
		return fmt.Errorf("failed to encode sizes: %w", err)
	}

	query := `
		UPDATE products
		SET name = $2, price = $3, images = $4, category = $5, description = $6,
		    details = $7, sizes = $8, is_new = $9, is_best_seller = $10,
		    is_active = $11, updated_at = $12
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Price,
		images,
		product.Category,
		product.Description,
		product.Details,
		sizes,
		product.IsNew,
		product.IsBestSeller,
		product.IsActive,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *productRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

func (r *productRepository) List(ctx context.Context, category string, page, pageSize int, sortBy string, sortOrder SortOrder) ([]*domain.Product, int, error) {
	// Allowlisted sort fields; anything else falls back to created_at.
	validSortFields := map[string]bool{
		"name":       true,
		"price":      true,
		"created_at": true,
	}
	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderDesc
	}

	whereClause := "WHERE is_active = TRUE"
	args := []any{}
	argIndex := 1

	if category != "" {
		whereClause += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, category)
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT `+productColumns+`
		FROM products
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, whereClause, sortBy, sortOrder, argIndex, argIndex+1)

	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepository) ListAll(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *productRepository) DecrementStock(ctx context.Context, id uuid.UUID, size string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("invalid quantity %d", quantity)
	}

	// Conditional decrement: the WHERE clause guarantees stock never goes
	// negative, even under concurrent checkouts for the same size.
	query := `
		UPDATE products
		SET sizes = jsonb_set(sizes, ARRAY[$2, 'stock'], to_jsonb((sizes->$2->>'stock')::int - $3)),
		    updated_at = NOW()
		WHERE id = $1
		  AND jsonb_exists(sizes, $2)
		  AND (sizes->$2->>'stock')::int >= $3
	`

	result, err := r.db.ExecContext(ctx, query, id, size, quantity)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// The condition failed; find out which part.
	var hasSize bool
	err = r.db.QueryRowContext(ctx,
		`SELECT jsonb_exists(sizes, $2) FROM products WHERE id = $1`,
		id, size,
	).Scan(&hasSize)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to inspect product sizes: %w", err)
	}
	if !hasSize {
		return ErrSizeNotFound
	}

	return ErrInsufficientStock
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var images, sizes []byte

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&images,
		&product.Category,
		&product.Description,
		&product.Details,
		&sizes,
		&product.IsNew,
		&product.IsBestSeller,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(images, &product.Images); err != nil {
		return nil, fmt.Errorf("failed to decode images: %w", err)
	}
	if err := json.Unmarshal(sizes, &product.Sizes); err != nil {
		return nil, fmt.Errorf("failed to decode sizes: %w", err)
	}

	return product, nil
}

func collectProducts(rows *sql.Rows) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
