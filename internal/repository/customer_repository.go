package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"drop-store/internal/domain"

	"github.com/google/uuid"
)

var ErrCustomerNotFound = errors.New("customer not found")

// CustomerRepository defines the interface for customer data access.
type CustomerRepository interface {
	// UpsertOnOrder records a purchase against the customer identified by
	// email (exact string match). A new customer starts at order_count 1 and
	// total_spent = amount; an existing one gets both counters bumped. The
	// single INSERT ... ON CONFLICT statement keeps the one-row-per-email
	// invariant under concurrent orders.
	UpsertOnOrder(ctx context.Context, email, name, phone string, amount int64) (*domain.Customer, error)
	List(ctx context.Context) ([]*domain.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
}

type customerRepository struct {
	db DBTX
}

// NewCustomerRepository creates a new instance of CustomerRepository.
func NewCustomerRepository(db DBTX) CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `id, email, name, phone, order_count, total_spent, created_at, updated_at`

func (r *customerRepository) UpsertOnOrder(ctx context.Context, email, name, phone string, amount int64) (*domain.Customer, error) {
	query := `
		INSERT INTO customers (id, email, name, phone, order_count, total_spent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 1, $5, NOW(), NOW())
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name,
		    phone = EXCLUDED.phone,
		    order_count = customers.order_count + 1,
		    total_spent = customers.total_spent + EXCLUDED.total_spent,
		    updated_at = NOW()
		RETURNING ` + customerColumns

	customer := &domain.Customer{}
	err := r.db.QueryRowContext(ctx, query, uuid.New(), email, name, phone, amount).Scan(
		&customer.ID,
		&customer.Email,
		&customer.Name,
		&customer.Phone,
		&customer.OrderCount,
		&customer.TotalSpent,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert customer: %w", err)
	}

	return customer, nil
}

func (r *customerRepository) List(ctx context.Context) ([]*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []*domain.Customer{}
	for rows.Next() {
		customer := &domain.Customer{}
		err := rows.Scan(
			&customer.ID,
			&customer.Email,
			&customer.Name,
			&customer.Phone,
			&customer.OrderCount,
			&customer.TotalSpent,
			&customer.CreatedAt,
			&customer.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, nil
}

func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	return r.findBy(ctx, "id", id)
}

func (r *customerRepository) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.findBy(ctx, "email", email)
}

func (r *customerRepository) findBy(ctx context.Context, column string, value any) (*domain.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE %s = $1`, customerColumns, column)

	customer := &domain.Customer{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&customer.ID,
		&customer.Email,
		&customer.Name,
		&customer.Phone,
		&customer.OrderCount,
		&customer.TotalSpent,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}

	return customer, nil
}
