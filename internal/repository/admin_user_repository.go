package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"drop-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrAdminUserNotFound      = errors.New("admin user not found")
	ErrAdminUserAlreadyExists = errors.New("admin user with this email already exists")
)

// AdminUserRepository defines the interface for back-office account access.
type AdminUserRepository interface {
	Create(ctx context.Context, user *domain.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*domain.AdminUser, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type adminUserRepository struct {
	db DBTX
}

// NewAdminUserRepository creates a new instance of AdminUserRepository.
func NewAdminUserRepository(db DBTX) AdminUserRepository {
	return &adminUserRepository{db: db}
}

func (r *adminUserRepository) Create(ctx context.Context, user *domain.AdminUser) error {
	query := `
		INSERT INTO admin_users (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrAdminUserAlreadyExists
		}
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	return nil
}

func (r *adminUserRepository) FindByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM admin_users
		WHERE email = $1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *adminUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM admin_users
		WHERE id = $1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *adminUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE admin_users SET password_hash = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrAdminUserNotFound
	}

	return nil
}

func (r *adminUserRepository) scanOne(row *sql.Row) (*domain.AdminUser, error) {
	user := &domain.AdminUser{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminUserNotFound
		}
		return nil, fmt.Errorf("failed to find admin user: %w", err)
	}

	return user, nil
}
