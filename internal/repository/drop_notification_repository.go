package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"drop-store/internal/domain"

	"github.com/google/uuid"
)

var ErrAlreadySubscribed = errors.New("email already subscribed")

// DropNotificationRepository stores "notify me about the next drop" signups.
type DropNotificationRepository interface {
	Subscribe(ctx context.Context, email string) (*domain.DropNotification, error)
	List(ctx context.Context) ([]*domain.DropNotification, error)
}

type dropNotificationRepository struct {
	db DBTX
}

// NewDropNotificationRepository creates a new instance of DropNotificationRepository.
func NewDropNotificationRepository(db DBTX) DropNotificationRepository {
	return &dropNotificationRepository{db: db}
}

func (r *dropNotificationRepository) Subscribe(ctx context.Context, email string) (*domain.DropNotification, error) {
	query := `
		INSERT INTO drop_notifications (id, email, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (email) DO NOTHING
		RETURNING id, email, created_at
	`

	notification := &domain.DropNotification{}
	err := r.db.QueryRowContext(ctx, query, uuid.New(), email).Scan(
		&notification.ID,
		&notification.Email,
		&notification.CreatedAt,
	)
	if err != nil {
		// ON CONFLICT DO NOTHING returns no row for duplicates.
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlreadySubscribed
		}
		return nil, fmt.Errorf("failed to subscribe email: %w", err)
	}

	return notification, nil
}

func (r *dropNotificationRepository) List(ctx context.Context) ([]*domain.DropNotification, error) {
	query := `SELECT id, email, created_at FROM drop_notifications ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*domain.DropNotification{}
	for rows.Next() {
		notification := &domain.DropNotification{}
		if err := rows.Scan(&notification.ID, &notification.Email, &notification.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, notification)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return notifications, nil
}
