package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"drop-store/internal/domain"
)

// SettingsRepository reads and writes the single site_settings row.
type SettingsRepository interface {
	Get(ctx context.Context) (domain.SiteSettings, error)
	Save(ctx context.Context, settings domain.SiteSettings) error
}

type settingsRepository struct {
	db DBTX
}

// NewSettingsRepository creates a new instance of SettingsRepository.
func NewSettingsRepository(db DBTX) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context) (domain.SiteSettings, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM site_settings WHERE id = 1`).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SiteSettings{}, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	settings := domain.SiteSettings{}
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	return settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings domain.SiteSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	query := `
		INSERT INTO site_settings (id, data, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	return nil
}
