package server

import (
	"context"
	"database/sql"

	"drop-store/internal/config"
	"drop-store/internal/repository"
	"drop-store/internal/service"

	"go.uber.org/zap"
)

// SeedAdmin creates the configured admin account when it does not exist yet.
func SeedAdmin(ctx context.Context, cfg *config.Config, db *sql.DB, logger *zap.Logger) error {
	adminRepo := repository.NewAdminUserRepository(db)
	auth := service.NewAuthService(adminRepo, cfg.JWT.Secret, cfg.JWT.AccessExpiry)

	if err := auth.EnsureDefaultAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return err
	}

	logger.Info("Admin account ready", zap.String("email", cfg.Admin.Email))
	return nil
}
