package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"drop-store/internal/domain"
	"drop-store/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// Claims represents the JWT claims carried by an admin access token.
type Claims struct {
	AdminID uuid.UUID `json:"admin_id"`
	jwt.RegisteredClaims
}

// AuthService handles back-office authentication: a bcrypt password check
// that yields a short-lived JWT, and in-place password changes. There is no
// refresh token or server-side session.
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, err error)
	ChangePassword(ctx context.Context, adminID uuid.UUID, currentPassword, newPassword string) error
	ValidateToken(tokenString string) (*Claims, error)
	// EnsureDefaultAdmin seeds the given account when it does not exist yet.
	EnsureDefaultAdmin(ctx context.Context, email, password string) error
}

type authService struct {
	adminRepo    repository.AdminUserRepository
	jwtSecret    string
	accessExpiry time.Duration
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(adminRepo repository.AdminUserRepository, jwtSecret string, accessExpiryMinutes int) AuthService {
	return &authService{
		adminRepo:    adminRepo,
		jwtSecret:    jwtSecret,
		accessExpiry: time.Duration(accessExpiryMinutes) * time.Minute,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	admin, err := s.adminRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAdminUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to find admin user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.generateToken(admin)
}

func (s *authService) ChangePassword(ctx context.Context, adminID uuid.UUID, currentPassword, newPassword string) error {
	admin, err := s.adminRepo.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, repository.ErrAdminUserNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("failed to find admin user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.adminRepo.UpdatePassword(ctx, admin.ID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *authService) EnsureDefaultAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	_, err := s.adminRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrAdminUserNotFound) {
		return fmt.Errorf("failed to check admin user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &domain.AdminUser{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.adminRepo.Create(ctx, admin); err != nil {
		// Lost a race against another instance seeding the same account.
		if errors.Is(err, repository.ErrAdminUserAlreadyExists) {
			return nil
		}
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	return nil
}

func (s *authService) generateToken(admin *domain.AdminUser) (string, error) {
	now := time.Now()
	claims := &Claims{
		AdminID: admin.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
