package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer is keyed by its exact email string: one row per email, created on
// the first order and counter-incremented on every subsequent one.
type Customer struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	OrderCount int       `json:"orderCount"`
	TotalSpent int64     `json:"totalSpent"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// AdminUser is a back-office account. Authentication is a bcrypt password
// check that yields a short-lived JWT; there is no session store.
type AdminUser struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DropNotification is a "tell me about the next drop" signup.
type DropNotification struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// SiteSettings is the single-row key/value blob backing the admin
// settings screen (banner text, social links, drop date, ...).
type SiteSettings map[string]any
