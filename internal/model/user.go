package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account that can sign in with a password or Google.
type User struct {
	ID                     uuid.UUID  `json:"id"`
	Name                   string     `json:"name"`
	Email                  string     `json:"email"`
	PasswordHash           *string    `json:"-"`
	IsAdmin                bool       `json:"is_admin"`
	IsEmailVerified        bool       `json:"is_email_verified"`
	EmailVerificationToken *string    `json:"-"`
	ResetPasswordToken     *string    `json:"-"`
	ResetPasswordExpires   *time.Time `json:"-"`
	CustomerID             *string    `json:"-"`
	SubscriptionID         *uuid.UUID `json:"subscription_id,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// HasPassword reports whether the account was created with credentials rather than Google.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// UserSummary is the public view returned after login.
type UserSummary struct {
	ID      uuid.UUID `json:"id"`
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	IsAdmin bool      `json:"is_admin"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Name: u.Name, IsAdmin: u.IsAdmin}
}
