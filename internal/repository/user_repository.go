package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/myadmit/admit-backend/internal/model"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*model.User, error)
	GetByResetToken(ctx context.Context, token string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expires time.Time) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	SetCustomerID(ctx context.Context, id uuid.UUID, customerID string) error
	SetSubscription(ctx context.Context, id uuid.UUID, subscriptionID *uuid.UUID) error
	SetAdmin(ctx context.Context, email string, isAdmin bool) error
}

type userRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password_hash, is_admin, is_email_verified,
	email_verification_token, reset_password_token, reset_password_expires,
	customer_id, subscription_id, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.IsEmailVerified,
		&u.EmailVerificationToken, &u.ResetPasswordToken, &u.ResetPasswordExpires,
		&u.CustomerID, &u.SubscriptionID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *userRepository) GetByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email_verification_token = $1`, token))
}

func (r *userRepository) GetByResetToken(ctx context.Context, token string) (*model.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE reset_password_token = $1`, token))
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, is_admin, is_email_verified)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, user.Name, user.Email, user.PasswordHash, user.IsAdmin, user.IsEmailVerified).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return translate(err)
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (r *userRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	return r.exec(ctx, `UPDATE users SET name = $2, updated_at = NOW() WHERE id = $1`, id, name)
}

func (r *userRepository) SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error {
	return r.exec(ctx, `
		UPDATE users
		SET email_verification_token = $2, is_email_verified = FALSE, updated_at = NOW()
		WHERE id = $1`, id, token)
}

func (r *userRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `
		UPDATE users
		SET is_email_verified = TRUE, email_verification_token = NULL, updated_at = NOW()
		WHERE id = $1`, id)
}

func (r *userRepository) SetResetToken(ctx context.Context, id uuid.UUID, token string, expires time.Time) error {
	return r.exec(ctx, `
		UPDATE users
		SET reset_password_token = $2, reset_password_expires = $3, updated_at = NOW()
		WHERE id = $1`, id, token, expires)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return r.exec(ctx, `
		UPDATE users
		SET password_hash = $2, reset_password_token = NULL, reset_password_expires = NULL, updated_at = NOW()
		WHERE id = $1`, id, hash)
}

func (r *userRepository) SetCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	return r.exec(ctx, `UPDATE users SET customer_id = $2, updated_at = NOW() WHERE id = $1`, id, customerID)
}

func (r *userRepository) SetSubscription(ctx context.Context, id uuid.UUID, subscriptionID *uuid.UUID) error {
	return r.exec(ctx, `UPDATE users SET subscription_id = $2, updated_at = NOW() WHERE id = $1`, id, subscriptionID)
}

func (r *userRepository) SetAdmin(ctx context.Context, email string, isAdmin bool) error {
	return r.exec(ctx, `UPDATE users SET is_admin = $2, updated_at = NOW() WHERE email = $1`, email, isAdmin)
}

// exec runs a single-row write and reports ErrNotFound when nothing matched.
func (r *userRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
