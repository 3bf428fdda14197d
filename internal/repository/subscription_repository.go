package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/myadmit/admit-backend/internal/model"
)

type SubscriptionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Subscription, error)
	GetByStripeID(ctx context.Context, stripeID string) (*model.Subscription, error)
	// Upsert inserts or updates by stripe_subscription_id and fills ID and timestamps.
	Upsert(ctx context.Context, sub *model.Subscription) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type subscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

const subscriptionColumns = `id, user_id, stripe_subscription_id, status, start_date, end_date,
	will_renew, subscription_type, created_at, updated_at`

func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	s := &model.Subscription{}
	err := row.Scan(&s.ID, &s.UserID, &s.StripeSubscriptionID, &s.Status, &s.StartDate, &s.EndDate,
		&s.WillRenew, &s.SubscriptionType, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return s, nil
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Subscription, error) {
	return scanSubscription(r.db.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id))
}

func (r *subscriptionRepository) GetByStripeID(ctx context.Context, stripeID string) (*model.Subscription, error) {
	return scanSubscription(r.db.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE stripe_subscription_id = $1`, stripeID))
}

func (r *subscriptionRepository) Upsert(ctx context.Context, s *model.Subscription) error {
	query := `
		INSERT INTO subscriptions (user_id, stripe_subscription_id, status, start_date, end_date,
		                           will_renew, subscription_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (stripe_subscription_id) DO UPDATE
		SET status = EXCLUDED.status,
		    start_date = EXCLUDED.start_date,
		    end_date = EXCLUDED.end_date,
		    will_renew = EXCLUDED.will_renew,
		    subscription_type = EXCLUDED.subscription_type,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		s.UserID, s.StripeSubscriptionID, s.Status, s.StartDate, s.EndDate, s.WillRenew, s.SubscriptionType,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return translate(err)
}

func (r *subscriptionRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM subscriptions WHERE user_id = $1`, userID)
	return err
}
