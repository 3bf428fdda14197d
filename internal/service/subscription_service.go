package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/myadmit/admit-backend/internal/billing"
	"github.com/myadmit/admit-backend/internal/config"
	"github.com/myadmit/admit-backend/internal/model"
	"github.com/myadmit/admit-backend/internal/repository"
	"github.com/rs/zerolog"
)

// SubscriptionService mirrors the user's Stripe subscription into the
// database and opens checkout or billing-portal sessions.
type SubscriptionService struct {
	cfg           *config.Config
	provider      billing.Provider
	users         repository.UserRepository
	subscriptions repository.SubscriptionRepository
	log           zerolog.Logger
}

func NewSubscriptionService(
	cfg *config.Config,
	provider billing.Provider,
	users repository.UserRepository,
	subscriptions repository.SubscriptionRepository,
	log zerolog.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		cfg:           cfg,
		provider:      provider,
		users:         users,
		subscriptions: subscriptions,
		log:           log.With().Str("component", "subscription_service").Logger(),
	}
}

// Get returns the stored subscription, or nil for free users.
func (s *SubscriptionService) Get(ctx context.Context, userID uuid.UUID) (*model.Subscription, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.SubscriptionID == nil {
		return nil, nil
	}
	sub, err := s.subscriptions.GetByID(ctx, *user.SubscriptionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}

// Refresh pulls the latest subscription from Stripe. Users without a Stripe
// customer or without an active subscription are reset to the free plan.
func (s *SubscriptionService) Refresh(ctx context.Context, userID uuid.UUID) (*model.Subscription, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	customerID, err := s.provider.FindCustomerByEmail(ctx, user.Email)
	if err != nil {
		if errors.Is(err, billing.ErrCustomerNotFound) {
			if clearErr := s.clear(ctx, user); clearErr != nil {
				return nil, clearErr
			}
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	if user.CustomerID == nil || *user.CustomerID != customerID {
		if err := s.users.SetCustomerID(ctx, user.ID, customerID); err != nil {
			return nil, fmt.Errorf("store customer id: %w", err)
		}
	}

	latest, err := s.provider.LatestSubscription(ctx, customerID)
	if err != nil && !errors.Is(err, billing.ErrSubscriptionNotFound) {
		return nil, err
	}
	if !latest.IsActive() {
		if err := s.clear(ctx, user); err != nil {
			return nil, err
		}
		return nil, ErrNoActiveSubscription
	}

	sub := &model.Subscription{
		UserID:               user.ID,
		StripeSubscriptionID: latest.ID,
		Status:               latest.Status,
		StartDate:            latest.CurrentPeriodStart,
		EndDate:              latest.CurrentPeriodEnd,
		WillRenew:            !latest.CancelAtPeriodEnd,
		SubscriptionType:     s.planFor(latest.ProductID),
	}
	if err := s.subscriptions.Upsert(ctx, sub); err != nil {
		return nil, fmt.Errorf("upsert subscription: %w", err)
	}
	if err := s.users.SetSubscription(ctx, user.ID, &sub.ID); err != nil {
		return nil, fmt.Errorf("link subscription: %w", err)
	}

	s.log.Info().
		Str("user_id", user.ID.String()).
		Str("plan", string(sub.SubscriptionType)).
		Msg("Subscription refreshed")
	return sub, nil
}

// Session returns a billing-portal URL for subscribed customers and a
// checkout URL for everyone else.
func (s *SubscriptionService) Session(ctx context.Context, userID uuid.UUID, priceID string) (string, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return "", err
	}

	customerID, err := s.provider.FindCustomerByEmail(ctx, user.Email)
	if err != nil {
		if errors.Is(err, billing.ErrCustomerNotFound) {
			return "", ErrCustomerNotFound
		}
		return "", err
	}

	latest, err := s.provider.LatestSubscription(ctx, customerID)
	if err != nil && !errors.Is(err, billing.ErrSubscriptionNotFound) {
		return "", err
	}
	if latest.IsActiveOrTrialing() {
		return s.provider.CreatePortalSession(ctx, customerID, s.cfg.AppURL+"/dashboard")
	}

	return s.provider.CreateCheckoutSession(ctx, customerID, priceID,
		s.cfg.AppURL+"/dashboard?session_id={CHECKOUT_SESSION_ID}",
		s.cfg.AppURL+"/pricing",
	)
}

// planFor maps a Stripe product onto a plan. Unknown products are Elite.
func (s *SubscriptionService) planFor(productID string) model.Plan {
	switch {
	case productID != "" && productID == s.cfg.StripeStandardProductID:
		return model.PlanStandard
	case productID != "" && productID == s.cfg.StripeProProductID:
		return model.PlanPro
	default:
		return model.PlanElite
	}
}

func (s *SubscriptionService) clear(ctx context.Context, user *model.User) error {
	if err := s.subscriptions.DeleteByUser(ctx, user.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if user.SubscriptionID != nil {
		if err := s.users.SetSubscription(ctx, user.ID, nil); err != nil {
			return fmt.Errorf("unlink subscription: %w", err)
		}
	}
	return nil
}

func (s *SubscriptionService) loadUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
