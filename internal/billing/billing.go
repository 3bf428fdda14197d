// Package billing resolves Stripe customers and subscriptions and opens
// checkout or billing-portal sessions.
package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

var (
	ErrCustomerNotFound     = errors.New("billing: customer not found")
	ErrSubscriptionNotFound = errors.New("billing: no subscription")
)

// Subscription is the provider-neutral view of the latest subscription.
type Subscription struct {
	ID                 string
	Status             string
	ProductID          string
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   *time.Time
	CancelAtPeriodEnd  bool
}

// IsActive reports whether the subscription unlocks a paid plan.
func (s *Subscription) IsActive() bool {
	return s != nil && s.Status == string(stripe.SubscriptionStatusActive)
}

// IsActiveOrTrialing reports whether the customer should be sent to the billing portal.
func (s *Subscription) IsActiveOrTrialing() bool {
	return s != nil && (s.Status == string(stripe.SubscriptionStatusActive) ||
		s.Status == string(stripe.SubscriptionStatusTrialing))
}

// Provider is the payment backend used by the subscription service.
type Provider interface {
	FindCustomerByEmail(ctx context.Context, email string) (string, error)
	LatestSubscription(ctx context.Context, customerID string) (*Subscription, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (string, error)
}

// StripeProvider implements Provider with stripe-go.
type StripeProvider struct {
	api *client.API
}

func NewStripeProvider(secretKey string) *StripeProvider {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeProvider{api: sc}
}

func (p *StripeProvider) FindCustomerByEmail(ctx context.Context, email string) (string, error) {
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Limit = stripe.Int64(1)
	params.Context = ctx

	iter := p.api.Customers.List(params)
	if iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("list customers: %w", err)
	}
	return "", ErrCustomerNotFound
}

func (p *StripeProvider) LatestSubscription(ctx context.Context, customerID string) (*Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	params.Limit = stripe.Int64(1)
	params.Context = ctx

	iter := p.api.Subscriptions.List(params)
	if !iter.Next() {
		if err := iter.Err(); err != nil {
			return nil, fmt.Errorf("list subscriptions: %w", err)
		}
		return nil, ErrSubscriptionNotFound
	}

	s := iter.Subscription()
	out := &Subscription{
		ID:                 s.ID,
		Status:             string(s.Status),
		CurrentPeriodStart: time.Unix(s.CurrentPeriodStart, 0).UTC(),
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
	}
	if s.CurrentPeriodEnd > 0 {
		end := time.Unix(s.CurrentPeriodEnd, 0).UTC()
		out.CurrentPeriodEnd = &end
	}
	if s.Items != nil && len(s.Items.Data) > 0 && s.Items.Data[0].Price != nil && s.Items.Data[0].Price.Product != nil {
		out.ProductID = s.Items.Data[0].Price.Product.ID
	}
	return out, nil
}

func (p *StripeProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create billing portal session: %w", err)
	}
	return sess.URL, nil
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.Context = ctx

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}
