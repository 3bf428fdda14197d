package model

import (
	"time"

	"github.com/google/uuid"
)

// Plan is the subscription tier that decides how many applications stay active.
type Plan string

const (
	PlanFree     Plan = "Free"
	PlanStandard Plan = "Standard"
	PlanPro      Plan = "Pro"
	PlanElite    Plan = "Elite"
)

// ApplicationLimit returns how many applications the plan allows.
// freeLimit applies to users without a paid plan.
func (p Plan) ApplicationLimit(freeLimit int) int {
	switch p {
	case PlanStandard:
		return 3
	case PlanPro:
		return 7
	case PlanElite:
		return 12
	default:
		if freeLimit <= 0 {
			return 1
		}
		return freeLimit
	}
}

type Subscription struct {
	ID                   uuid.UUID  `json:"id"`
	UserID               uuid.UUID  `json:"user_id"`
	StripeSubscriptionID string     `json:"stripe_subscription_id"`
	Status               string     `json:"status"`
	StartDate            time.Time  `json:"start_date"`
	EndDate              *time.Time `json:"end_date"`
	WillRenew            bool       `json:"will_renew"`
	SubscriptionType     Plan       `json:"subscription_type"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}
