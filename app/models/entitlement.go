package models

import "time"

// Subscription statuses as reported by Stripe. The entitlement row mirrors
// whatever the last applied webhook event said.
const (
	SubscriptionStatusActive     = "active"
	SubscriptionStatusTrialing   = "trialing"
	SubscriptionStatusPastDue    = "past_due"
	SubscriptionStatusCanceled   = "canceled"
	SubscriptionStatusUnpaid     = "unpaid"
	SubscriptionStatusIncomplete = "incomplete"
)

const PlanPremiumMensual = "premium_mensual"

// Entitlement stores the premium state for one worker, keyed by chapa
// (badge number). Exactly one row per chapa; rows are never deleted,
// cancellation only flips the status and stamps CanceledAt.
type Entitlement struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	Chapa                string     `gorm:"type:varchar(32);not null;uniqueIndex:ux_entitlements_chapa" json:"chapa"`
	StripeCustomerID     string     `gorm:"type:varchar(191);not null;default:'';index" json:"stripe_customer_id"`
	StripeSubscriptionID string     `gorm:"type:varchar(191);not null;default:'';index" json:"stripe_subscription_id"`
	Plan                 string     `gorm:"type:varchar(50);not null;default:'premium_mensual'" json:"plan"`
	Status               string     `gorm:"type:varchar(32);not null;default:'incomplete';index" json:"status"`
	PeriodStart          *time.Time `gorm:"type:timestamp;default:null" json:"period_start,omitempty"`
	PeriodEnd            *time.Time `gorm:"type:timestamp;default:null" json:"period_end,omitempty"`
	CanceledAt           *time.Time `gorm:"type:timestamp;default:null" json:"canceled_at,omitempty"`
	SueldometroEnabled   bool       `gorm:"default:false" json:"sueldometro_enabled"`
	OraculoEnabled       bool       `gorm:"default:false" json:"oraculo_enabled"`
	ChatbotIAEnabled     bool       `gorm:"default:false" json:"chatbot_ia_enabled"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Entitlement) TableName() string {
	return "entitlements"
}
