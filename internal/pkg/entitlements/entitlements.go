package entitlements

import (
	"strings"

	"github.com/portalestiba/notifier/app/models"
)

// Features are the premium capabilities a subscription unlocks. They are
// enabled as a set whenever a subscription update is applied.
type Features struct {
	Sueldometro bool
	Oraculo     bool
	ChatbotIA   bool
}

// PremiumFeatures returns the feature set granted by the premium plan.
func PremiumFeatures() Features {
	return Features{Sueldometro: true, Oraculo: true, ChatbotIA: true}
}

// NormalizeStatus maps a raw provider status string onto the closed set of
// subscription statuses. Anything unrecognized collapses to incomplete.
func NormalizeStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case models.SubscriptionStatusActive:
		return models.SubscriptionStatusActive
	case models.SubscriptionStatusTrialing:
		return models.SubscriptionStatusTrialing
	case models.SubscriptionStatusPastDue:
		return models.SubscriptionStatusPastDue
	case models.SubscriptionStatusCanceled:
		return models.SubscriptionStatusCanceled
	case models.SubscriptionStatusUnpaid:
		return models.SubscriptionStatusUnpaid
	default:
		return models.SubscriptionStatusIncomplete
	}
}

// IsEntitling reports whether a status grants access to premium features.
func IsEntitling(status string) bool {
	switch NormalizeStatus(status) {
	case models.SubscriptionStatusActive, models.SubscriptionStatusTrialing, models.SubscriptionStatusPastDue:
		return true
	default:
		return false
	}
}
