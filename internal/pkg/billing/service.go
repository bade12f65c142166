package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/portalestiba/notifier/app/models"
	"github.com/portalestiba/notifier/internal/pkg/entitlements"
	"gorm.io/gorm"
)

// EntitlementCache is the optional read-through cache in front of the
// entitlements table. Implemented by internal/pkg/cache.
type EntitlementCache interface {
	Get(ctx context.Context, chapa string) (*models.Entitlement, bool)
	Set(ctx context.Context, chapa string, ent *models.Entitlement)
	Invalidate(ctx context.Context, chapa string)
}

// Service reconciles verified billing events into entitlement rows.
//
// Reconciliation is last-write-wins: whichever event is processed last
// determines the row, with no comparison against a stored event timestamp. A
// redelivered or reordered "updated" arriving after a "deleted" can therefore
// resurrect a canceled subscription. The event ledger dedupes exact
// redeliveries by provider event ID, which narrows but does not close that
// window.
type Service struct {
	repo  Repository
	cache EntitlementCache
}

// NewService creates a billing service from an injected repository. The cache
// may be nil.
func NewService(repo Repository, cache EntitlementCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, cache EntitlementCache) *Service {
	return NewService(NewRepository(db), cache)
}

// ProcessEvent dispatches a verified event to its reconciler action.
// Payment events are observability-only and unknown kinds are acknowledged
// without error so the provider does not retry them forever.
func (s *Service) ProcessEvent(ctx context.Context, ev *Event) error {
	switch ev.Kind {
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		return s.reconcileUpdate(ctx, ev)
	case EventSubscriptionDeleted:
		return s.reconcileCancellation(ctx, ev)
	case EventPaymentSucceeded:
		log.Printf("billing: payment succeeded (event %s)", ev.ID)
		return nil
	case EventPaymentFailed:
		log.Printf("billing: payment failed (event %s)", ev.ID)
		return nil
	case EventUnknown:
		log.Printf("billing: ignoring unhandled event type %q (event %s)", ev.Type, ev.ID)
		return nil
	default:
		log.Printf("billing: ignoring unhandled event kind %v (event %s)", ev.Kind, ev.ID)
		return nil
	}
}

// reconcileUpdate applies a subscription created/updated event as a full
// upsert of the entitlement row keyed by chapa. Re-applying the same event is
// observably a no-op.
func (s *Service) reconcileUpdate(ctx context.Context, ev *Event) error {
	chapa := ev.Subscription.Chapa()
	if chapa == "" {
		return ErrMissingCorrelation
	}

	features := entitlements.PremiumFeatures()
	ent := &models.Entitlement{
		Chapa:                chapa,
		StripeCustomerID:     strings.TrimSpace(ev.Subscription.Customer),
		StripeSubscriptionID: strings.TrimSpace(ev.Subscription.ID),
		Plan:                 models.PlanPremiumMensual,
		Status:               entitlements.NormalizeStatus(ev.Subscription.Status),
		PeriodStart:          ev.Subscription.PeriodStart(),
		PeriodEnd:            ev.Subscription.PeriodEnd(),
		SueldometroEnabled:   features.Sueldometro,
		OraculoEnabled:       features.Oraculo,
		ChatbotIAEnabled:     features.ChatbotIA,
	}
	if err := s.repo.UpsertEntitlement(ent); err != nil {
		return err
	}

	s.invalidate(ctx, chapa)
	log.Printf("billing: entitlement updated for chapa %s (status %s)", chapa, ent.Status)
	return nil
}

// reconcileCancellation marks the matching row canceled and stamps the
// cancellation time. The row is kept.
func (s *Service) reconcileCancellation(ctx context.Context, ev *Event) error {
	chapa := ev.Subscription.Chapa()
	if chapa == "" {
		return ErrMissingCorrelation
	}

	if err := s.repo.CancelEntitlement(chapa, time.Now().UTC()); err != nil {
		return err
	}

	s.invalidate(ctx, chapa)
	log.Printf("billing: entitlement canceled for chapa %s", chapa)
	return nil
}

// GetEntitlement returns the entitlement row for a chapa, read through the
// cache when one is configured.
func (s *Service) GetEntitlement(ctx context.Context, chapa string) (*models.Entitlement, error) {
	chapa = strings.TrimSpace(chapa)
	if chapa == "" {
		return nil, errors.New("chapa is required")
	}

	if s.cache != nil {
		if ent, ok := s.cache.Get(ctx, chapa); ok {
			return ent, nil
		}
	}

	ent, err := s.repo.GetEntitlementByChapa(chapa)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, chapa, ent)
	}
	return ent, nil
}

// RecordWebhookEvent persists webhook payloads idempotently. Events without a
// provider event ID are deduplicated by payload hash instead.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.BillingWebhookEvent, error) {
	_ = ctx
	eventID := strings.TrimSpace(in.StripeEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.BillingWebhookEvent{
		StripeEventID:  eventID,
		EventType:      strings.TrimSpace(in.EventType),
		PayloadJSON:    in.PayloadJSON,
		SignatureValid: in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

func (s *Service) invalidate(ctx context.Context, chapa string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, chapa)
	}
}
