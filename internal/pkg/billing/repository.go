package billing

import (
	"time"

	"github.com/portalestiba/notifier/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the billing service. Every
// mutation is a single atomic statement; the service never reads-then-writes
// an entitlement row.
type Repository interface {
	UpsertEntitlement(ent *models.Entitlement) error
	CancelEntitlement(chapa string, canceledAt time.Time) error
	GetEntitlementByChapa(chapa string) (*models.Entitlement, error)
	CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) UpsertEntitlement(ent *models.Entitlement) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "chapa"},
		},
		// canceled_at is only ever written by CancelEntitlement.
		DoUpdates: clause.AssignmentColumns([]string{
			"stripe_customer_id",
			"stripe_subscription_id",
			"plan",
			"status",
			"period_start",
			"period_end",
			"sueldometro_enabled",
			"oraculo_enabled",
			"chatbot_ia_enabled",
			"updated_at",
		}),
	}).Create(ent).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("chapa = ?", ent.Chapa).First(ent).Error
}

func (r *gormRepository) CancelEntitlement(chapa string, canceledAt time.Time) error {
	return r.db.Model(&models.Entitlement{}).
		Where("chapa = ?", chapa).
		Updates(map[string]interface{}{
			"status":      models.SubscriptionStatusCanceled,
			"canceled_at": &canceledAt,
		}).Error
}

func (r *gormRepository) GetEntitlementByChapa(chapa string) (*models.Entitlement, error) {
	var ent models.Entitlement
	if err := r.db.Where("chapa = ?", chapa).First(&ent).Error; err != nil {
		return nil, err
	}
	return &ent, nil
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "stripe_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.BillingWebhookEvent
	if err := r.db.Where("stripe_event_id = ?", event.StripeEventID).First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.BillingWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
