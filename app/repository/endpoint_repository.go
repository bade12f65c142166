package repository

import (
	"github.com/portalestiba/notifier/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// endpointRepository implements the EndpointRepository interface
type endpointRepository struct {
	db *gorm.DB
}

// NewEndpointRepository creates a new endpoint repository instance
func NewEndpointRepository(db *gorm.DB) EndpointRepository {
	return &endpointRepository{db: db}
}

// Upsert creates or refreshes an endpoint row. Re-subscribing from the same
// browser overwrites the key material and chapa in place.
func (r *endpointRepository) Upsert(ep *models.PushEndpoint) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "endpoint"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"p256dh",
			"auth",
			"chapa",
			"updated_at",
		}),
	}).Create(ep).Error
}

// DeleteByEndpoint removes an endpoint row. Deleting a row that does not
// exist is not an error.
func (r *endpointRepository) DeleteByEndpoint(endpoint string) error {
	return r.db.Where("endpoint = ?", endpoint).Delete(&models.PushEndpoint{}).Error
}

// ListAll returns the current snapshot of all registered endpoints.
func (r *endpointRepository) ListAll() ([]models.PushEndpoint, error) {
	var endpoints []models.PushEndpoint
	err := r.db.Find(&endpoints).Error
	return endpoints, err
}

// ListByChapa returns the endpoints registered for one worker.
func (r *endpointRepository) ListByChapa(chapa string) ([]models.PushEndpoint, error) {
	var endpoints []models.PushEndpoint
	err := r.db.Where("chapa = ?", chapa).Find(&endpoints).Error
	return endpoints, err
}
