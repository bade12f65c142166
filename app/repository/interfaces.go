package repository

import (
	"github.com/portalestiba/notifier/app/models"
)

// EndpointRepository defines the database operations for the push endpoint
// registry. Upsert and delete are single atomic statements keyed by the
// endpoint URL.
type EndpointRepository interface {
	Upsert(ep *models.PushEndpoint) error
	DeleteByEndpoint(endpoint string) error
	ListAll() ([]models.PushEndpoint, error)
	ListByChapa(chapa string) ([]models.PushEndpoint, error)
}
