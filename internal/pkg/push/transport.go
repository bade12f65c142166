package push

import (
	"context"
	"errors"

	"github.com/portalestiba/notifier/app/models"
)

// ErrEndpointGone marks a delivery failure the push service reports as
// permanent (the subscription no longer exists). The fan-out engine prunes
// such endpoints from the registry; every other failure is transient.
var ErrEndpointGone = errors.New("push endpoint gone")

// Transport sends one payload to one endpoint. Implementations own the
// per-attempt timeout; a timeout surfaces as a transient error.
type Transport interface {
	Send(ctx context.Context, ep models.PushEndpoint, payload []byte) error
}

// OutcomeStatus classifies a single delivery attempt.
type OutcomeStatus string

const (
	OutcomeDelivered       OutcomeStatus = "delivered"
	OutcomeFailedTransient OutcomeStatus = "failed-transient"
	OutcomeFailedPermanent OutcomeStatus = "failed-permanent"
)

// DeliveryOutcome is the result of one attempt against one endpoint.
type DeliveryOutcome struct {
	Endpoint string
	Status   OutcomeStatus
}
