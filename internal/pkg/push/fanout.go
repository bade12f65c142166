package push

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/portalestiba/notifier/app/models"
	"github.com/portalestiba/notifier/app/repository"
	"github.com/portalestiba/notifier/internal/pkg/metrics/counter"
)

// Fallbacks used when the notify request leaves payload fields empty.
const (
	DefaultTitle = "¡Nueva Contratación Disponible!"
	DefaultBody  = "Revisa los detalles de la última incorporación a nuestro equipo."
	DefaultURL   = "/"
)

// Request describes one logical notification. An empty Chapa targets every
// registered endpoint.
type Request struct {
	Title string
	Body  string
	URL   string
	Chapa string
}

// Result summarizes one fan-out run. Outcomes carries one entry per attempted
// endpoint, in no particular order.
type Result struct {
	Targeted int
	Outcomes []DeliveryOutcome
}

// Delivered counts successful attempts.
func (r *Result) Delivered() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == OutcomeDelivered {
			n++
		}
	}
	return n
}

// Engine fans one message out to many endpoints and self-heals the registry
// when the push service reports an endpoint as permanently dead.
type Engine struct {
	registry  repository.EndpointRepository
	transport Transport
	stats     *counter.DeliveryCounter
}

// NewEngine creates a fan-out engine from an injected registry and transport.
func NewEngine(registry repository.EndpointRepository, transport Transport) *Engine {
	return &Engine{registry: registry, transport: transport}
}

// NewEngineWithStats additionally records per-day delivery totals in Redis.
func NewEngineWithStats(registry repository.EndpointRepository, transport Transport, stats *counter.DeliveryCounter) *Engine {
	return &Engine{registry: registry, transport: transport, stats: stats}
}

// Notify resolves the candidate endpoints, delivers the payload to each of
// them concurrently, and waits for every attempt to settle before returning.
// One endpoint failing never aborts the others; a permanent failure prunes
// that endpoint from the registry as part of handling its outcome. The
// returned error is only ever a registry read failure.
func (e *Engine) Notify(ctx context.Context, req Request) (*Result, error) {
	candidates, err := e.resolveCandidates(req.Chapa)
	if err != nil {
		return nil, err
	}

	result := &Result{Targeted: len(candidates)}
	if len(candidates) == 0 {
		return result, nil
	}

	payload, err := buildPayload(req)
	if err != nil {
		return nil, err
	}

	outcomes := make([]DeliveryOutcome, len(candidates))
	var wg sync.WaitGroup
	for i, ep := range candidates {
		wg.Add(1)
		go func(i int, ep models.PushEndpoint) {
			defer wg.Done()
			outcomes[i] = e.deliver(ctx, ep, payload)
		}(i, ep)
	}
	wg.Wait()

	result.Outcomes = outcomes
	e.recordStats(ctx, result)
	log.Printf("push: fan-out finished, delivered %d/%d", result.Delivered(), result.Targeted)
	return result, nil
}

func (e *Engine) recordStats(ctx context.Context, result *Result) {
	if e.stats == nil {
		return
	}
	failed, pruned := 0, 0
	for _, o := range result.Outcomes {
		switch o.Status {
		case OutcomeFailedTransient:
			failed++
		case OutcomeFailedPermanent:
			failed++
			pruned++
		}
	}
	e.stats.AddDelivered(ctx, result.Delivered())
	e.stats.AddFailed(ctx, failed)
	e.stats.AddPruned(ctx, pruned)
}

// deliver makes exactly one attempt against one endpoint and classifies it.
func (e *Engine) deliver(ctx context.Context, ep models.PushEndpoint, payload []byte) DeliveryOutcome {
	outcome := DeliveryOutcome{Endpoint: ep.Endpoint}

	err := e.transport.Send(ctx, ep, payload)
	switch {
	case err == nil:
		outcome.Status = OutcomeDelivered
	case errors.Is(err, ErrEndpointGone):
		outcome.Status = OutcomeFailedPermanent
		if pruneErr := e.registry.DeleteByEndpoint(ep.Endpoint); pruneErr != nil {
			log.Printf("push: failed to prune dead endpoint %s: %v", ep.Endpoint, pruneErr)
		} else {
			log.Printf("push: pruned dead endpoint %s", ep.Endpoint)
		}
	default:
		outcome.Status = OutcomeFailedTransient
		log.Printf("push: delivery to %s failed: %v", ep.Endpoint, err)
	}
	return outcome
}

func (e *Engine) resolveCandidates(chapa string) ([]models.PushEndpoint, error) {
	if c := strings.TrimSpace(chapa); c != "" {
		return e.registry.ListByChapa(c)
	}
	return e.registry.ListAll()
}

func buildPayload(req Request) ([]byte, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = DefaultTitle
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		body = DefaultBody
	}
	url := strings.TrimSpace(req.URL)
	if url == "" {
		url = DefaultURL
	}
	return json.Marshal(map[string]string{
		"title": title,
		"body":  body,
		"url":   url,
	})
}
