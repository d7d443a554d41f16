package poller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gw2sdk/gw2sdk-go/internal/domain"
	"github.com/gw2sdk/gw2sdk-go/internal/logger"
	"github.com/gw2sdk/gw2sdk-go/pkg/publishers"
	"github.com/gw2sdk/gw2sdk-go/pkg/sdk"
	"github.com/gw2sdk/gw2sdk-go/pkg/serialization"
	"github.com/gw2sdk/gw2sdk-go/pkg/watches"
)

// Service polls watched endpoints through the SDK core and publishes every
// snapshot whose outcome or body changed since the last published one.
type Service struct {
	client    APIClient
	publisher EventPublisher
	deduper   Deduper
	dec       serialization.Deserializer
	log       logger.Logger
	throttle  bool
}

// Option configures a Service.
type Option func(*Service)

// WithDeserializer sets the decoder for JSON watches, e.g. a strict one.
func WithDeserializer(d serialization.Deserializer) Option {
	return func(s *Service) {
		if d != nil {
			s.dec = d
		}
	}
}

// WithoutThrottle disables the pause between watches.
func WithoutThrottle() Option {
	return func(s *Service) { s.throttle = false }
}

// NewService wires a poller. A nil deduper publishes every snapshot.
func NewService(client APIClient, pub EventPublisher, log logger.Logger, deduper Deduper, opts ...Option) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	s := &Service{
		client:    client,
		publisher: pub,
		deduper:   deduper,
		dec:       serialization.JSON(),
		log:       log,
		throttle:  true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Run executes one poll pass over ws.
func (s *Service) Run(ctx context.Context, ws []watches.Watch) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("poller service is not initialized")
	}
	if len(ws) == 0 {
		return fmt.Errorf("no watches configured for polling")
	}

	if errs := s.runAll(ctx, ws); len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (s *Service) runAll(ctx context.Context, ws []watches.Watch) []error {
	errs := make([]error, 0, len(ws))

	for i, w := range ws {
		select {
		case <-ctx.Done():
			return errs
		default:
		}

		if err := s.runWatch(ctx, w); err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("watch poll failed", "watch_error", map[string]any{
				"watch_id": w.ID,
				"error":    err.Error(),
			})
		}

		if s.throttle && i < len(ws)-1 {
			timer := time.NewTimer(w.RequestDelay())
			select {
			case <-ctx.Done():
				timer.Stop()
				return errs
			case <-timer.C:
			}
		}
	}

	return errs
}

func (s *Service) runWatch(ctx context.Context, w watches.Watch) error {
	if perms := w.RequiredPermissions(); len(perms) > 0 {
		key, ok := s.client.APIKey()
		if !ok || !key.Allows(perms...) {
			s.log.WarnObj("api key lacks permissions for watch, skipping", "watch_skipped", map[string]any{
				"watch_id":    w.ID,
				"permissions": w.Permissions,
			})
			return nil
		}
	}

	snap, err := s.observe(ctx, w)
	if err != nil {
		return err
	}

	if s.deduper != nil {
		changed, err := s.deduper.Changed(w.ID, snap.Digest)
		if err != nil {
			// publish anyway; a duplicate is better than a lost change
			s.log.WarnObj("snapshot dedupe lookup failed", "dedupe_error", map[string]any{
				"watch_id": w.ID,
				"error":    err.Error(),
			})
		} else if !changed {
			s.log.DebugObj("snapshot unchanged", "watch_result", map[string]any{
				"watch_id": w.ID,
				"outcome":  snap.Outcome,
			})
			return nil
		}
	}

	delivered := 0
	var pubErr error
	if s.publisher != nil {
		delivered, pubErr = s.publisher.Publish(ctx, publishers.NewEvent(w.ID, w.Name, snap))
		if delivered == 0 && pubErr != nil {
			return fmt.Errorf("publish watch %s: %w", w.ID, pubErr)
		}
	}

	if s.deduper != nil {
		if err := s.deduper.Record(w.ID, snap.Digest); err != nil {
			pubErr = errors.Join(pubErr, fmt.Errorf("record snapshot %s: %w", w.ID, err))
		}
	}

	s.log.InfoObj("watch snapshot published", "watch_result", map[string]any{
		"watch_id":    w.ID,
		"outcome":     snap.Outcome,
		"status_code": snap.StatusCode,
		"delivered":   delivered,
	})
	if pubErr != nil {
		return fmt.Errorf("watch %s: %w", w.ID, pubErr)
	}
	return nil
}

// observe fetches w and waits for its classified outcome.
func (s *Service) observe(ctx context.Context, w watches.Watch) (domain.Snapshot, error) {
	f, err := s.client.FetchAsync(ctx, w.Path)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("fetch watch %s: %w", w.ID, err)
	}

	if w.Shape == watches.ShapeText {
		return awaitSnapshot(ctx, s, w, f, func(body string) (string, error) { return body, nil })
	}
	return awaitSnapshot(ctx, s, w, f, compactJSON)
}

func awaitSnapshot[T any](ctx context.Context, s *Service, w watches.Watch, h sdk.Handle, render func(T) (string, error)) (domain.Snapshot, error) {
	var (
		snap      domain.Snapshot
		renderErr error
	)
	p := sdk.OfHandlers(h, sdk.Handlers[T]{
		OnSuccess: func(data T) {
			body, err := render(data)
			if err != nil {
				renderErr = err
				return
			}
			snap = domain.NewSnapshot(w.ID, w.Path, sdk.OutcomeSuccessful.String(), 200, body)
		},
		OnError: func(e sdk.ErrorData) {
			snap = domain.NewSnapshot(w.ID, w.Path, sdk.OutcomeAPIError.String(), e.StatusCode, e.ErrorMessage)
		},
		OnNoAnswer: func() {
			snap = domain.NewSnapshot(w.ID, w.Path, sdk.OutcomeNoAnswer.String(), 0, "")
		},
	}, sdk.WithDeserializer(s.dec), sdk.WithLogger(s.log))

	if err := p.JoinContext(ctx); err != nil {
		if ctx.Err() != nil {
			p.Cancel()
		}
		return domain.Snapshot{}, fmt.Errorf("watch %s: %w", w.ID, err)
	}
	if renderErr != nil {
		return domain.Snapshot{}, fmt.Errorf("watch %s: %w", w.ID, renderErr)
	}
	return snap, nil
}

func compactJSON(raw json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", fmt.Errorf("compact body: %w", err)
	}
	return buf.String(), nil
}
