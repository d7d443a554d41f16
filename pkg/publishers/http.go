package publishers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gw2sdk/gw2sdk-go/pkg/httpclient"
)

// Webhook headers carrying the event routing attributes.
const (
	headerWatchID = "X-GW2-Watch-ID"
	headerOutcome = "X-GW2-Outcome"
)

// maxErrorBody bounds the sink response echoed in delivery errors.
const maxErrorBody = 512

type httpPublisher struct {
	id     string
	cfg    HTTPPublisherConfig
	client *resty.Client
	log    Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}

	hc := *cfg.HTTP
	if hc.Method == "" {
		hc.Method = httpDefaultMethod
	}
	if hc.TimeoutSeconds <= 0 {
		hc.TimeoutSeconds = httpDefaultTimeoutSeconds
	}

	return &httpPublisher{
		id:     cfg.ID,
		cfg:    hc,
		client: httpclient.NewRestyHTTPClient(time.Duration(hc.TimeoutSeconds) * time.Second),
		log:    ensureLogger(log),
	}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return TypeHTTP }

// Publish posts evt as JSON. Any non-2xx answer is a delivery failure.
func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := marshalEvent(evt)
	if err != nil {
		return err
	}

	attrs := evt.attributes()
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeaders(h.cfg.Headers).
		SetHeader("Content-Type", "application/json").
		SetHeader(headerWatchID, attrs["watch_id"]).
		SetHeader(headerOutcome, attrs["outcome"]).
		SetBody(payload).
		Execute(h.cfg.Method, h.cfg.URL)
	if err != nil {
		return fmt.Errorf("deliver to %s: %w", h.cfg.URL, err)
	}
	if resp.IsError() {
		body := resp.Body()
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return fmt.Errorf("sink answered %d: %s", resp.StatusCode(), strings.TrimSpace(string(body)))
	}

	h.log.DebugObj("http publisher delivered snapshot", "publisher_http_delivery", map[string]any{
		"publisher_id": h.id,
		"watch_id":     evt.WatchID,
		"status":       resp.StatusCode(),
	})
	return nil
}
