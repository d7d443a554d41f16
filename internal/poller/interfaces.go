package poller

import (
	"context"

	"github.com/gw2sdk/gw2sdk-go/pkg/auth"
	"github.com/gw2sdk/gw2sdk-go/pkg/httpclient"
	"github.com/gw2sdk/gw2sdk-go/pkg/publishers"
)

// APIClient starts API requests. *httpclient.APIClient implements it.
type APIClient interface {
	FetchAsync(ctx context.Context, path string) (*httpclient.Future, error)
	APIKey() (*auth.APIKey, bool)
}

// EventPublisher publishes snapshots downstream and reports how many sinks accepted them.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Deduper remembers the last published digest per watch.
type Deduper interface {
	Changed(watchID, digest string) (bool, error)
	Record(watchID, digest string) error
}
