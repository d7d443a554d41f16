package publishers

import (
	"time"

	"github.com/gw2sdk/gw2sdk-go/internal/domain"
)

// Event represents the payload published downstream.
type Event struct {
	WatchID     string          `json:"watch_id"`
	WatchName   string          `json:"watch_name"`
	Snapshot    domain.Snapshot `json:"snapshot"`
	CollectedAt time.Time       `json:"collected_at"`
}

// NewEvent constructs an Event for the given watch + snapshot.
func NewEvent(watchID, watchName string, snap domain.Snapshot) Event {
	return Event{
		WatchID:     watchID,
		WatchName:   watchName,
		Snapshot:    snap,
		CollectedAt: time.Now().UTC(),
	}
}

// attributes are the routing attributes attached to queue and topic messages.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"watch_id": e.WatchID,
		"outcome":  e.Snapshot.Outcome,
	}
}
