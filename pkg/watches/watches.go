package watches

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gw2sdk/gw2sdk-go/internal/configfile"
	"github.com/gw2sdk/gw2sdk-go/pkg/auth"
)

// Package watches loads the catalogue of API endpoints polled by gw2watch.

const (
	// ShapeJSON decodes successful bodies as JSON; the snapshot keeps them compacted.
	ShapeJSON = "json"
	// ShapeText keeps successful bodies as plain text.
	ShapeText = "text"
)

// Watch is one API endpoint polled on every run.
type Watch struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Path           string   `json:"path" yaml:"path"`
	Shape          string   `json:"shape" yaml:"shape"`
	Permissions    []string `json:"permissions" yaml:"permissions"`
	RequestDelayMs int      `json:"request_delay_ms" yaml:"request_delay_ms"`
	Enabled        *bool    `json:"enabled" yaml:"enabled"`
}

type registry struct {
	Watches []Watch `json:"watches" yaml:"watches"`
}

var (
	regMu                 sync.RWMutex
	currentReg            registry
	watchesIdx            map[string]Watch
	defaultRequestDelayMs = 250
)

// Watches returns a copy of the currently loaded watches.
func Watches() []Watch {
	regMu.RLock()
	defer regMu.RUnlock()

	if len(currentReg.Watches) == 0 {
		return nil
	}

	out := make([]Watch, len(currentReg.Watches))
	copy(out, currentReg.Watches)
	return out
}

// Enabled returns the loaded watches that are not disabled.
func Enabled() []Watch {
	all := Watches()
	out := make([]Watch, 0, len(all))
	for _, w := range all {
		if w.EnabledValue() {
			out = append(out, w)
		}
	}
	return out
}

// WatchByID returns the watch entry for the given id, if loaded.
func WatchByID(id string) (Watch, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Watch{}, false
	}

	regMu.RLock()
	defer regMu.RUnlock()

	if watchesIdx == nil {
		return Watch{}, false
	}

	w, ok := watchesIdx[id]
	return w, ok
}

// LoadWatches loads the watch catalogue from a YAML or JSON file.
func LoadWatches(path string) error {
	var reg registry
	if err := configfile.Load(path, "watches", &reg); err != nil {
		return err
	}
	if len(reg.Watches) == 0 {
		return errors.New("watches file contains no watches entries")
	}

	idx := make(map[string]Watch, len(reg.Watches))
	for i := range reg.Watches {
		w := sanitizeWatch(reg.Watches[i])
		if err := validateWatch(w); err != nil {
			return fmt.Errorf("watch[%d]: %w", i, err)
		}
		if _, exists := idx[w.ID]; exists {
			return fmt.Errorf("duplicate watch id %q", w.ID)
		}
		reg.Watches[i] = w
		idx[w.ID] = w
	}

	regMu.Lock()
	currentReg = reg
	watchesIdx = idx
	regMu.Unlock()

	return nil
}

func sanitizeWatch(w Watch) Watch {
	w.ID = strings.TrimSpace(w.ID)
	w.Name = strings.TrimSpace(w.Name)
	w.Path = strings.TrimSpace(w.Path)
	w.Shape = strings.ToLower(strings.TrimSpace(w.Shape))
	if w.Shape == "" {
		w.Shape = ShapeJSON
	}
	if w.Name == "" {
		w.Name = w.ID
	}
	if w.Path == "/" {
		w.Path = ""
	}

	perms := make([]string, 0, len(w.Permissions))
	for _, p := range w.Permissions {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			perms = append(perms, p)
		}
	}
	w.Permissions = perms

	if w.RequestDelayMs <= 0 {
		w.RequestDelayMs = defaultRequestDelayMs
	}
	return w
}

func validateWatch(w Watch) error {
	if w.ID == "" {
		return errors.New("id is required")
	}
	if w.Path != "" && !strings.HasPrefix(w.Path, "/") {
		return fmt.Errorf("path must begin with '/' for watch %q", w.ID)
	}
	if w.Shape != ShapeJSON && w.Shape != ShapeText {
		return fmt.Errorf("shape must be %q or %q for watch %q", ShapeJSON, ShapeText, w.ID)
	}
	for _, p := range w.Permissions {
		if _, err := auth.ParsePermission(p); err != nil {
			return fmt.Errorf("watch %q: %w", w.ID, err)
		}
	}
	return nil
}

// RequiredPermissions returns the permissions an API key needs for this watch.
// Watches without permissions are public.
func (w Watch) RequiredPermissions() []auth.Permission {
	out := make([]auth.Permission, 0, len(w.Permissions))
	for _, p := range w.Permissions {
		if perm, err := auth.ParsePermission(p); err == nil {
			out = append(out, perm)
		}
	}
	return out
}

// RequestDelay returns the pause taken after polling this watch.
func (w Watch) RequestDelay() time.Duration {
	if w.RequestDelayMs <= 0 {
		return time.Duration(defaultRequestDelayMs) * time.Millisecond
	}
	return time.Duration(w.RequestDelayMs) * time.Millisecond
}

// EnabledValue returns enabled flag defaulting to true.
func (w Watch) EnabledValue() bool {
	if w.Enabled == nil {
		return true
	}
	return *w.Enabled
}
