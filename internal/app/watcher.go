package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gw2sdk/gw2sdk-go/internal/config"
	"github.com/gw2sdk/gw2sdk-go/internal/logger"
	"github.com/gw2sdk/gw2sdk-go/internal/poller"
	"github.com/gw2sdk/gw2sdk-go/internal/storage"
	"github.com/gw2sdk/gw2sdk-go/pkg/publishers"
	"github.com/gw2sdk/gw2sdk-go/pkg/watches"
)

// Watcher is the gw2watch runtime. It polls the watch catalogue on a fixed
// interval, deduplicates snapshots through the store and fans changed ones
// out to the enabled publishers.
type Watcher struct {
	cfg          *config.Config
	fanout       *publishers.Fanout
	pollService  *poller.Service
	pollInterval time.Duration
	log          logger.Logger
	store        storage.Store
}

// NewWatcher builds a watcher runtime from config files.
func NewWatcher(ctx context.Context, cfg *config.Config, log logger.Logger) (*Watcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if err := watches.LoadWatches(cfg.WatchesFile); err != nil {
		return nil, fmt.Errorf("load watches: %w", err)
	}
	enabledWatches := watches.Enabled()
	watchIDs := make([]string, 0, len(enabledWatches))
	for _, w := range enabledWatches {
		watchIDs = append(watchIDs, w.ID)
	}
	log.InfoObj("watches loaded", "watches_meta", map[string]any{
		"count": len(watchIDs),
		"ids":   watchIDs,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	client, err := NewAPIClient(cfg, log)
	if err != nil {
		fanout.Close()
		return nil, err
	}

	storeOpts := storage.Options{
		SnapshotTTL:     cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"snapshot_ttl_seconds":     int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	pollService := poller.NewService(client, fanout, log, store, poller.WithDeserializer(DeserializerFor(cfg)))

	return &Watcher{
		cfg:          cfg,
		fanout:       fanout,
		pollService:  pollService,
		pollInterval: cfg.PollInterval,
		log:          log,
		store:        store,
	}, nil
}

// Run starts the poll loop until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil || w.pollService == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	defer w.close()

	ws := watches.Enabled()
	if len(ws) == 0 {
		w.log.WarnObj("no watches enabled; watcher idle", "watches_file", w.cfg.WatchesFile)
		<-ctx.Done()
		return ctx.Err()
	}

	w.log.InfoObj("watcher loop starting", "watcher_state", map[string]any{
		"watches_count":    len(ws),
		"publishers_count": w.fanout.Size(),
		"poll_interval":    w.pollInterval.String(),
	})

	if err := w.runOnce(ctx, ws); err != nil {
		w.log.ErrorObj("initial poll failed", "error", err)
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.InfoObj("watcher loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := w.runOnce(ctx, ws); err != nil {
				w.log.ErrorObj("scheduled poll failed", "error", err)
			}
		}
	}
}

// RunOnce performs a single poll pass and releases the runtime's resources.
func (w *Watcher) RunOnce(ctx context.Context) error {
	if w == nil || w.pollService == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	defer w.close()
	return w.runOnce(ctx, watches.Enabled())
}

func (w *Watcher) runOnce(ctx context.Context, ws []watches.Watch) error {
	start := time.Now()
	w.log.InfoObj("poll started", "poll_meta", map[string]any{
		"watches_count": len(ws),
		"started_at":    start.UTC(),
	})
	if err := w.pollService.Run(ctx, ws); err != nil {
		return err
	}
	w.log.InfoObj("poll completed", "poll_meta", map[string]any{
		"watches_count": len(ws),
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})
	return nil
}

// close releases the store and the publisher clients, logging any errors encountered.
func (w *Watcher) close() {
	if w == nil {
		return
	}
	if w.store != nil {
		if err := w.store.Close(); err != nil {
			w.log.ErrorObj("storage close failed", "error", err)
		}
	}
	if err := w.fanout.Close(); err != nil {
		w.log.ErrorObj("publisher close failed", "error", err)
	}
}
