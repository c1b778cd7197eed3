// Package daemon hosts the display topology watcher: the loop that keeps
// the surface registry in step with displays being plugged in, unplugged or
// re-ordered by the operating system while the kiosk runs.
package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/lumenwall/kioskd/internal/display"
	"github.com/lumenwall/kioskd/internal/metrics"
	"github.com/lumenwall/kioskd/internal/platform"
	"github.com/lumenwall/kioskd/internal/registry"
)

// SurfaceOpener is called when the watcher sees a newly attached display.
// The presentation host opens a surface for the identity and the returned id
// is bound in the registry.
type SurfaceOpener func(id display.Identity) registry.SurfaceID

// WatcherConfig holds configuration for the topology watcher.
type WatcherConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Watcher polls the platform backend for display topology changes. Attach
// events bind a fresh surface; detach events only log, because registry
// bindings are process-lifetime and a re-attached display gets a new
// surface rather than a recycled one.
type Watcher struct {
	interval time.Duration
	backend  platform.Backend
	reg      *registry.Registry
	open     SurfaceOpener
	logger   *slog.Logger

	// seen maps stable ids to their bound surface; stale entries are kept
	// so a flapping cable does not re-bind on every pass.
	seen map[string]registry.SurfaceID
	// attached tracks which stable ids were present on the last pass.
	attached map[string]bool
}

// NewWatcher creates a topology watcher seeded with the displays bound at
// startup.
func NewWatcher(cfg WatcherConfig, backend platform.Backend, reg *registry.Registry, open SurfaceOpener, initial map[string]registry.SurfaceID) *Watcher {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	seen := make(map[string]registry.SurfaceID, len(initial))
	attached := make(map[string]bool, len(initial))
	for stableID, surface := range initial {
		seen[stableID] = surface
		attached[stableID] = true
	}

	return &Watcher{
		interval: interval,
		backend:  backend,
		reg:      reg,
		open:     open,
		logger:   cfg.Logger,
		seen:     seen,
		attached: attached,
	}
}

// Run starts the watch loop. Blocks until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("topology watcher started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("topology watcher stopped")
			return
		case <-ticker.C:
			w.pass()
		}
	}
}

// pass performs a single topology check.
func (w *Watcher) pass() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			w.logger.Error("topology watcher panic recovered", "error", err)
		}
	}()

	raws, err := w.backend.Displays()
	if err != nil {
		w.logger.Error("topology watcher: display enumeration failed", "error", err)
		return
	}

	current := make(map[string]bool, len(raws))
	for _, raw := range raws {
		id := display.Extract(raw)
		current[id.StableID] = true

		if _, known := w.seen[id.StableID]; known {
			if !w.attached[id.StableID] {
				w.logger.Info("display re-attached", "display", id.String(),
					"surface", int(w.seen[id.StableID]))
				metrics.TopologyEventsTotal.WithLabelValues("attach").Inc()
			}
			continue
		}

		surface := w.open(id)
		w.reg.Bind(surface, id)
		w.seen[id.StableID] = surface
		w.logger.Info("display attached", "display", id.String(), "surface", int(surface))
		metrics.TopologyEventsTotal.WithLabelValues("attach").Inc()
	}

	for stableID, wasAttached := range w.attached {
		if wasAttached && !current[stableID] {
			w.logger.Warn("display detached", "stable_id", stableID,
				"surface", int(w.seen[stableID]))
			metrics.TopologyEventsTotal.WithLabelValues("detach").Inc()
		}
	}

	w.attached = current
	metrics.BoundSurfaces.Set(float64(w.reg.Len()))
}
