package daemon

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/lumenwall/kioskd/internal/display"
	"github.com/lumenwall/kioskd/internal/registry"
)

type fakeBackend struct {
	mu   sync.Mutex
	raws []display.Raw
}

func (f *fakeBackend) Displays() ([]display.Raw, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]display.Raw, len(f.raws))
	copy(out, f.raws)
	return out, nil
}

func (f *fakeBackend) Disconnect() {}

func (f *fakeBackend) set(raws []display.Raw) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raws = raws
}

func testWatcher(t *testing.T, backend *fakeBackend, reg *registry.Registry, initial map[string]registry.SurfaceID) *Watcher {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	open := func(id display.Identity) registry.SurfaceID { return reg.NextID() }
	return NewWatcher(WatcherConfig{Logger: logger}, backend, reg, open, initial)
}

func TestPass_AttachBindsNewSurface(t *testing.T) {
	displayA := display.Raw{ID: 111, Label: "HDMI-1", Width: 1920, Height: 1080}
	displayB := display.Raw{ID: 222, Label: "HDMI-2", X: 1920, Width: 1920, Height: 1080}

	reg := registry.New()
	reg.Bind(1, display.Extract(displayA))
	backend := &fakeBackend{raws: []display.Raw{displayA}}
	w := testWatcher(t, backend, reg, map[string]registry.SurfaceID{"111": 1})

	backend.set([]display.Raw{displayA, displayB})
	w.pass()

	if reg.Len() != 2 {
		t.Fatalf("Len = %d, want 2 after attach", reg.Len())
	}
	id, ok := reg.Lookup(2)
	if !ok {
		t.Fatal("expected surface 2 bound for new display")
	}
	if id.StableID != "222" {
		t.Errorf("StableID = %q, want %q", id.StableID, "222")
	}
}

func TestPass_DetachLeavesBindingsIntact(t *testing.T) {
	displayA := display.Raw{ID: 111, Label: "HDMI-1", Width: 1920, Height: 1080}
	displayB := display.Raw{ID: 222, Label: "HDMI-2", X: 1920, Width: 1920, Height: 1080}

	reg := registry.New()
	reg.Bind(1, display.Extract(displayA))
	reg.Bind(2, display.Extract(displayB))
	backend := &fakeBackend{raws: []display.Raw{displayA, displayB}}
	w := testWatcher(t, backend, reg, map[string]registry.SurfaceID{"111": 1, "222": 2})

	backend.set([]display.Raw{displayA})
	w.pass()

	if reg.Len() != 2 {
		t.Errorf("Len = %d, want 2: detach must not evict bindings", reg.Len())
	}
	if _, ok := reg.Lookup(2); !ok {
		t.Error("surface 2 binding must survive detach")
	}
}

func TestPass_ReattachDoesNotRebind(t *testing.T) {
	displayA := display.Raw{ID: 111, Label: "HDMI-1", Width: 1920, Height: 1080}

	reg := registry.New()
	reg.Bind(1, display.Extract(displayA))
	backend := &fakeBackend{raws: []display.Raw{displayA}}
	w := testWatcher(t, backend, reg, map[string]registry.SurfaceID{"111": 1})

	// Detach, then re-attach the same display.
	backend.set(nil)
	w.pass()
	backend.set([]display.Raw{displayA})
	w.pass()

	if reg.Len() != 1 {
		t.Errorf("Len = %d, want 1: re-attach of a known display must not rebind", reg.Len())
	}
}

func TestPass_StablePassIsQuiet(t *testing.T) {
	displayA := display.Raw{ID: 111, Label: "HDMI-1", Width: 1920, Height: 1080}

	reg := registry.New()
	reg.Bind(1, display.Extract(displayA))
	backend := &fakeBackend{raws: []display.Raw{displayA}}
	w := testWatcher(t, backend, reg, map[string]registry.SurfaceID{"111": 1})

	for i := 0; i < 5; i++ {
		w.pass()
	}
	if reg.Len() != 1 {
		t.Errorf("Len = %d, want 1 after stable passes", reg.Len())
	}
}
