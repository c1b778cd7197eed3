package registry

import (
	"runtime"
	"sync"
	"testing"

	"github.com/lumenwall/kioskd/internal/display"
)

func identityFor(n string) display.Identity {
	return display.Identity{StableID: n, Resolution: "1920x1080", Position: "x0_y0", Label: "HDMI-" + n}
}

func TestBindThenLookup(t *testing.T) {
	reg := New()
	want := identityFor("111")
	reg.Bind(1, want)

	got, ok := reg.Lookup(1)
	if !ok {
		t.Fatal("expected binding for surface 1")
	}
	if got != want {
		t.Errorf("Lookup = %+v, want %+v", got, want)
	}
}

func TestLookup_UnboundSurfaceIsNotFound(t *testing.T) {
	reg := New()
	if _, ok := reg.Lookup(42); ok {
		t.Error("expected not-found for never-bound surface")
	}
}

func TestBind_FirstBindingWins(t *testing.T) {
	reg := New()
	first := identityFor("111")
	reg.Bind(1, first)
	reg.Bind(1, identityFor("222"))

	got, _ := reg.Lookup(1)
	if got != first {
		t.Errorf("Lookup = %+v, want first binding %+v", got, first)
	}
}

func TestSurfacesAndLen(t *testing.T) {
	reg := New()
	reg.Bind(3, identityFor("3"))
	reg.Bind(1, identityFor("1"))
	reg.Bind(2, identityFor("2"))

	if reg.Len() != 3 {
		t.Errorf("Len = %d, want 3", reg.Len())
	}
	ids := reg.Surfaces()
	want := []SurfaceID{1, 2, 3}
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("Surfaces = %v, want %v", ids, want)
		}
	}
}

func TestNextID(t *testing.T) {
	reg := New()
	if got := reg.NextID(); got != 1 {
		t.Errorf("NextID on empty registry = %d, want 1", got)
	}
	reg.Bind(1, identityFor("1"))
	reg.Bind(2, identityFor("2"))
	if got := reg.NextID(); got != 3 {
		t.Errorf("NextID = %d, want 3", got)
	}
}

// TestConcurrentLookups verifies reads are race-free against late bindings,
// matching the startup window where queries can arrive while surfaces are
// still being opened.
func TestConcurrentLookups(t *testing.T) {
	reg := New()
	for i := 1; i <= 4; i++ {
		reg.Bind(SurfaceID(i), identityFor("base"))
	}

	workers := runtime.GOMAXPROCS(0) * 4
	var wg sync.WaitGroup

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				for s := SurfaceID(1); s <= 8; s++ {
					if id, ok := reg.Lookup(s); ok && id.Resolution != "1920x1080" {
						t.Errorf("unexpected identity for surface %d: %+v", s, id)
						return
					}
				}
			}
		}()
	}

	// Writer binding new surfaces while readers hammer lookups.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 5; i <= 8; i++ {
			reg.Bind(SurfaceID(i), identityFor("late"))
		}
	}()

	wg.Wait()

	if reg.Len() != 8 {
		t.Errorf("Len = %d, want 8", reg.Len())
	}
}
