//go:build linux

package platform

import (
	"fmt"
	"sort"

	"github.com/lumenwall/kioskd/internal/display"
	"github.com/lumenwall/kioskd/internal/x11"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux backend by opening a fresh X11 connection.
func NewLinuxBackend() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Displays returns all active displays as raw descriptors. The result is
// sorted primary-first, then by position, so surface ids assigned from the
// enumeration order are reproducible across restarts with an unchanged
// topology.
func (b *LinuxBackend) Displays() ([]display.Raw, error) {
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	raws := make([]display.Raw, 0, len(monitors))
	for _, m := range monitors {
		raws = append(raws, display.Raw{
			ID:        int(m.OutputID),
			Label:     m.Name,
			X:         m.X,
			Y:         m.Y,
			Width:     m.Width,
			Height:    m.Height,
			Primary:   m.Primary,
			RefreshHz: m.RefreshHz,
		})
	}

	sort.SliceStable(raws, func(i, j int) bool {
		if raws[i].Primary != raws[j].Primary {
			return raws[i].Primary
		}
		if raws[i].X != raws[j].X {
			return raws[i].X < raws[j].X
		}
		return raws[i].Y < raws[j].Y
	})

	return raws, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}
