package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/randr"
)

// Monitor represents a physical display as reported by XRandR.
type Monitor struct {
	// OutputID is the RandR output XID. Unlike the CRTC slot, it stays
	// stable across cable reseating within one X session, which makes it
	// the identity key of choice.
	OutputID  uint32
	Name      string
	X         int
	Y         int
	Width     int
	Height    int
	Primary   bool
	RefreshHz int
}

var randrInit sync.Once

// GetMonitors retrieves all active monitors using XRandR.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	var initErr error
	randrInit.Do(func() {
		initErr = randr.Init(c.XUtil.Conn())
	})
	if initErr != nil {
		return nil, fmt.Errorf("randr init failed: %w", initErr)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primaryOutput randr.Output
	if primary, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		primaryOutput = primary.Output
	}

	var monitors []Monitor

	// Query each CRTC for active monitors
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		output := crtcInfo.Outputs[0]
		outputName := fmt.Sprintf("Monitor%d", i)
		if outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), output, resources.ConfigTimestamp).Reply(); err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			OutputID:  uint32(output),
			Name:      outputName,
			X:         int(crtcInfo.X),
			Y:         int(crtcInfo.Y),
			Width:     int(crtcInfo.Width),
			Height:    int(crtcInfo.Height),
			Primary:   output == primaryOutput,
			RefreshHz: refreshRate(resources, crtcInfo.Mode),
		})
	}

	return monitors, nil
}

// refreshRate derives the vertical refresh in Hz from the active mode.
// Returns 0 when the mode is unknown or carries degenerate timings.
func refreshRate(resources *randr.GetScreenResourcesReply, mode randr.Mode) int {
	for _, m := range resources.Modes {
		if randr.Mode(m.Id) != mode {
			continue
		}
		total := int(m.Htotal) * int(m.Vtotal)
		if total == 0 {
			return 0
		}
		return int((int64(m.DotClock) + int64(total)/2) / int64(total))
	}
	return 0
}
