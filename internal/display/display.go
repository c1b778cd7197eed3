package display

import (
	"fmt"
	"strconv"
)

// UnknownLabel is used when the platform supplies no human-readable name
// for a display.
const UnknownLabel = "Unknown"

// Raw is a display descriptor as reported by the platform backend, before
// identity normalization.
type Raw struct {
	ID        int
	Label     string
	X         int
	Y         int
	Width     int
	Height    int
	Primary   bool
	RefreshHz int
}

// Identity is the normalized, multi-key identity record for one physical
// display. Every field is always populated; records are immutable once
// extracted and are not persisted across restarts (platform ids may change
// between sessions).
type Identity struct {
	StableID   string `json:"stable_id"`
	Resolution string `json:"resolution"`
	Position   string `json:"position"`
	Label      string `json:"label"`
}

// Extract normalizes a raw descriptor into an identity record. It never
// fails: absent or zero geometry is stringified as-is and a missing label
// falls back to UnknownLabel.
func Extract(raw Raw) Identity {
	label := raw.Label
	if label == "" {
		label = UnknownLabel
	}
	return Identity{
		StableID:   strconv.Itoa(raw.ID),
		Resolution: fmt.Sprintf("%dx%d", raw.Width, raw.Height),
		Position:   fmt.Sprintf("x%d_y%d", raw.X, raw.Y),
		Label:      label,
	}
}

// Orientation classifies a raw descriptor's aspect for operator reports.
func (r Raw) Orientation() string {
	switch {
	case r.Width > r.Height:
		return "landscape"
	case r.Width < r.Height:
		return "portrait"
	default:
		return "square"
	}
}

func (id Identity) String() string {
	return fmt.Sprintf("%s (%s @ %s, %q)", id.StableID, id.Resolution, id.Position, id.Label)
}
