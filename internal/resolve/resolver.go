// Package resolve maps display identities to content folders, audio output
// devices and concrete asset paths. All functions are total over their typed
// inputs: missing table entries and missing files are results, not errors.
package resolve

import "github.com/lumenwall/kioskd/internal/display"

// keySelector extracts one lookup key from an identity. Selectors are
// evaluated in a fixed order that encodes a stability ranking: the hardware
// id survives reboots and cable reseating best, the label worst (it may be
// empty or a vendor default shared by several panels).
type keySelector func(display.Identity) string

var priorityKeys = []keySelector{
	func(id display.Identity) string { return id.StableID },
	func(id display.Identity) string { return id.Resolution },
	func(id display.Identity) string { return id.Position },
	func(id display.Identity) string { return id.Label },
}

// Lookup walks the priority keys and returns the first table entry whose
// key is present. Presence decides the match: an empty value under a present
// key is a valid result, only a missing key moves to the next tier. Exported
// for callers that need to distinguish a table hit from the fallback tier.
func Lookup(id display.Identity, table map[string]string) (string, bool) {
	for _, key := range priorityKeys {
		if value, ok := table[key(id)]; ok {
			return value, true
		}
	}
	return "", false
}

// Folder resolves the content folder name for a display. When no table key
// matches, the stable id itself is the folder name, so resolution always
// yields a defined value.
func Folder(id display.Identity, table map[string]string) string {
	if folder, ok := Lookup(id, table); ok {
		return folder
	}
	return id.StableID
}

// AudioSelection is the result of resolving the audio output device for a
// display. When Auto is set, no table entry matched and the caller is
// expected to match a device dynamically against Label; this is deliberately
// distinct from the folder fallback, which names a folder directly.
type AudioSelection struct {
	Device string
	Label  string
	Auto   bool
}

// String renders the selection for logs and wire responses; auto selections
// carry the display label behind an AUTO: tag.
func (s AudioSelection) String() string {
	if s.Auto {
		return "AUTO:" + s.Label
	}
	return s.Device
}

// AudioDevice resolves the audio output device for a display using the same
// priority order as Folder. A table miss yields an auto selection carrying
// the display's label rather than a device name.
func AudioDevice(id display.Identity, table map[string]string) AudioSelection {
	if device, ok := Lookup(id, table); ok {
		return AudioSelection{Device: device, Label: id.Label}
	}
	return AudioSelection{Label: id.Label, Auto: true}
}
