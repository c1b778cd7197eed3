package platform

import "github.com/lumenwall/kioskd/internal/display"

// Backend abstracts display enumeration across window systems. The daemon
// and the detection report are the only consumers; everything downstream
// works on normalized identity records.
type Backend interface {
	// Displays returns raw descriptors for all physically attached,
	// active displays, in a stable enumeration order.
	Displays() ([]display.Raw, error)
	// Disconnect releases the underlying window-system connection.
	Disconnect()
}
