package resolve

import (
	"fmt"
	"os"
	"path/filepath"
)

// ContentType selects between ambient and triggered content.
type ContentType string

const (
	ContentDefault ContentType = "default"
	ContentTrigger ContentType = "trigger"
)

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	return t == ContentDefault || t == ContentTrigger
}

// Request describes one asset lookup for a resolved folder. Variant selects
// among numbered trigger assets; zero means the unnumbered legacy shape.
type Request struct {
	Type    ContentType
	Variant int
}

// CandidatePath constructs the expected asset location without touching the
// filesystem. Folder values are table-authored strings or stringified stable
// ids, never user input, so no sanitization is applied here.
func CandidatePath(base, folder string, req Request) string {
	switch {
	case req.Type == ContentDefault:
		return filepath.Join(base, folder+"_default", "video.mp4")
	case req.Variant > 0:
		return filepath.Join(base, folder+"_trigger", fmt.Sprintf("video%d.mp4", req.Variant))
	default:
		return filepath.Join(base, folder+"_trigger", "video.mp4")
	}
}

// AssetPath resolves the concrete asset path for a request. Default and
// unnumbered trigger paths are returned as-is; only variant-indexed trigger
// paths are existence-checked, and a missing file yields ok=false with an
// empty path, meaning "nothing to play" rather than a fault.
//
// The stat runs on the caller's goroutine and holds no shared state, so a
// slow disk never stalls unrelated resolutions.
func AssetPath(base, folder string, req Request) (path string, ok bool) {
	candidate := CandidatePath(base, folder, req)
	if req.Type != ContentTrigger || req.Variant <= 0 {
		return candidate, true
	}
	if _, err := os.Stat(candidate); err != nil {
		return "", false
	}
	return candidate, true
}
