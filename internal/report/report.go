// Package report renders the operator-facing display detection report: a
// per-display summary plus ready-to-paste folder suggestions and config
// snippets for the identity keys each display exposes.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lumenwall/kioskd/internal/display"
)

// Options controls report rendering.
type Options struct {
	// BasePath is the content root used in folder suggestions.
	BasePath string
	// Styled enables lipgloss rendering; off for pipes and files.
	Styled bool
	// Width is the target terminal width; 0 uses a default.
	Width int
}

const defaultWidth = 80

// Write renders the detection report for the given displays.
func Write(w io.Writer, raws []display.Raw, opts Options) {
	width := opts.Width
	if width <= 0 || width > 120 {
		width = defaultWidth
	}

	title := func(s string) string { return s }
	dim := func(s string) string { return s }
	frame := func(s string) string { return s }
	if opts.Styled {
		titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
		dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
		boxStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 2).
			Width(width - 4)
		title = func(s string) string { return titleStyle.Render(s) }
		dim = func(s string) string { return dimStyle.Render(s) }
		frame = func(s string) string { return boxStyle.Render(s) }
	}

	fmt.Fprintln(w, title("Display Detection Report"))
	fmt.Fprintf(w, "%s\n\n", dim(fmt.Sprintf("%d display(s) found", len(raws))))

	for i, raw := range raws {
		fmt.Fprintln(w, frame(displayPanel(i, raw)))
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, title("Folder suggestions"))
	fmt.Fprintf(w, "%s\n\n", dim("Create these folders under "+opts.BasePath+":"))
	for _, raw := range raws {
		id := display.Extract(raw)
		fmt.Fprintf(w, "  %s\n", filepath.Join(opts.BasePath, id.StableID+"_default", "video.mp4"))
		fmt.Fprintf(w, "  %s\n", filepath.Join(opts.BasePath, id.StableID+"_trigger", "video.mp4"))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, title("Configuration snippet"))
	fmt.Fprintf(w, "%s\n\n", dim("Add to config.yaml; any identity key works, listed most stable first:"))
	fmt.Fprint(w, configSnippet(raws))
}

func displayPanel(index int, raw display.Raw) string {
	id := display.Extract(raw)

	var b strings.Builder
	heading := fmt.Sprintf("Display %d", index)
	if raw.Primary {
		heading += " (primary)"
	}
	b.WriteString(heading + "\n")
	fmt.Fprintf(&b, "  Label:        %s\n", id.Label)
	fmt.Fprintf(&b, "  Stable ID:    %s\n", id.StableID)
	fmt.Fprintf(&b, "  Resolution:   %s (%s)\n", id.Resolution, raw.Orientation())
	fmt.Fprintf(&b, "  Position:     %s\n", id.Position)
	if raw.RefreshHz > 0 {
		fmt.Fprintf(&b, "  Refresh:      %d Hz\n", raw.RefreshHz)
	}
	return strings.TrimRight(b.String(), "\n")
}

func configSnippet(raws []display.Raw) string {
	var b strings.Builder
	b.WriteString("video_folders:\n")
	for _, raw := range raws {
		id := display.Extract(raw)
		fmt.Fprintf(&b, "  # %s, %s %s\n", id.Label, id.Resolution, raw.Orientation())
		fmt.Fprintf(&b, "  %q: folder_name\n", id.StableID)
	}
	b.WriteString("\n# Alternative keys for the same displays:\n")
	for _, raw := range raws {
		id := display.Extract(raw)
		fmt.Fprintf(&b, "#   %q / %q / %q\n", id.Resolution, id.Position, id.Label)
	}
	return b.String()
}
