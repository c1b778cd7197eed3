package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/lumenwall/kioskd/internal/config"
	"github.com/lumenwall/kioskd/internal/display"
	"github.com/lumenwall/kioskd/internal/ipc"
	"github.com/lumenwall/kioskd/internal/platform"
	"github.com/lumenwall/kioskd/internal/report"
)

func runReport(args []string) int {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kioskd report [--config <path>]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Print the display detection report: attached displays, folder")
		fmt.Fprintln(os.Stderr, "suggestions and a config snippet for each identity key.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "Config file path (default: ~/.config/kioskd/config.yaml)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "report takes no arguments")
		fs.Usage()
		return 2
	}

	path := *configPath
	if path == "" {
		var err error
		path, err = config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	cfg, err := config.LoadFromPath(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	backend, err := platform.NewLinuxBackend()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer backend.Disconnect()

	raws, err := backend.Displays()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(raws) == 0 {
		fmt.Fprintln(os.Stderr, "no displays detected")
		return 1
	}

	opts := report.Options{BasePath: cfg.BasePath}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		opts.Styled = true
		if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			opts.Width = width
		}
	}

	report.Write(os.Stdout, raws, opts)
	return 0
}

// enumerateDisplays builds the displays listing directly from the platform
// backend, for when the daemon is not running.
func enumerateDisplays() (*ipc.DisplaysData, error) {
	backend, err := platform.NewLinuxBackend()
	if err != nil {
		return nil, err
	}
	defer backend.Disconnect()

	raws, err := backend.Displays()
	if err != nil {
		return nil, err
	}

	infos := make([]ipc.DisplayInfo, len(raws))
	for i, raw := range raws {
		infos[i] = ipc.DisplayInfo{
			ID:        raw.ID,
			Label:     raw.Label,
			X:         raw.X,
			Y:         raw.Y,
			Width:     raw.Width,
			Height:    raw.Height,
			Primary:   raw.Primary,
			RefreshHz: raw.RefreshHz,
			Identity:  display.Extract(raw),
		}
	}
	return &ipc.DisplaysData{Displays: infos}, nil
}
