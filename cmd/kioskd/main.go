package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/lumenwall/kioskd/internal/config"
	"github.com/lumenwall/kioskd/internal/ipc"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "displays":
		os.Exit(runDisplays(os.Args[2:]))
	case "report":
		os.Exit(runReport(os.Args[2:]))
	case "identity":
		os.Exit(runIdentity(os.Args[2:]))
	case "video":
		os.Exit(runVideo(os.Args[2:]))
	case "audio":
		os.Exit(runAudio(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: kioskd <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the kioskd daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  displays            List attached displays and their identity keys")
	fmt.Fprintln(w, "  report              Print the display detection report with config suggestions")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  identity <surface>  Show the identity bound to a surface")
	fmt.Fprintln(w, "  video <surface>     Resolve the video asset path for a surface")
	fmt.Fprintln(w, "  audio <surface>     Resolve the audio output device for a surface")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print effective configuration")
	fmt.Fprintln(w, "  reload              Reload configuration tables in the running daemon")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'kioskd <command> --help' for command-specific options.")
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kioskd status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running:  %v\n", status.DaemonRunning)
	fmt.Printf("surface_count:   %d\n", status.SurfaceCount)
	fmt.Printf("base_path:       %s\n", status.BasePath)
	fmt.Printf("watcher_running: %v\n", status.WatcherRunning)
	fmt.Printf("uptime_seconds:  %d\n", status.UptimeSeconds)
	return 0
}

func runDisplays(args []string) int {
	fs := flag.NewFlagSet("displays", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kioskd displays [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List attached displays with their identity keys. Uses the daemon")
		fmt.Fprintln(os.Stderr, "when it is running, otherwise enumerates directly.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "displays takes no arguments")
		fs.Usage()
		return 2
	}

	data, err := ipc.NewClient().GetDisplays()
	if err != nil {
		// Daemon not running; fall back to direct enumeration.
		data, err = enumerateDisplays()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	for _, d := range data.Displays {
		primary := ""
		if d.Primary {
			primary = " primary"
		}
		fmt.Printf("- id: %d%s\n", d.ID, primary)
		fmt.Printf("  label:      %s\n", d.Identity.Label)
		fmt.Printf("  resolution: %s\n", d.Identity.Resolution)
		fmt.Printf("  position:   %s\n", d.Identity.Position)
	}
	return 0
}

func runIdentity(args []string) int {
	fs := flag.NewFlagSet("identity", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kioskd identity <surface>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show the display identity bound to a presentation surface.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	surface, ok := surfaceArg(fs, "identity")
	if !ok {
		return 2
	}

	data, err := ipc.NewClient().GetIdentity(surface)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !data.Found {
		fmt.Fprintf(os.Stderr, "surface %d is not bound\n", surface)
		return 1
	}
	fmt.Printf("stable_id:  %s\n", data.Identity.StableID)
	fmt.Printf("resolution: %s\n", data.Identity.Resolution)
	fmt.Printf("position:   %s\n", data.Identity.Position)
	fmt.Printf("label:      %s\n", data.Identity.Label)
	return 0
}

func runVideo(args []string) int {
	fs := flag.NewFlagSet("video", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kioskd video [--type default|trigger] [--variant N] <surface>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Resolve the video asset path for a surface.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	contentType := fs.String("type", "default", "Content type: default or trigger")
	variant := fs.Int("variant", 0, "Trigger variant number (positive)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	surface, ok := surfaceArg(fs, "video")
	if !ok {
		return 2
	}

	data, err := ipc.NewClient().GetVideoPath(surface, *contentType, *variant)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !data.Found {
		fmt.Fprintln(os.Stderr, "not found")
		return 1
	}
	fmt.Println(data.Path)
	return 0
}

func runAudio(args []string) int {
	fs := flag.NewFlagSet("audio", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kioskd audio <surface>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Resolve the audio output device for a surface. AUTO:<label> means")
		fmt.Fprintln(os.Stderr, "no table entry matched; match a device against the label dynamically.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	surface, ok := surfaceArg(fs, "audio")
	if !ok {
		return 2
	}

	data, err := ipc.NewClient().GetAudioDevice(surface)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !data.Found {
		fmt.Fprintf(os.Stderr, "surface %d is not bound\n", surface)
		return 1
	}
	fmt.Println(data.Device)
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  kioskd config validate [--config <path>]")
		fmt.Fprintln(os.Stderr, "  kioskd config print [--config <path>]")
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	switch args[0] {
	case "validate", "print":
		fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		configPath := fs.String("config", "", "Config file path (default: ~/.config/kioskd/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
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

		if args[0] == "validate" {
			fmt.Println("config is valid")
			return 0
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		os.Stdout.Write(data)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		return 2
	}
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kioskd reload")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Reload configuration tables in the running daemon.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "reload takes no arguments")
		fs.Usage()
		return 2
	}

	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config reloaded")
	return 0
}

func surfaceArg(fs *flag.FlagSet, command string) (int, bool) {
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s requires exactly one <surface> argument\n", command)
		fs.Usage()
		return 0, false
	}
	surface, err := strconv.Atoi(fs.Arg(0))
	if err != nil || surface < 1 {
		fmt.Fprintf(os.Stderr, "invalid surface id %q\n", fs.Arg(0))
		return 0, false
	}
	return surface, true
}
