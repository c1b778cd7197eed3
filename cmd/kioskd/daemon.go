package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lumenwall/kioskd/internal/config"
	"github.com/lumenwall/kioskd/internal/daemon"
	"github.com/lumenwall/kioskd/internal/display"
	"github.com/lumenwall/kioskd/internal/ipc"
	"github.com/lumenwall/kioskd/internal/metrics"
	"github.com/lumenwall/kioskd/internal/platform"
	"github.com/lumenwall/kioskd/internal/registry"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kioskd daemon [--config <path>]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the resolver daemon in the foreground.")
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
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	path := *configPath
	if path == "" {
		var err error
		path, err = config.DefaultConfigPath()
		if err != nil {
			log.Fatalf("Failed to resolve config path: %v", err)
		}
	}

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded (base_path: %s, %d video folder(s), %d audio device(s))",
		cfg.BasePath, len(cfg.VideoFolders), len(cfg.AudioDevices))

	// Connect to display server
	backend, err := platform.NewLinuxBackend()
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer backend.Disconnect()

	raws, err := backend.Displays()
	if err != nil {
		log.Fatalf("Failed to enumerate displays: %v", err)
	}
	if len(raws) == 0 {
		log.Fatal("No displays detected")
	}

	// Bind one presentation surface per display, before the query boundary
	// opens. Surface ids follow the enumeration order.
	reg := registry.New()
	initial := make(map[string]registry.SurfaceID, len(raws))
	for i, raw := range raws {
		id := display.Extract(raw)
		surface := registry.SurfaceID(i + 1)
		reg.Bind(surface, id)
		initial[id.StableID] = surface
		log.Printf("Surface %d bound to display %s", surface, id)
	}
	metrics.BoundSurfaces.Set(float64(reg.Len()))

	watcherOn := cfg.WatchIntervalSeconds > 0

	ipcServer, err := ipc.NewServer(cfg, path, reg, backend, watcherOn)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	if cfg.MetricsListen != "" {
		go func() {
			log.Printf("Metrics listening on %s", cfg.MetricsListen)
			if err := metrics.Serve(cfg.MetricsListen); err != nil {
				log.Printf("Metrics listener stopped: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if watcherOn {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slogLevel(cfg.LogLevel),
		}))
		watcher := daemon.NewWatcher(daemon.WatcherConfig{
			Interval: time.Duration(cfg.WatchIntervalSeconds) * time.Second,
			Logger:   logger,
		}, backend, reg, func(id display.Identity) registry.SurfaceID {
			return reg.NextID()
		}, initial)
		go watcher.Run(ctx)
	}

	log.Println("kioskd daemon started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("Received %s, shutting down", sig)
	return 0
}

func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
