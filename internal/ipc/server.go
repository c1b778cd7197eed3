package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/lumenwall/kioskd/internal/config"
	"github.com/lumenwall/kioskd/internal/display"
	"github.com/lumenwall/kioskd/internal/metrics"
	"github.com/lumenwall/kioskd/internal/platform"
	"github.com/lumenwall/kioskd/internal/registry"
	"github.com/lumenwall/kioskd/internal/resolve"
	"github.com/lumenwall/kioskd/internal/runtimepath"
)

// Server answers resolver queries from the presentation layer over a unix
// socket, one JSON request line and one JSON response line per connection.
// Each connection is handled on its own goroutine, so the filesystem check
// behind GET_VIDEO_PATH never stalls unrelated queries.
type Server struct {
	socketPath   string
	listener     net.Listener
	cfg          *config.Config
	cfgMu        sync.RWMutex
	configPath   string
	reg          *registry.Registry
	backend      platform.Backend
	startTime    time.Time
	watcherOn    bool
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server. configPath is re-read on RELOAD;
// backend may be nil, which disables GET_DISPLAYS.
func NewServer(cfg *config.Config, configPath string, reg *registry.Registry, backend platform.Backend, watcherOn bool) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		cfg:        cfg,
		configPath: configPath,
		reg:        reg,
		backend:    backend,
		startTime:  time.Now(),
		watcherOn:  watcherOn,
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()

	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	status := "ok"
	if resp.Status == "ERROR" {
		status = "error"
	}
	metrics.QueriesTotal.WithLabelValues(string(req.Command), status).Inc()

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetDisplays:
		return s.handleGetDisplays()
	case CommandGetIdentity:
		return s.handleGetIdentity(req.Payload)
	case CommandGetVideoPath:
		return s.handleGetVideoPath(req.Payload)
	case CommandGetAudioDevice:
		return s.handleGetAudioDevice(req.Payload)
	case CommandReload:
		return s.handleReload()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleGetStatus() *Response {
	s.cfgMu.RLock()
	basePath := s.cfg.BasePath
	s.cfgMu.RUnlock()

	status := StatusData{
		UptimeSeconds:  int64(time.Since(s.startTime).Seconds()),
		SurfaceCount:   s.reg.Len(),
		BasePath:       basePath,
		WatcherRunning: s.watcherOn,
		DaemonRunning:  true,
	}

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleGetDisplays() *Response {
	if s.backend == nil {
		return NewErrorResponse("no display backend available")
	}

	raws, err := s.backend.Displays()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to enumerate displays: %v", err))
	}

	infos := make([]DisplayInfo, len(raws))
	for i, raw := range raws {
		infos[i] = DisplayInfo{
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

	resp, _ := NewOKResponse(DisplaysData{Displays: infos})
	return resp
}

func (s *Server) handleGetIdentity(payload json.RawMessage) *Response {
	var p SurfacePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid identity payload: %v", err))
	}

	id, ok := s.reg.Lookup(registry.SurfaceID(p.SurfaceID))
	if !ok {
		resp, _ := NewOKResponse(IdentityData{Found: false})
		return resp
	}

	resp, _ := NewOKResponse(IdentityData{Found: true, Identity: &id})
	return resp
}

func (s *Server) handleGetVideoPath(payload json.RawMessage) *Response {
	var p VideoPathPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid video path payload: %v", err))
	}

	contentType := resolve.ContentType(p.ContentType)
	if !contentType.Valid() {
		return NewErrorResponse(fmt.Sprintf("Unknown content type: %q", p.ContentType))
	}
	if p.Variant < 0 {
		return NewErrorResponse("variant must not be negative")
	}

	id, ok := s.reg.Lookup(registry.SurfaceID(p.SurfaceID))
	if !ok {
		resp, _ := NewOKResponse(VideoPathData{Found: false})
		return resp
	}

	s.cfgMu.RLock()
	basePath := s.cfg.BasePath
	table := s.cfg.VideoFolders
	s.cfgMu.RUnlock()

	if _, hit := resolve.Lookup(id, table); !hit {
		metrics.ResolverFallbackTotal.WithLabelValues("video").Inc()
	}
	folder := resolve.Folder(id, table)

	path, ok := resolve.AssetPath(basePath, folder, resolve.Request{Type: contentType, Variant: p.Variant})
	if !ok {
		metrics.AssetMissTotal.Inc()
		resp, _ := NewOKResponse(VideoPathData{Found: false})
		return resp
	}

	resp, _ := NewOKResponse(VideoPathData{Found: true, Path: path})
	return resp
}

func (s *Server) handleGetAudioDevice(payload json.RawMessage) *Response {
	var p SurfacePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid audio payload: %v", err))
	}

	id, ok := s.reg.Lookup(registry.SurfaceID(p.SurfaceID))
	if !ok {
		resp, _ := NewOKResponse(AudioDeviceData{Found: false})
		return resp
	}

	s.cfgMu.RLock()
	table := s.cfg.AudioDevices
	s.cfgMu.RUnlock()

	sel := resolve.AudioDevice(id, table)
	if sel.Auto {
		metrics.ResolverFallbackTotal.WithLabelValues("audio").Inc()
	}

	resp, _ := NewOKResponse(AudioDeviceData{
		Found:  true,
		Device: sel.String(),
		Auto:   sel.Auto,
		Label:  sel.Label,
	})
	return resp
}

func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	newCfg, err := config.LoadFromPath(s.configPath)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	// Tables are swapped wholesale; the registry is untouched, since
	// surface bindings are process-lifetime state.
	s.cfgMu.Lock()
	s.cfg = newCfg
	s.cfgMu.Unlock()

	log.Println("IPC: Config reloaded successfully")

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// GetConfig returns the current config (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}
