package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/lumenwall/kioskd/internal/display"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus      CommandType = "GET_STATUS"
	CommandGetDisplays    CommandType = "GET_DISPLAYS"
	CommandGetIdentity    CommandType = "GET_IDENTITY"
	CommandGetVideoPath   CommandType = "GET_VIDEO_PATH"
	CommandGetAudioDevice CommandType = "GET_AUDIO_DEVICE"
	CommandReload         CommandType = "RELOAD"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client.
//
// ERROR is reserved for malformed requests and backend failures. Not-found
// outcomes (unbound surface, absent trigger variant) travel as data inside
// an OK response, since they are expected results, not faults.
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// SurfacePayload addresses one presentation surface.
type SurfacePayload struct {
	SurfaceID int `json:"surface_id"`
}

// VideoPathPayload requests an asset path for a surface.
type VideoPathPayload struct {
	SurfaceID   int    `json:"surface_id"`
	ContentType string `json:"content_type"`      // "default" or "trigger"
	Variant     int    `json:"variant,omitempty"` // positive selects a numbered trigger asset
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	UptimeSeconds  int64  `json:"uptime_seconds"`
	SurfaceCount   int    `json:"surface_count"`
	BasePath       string `json:"base_path"`
	WatcherRunning bool   `json:"watcher_running"`
	DaemonRunning  bool   `json:"daemon_running"`
}

// DisplayInfo describes one attached display plus its identity keys.
type DisplayInfo struct {
	ID        int              `json:"id"`
	Label     string           `json:"label"`
	X         int              `json:"x"`
	Y         int              `json:"y"`
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	Primary   bool             `json:"primary"`
	RefreshHz int              `json:"refresh_hz,omitempty"`
	Identity  display.Identity `json:"identity"`
}

// DisplaysData represents the data returned by GET_DISPLAYS
type DisplaysData struct {
	Displays []DisplayInfo `json:"displays"`
}

// IdentityData represents the data returned by GET_IDENTITY. Found is false
// when the surface was never bound.
type IdentityData struct {
	Found    bool              `json:"found"`
	Identity *display.Identity `json:"identity,omitempty"`
}

// VideoPathData represents the data returned by GET_VIDEO_PATH. Found is
// false for an unbound surface or an absent variant-indexed trigger asset;
// the caller plays nothing in that case.
type VideoPathData struct {
	Found bool   `json:"found"`
	Path  string `json:"path,omitempty"`
}

// AudioDeviceData represents the data returned by GET_AUDIO_DEVICE. Auto
// signals that no table entry matched and the caller should match a device
// dynamically against Label.
type AudioDeviceData struct {
	Found  bool   `json:"found"`
	Device string `json:"device,omitempty"`
	Auto   bool   `json:"auto,omitempty"`
	Label  string `json:"label,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
