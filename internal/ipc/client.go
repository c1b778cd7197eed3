package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/lumenwall/kioskd/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}

	return &status, nil
}

// GetDisplays retrieves live display information from the daemon's backend.
func (c *Client) GetDisplays() (*DisplaysData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetDisplays})
	if err != nil {
		return nil, err
	}

	var displays DisplaysData
	if err := json.Unmarshal(resp.Data, &displays); err != nil {
		return nil, fmt.Errorf("failed to parse displays data: %w", err)
	}

	return &displays, nil
}

// GetIdentity retrieves the identity bound to a surface.
func (c *Client) GetIdentity(surfaceID int) (*IdentityData, error) {
	payload, err := json.Marshal(SurfacePayload{SurfaceID: surfaceID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal identity payload: %w", err)
	}

	resp, err := c.sendRequest(&Request{Command: CommandGetIdentity, Payload: payload})
	if err != nil {
		return nil, err
	}

	var data IdentityData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse identity data: %w", err)
	}

	return &data, nil
}

// GetVideoPath resolves the asset path for a surface. variant 0 requests the
// unnumbered shape.
func (c *Client) GetVideoPath(surfaceID int, contentType string, variant int) (*VideoPathData, error) {
	payload, err := json.Marshal(VideoPathPayload{
		SurfaceID:   surfaceID,
		ContentType: contentType,
		Variant:     variant,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal video path payload: %w", err)
	}

	resp, err := c.sendRequest(&Request{Command: CommandGetVideoPath, Payload: payload})
	if err != nil {
		return nil, err
	}

	var data VideoPathData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse video path data: %w", err)
	}

	return &data, nil
}

// GetAudioDevice resolves the audio output device for a surface.
func (c *Client) GetAudioDevice(surfaceID int) (*AudioDeviceData, error) {
	payload, err := json.Marshal(SurfacePayload{SurfaceID: surfaceID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audio payload: %w", err)
	}

	resp, err := c.sendRequest(&Request{Command: CommandGetAudioDevice, Payload: payload})
	if err != nil {
		return nil, err
	}

	var data AudioDeviceData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse audio device data: %w", err)
	}

	return &data, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	_, err := c.sendRequest(&Request{Command: CommandReload})
	return err
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
