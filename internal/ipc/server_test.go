package ipc

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/lumenwall/kioskd/internal/config"
	"github.com/lumenwall/kioskd/internal/display"
	"github.com/lumenwall/kioskd/internal/registry"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	base := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.BasePath = base
	cfg.VideoFolders = map[string]string{"111": "hallA"}
	cfg.AudioDevices = map[string]string{"111": "Speakers"}

	reg := registry.New()
	reg.Bind(1, display.Identity{StableID: "111", Resolution: "1920x1080", Position: "x0_y0", Label: "HDMI-1"})
	reg.Bind(2, display.Identity{StableID: "222", Resolution: "1920x1080", Position: "x1920_y0", Label: "HDMI-2"})

	srv, err := NewServer(cfg, filepath.Join(base, "config.yaml"), reg, nil, false)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

func command(t *testing.T, srv *Server, cmd CommandType, payload interface{}) *Response {
	t.Helper()
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		raw = data
	}
	return srv.handleCommand(&Request{Command: cmd, Payload: raw})
}

func TestGetIdentity_BoundSurface(t *testing.T) {
	srv := testServer(t)

	resp := command(t, srv, CommandGetIdentity, SurfacePayload{SurfaceID: 1})
	if resp.Status != "OK" {
		t.Fatalf("status = %q, error = %q", resp.Status, resp.Error)
	}

	var data IdentityData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !data.Found {
		t.Fatal("expected found identity")
	}
	if data.Identity.StableID != "111" {
		t.Errorf("StableID = %q, want %q", data.Identity.StableID, "111")
	}
}

func TestGetIdentity_UnboundSurfaceIsOKNotFound(t *testing.T) {
	srv := testServer(t)

	resp := command(t, srv, CommandGetIdentity, SurfacePayload{SurfaceID: 99})
	if resp.Status != "OK" {
		t.Fatalf("identity-absent must be data, not a protocol error; got %q", resp.Status)
	}

	var data IdentityData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if data.Found {
		t.Error("expected found=false for unbound surface")
	}
}

func TestGetVideoPath_DefaultContent(t *testing.T) {
	srv := testServer(t)

	resp := command(t, srv, CommandGetVideoPath, VideoPathPayload{SurfaceID: 1, ContentType: "default"})
	var data VideoPathData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !data.Found {
		t.Fatal("default content is never existence-checked")
	}
	want := filepath.Join(srv.GetConfig().BasePath, "hallA_default", "video.mp4")
	if data.Path != want {
		t.Errorf("path = %q, want %q", data.Path, want)
	}
}

func TestGetVideoPath_FolderFallbackToStableID(t *testing.T) {
	srv := testServer(t)

	// Surface 2 has no table entry; its stable id is the folder.
	resp := command(t, srv, CommandGetVideoPath, VideoPathPayload{SurfaceID: 2, ContentType: "default"})
	var data VideoPathData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := filepath.Join(srv.GetConfig().BasePath, "222_default", "video.mp4")
	if data.Path != want {
		t.Errorf("path = %q, want %q", data.Path, want)
	}
}

func TestGetVideoPath_VariantMissAndHit(t *testing.T) {
	srv := testServer(t)

	resp := command(t, srv, CommandGetVideoPath, VideoPathPayload{SurfaceID: 1, ContentType: "trigger", Variant: 3})
	var data VideoPathData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if data.Found {
		t.Fatalf("expected not-found for absent variant, got %q", data.Path)
	}

	dir := filepath.Join(srv.GetConfig().BasePath, "hallA_trigger")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "video3.mp4"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	resp = command(t, srv, CommandGetVideoPath, VideoPathPayload{SurfaceID: 1, ContentType: "trigger", Variant: 3})
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !data.Found {
		t.Fatal("expected variant asset to resolve after creation")
	}
}

func TestGetVideoPath_UnknownContentTypeIsError(t *testing.T) {
	srv := testServer(t)

	resp := command(t, srv, CommandGetVideoPath, VideoPathPayload{SurfaceID: 1, ContentType: "ambient"})
	if resp.Status != "ERROR" {
		t.Fatalf("status = %q, want ERROR for malformed request", resp.Status)
	}
}

func TestGetAudioDevice_TableHitAndAutoFallback(t *testing.T) {
	srv := testServer(t)

	resp := command(t, srv, CommandGetAudioDevice, SurfacePayload{SurfaceID: 1})
	var data AudioDeviceData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !data.Found || data.Auto {
		t.Fatalf("expected direct device for surface 1, got %+v", data)
	}
	if data.Device != "Speakers" {
		t.Errorf("device = %q, want %q", data.Device, "Speakers")
	}

	resp = command(t, srv, CommandGetAudioDevice, SurfacePayload{SurfaceID: 2})
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !data.Auto {
		t.Fatal("expected auto fallback for surface 2")
	}
	if data.Device != "AUTO:HDMI-2" {
		t.Errorf("device = %q, want %q", data.Device, "AUTO:HDMI-2")
	}
}

func TestGetStatus(t *testing.T) {
	srv := testServer(t)

	resp := command(t, srv, CommandGetStatus, nil)
	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if status.SurfaceCount != 2 {
		t.Errorf("SurfaceCount = %d, want 2", status.SurfaceCount)
	}
	if !status.DaemonRunning {
		t.Error("expected DaemonRunning")
	}
}

func TestUnknownCommand(t *testing.T) {
	srv := testServer(t)
	resp := command(t, srv, CommandType("BOGUS"), nil)
	if resp.Status != "ERROR" {
		t.Errorf("status = %q, want ERROR", resp.Status)
	}
}

func TestReload_SwapsTablesKeepsRegistry(t *testing.T) {
	srv := testServer(t)

	cfgPath := srv.configPath
	content := "base_path: " + srv.GetConfig().BasePath + "\nvideo_folders:\n  \"222\": hallB\naudio_devices: {}\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	resp := command(t, srv, CommandReload, nil)
	if resp.Status != "OK" {
		t.Fatalf("reload failed: %s", resp.Error)
	}

	if got := srv.GetConfig().VideoFolders["222"]; got != "hallB" {
		t.Errorf("VideoFolders[222] = %q, want %q after reload", got, "hallB")
	}
	if srv.reg.Len() != 2 {
		t.Errorf("registry disturbed by reload: Len = %d, want 2", srv.reg.Len())
	}
}

func TestServerClientRoundTrip(t *testing.T) {
	srv := testServer(t)
	if err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer srv.Stop()

	client := NewClient()

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.SurfaceCount != 2 {
		t.Errorf("SurfaceCount = %d, want 2", status.SurfaceCount)
	}

	identity, err := client.GetIdentity(1)
	if err != nil {
		t.Fatalf("GetIdentity: %v", err)
	}
	if !identity.Found || identity.Identity.StableID != "111" {
		t.Errorf("GetIdentity = %+v, want stable id 111", identity)
	}

	video, err := client.GetVideoPath(1, "default", 0)
	if err != nil {
		t.Fatalf("GetVideoPath: %v", err)
	}
	if !video.Found {
		t.Error("expected default video path")
	}

	audio, err := client.GetAudioDevice(2)
	if err != nil {
		t.Fatalf("GetAudioDevice: %v", err)
	}
	if !audio.Auto {
		t.Errorf("GetAudioDevice = %+v, want auto fallback", audio)
	}
}
