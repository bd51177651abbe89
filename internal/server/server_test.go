package server

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/impostor-maker/internal/config"
)

func newTestServer() *Server {
	return New(config.Default(), nil)
}

func TestNew(t *testing.T) {
	s := newTestServer()
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.cache == nil {
		t.Fatal("New() did not initialize cache")
	}
	if s.log == nil {
		t.Fatal("New() did not default the logger")
	}
}

func TestFrameLocateRequest_Decode(t *testing.T) {
	line := `{"jsonrpc":"2.0","id":"cam-3","method":"tools/call",` +
		`"params":{"name":"frame_locate","arguments":{"path":"renders/cam3.png","thickness":6}}}`

	var req MCPRequest
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		t.Fatalf("Failed to unmarshal request: %v", err)
	}
	if req.ID != "cam-3" || req.Method != "tools/call" {
		t.Fatalf("envelope: got id %v method %s", req.ID, req.Method)
	}

	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		t.Fatalf("Failed to unmarshal params: %v", err)
	}
	if params.Name != "frame_locate" {
		t.Errorf("Name: got %s, want frame_locate", params.Name)
	}

	var args frameLocateArgs
	if err := decodeArgs(params.Arguments, &args); err != nil {
		t.Fatalf("decodeArgs failed: %v", err)
	}
	if args.Path != "renders/cam3.png" {
		t.Errorf("Path: got %s", args.Path)
	}
	if args.Thickness == nil || *args.Thickness != 6 {
		t.Errorf("Thickness: got %v, want 6", args.Thickness)
	}
	// Omitted overrides stay nil so the server configuration applies.
	if args.MaxDeviation != nil {
		t.Errorf("MaxDeviation: got %v, want nil", *args.MaxDeviation)
	}
}

func TestRunIO_FailedBuildWireFormat(t *testing.T) {
	s := newTestServer()
	dir := t.TempDir()
	missing := filepath.Join(dir, "face0.png")

	req, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      9,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name": "impostor_build",
			"arguments": map[string]interface{}{
				"paths":       []string{missing},
				"output_path": filepath.Join(dir, "sheet.png"),
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := s.RunIO(context.Background(), bytes.NewReader(append(req, '\n')), &out); err != nil {
		t.Fatalf("RunIO failed: %v", err)
	}

	line := strings.TrimSpace(out.String())
	if strings.Contains(line, `"result"`) {
		t.Errorf("error response should omit result: %s", line)
	}

	var resp MCPResponse
	if err := json.Unmarshal([]byte(line), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.ID != float64(9) {
		t.Errorf("ID: got %v (%T), want 9", resp.ID, resp.ID)
	}
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Fatalf("Error: got %+v, want code -32000", resp.Error)
	}
	if data, _ := resp.Error.Data.(string); !strings.Contains(data, "face0.png") {
		t.Errorf("Error data %q should name the failed render", data)
	}
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := newTestServer()
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "initialize",
	}

	resp := s.handleRequest(context.Background(), req)

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if resp.ID != 1 {
		t.Errorf("ID: got %v, want 1", resp.ID)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion: got %v", result["protocolVersion"])
	}

	serverInfo, ok := result["serverInfo"].(map[string]interface{})
	if !ok {
		t.Fatal("serverInfo should be a map")
	}
	if serverInfo["name"] != Name {
		t.Errorf("serverInfo.name: got %v, want %s", serverInfo["name"], Name)
	}
	if serverInfo["version"] != Version {
		t.Errorf("serverInfo.version: got %v, want %s", serverInfo["version"], Version)
	}
}

func TestHandleRequest_Ping(t *testing.T) {
	s := newTestServer()
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      "ping-1",
		Method:  "ping",
	}

	resp := s.handleRequest(context.Background(), req)

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if resp.ID != "ping-1" {
		t.Errorf("ID: got %v, want ping-1", resp.ID)
	}
}

func TestHandleRequest_ToolsList(t *testing.T) {
	s := newTestServer()
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/list",
	}

	resp := s.handleRequest(context.Background(), req)

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(toolsList) != len(GetToolDefinitions()) {
		t.Errorf("Expected %d tools, got %d", len(GetToolDefinitions()), len(toolsList))
	}
}

func TestHandleRequest_NotificationsInitialized(t *testing.T) {
	s := newTestServer()
	req := &MCPRequest{
		JSONRPC: "2.0",
		Method:  "notifications/initialized",
	}

	// Notifications don't get responses
	if resp := s.handleRequest(context.Background(), req); resp != nil {
		t.Error("notifications/initialized should return nil response")
	}
}

func TestHandleRequest_MethodNotFound(t *testing.T) {
	s := newTestServer()
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "nonexistent/method",
	}

	resp := s.handleRequest(context.Background(), req)

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error == nil {
		t.Fatal("Expected error for unknown method")
	}
	if resp.Error.Code != -32601 {
		t.Errorf("Error code: got %d, want -32601", resp.Error.Code)
	}
}

func TestRunIO(t *testing.T) {
	s := newTestServer()
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
		`not json`,
		`{"jsonrpc":"2.0","id":3,"method":"bogus"}`,
	}, "\n")
	var out bytes.Buffer

	if err := s.RunIO(context.Background(), strings.NewReader(in), &out); err != nil {
		t.Fatalf("RunIO failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected 4 responses, got %d:\n%s", len(lines), out.String())
	}

	wantCodes := []int{0, 0, -32700, -32601}
	for i, line := range lines {
		var resp MCPResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("response %d is not JSON: %v", i, err)
		}
		switch {
		case wantCodes[i] == 0 && resp.Error != nil:
			t.Errorf("response %d: unexpected error %+v", i, resp.Error)
		case wantCodes[i] != 0 && (resp.Error == nil || resp.Error.Code != wantCodes[i]):
			t.Errorf("response %d: got %+v, want code %d", i, resp.Error, wantCodes[i])
		}
	}
}

func TestRunIO_CancelledContext(t *testing.T) {
	s := newTestServer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := s.RunIO(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out)
	if err != context.Canceled {
		t.Errorf("RunIO error: got %v, want context.Canceled", err)
	}
	if out.Len() != 0 {
		t.Errorf("Expected no output, got %q", out.String())
	}
}
