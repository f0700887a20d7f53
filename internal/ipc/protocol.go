// Package ipc carries daemon commands over a unix socket as
// newline-delimited JSON.
package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload        CommandType = "RELOAD"
	CommandGetStatus     CommandType = "GET_STATUS"
	CommandGetScreens    CommandType = "GET_SCREENS"
	CommandSnap          CommandType = "SNAP"
	CommandListScenes    CommandType = "LIST_SCENES"
	CommandActivateScene CommandType = "ACTIVATE_SCENE"
	CommandDeleteScene   CommandType = "DELETE_SCENE"
	CommandEnableScene   CommandType = "ENABLE_SCENE"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	UptimeSeconds int64 `json:"uptime_seconds"`
	ScreenCount   int   `json:"screen_count"`
	SceneCount    int   `json:"scene_count"`
	HasPermission bool  `json:"has_permission"`
	DaemonRunning bool  `json:"daemon_running"`
}

// ScreenInfo describes one screen for GET_SCREENS
type ScreenInfo struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	UsableX      float64 `json:"usable_x"`
	UsableY      float64 `json:"usable_y"`
	UsableWidth  float64 `json:"usable_width"`
	UsableHeight float64 `json:"usable_height"`
}

// ScreensData represents the data returned by GET_SCREENS
type ScreensData struct {
	Screens []ScreenInfo `json:"screens"`
}

// SnapPayload represents the payload for SNAP
type SnapPayload struct {
	Action string `json:"action"`
}

// SceneInfo describes one scene for LIST_SCENES
type SceneInfo struct {
	Name         string `json:"name"`
	Enabled      bool   `json:"enabled"`
	DisplayCount int    `json:"display_count"`
	WindowCount  int    `json:"window_count"`
	HasShortcut  bool   `json:"has_shortcut"`
}

// ScenesData represents the data returned by LIST_SCENES
type ScenesData struct {
	Scenes []SceneInfo `json:"scenes"`
}

// ScenePayload names a scene for ACTIVATE_SCENE and DELETE_SCENE
type ScenePayload struct {
	Name string `json:"name"`
}

// EnableScenePayload toggles a scene's shortcut for ENABLE_SCENE
type EnableScenePayload struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// WindowOutcome is the per-window result of a scene activation
type WindowOutcome struct {
	AppID   string `json:"app_id"`
	Spawned bool   `json:"spawned"`
	Error   string `json:"error,omitempty"`
}

// ActivationData represents the data returned by ACTIVATE_SCENE
type ActivationData struct {
	Windows []WindowOutcome `json:"windows"`
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
