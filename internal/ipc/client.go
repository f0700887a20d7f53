package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/tachyon-app/tachyon/internal/runtimepath"
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
		timeout:    30 * time.Second,
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

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	req := &Request{
		Command: CommandReload,
	}

	_, err := c.sendRequest(req)
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	req := &Request{
		Command: CommandGetStatus,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}

	return &status, nil
}

// GetScreens retrieves screen information
func (c *Client) GetScreens() (*ScreensData, error) {
	req := &Request{
		Command: CommandGetScreens,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	var screens ScreensData
	if err := json.Unmarshal(resp.Data, &screens); err != nil {
		return nil, fmt.Errorf("failed to parse screens data: %w", err)
	}

	return &screens, nil
}

// Snap executes a positioning action against the frontmost window
func (c *Client) Snap(action string) error {
	payload, err := json.Marshal(SnapPayload{Action: action})
	if err != nil {
		return fmt.Errorf("failed to marshal snap payload: %w", err)
	}

	req := &Request{
		Command: CommandSnap,
		Payload: payload,
	}

	_, err = c.sendRequest(req)
	return err
}

// ListScenes retrieves the saved scenes
func (c *Client) ListScenes() (*ScenesData, error) {
	req := &Request{
		Command: CommandListScenes,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	var scenes ScenesData
	if err := json.Unmarshal(resp.Data, &scenes); err != nil {
		return nil, fmt.Errorf("failed to parse scenes data: %w", err)
	}

	return &scenes, nil
}

// ActivateScene restores a scene's window layout
func (c *Client) ActivateScene(name string) (*ActivationData, error) {
	payload, err := json.Marshal(ScenePayload{Name: name})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scene payload: %w", err)
	}

	req := &Request{
		Command: CommandActivateScene,
		Payload: payload,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	var data ActivationData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse activation data: %w", err)
	}

	return &data, nil
}

// DeleteScene removes a scene and its windows
func (c *Client) DeleteScene(name string) error {
	payload, err := json.Marshal(ScenePayload{Name: name})
	if err != nil {
		return fmt.Errorf("failed to marshal scene payload: %w", err)
	}

	req := &Request{
		Command: CommandDeleteScene,
		Payload: payload,
	}

	_, err = c.sendRequest(req)
	return err
}

// EnableScene toggles a scene's shortcut registration
func (c *Client) EnableScene(name string, enabled bool) error {
	payload, err := json.Marshal(EnableScenePayload{Name: name, Enabled: enabled})
	if err != nil {
		return fmt.Errorf("failed to marshal scene payload: %w", err)
	}

	req := &Request{
		Command: CommandEnableScene,
		Payload: payload,
	}

	_, err = c.sendRequest(req)
	return err
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
