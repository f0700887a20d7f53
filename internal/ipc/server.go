package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tachyon-app/tachyon/internal/backend"
	"github.com/tachyon-app/tachyon/internal/geometry"
	"github.com/tachyon-app/tachyon/internal/runtimepath"
	"github.com/tachyon-app/tachyon/internal/scene"
	"github.com/tachyon-app/tachyon/internal/snap"
)

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	listener   net.Listener
	log        zerolog.Logger

	engine    *snap.Engine
	store     *scene.Store
	activator *scene.Activator
	backend   backend.Backend
	source    backend.ScreenSource

	startTime  time.Time
	reloadChan chan struct{}

	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server. reloadChan notifies the daemon that a
// RELOAD command arrived.
func NewServer(engine *snap.Engine, store *scene.Store, activator *scene.Activator,
	b backend.Backend, source backend.ScreenSource, reloadChan chan struct{}, log zerolog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		log:        log,
		engine:     engine,
		store:      store,
		activator:  activator,
		backend:    b,
		source:     source,
		startTime:  time.Now(),
		reloadChan: reloadChan,
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

	s.log.Info().Str("socket", s.socketPath).Msg("IPC server listening")

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
			s.log.Warn().Err(err).Msg("IPC accept error")
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.log.Warn().Err(err).Msg("IPC read error")
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal response")
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.log.Warn().Err(err).Msg("failed to send response")
	}
}

func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetScreens:
		return s.handleGetScreens()
	case CommandSnap:
		return s.handleSnap(req.Payload)
	case CommandListScenes:
		return s.handleListScenes()
	case CommandActivateScene:
		return s.handleActivateScene(req.Payload)
	case CommandDeleteScene:
		return s.handleDeleteScene(req.Payload)
	case CommandEnableScene:
		return s.handleEnableScene(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleReload() *Response {
	s.log.Info().Msg("IPC: reload requested")

	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleGetStatus() *Response {
	screenCount := 0
	if list, err := s.source.Screens(); err == nil {
		screenCount = len(list)
	}
	sceneCount := 0
	if scenes, err := s.store.List(); err == nil {
		sceneCount = len(scenes)
	}

	status := StatusData{
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		ScreenCount:   screenCount,
		SceneCount:    sceneCount,
		HasPermission: s.backend.CheckPermission(),
		DaemonRunning: true,
	}

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleGetScreens() *Response {
	list, err := s.source.Screens()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get screens: %v", err))
	}

	infos := make([]ScreenInfo, len(list))
	for i, sc := range list {
		infos[i] = ScreenInfo{
			ID:           sc.ID,
			Name:         sc.Name,
			X:            sc.Frame.X,
			Y:            sc.Frame.Y,
			Width:        sc.Frame.Width,
			Height:       sc.Frame.Height,
			UsableX:      sc.Usable.X,
			UsableY:      sc.Usable.Y,
			UsableWidth:  sc.Usable.Width,
			UsableHeight: sc.Usable.Height,
		}
	}

	resp, _ := NewOKResponse(ScreensData{Screens: infos})
	return resp
}

func (s *Server) handleSnap(payload json.RawMessage) *Response {
	var req SnapPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid snap payload: %v", err))
	}

	action, err := geometry.ParseAction(req.Action)
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	s.log.Debug().Str("action", req.Action).Msg("IPC: snap")
	if err := s.engine.Execute(action); err != nil {
		return NewErrorResponse(fmt.Sprintf("Snap failed: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleListScenes() *Response {
	scenes, err := s.store.List()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to list scenes: %v", err))
	}

	infos := make([]SceneInfo, 0, len(scenes))
	for _, sc := range scenes {
		windows, err := s.store.Windows(sc.ID)
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to load scene windows: %v", err))
		}
		infos = append(infos, SceneInfo{
			Name:         sc.Name,
			Enabled:      sc.Enabled,
			DisplayCount: sc.DisplayCount,
			WindowCount:  len(windows),
			HasShortcut:  sc.Shortcut != nil,
		})
	}

	resp, _ := NewOKResponse(ScenesData{Scenes: infos})
	return resp
}

func (s *Server) handleActivateScene(payload json.RawMessage) *Response {
	var req ScenePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid scene payload: %v", err))
	}
	if req.Name == "" {
		return NewErrorResponse("name is required")
	}

	sc, err := s.store.Get(req.Name)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	windows, err := s.store.Windows(sc.ID)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to load scene windows: %v", err))
	}

	results := s.activator.Activate(context.Background(), sc, windows)

	outcomes := make([]WindowOutcome, len(results))
	for i, r := range results {
		outcomes[i] = WindowOutcome{AppID: r.Window.AppID, Spawned: r.Spawned}
		if r.Err != nil {
			outcomes[i].Error = r.Err.Error()
		}
	}

	resp, _ := NewOKResponse(ActivationData{Windows: outcomes})
	return resp
}

func (s *Server) handleDeleteScene(payload json.RawMessage) *Response {
	var req ScenePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid scene payload: %v", err))
	}
	if req.Name == "" {
		return NewErrorResponse("name is required")
	}

	if err := s.store.Delete(req.Name); err != nil {
		return NewErrorResponse(err.Error())
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleEnableScene(payload json.RawMessage) *Response {
	var req EnableScenePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid scene payload: %v", err))
	}
	if req.Name == "" {
		return NewErrorResponse("name is required")
	}

	if err := s.store.SetEnabled(req.Name, req.Enabled); err != nil {
		return NewErrorResponse(err.Error())
	}

	// Shortcut bindings follow the enabled flag; ask the daemon to rebind.
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

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
