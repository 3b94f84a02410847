// Package api exposes the settings surface consumed by the mobile UI as a
// JSON-RPC 2.0 endpoint.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/ablomov/remindd/internal/domain"
	"github.com/ablomov/remindd/internal/scheduler"
)

// Custom JSON-RPC error codes for scheduling operations.
const (
	codeInvalidPreferences = jrpc2.Code(-32001)
	codeStorageUnavailable = jrpc2.Code(-32002)
	codePermissionDenied   = jrpc2.Code(-32003)
	codeInvalidParams      = jrpc2.Code(-32602)
)

// QuietHoursDTO is the wire form of a quiet-hours window.
type QuietHoursDTO struct {
	Start string `json:"start"` // "22:00"
	End   string `json:"end"`   // "06:00"
}

// PreferencesDTO is the wire form of a preference snapshot.
type PreferencesDTO struct {
	Enabled        []string          `json:"enabled"`
	PreferredTimes map[string]string `json:"preferredTimes"`
	QuietHours     *QuietHoursDTO    `json:"quietHours,omitempty"`
	Timezone       string            `json:"timezone"`
}

// VersionResult is the response for system.getVersion.
type VersionResult struct {
	Version string `json:"version"`
}

// EmptyResult is a placeholder for methods that return no data.
type EmptyResult struct{}

// Server bridges JSON-RPC methods onto the scheduler.
type Server struct {
	sched   *scheduler.Scheduler
	version string
	bridge  jhttp.Bridge
}

// NewServer creates a Server with its method handlers and HTTP bridge.
func NewServer(sched *scheduler.Scheduler, version string) *Server {
	s := &Server{sched: sched, version: version}
	methods := handler.Map{
		"system.getVersion":  handler.New(s.systemGetVersion),
		"preferences.get":    handler.New(s.preferencesGet),
		"preferences.update": handler.New(s.preferencesUpdate),
		"schedule.refresh":   handler.New(s.scheduleRefresh),
		"schedule.cancelAll": handler.New(s.scheduleCancelAll),
	}
	s.bridge = jhttp.NewBridge(methods, nil)
	return s
}

// Handler returns the HTTP handler serving the JSON-RPC endpoint.
func (s *Server) Handler() http.Handler { return s.bridge }

// Close shuts down the bridge.
func (s *Server) Close() error { return s.bridge.Close() }

func (s *Server) systemGetVersion(_ context.Context) (*VersionResult, error) {
	return &VersionResult{Version: s.version}, nil
}

func (s *Server) preferencesGet(_ context.Context) (*PreferencesDTO, error) {
	dto := toDTO(s.sched.GetPreferences())
	return &dto, nil
}

func (s *Server) preferencesUpdate(ctx context.Context, p *PreferencesDTO) (*EmptyResult, error) {
	current := s.sched.GetPreferences()
	prefs, err := fromDTO(*p, current.UserID)
	if err != nil {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: err.Error()}
	}
	if err := s.sched.UpdatePreferences(ctx, prefs); err != nil {
		return nil, rpcError(err)
	}
	return &EmptyResult{}, nil
}

func (s *Server) scheduleRefresh(ctx context.Context) (*EmptyResult, error) {
	if err := s.sched.Refresh(ctx); err != nil {
		return nil, rpcError(err)
	}
	return &EmptyResult{}, nil
}

func (s *Server) scheduleCancelAll(ctx context.Context) (*EmptyResult, error) {
	if err := s.sched.CancelAll(ctx); err != nil {
		return nil, rpcError(err)
	}
	return &EmptyResult{}, nil
}

// rpcError maps domain errors to JSON-RPC error codes.
func rpcError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidQuietHours), errors.Is(err, domain.ErrInvalidPreferences):
		return &jrpc2.Error{Code: codeInvalidPreferences, Message: err.Error()}
	case errors.Is(err, domain.ErrStorageUnavailable):
		return &jrpc2.Error{Code: codeStorageUnavailable, Message: err.Error()}
	case errors.Is(err, domain.ErrPermissionDenied):
		return &jrpc2.Error{Code: codePermissionDenied, Message: err.Error()}
	}
	return err
}
