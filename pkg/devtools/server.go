package devtools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/go-drift/statekit/pkg/core"
)

// Server is the inspector. The element tree is only read inside the frame
// lock, so hosts that mutate the tree concurrently with requests must run
// their flushes through [Server.Frame].
type Server struct {
	registry *Registry
	logger   *zap.Logger

	frameLock sync.Mutex
	root      core.Element

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for server failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer returns an inspector over registry.
func NewServer(registry *Registry, opts ...Option) *Server {
	s := &Server{registry: registry, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = NewRegistry()
	}
	return s
}

// Registry returns the tracked containers.
func (s *Server) Registry() *Registry {
	return s.registry
}

// SetRoot sets the element tree served at /widget-tree. nil clears it.
func (s *Server) SetRoot(root core.Element) {
	s.frameLock.Lock()
	s.root = root
	s.frameLock.Unlock()
}

// Frame runs fn while holding the frame lock.
func (s *Server) Frame(fn func()) {
	s.frameLock.Lock()
	defer s.frameLock.Unlock()
	fn()
}

// Handler returns the inspector's routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", s.handleHealth)
	r.Get("/containers", s.handleContainers)
	r.Get("/containers/{name}", s.handleContainer)
	r.Get("/widget-tree", s.handleWidgetTree)
	return r
}

// Start listens on addr and serves in the background. It returns the bound
// port, which is useful when addr asks for an ephemeral one.
// Starting a running server returns its current port.
func (s *Server) Start(addr string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return s.listener.Addr().(*net.TCPAddr).Port, nil
	}

	// Bind listener first to fail fast on port conflicts
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("devtools listen: %w", err)
	}

	server := &http.Server{Handler: s.Handler()}
	s.server = server
	s.listener = listener

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.mu.Lock()
			if s.server == server {
				s.server = nil
				s.listener = nil
			}
			s.mu.Unlock()
			s.logger.Error("devtools server failed", zap.Error(err))
		}
	}()

	return listener.Addr().(*net.TCPAddr).Port, nil
}

// Stop shuts the server down. Stopping a stopped server does nothing.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleContainers(w http.ResponseWriter, r *http.Request) {
	stores := s.registry.Stores()
	resp := struct {
		Containers []ContainerInfo `json:"containers"`
	}{
		Containers: make([]ContainerInfo, 0, len(stores)),
	}
	for _, st := range stores {
		resp.Containers = append(resp.Containers, Describe(st, false))
	}
	writeJSON(w, resp)
}

func (s *Server) handleContainer(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	st, ok := s.registry.Lookup(name)
	if !ok {
		http.Error(w, fmt.Sprintf("no container %q", name), http.StatusNotFound)
		return
	}
	writeJSON(w, Describe(st, true))
}

func (s *Server) handleWidgetTree(w http.ResponseWriter, r *http.Request) {
	s.frameLock.Lock()
	root := s.root
	if root == nil {
		s.frameLock.Unlock()
		http.Error(w, "no widget tree", http.StatusServiceUnavailable)
		return
	}
	tree := serializeWidgetTree(root, 0)
	s.frameLock.Unlock()

	writeJSON(w, tree)
}

// writeJSON encodes to a buffer first so encoding errors become a 500.
func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
