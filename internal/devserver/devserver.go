// Package devserver serves a built web bundle from the working directory and
// pushes reload notifications to connected browsers. A polling watcher keeps
// an eye on the pipeline's source inputs; when they change, the bundle is
// rebuilt and every live-reload client is told to refresh.
package devserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vk/webforge/internal/ctxlog"
	"github.com/vk/webforge/internal/stale"
)

// Rebuild re-runs the pipeline; it is supplied by the caller.
type Rebuild func(ctx context.Context) error

// Server serves the bundle directory over HTTP with a /livereload endpoint.
type Server struct {
	dir      string
	watch    []string
	interval time.Duration
	rebuild  Rebuild
	hub      *hub
	upgrader websocket.Upgrader
}

// New creates a dev server rooted at dir. The watch list holds the paths
// (relative to dir) whose modification triggers a rebuild.
func New(dir string, watch []string, rebuild Rebuild) *Server {
	return &Server{
		dir:      dir,
		watch:    watch,
		interval: 500 * time.Millisecond,
		rebuild:  rebuild,
		hub:      newHub(),
	}
}

// Handler returns the HTTP handler serving the bundle and the live-reload
// websocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.dir)))
	mux.HandleFunc("/livereload", s.handleLivereload)
	return mux
}

func (s *Server) handleLivereload(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.hub.add(conn)

	// Drain (and discard) client messages so closes are noticed.
	go func() {
		defer s.hub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// ListenAndServe serves on the given port until ctx is canceled. Port 0 picks
// a free port.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	logger := ctxlog.FromContext(ctx)

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("dev server cannot listen: %w", err)
	}

	srv := &http.Server{Handler: s.Handler()}
	logger.Info("🌐 Dev server started", "address", fmt.Sprintf("http://localhost:%d/", ln.Addr().(*net.TCPAddr).Port))

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	go s.watchLoop(watchCtx)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		s.hub.closeAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// watchLoop polls the watched paths and rebuilds on change. Coordination is
// purely via the filesystem, the same way the pipeline itself works.
func (s *Server) watchLoop(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	last := s.newestWatched()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			newest := s.newestWatched()
			if !newest.After(last) {
				continue
			}
			last = newest
			logger.Info("🔁 Source change detected, rebuilding...")
			if err := s.rebuild(ctx); err != nil {
				logger.Error("Rebuild failed; keeping the previous bundle.", "error", err)
				continue
			}
			s.hub.broadcast("reload")
			logger.Info("📨 Reload pushed to clients.")
		}
	}
}

func (s *Server) newestWatched() time.Time {
	var newest time.Time
	for _, w := range s.watch {
		mtime, err := stale.NewestMTime(filepath.Join(s.dir, w))
		if err != nil {
			continue
		}
		if mtime.After(newest) {
			newest = mtime
		}
	}
	return newest
}
