// Package server runs the preview HTTP server: it serves the most recently
// built artifact and rebuilds it on a cron schedule and on source changes.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"sitepack/internal/build"
	"sitepack/internal/log"
)

// debounceDelay coalesces bursts of filesystem events (editors typically
// emit several per save) into a single rebuild.
const debounceDelay = 300 * time.Millisecond

// Server serves the artifact and owns the rebuild triggers.
type Server struct {
	opts build.Options
	mux  *http.ServeMux

	// current is the last successful build, swapped whole under mu.
	// A failed rebuild leaves it untouched.
	mu      sync.RWMutex
	current *build.Result
}

// New constructs a Server for the given build options.
func New(opts build.Options) *Server {
	s := &Server{
		opts: opts,
		mux:  http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Rebuild runs the full pipeline (including the artifact write) and swaps in
// the result. On failure the previous artifact keeps serving.
func (s *Server) Rebuild() error {
	res, err := build.Run(s.opts)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = res
	s.mu.Unlock()

	log.Info("preview rebuilt",
		"path", res.Summary.Path,
		"size_kb", res.Summary.SizeKB,
		"events", res.Summary.EventCount,
	)
	return nil
}

// Run builds once eagerly (a startup failure is fatal), then serves until
// ctx is cancelled. Rebuild triggers: the configured cron schedule and,
// when watch is enabled, filesystem change notifications on source files.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Rebuild(); err != nil {
		return err
	}

	serveCfg := s.opts.Config.Serve

	if serveCfg.Refresh != "" {
		c := cron.New()
		if _, err := c.AddFunc(serveCfg.Refresh, func() {
			if err := s.Rebuild(); err != nil {
				log.Error("scheduled rebuild failed; keeping previous artifact", err)
			}
		}); err != nil {
			return err
		}
		c.Start()
		defer c.Stop()
		log.Info("rebuild schedule active", "cron", serveCfg.Refresh)
	}

	if serveCfg.Watch {
		stop, err := s.watch(ctx)
		if err != nil {
			// Watching is a convenience; the cron trigger still works.
			log.Error("file watch unavailable", err)
		} else {
			defer stop()
		}
	}

	httpServer := &http.Server{
		Addr:    serveCfg.Listen,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("preview server listening", "listen", "http://"+serveCfg.Listen)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// watch registers the parent directories of every source file and debounces
// change events into rebuilds. Directories rather than files are watched so
// editor rename-on-save does not drop the watch.
func (s *Server) watch(ctx context.Context) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dirs := make(map[string]struct{})
	add := func(path string) {
		if path == "" {
			return
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.opts.BaseDir, path)
		}
		dirs[filepath.Dir(path)] = struct{}{}
	}

	cfg := s.opts.Config
	for _, m := range cfg.Assets {
		add(m.Path)
	}
	add(cfg.Favicon)
	add(cfg.Data.PreviewConfig)
	add(cfg.Data.ProductionConfig)
	add(cfg.Data.Events)
	add(cfg.Data.DemoEvents)
	add(cfg.Data.ContentDefault.Path)
	add(cfg.Data.ContentSecondary.Path)

	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			log.Error("cannot watch directory", err, "dir", dir)
		}
	}

	go func() {
		var timer *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				log.Debug("source changed", "path", ev.Name, "op", ev.Op.String())
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounceDelay, func() {
					if err := s.Rebuild(); err != nil {
						log.Error("watch rebuild failed; keeping previous artifact", err)
					}
				})
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error("watch error", werr)
			}
		}
	}()

	log.Info("watching source files", "dirs", len(dirs))
	return func() { watcher.Close() }, nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/events", s.handleEvents)
	s.mux.HandleFunc("/", s.handleArtifact)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleArtifact serves the current artifact document.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}

	s.mu.RLock()
	cur := s.current
	s.mu.RUnlock()

	if cur == nil {
		writeError(w, http.StatusServiceUnavailable, "no artifact built yet")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(cur.Artifact.HTML)
}

// handleEvents exposes the embedded post-merge record list, mirroring the
// shape the shim serves inside the page.
func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	cur := s.current
	s.mu.RUnlock()

	if cur == nil {
		writeError(w, http.StatusServiceUnavailable, "no artifact built yet")
		return
	}

	type eventsResponse struct {
		Events []json.RawMessage `json:"events"`
		Mode   string            `json:"mode"`
	}
	writeJSON(w, http.StatusOK, eventsResponse{
		Events: cur.Inputs.Events,
		Mode:   cur.Profile.Token,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
