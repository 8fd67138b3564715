// Package api exposes the HTTP bridge: six endpoints translating JSON
// requests into the engine's four primitives. Handlers are stateless and
// re-entrant; the only shared resource is the injected engine.
package api

import (
	"net/http"
	"os"
	"path/filepath"

	goahttp "goa.design/goa/v3/http"

	"github.com/temporal-sa/interactive-research/config"
	"github.com/temporal-sa/interactive-research/engine"
)

// Server holds the handler dependencies.
type Server struct {
	engine engine.Engine
	cfg    config.Config
}

// New builds a Server around the given engine and configuration.
func New(eng engine.Engine, cfg config.Config) *Server {
	return &Server{engine: eng, cfg: cfg}
}

// Handler returns the request multiplexer with all API routes and static
// mounts configured. Middleware (logging, debug) is layered by the caller.
func (s *Server) Handler() goahttp.Muxer {
	mux := goahttp.NewMuxer()

	mux.Handle("POST", "/api/start-research", s.handleStartResearch)
	mux.Handle("GET", "/api/status/{workflow_id}", s.handleStatus)
	mux.Handle("POST", "/api/answer/{workflow_id}/{question_index}", s.handleAnswer)
	mux.Handle("GET", "/api/result/{workflow_id}", s.handleResult)
	mux.Handle("GET", "/api/stream/{workflow_id}", s.handleStream)
	mux.Handle("GET", "/api/health", s.handleHealth)

	s.mountStatic(mux)
	return mux
}

// mountStatic serves the prebuilt frontend and the generated artifacts
// directory. Missing directories are skipped; the API works without them.
func (s *Server) mountStatic(mux goahttp.Muxer) {
	if dir := s.cfg.StaticDir; dirExists(dir) {
		mux.Handle("GET", "/", servePage(filepath.Join(dir, "index.html")))
		mux.Handle("GET", "/success", servePage(filepath.Join(dir, "success.html")))
		files := http.StripPrefix("/static/", http.FileServer(http.Dir(dir)))
		mux.Handle("GET", "/static/{*filepath}", files.ServeHTTP)
	}
	if dir := s.cfg.ImagesDir; dirExists(dir) {
		images := http.StripPrefix("/temp_images/", http.FileServer(http.Dir(dir)))
		mux.Handle("GET", "/temp_images/{*filepath}", images.ServeHTTP)
	}
}

func servePage(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := os.ReadFile(path)
		if err != nil {
			respondError(w, http.StatusNotFound, "page not found")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(content)
	}
}

func dirExists(dir string) bool {
	if dir == "" {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
