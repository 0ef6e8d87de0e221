// Package server hosts the local report browser used by -serve mode.
// It lists and serves the files the runner writes to the reports
// directory; nothing here regenerates reports.
package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server serves previously generated reports over HTTP.
type Server struct {
	reportsDir string
}

// New creates a server over the given reports directory.
func New(reportsDir string) *Server {
	return &Server{reportsDir: reportsDir}
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/api/reports", s.handleList)
	r.Get("/", s.handleLatest)

	fileServer := http.StripPrefix("/reports/", http.FileServer(http.Dir(s.reportsDir)))
	r.Get("/reports/*", fileServer.ServeHTTP)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleList returns report filenames, newest first.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	names, err := s.reportNames()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": names})
}

// handleLatest redirects to the newest HTML report, or explains that
// none exist yet.
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	names, err := s.reportNames()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	for _, name := range names {
		if strings.HasSuffix(name, ".html") {
			http.Redirect(w, r, "/reports/"+name, http.StatusFound)
			return
		}
	}
	http.Error(w, "no reports generated yet", http.StatusNotFound)
}

func (s *Server) reportNames() ([]string, error) {
	entries, err := os.ReadDir(s.reportsDir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext == ".html" || ext == ".txt" {
			names = append(names, entry.Name())
		}
	}
	// Basenames embed the timestamp, so lexical descending is newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
