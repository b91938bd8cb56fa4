// Package api serves a finished output directory over HTTP: run listings,
// manifests, stored panels and the raw artifacts.
package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/core"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/run"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/internal"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/internal/errors"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/ports"
)

// Server exposes an output directory and, optionally, the panel database
type Server struct {
	router *chi.Mux
	dir    string
	repo   ports.PanelRepository // optional
	logger *internal.Logger
}

// NewServer builds the router for dir; repo may be nil
func NewServer(dir string, repo ports.PanelRepository, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{router: chi.NewRouter(), dir: dir, repo: repo, logger: logger}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.router.Get("/runs", s.handleListRuns)
	s.router.Get("/runs/{runID}", s.handleManifest)
	s.router.Get("/runs/{runID}/records", s.handleRecords)

	files := http.StripPrefix("/files/", http.FileServer(http.Dir(s.dir)))
	s.router.Handle("/files/*", files)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start listens on addr until the server fails
func (s *Server) Start(addr string) error {
	s.logger.Info("Serving %s on %s", s.dir, addr)
	return http.ListenAndServe(addr, s)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.repo != nil {
		runs, err := s.repo.ListRuns(r.Context(), 0)
		if err != nil {
			s.logger.Error("List runs: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to list runs")
			return
		}
		writeJSON(w, http.StatusOK, runs)
		return
	}

	manifests, err := s.manifests()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	runs := make([]ports.RunSummary, 0, len(manifests))
	for _, m := range manifests {
		runs = append(runs, ports.RunSummary{
			RunID:         m.RunID,
			Command:       m.Command,
			ConfigHash:    m.ConfigHash,
			IncludedCount: len(m.Included),
			SkippedCount:  len(m.Skipped),
			CreatedAt:     m.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	runID, err := core.ParseRunID(chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f, err := os.Open(filepath.Join(s.dir, "manifest-"+runID.String()+".yaml"))
	if err != nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	defer f.Close()

	m, err := run.Decode(f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeError(w, http.StatusNotFound, "no panel database configured")
		return
	}
	runID, err := core.ParseRunID(chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, err := s.repo.LoadRecords(r.Context(), runID)
	if errors.HasCode(err, errors.CodeNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("Load records for %s: %v", runID, err)
		writeError(w, http.StatusInternalServerError, "failed to load records")
		return
	}

	type row struct {
		Time    int      `json:"time"`
		Subject string   `json:"subject"`
		Group   string   `json:"group"`
		Event   string   `json:"event,omitempty"`
		Value   *float64 `json:"value"`
	}
	out := make([]row, len(records))
	for i, rec := range records {
		out[i] = row{Time: rec.Time, Subject: rec.Subject.String(), Group: string(rec.Group), Event: rec.Event}
		if !rec.Missing() {
			v := rec.Value
			out[i].Value = &v
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// manifests decodes every manifest in the output directory, newest first
func (s *Server) manifests() ([]*run.RunManifest, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "manifest-*.yaml"))
	if err != nil {
		return nil, err
	}
	var out []*run.RunManifest
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		m, err := run.Decode(f)
		f.Close()
		if err != nil {
			s.logger.Warn("Skipping manifest %s: %v", p, err)
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
