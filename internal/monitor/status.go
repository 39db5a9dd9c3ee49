package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/tm-mech/diy-tensile-tester/internal/link"
	"github.com/tm-mech/diy-tensile-tester/internal/sample"
)

// Status is the live acquisition snapshot served to clients.
type Status struct {
	Samples int           `json:"samples"`
	Latest  *LatestSample `json:"latest,omitempty"`
	Link    link.Stats    `json:"link"`
}

// LatestSample is the most recent reading, trimmed to what a live view needs.
type LatestSample struct {
	TimeS          float64 `json:"time_s"`
	DisplacementMM float64 `json:"displacement_mm"`
	ForceN         float64 `json:"force_n"`
	StepLoss       int     `json:"step_loss"`
}

// StatsFunc supplies the current link reader counters.
type StatsFunc func() link.Stats

// Server serves /api/v1/status, /metrics and /ws/live.
type Server struct {
	store *sample.Store
	stats StatsFunc
	hub   *Hub
	mux   *http.ServeMux
}

// New creates a Server reading from store and stats. The hub broadcasts
// every interval once Run is called.
func New(store *sample.Store, stats StatsFunc, interval time.Duration) *Server {
	s := &Server{
		store: store,
		stats: stats,
		mux:   http.NewServeMux(),
	}
	s.hub = newHub(s.buildStatus, interval)

	s.mux.HandleFunc("/api/v1/status", s.status)
	s.mux.HandleFunc("/metrics", s.metrics)
	s.mux.Handle("/ws/live", s.hub)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Run starts the hub broadcast loop and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) {
	s.hub.run(ctx)
}

// buildStatus assembles the current Status from one store snapshot.
func (s *Server) buildStatus() Status {
	st := Status{
		Samples: s.store.Count(),
		Link:    s.stats(),
	}
	if last, ok := s.store.Last(); ok {
		st.Latest = &LatestSample{
			TimeS:          last.TimeS,
			DisplacementMM: last.DisplacementMM,
			ForceN:         last.ForceN,
			StepLoss:       last.StepLoss,
		}
	}
	return st
}

// status returns GET /api/v1/status.
func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, s.buildStatus())
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, map[string]string{"error": msg})
}
