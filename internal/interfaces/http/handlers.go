package http

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"

	"github.com/kmorita/cotscan/internal/domain/cot"
	"github.com/kmorita/cotscan/internal/domain/fxpair"
	"github.com/kmorita/cotscan/internal/domain/scanner"
	"github.com/kmorita/cotscan/internal/domain/score"
)

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
	GoVersion string    `json:"go_version"`
	Assets    int       `json:"assets"`
	Lookback  int       `json:"lookback"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		GoVersion: runtime.Version(),
		Assets:    len(s.universe),
		Lookback:  s.cfg.Lookback,
	})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	mode, err := scanner.ParseMode(mux.Vars(r)["mode"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	sortBy := scanner.SortAbsScore
	if q := r.URL.Query().Get("sort"); q != "" {
		switch scanner.SortKey(q) {
		case scanner.SortAbsScore, scanner.SortScore:
			sortBy = scanner.SortKey(q)
		default:
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown sort key %q", q))
			return
		}
	}

	start := time.Now()
	report, err := scanner.Scan(s.universe, mode, scanner.Params{
		Lookback:               s.cfg.Lookback,
		FreshnessThresholdDays: s.cfg.FreshnessThresholdDays,
		Now:                    time.Now().UTC(),
		SortBy:                 sortBy,
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.metrics.ScansTotal.WithLabelValues(string(mode)).Inc()
	s.metrics.ScanDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
	s.metrics.AssetsSkipped.WithLabelValues(string(mode)).Add(float64(len(report.Skipped)))

	s.writeJSON(w, http.StatusOK, report)
}

// PairResponse is the /pair payload: normalized ordering plus the latest
// snapshot and, when requested, the full score history.
type PairResponse struct {
	Base     string               `json:"base"`
	Quote    string               `json:"quote"`
	Ticker   string               `json:"ticker"`
	Inverted bool                 `json:"inverted"`
	Snapshot score.Snapshot       `json:"snapshot"`
	History  []score.HistoryPoint `json:"history,omitempty"`
}

func (s *Server) handlePair(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	pair, err := s.cfg.HierarchyOrDefault().Normalize(vars["base"], vars["quote"])
	if err != nil {
		var unknown *fxpair.UnknownCurrencyError
		if errors.As(err, &unknown) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	baseSeries, ok := s.universe[pair.Base]
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("no positioning data for %s", pair.Base))
		return
	}
	quoteSeries, ok := s.universe[pair.Quote]
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("no positioning data for %s", pair.Quote))
		return
	}

	snapshot, err := score.PairSnapshot(baseSeries.SpecNetSeries(), quoteSeries.SpecNetSeries(), s.cfg.Lookback)
	if err != nil {
		if errors.Is(err, cot.ErrInsufficientHistory) {
			s.writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := PairResponse{
		Base:     pair.Base,
		Quote:    pair.Quote,
		Ticker:   pair.Ticker(),
		Inverted: pair.Inverted,
		Snapshot: snapshot,
	}
	if r.URL.Query().Get("history") == "true" {
		history, err := score.PairHistory(baseSeries.SpecNetSeries(), quoteSeries.SpecNetSeries(), s.cfg.Lookback)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		resp.History = history
	}
	s.writeJSON(w, http.StatusOK, resp)
}
