package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"Prisme/internal/analysis"
	"Prisme/internal/model"
)

// ETFView is the per-ETF payload of /api/etfs.
type ETFView struct {
	ETF        string                  `json:"etf"`
	Descriptor model.ETFDescriptor     `json:"descriptor"`
	Indicators model.IndicatorSnapshot `json:"indicators"`
	Risk       model.RiskAssessment    `json:"risk"`
}

// result writes 503 and returns nil until a first analysis has completed.
func (s *Server) result(w http.ResponseWriter) *analysis.Result {
	res := s.latest.Get()
	if res == nil || res.Report == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeNotReady, "no analysis available yet")
		return nil
	}
	return res
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	res := s.latest.Get()
	if res == nil || res.Report == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"status": "waiting"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"run_id":       res.Report.RunID,
		"generated_at": res.Report.GeneratedAt,
		"horizon":      res.Report.Horizon,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if res := s.result(w); res != nil {
		respondJSON(w, http.StatusOK, res.Report)
	}
}

func (s *Server) handleListETFs(w http.ResponseWriter, r *http.Request) {
	res := s.result(w)
	if res == nil {
		return
	}
	views := make([]ETFView, 0, len(res.Report.Snapshots))
	for _, snap := range res.Report.Snapshots {
		views = append(views, etfView(res.Report, snap))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"etfs":         views,
		"excluded":     res.Report.Excluded,
		"not_compared": res.Report.ComparisonExcluded,
	})
}

func (s *Server) handleGetETF(w http.ResponseWriter, r *http.Request) {
	res := s.result(w)
	if res == nil {
		return
	}
	id := mux.Vars(r)["id"]
	snap, ok := res.Report.Snapshot(id)
	if !ok {
		if reason, excluded := res.Report.Excluded[id]; excluded {
			respondError(w, http.StatusNotFound, ErrCodeNotFound, "etf excluded from analysis: "+reason)
			return
		}
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "unknown etf "+id)
		return
	}
	respondJSON(w, http.StatusOK, etfView(res.Report, snap))
}

func (s *Server) handleNormalized(w http.ResponseWriter, r *http.Request) {
	res := s.result(w)
	if res == nil {
		return
	}
	h := res.Report.Horizon
	if v := r.URL.Query().Get("horizon"); v != "" {
		parsed, err := model.ParseHorizon(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error())
			return
		}
		h = parsed
	}

	id := mux.Vars(r)["id"]
	points, err := analysis.Normalized(res.Universe, id, h, s.now())
	if err != nil {
		if errors.Is(err, analysis.ErrUnknownETF) {
			respondError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
		respondError(w, http.StatusUnprocessableEntity, ErrCodeInvalidInput, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"etf":     id,
		"horizon": h,
		"base":    100,
		"points":  points,
	})
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	cmp, ok := s.comparison(w)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"overlap": cmp.Overlap,
		"ranking": cmp.Ranking,
	})
}

func (s *Server) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	cmp, ok := s.comparison(w)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, cmp.Correlation)
}

func (s *Server) comparison(w http.ResponseWriter) (*model.Comparison, bool) {
	res := s.result(w)
	if res == nil {
		return nil, false
	}
	if res.Report.Comparison == nil {
		respondError(w, http.StatusUnprocessableEntity, ErrCodeComparisonUnavailable, res.Report.ComparisonError)
		return nil, false
	}
	return res.Report.Comparison, true
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	res := s.result(w)
	if res == nil {
		return
	}
	profile, err := model.ParseRiskProfile(mux.Vars(r)["profile"])
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error())
		return
	}
	n := s.config.Recommend
	if v := r.URL.Query().Get("n"); v != "" {
		n, err = strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "n must be a positive integer")
			return
		}
	}
	rec, err := analysis.Recommend(res.Report, profile, n)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleFamilies(w http.ResponseWriter, r *http.Request) {
	if res := s.result(w); res != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"families": res.Report.Families})
	}
}

func etfView(r *model.Report, snap model.IndicatorSnapshot) ETFView {
	d, ok := r.Descriptor(snap.ETF)
	if !ok {
		d = model.ETFDescriptor{ETF: snap.ETF}
	}
	a, _ := r.Assessment(snap.ETF)
	return ETFView{ETF: snap.ETF, Descriptor: d, Indicators: snap, Risk: a}
}
