package httpadapter

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"videoab/internal/core/domain"
)

// handleAnalytics returns the bucketed series of an experiment. It accepts
// either `timeRange` (1h, 1d, 1w, 1m or all; default 1w) or an explicit
// `from`/`to` pair of RFC3339 timestamps.
func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	q, err := parseRangeQuery(r)
	if err != nil {
		h.writeError(w, r, "analytics", err)
		return
	}
	series, err := h.analytics.Query(r.Context(), chi.URLParam(r, "id"), q)
	if err != nil {
		h.writeError(w, r, "analytics", err)
		return
	}
	writeJSON(w, http.StatusOK, toSeriesResp(series))
}

func (h *Handler) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	v, err := h.analytics.Recommend(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "recommendation", err)
		return
	}
	writeJSON(w, http.StatusOK, toVerdictResp(*v))
}

// handleAnalysis returns the verdict with generated prose. When the text
// generator fails the response is still 200 with proseStatus
// "unavailable".
func (h *Handler) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	res, err := h.analytics.Analyze(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "analysis", err)
		return
	}
	writeJSON(w, http.StatusOK, toAnalysisResp(res))
}

func parseRangeQuery(r *http.Request) (domain.RangeQuery, error) {
	var (
		values  = r.URL.Query()
		fromStr = values.Get("from")
		toStr   = values.Get("to")
		q       domain.RangeQuery
		verr    = &domain.ValidationError{}
	)
	if fromStr != "" || toStr != "" {
		if tr := values.Get("timeRange"); tr != "" && tr != string(domain.RangeCustom) {
			verr.Add("timeRange", "cannot be combined with from and to")
		}
		q.Range = domain.RangeCustom
		var err error
		if fromStr != "" {
			if q.From, err = time.Parse(time.RFC3339, fromStr); err != nil {
				verr.Add("from", "must be an RFC3339 timestamp")
			}
		}
		if toStr != "" {
			if q.To, err = time.Parse(time.RFC3339, toStr); err != nil {
				verr.Add("to", "must be an RFC3339 timestamp")
			}
		}
		return q, verr.Err()
	}
	tr, err := domain.ParseTimeRange(values.Get("timeRange"))
	if err != nil {
		verr.Add("timeRange", "must be one of 1h, 1d, 1w, 1m or all")
		return q, verr
	}
	q.Range = tr
	return q, nil
}
