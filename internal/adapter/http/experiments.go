package httpadapter

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"videoab/internal/core/domain"
	"videoab/internal/core/port"
)

// handleCreateExperiment validates and stores a draft experiment. Every
// invalid field is reported in one 400 response.
func (h *Handler) handleCreateExperiment(w http.ResponseWriter, r *http.Request) {
	var req experimentReq
	if !decodeJSON(w, r, &req) {
		return
	}
	exp, err := h.experiments.Create(r.Context(), req.config())
	if err != nil {
		h.writeError(w, r, "create experiment", err)
		return
	}
	w.Header().Set("Location", "/api/v1/experiments/"+exp.ID)
	writeJSON(w, http.StatusCreated, toExperimentResp(exp))
}

// handleListExperiments accepts optional `status` and `limit` query
// parameters.
func (h *Handler) handleListExperiments(w http.ResponseWriter, r *http.Request) {
	var (
		q   = r.URL.Query()
		req port.ListExperimentsReq
	)
	if s := q.Get("status"); s != "" {
		status := domain.Status(s)
		req.Status = &status
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			verr := &domain.ValidationError{}
			verr.Add("limit", "must be a non-negative integer")
			h.writeError(w, r, "list experiments", verr)
			return
		}
		req.Limit = n
	}
	exps, err := h.experiments.List(r.Context(), req)
	if err != nil {
		h.writeError(w, r, "list experiments", err)
		return
	}
	out := make([]experimentResp, len(exps))
	for i := range exps {
		out[i] = toExperimentResp(&exps[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"experiments": out})
}

func (h *Handler) handleGetExperiment(w http.ResponseWriter, r *http.Request) {
	exp, err := h.experiments.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "get experiment", err)
		return
	}
	writeJSON(w, http.StatusOK, toExperimentResp(exp))
}

func (h *Handler) handleUpdateExperiment(w http.ResponseWriter, r *http.Request) {
	var req experimentReq
	if !decodeJSON(w, r, &req) {
		return
	}
	exp, err := h.experiments.Update(r.Context(), chi.URLParam(r, "id"), req.config())
	if err != nil {
		h.writeError(w, r, "update experiment", err)
		return
	}
	writeJSON(w, http.StatusOK, toExperimentResp(exp))
}

func (h *Handler) handleDeleteExperiment(w http.ResponseWriter, r *http.Request) {
	if err := h.experiments.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, "delete experiment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleActivate performs the manual draft->scheduled transition. A
// rejected transition answers 409 with the current status.
func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	exp, err := h.experiments.Activate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "activate experiment", err)
		return
	}
	writeJSON(w, http.StatusOK, toExperimentResp(exp))
}

func (h *Handler) handleAttachVariants(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Variants []variantReq `json:"variants"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	variants, err := h.experiments.AttachVariants(r.Context(), chi.URLParam(r, "id"), variantSpecs(req.Variants))
	if err != nil {
		h.writeError(w, r, "attach variants", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"variants": toVariantResps(variants)})
}

func (h *Handler) handleTransitions(w http.ResponseWriter, r *http.Request) {
	facts, err := h.experiments.Transitions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "list transitions", err)
		return
	}
	out := make([]transitionResp, len(facts))
	for i, f := range facts {
		out[i] = transitionResp{From: f.From, To: f.To, At: f.At}
	}
	writeJSON(w, http.StatusOK, map[string]any{"transitions": out})
}
