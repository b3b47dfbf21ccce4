package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"videoab/internal/core/domain"
	"videoab/internal/core/port"
)

// handleRecordEvent ingests one view or conversion. A new event answers
// 202; a resubmitted client event id answers 200 with duplicate set.
func (h *Handler) handleRecordEvent(w http.ResponseWriter, r *http.Request) {
	var req eventReq
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	rec := req.record(id)
	if rec.ExperimentID != id {
		h.writeError(w, r, "record event", mismatchError())
		return
	}
	ack, err := h.events.Record(r.Context(), rec)
	if err != nil {
		h.writeError(w, r, "record event", err)
		return
	}
	status := http.StatusAccepted
	if ack.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, toAckResp(ack))
}

// handleRecordBatch ingests several events of one experiment. Each event
// succeeds or fails on its own; the response lists the outcome per index.
func (h *Handler) handleRecordBatch(w http.ResponseWriter, r *http.Request) {
	var req batchReq
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	reqs := make([]port.RecordEventReq, len(req.Events))
	for i, e := range req.Events {
		reqs[i] = e.record(id)
	}
	results, err := h.events.RecordBatch(r.Context(), id, reqs)
	if err != nil {
		h.writeError(w, r, "record batch", err)
		return
	}

	out := batchResp{Results: make([]batchItemResp, len(results))}
	for i, res := range results {
		item := batchItemResp{Index: i}
		switch {
		case res.Err != nil:
			_, body := errorResponse(res.Err)
			item.Outcome = "rejected"
			item.Error = &body
			out.Rejected++
		case res.Ack.Duplicate:
			ack := toAckResp(res.Ack)
			item.Outcome, item.Ack = "duplicate", &ack
			out.Duplicates++
		default:
			ack := toAckResp(res.Ack)
			item.Outcome, item.Ack = "accepted", &ack
			out.Accepted++
		}
		out.Results[i] = item
	}
	writeJSON(w, http.StatusOK, out)
}

func toAckResp(a *port.RecordAck) ackResp {
	return ackResp{EventID: a.EventID, Duplicate: a.Duplicate, ReceivedAt: a.ReceivedAt}
}

func mismatchError() error {
	verr := &domain.ValidationError{}
	verr.Add("experimentId", "does not match the experiment in the path")
	return verr
}
