package httpadapter

import (
	"net/http"

	"videoab/internal/core/domain"
)

// handleRequestUpload hands out a presigned upload slot. The client PUTs
// the file to uploadUrl and attaches locator to a variant afterwards.
func (h *Handler) handleRequestUpload(w http.ResponseWriter, r *http.Request) {
	var req uploadReq
	if !decodeJSON(w, r, &req) {
		return
	}
	grant, err := h.uploads.RequestUpload(r.Context(), domain.UploadRequest(req))
	if err != nil {
		h.writeError(w, r, "request upload", err)
		return
	}
	writeJSON(w, http.StatusCreated, uploadResp(*grant))
}
