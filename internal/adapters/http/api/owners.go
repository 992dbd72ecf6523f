package api

import (
	"net/http"
	"strings"
)

// OwnersHandler tears down owners and their pending events.
type OwnersHandler struct {
	sess Session
}

// NewOwnersHandler creates a new owners handler.
func NewOwnersHandler(sess Session) *OwnersHandler {
	return &OwnersHandler{sess: sess}
}

// HandleDestroy handles DELETE /owners/{name}.
func (h *OwnersHandler) HandleDestroy(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		writeFailure(w, NewKind("destroy owner", ErrBadRequest))
		return
	}
	n, err := h.sess.DestroyOwner(r.Context(), name)
	if err != nil {
		writeFailure(w, Wrap("destroy owner", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"owner": name, "cancelled": n})
}
