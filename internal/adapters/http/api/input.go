package api

import (
	"context"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/okian/qte/internal/domain/dedupe"
	"github.com/okian/qte/internal/domain/model"
	"github.com/okian/qte/pkg/metrics"
)

// InputHandler routes key presses into the session.
type InputHandler struct {
	sess    Session
	deduper dedupe.Deduper
	limiter *rate.Limiter
}

// NewInputHandler creates a new input handler.
func NewInputHandler(sess Session, deduper dedupe.Deduper, limiter *rate.Limiter) *InputHandler {
	return &InputHandler{sess: sess, deduper: deduper, limiter: limiter}
}

// inputRequest is one key press. PressID, when set, makes retries idempotent.
type inputRequest struct {
	Key     string `json:"key"`
	PressID string `json:"press_id,omitempty"`
}

type inputResponse struct {
	Key       string `json:"key"`
	PressID   string `json:"press_id,omitempty"`
	Consumed  bool   `json:"consumed"`
	Duplicate bool   `json:"duplicate"`
}

// HandlePress handles POST /input.
func (h *InputHandler) HandlePress(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := decodeJSON(r, "input", &req); err != nil {
		writeFailure(w, err)
		return
	}
	resp, err := h.press(r.Context(), req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *InputHandler) press(ctx context.Context, req inputRequest) (inputResponse, error) {
	key := model.NormalizeKey(req.Key)
	if !key.Valid() {
		return inputResponse{}, NewKind("input", ErrBadRequest)
	}
	if h.limiter != nil && !h.limiter.Allow() {
		metrics.RecordInputRateLimited()
		return inputResponse{}, NewKind("input", ErrRateLimited)
	}
	resp := inputResponse{Key: string(key), PressID: req.PressID}
	if req.PressID != "" && h.deduper.SeenAndRecord(ctx, req.PressID) {
		metrics.RecordInputDuplicate()
		resp.Duplicate = true
		return resp, nil
	}
	consumed, err := h.sess.PressKey(ctx, key)
	if err != nil {
		// The press never reached the dispatcher; let a retry through.
		if req.PressID != "" {
			h.deduper.Unrecord(ctx, req.PressID)
		}
		return inputResponse{}, Wrap("input", err)
	}
	resp.Consumed = consumed
	return resp, nil
}
