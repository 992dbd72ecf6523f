package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/okian/qte/internal/adapters/session"
	"github.com/okian/qte/internal/domain/model"
)

const maxBodyBytes = 1 << 16

// EventsHandler creates, lists and cancels quick time events.
type EventsHandler struct {
	sess      Session
	showDebug bool
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(sess Session, showDebug bool) *EventsHandler {
	return &EventsHandler{sess: sess, showDebug: showDebug}
}

// startRequest is the POST /events body. Durations are seconds.
type startRequest struct {
	Identifier      string   `json:"identifier"`
	Owner           string   `json:"owner"`
	Priority        int      `json:"priority"`
	Duration        float64  `json:"duration"`
	PerfectMin      float64  `json:"perfect_min"`
	PerfectMax      float64  `json:"perfect_max"`
	TargetKey       string   `json:"target_key"`
	TargetAction    string   `json:"target_action"`
	WrongInputFails *bool    `json:"wrong_input_fails"`
	IgnoredKeys     []string `json:"ignored_keys"`
}

func (r *startRequest) toSession() session.StartRequest {
	fails := true
	if r.WrongInputFails != nil {
		fails = *r.WrongInputFails
	}
	return session.StartRequest{
		Owner:    strings.TrimSpace(r.Owner),
		Priority: r.Priority,
		Definition: model.Definition{
			Identifier: r.Identifier,
			Settings: model.Settings{
				Duration:        seconds(r.Duration),
				PerfectRangeMin: r.PerfectMin,
				PerfectRangeMax: r.PerfectMax,
			},
			Input: model.InputSpec{
				TargetKey:       model.NormalizeKey(r.TargetKey),
				TargetAction:    model.NormalizeAction(r.TargetAction),
				WrongInputFails: fails,
				IgnoredKeys:     model.NormalizeKeys(r.IgnoredKeys),
			},
		},
	}
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(r *http.Request, op string, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

// HandleStart handles POST /events.
func (h *EventsHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(r, "start", &req); err != nil {
		writeFailure(w, err)
		return
	}
	snap, err := h.sess.Start(r.Context(), req.toSession())
	if err != nil {
		writeFailure(w, Wrap("start", err))
		return
	}
	writeJSON(w, http.StatusCreated, toEventResponse(snap, h.showDebug))
}

// HandleList handles GET /events.
func (h *EventsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.sess.Active(r.Context())
	if err != nil {
		writeFailure(w, Wrap("list", err))
		return
	}
	out := make([]eventResponse, 0, len(snaps))
	for i := range snaps {
		out = append(out, toEventResponse(snaps[i], h.showDebug))
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}

// HandleGet handles GET /events/{id}.
func (h *EventsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sess.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, Wrap("get", err))
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(snap, h.showDebug))
}

// HandleCancel handles DELETE /events/{id}.
func (h *EventsHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	if err := h.sess.Cancel(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, Wrap("cancel", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCancelAll handles DELETE /events.
func (h *EventsHandler) HandleCancelAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.sess.CancelAll(r.Context())
	if err != nil {
		writeFailure(w, Wrap("cancel all", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"cancelled": n})
}
