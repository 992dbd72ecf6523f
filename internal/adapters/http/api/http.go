// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/qte/internal/adapters/session"
	"github.com/okian/qte/internal/domain/dedupe"
	"github.com/okian/qte/internal/domain/model"
	"github.com/okian/qte/internal/domain/qte"
)

// Session is what the handlers need from the QTE session host.
type Session interface {
	Start(ctx context.Context, req session.StartRequest) (session.Snapshot, error)
	PressKey(ctx context.Context, key model.Key) (bool, error)
	Cancel(ctx context.Context, id string) error
	CancelAll(ctx context.Context) (int, error)
	DestroyOwner(ctx context.Context, name string) (int, error)
	Active(ctx context.Context) ([]session.Snapshot, error)
	Get(ctx context.Context, id string) (session.Snapshot, error)
	Stats(ctx context.Context) (session.Stats, error)
	Subscribe() (<-chan session.Notification, func())
}

// Server wires HTTP routes for the QTE API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	eventsHandler *EventsHandler
	inputHandler  *InputHandler
	ownersHandler *OwnersHandler
	streamHandler *StreamHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(sess Session, opts ...Option) *Server {
	c := serverConfig{
		deduper: nil,
		limiter: rate.NewLimiter(rate.Limit(defaultInputRate), defaultInputBurst),
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.deduper == nil {
		c.deduper = dedupe.NewInMemoryDeduper()
	}
	input := NewInputHandler(sess, c.deduper, c.limiter)
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(sess),
		eventsHandler: NewEventsHandler(sess, c.showDebug),
		inputHandler:  input,
		ownersHandler: NewOwnersHandler(sess),
		streamHandler: NewStreamHandler(sess, input, c.showDebug),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /events", MetricsMiddleware(s.eventsHandler.HandleStart, "events"))
	mux.HandleFunc("GET /events", MetricsMiddleware(s.eventsHandler.HandleList, "events"))
	mux.HandleFunc("DELETE /events", MetricsMiddleware(s.eventsHandler.HandleCancelAll, "events"))
	mux.HandleFunc("GET /events/{id}", MetricsMiddleware(s.eventsHandler.HandleGet, "event"))
	mux.HandleFunc("DELETE /events/{id}", MetricsMiddleware(s.eventsHandler.HandleCancel, "event"))
	mux.HandleFunc("POST /input", MetricsMiddleware(s.inputHandler.HandlePress, "input"))
	mux.HandleFunc("DELETE /owners/{name}", MetricsMiddleware(s.ownersHandler.HandleDestroy, "owners"))
	mux.HandleFunc("GET /stream", s.streamHandler.HandleStream)
}

// eventResponse is the JSON shape of a QTE snapshot. Times are seconds.
type eventResponse struct {
	ID         string           `json:"id"`
	Identifier string           `json:"identifier"`
	Owner      string           `json:"owner"`
	Priority   int              `json:"priority"`
	State      string           `json:"state"`
	Target     string           `json:"target"`
	Duration   float64          `json:"duration"`
	Elapsed    float64          `json:"elapsed"`
	Remaining  float64          `json:"remaining"`
	PerfectMin float64          `json:"perfect_min"`
	PerfectMax float64          `json:"perfect_max"`
	PerfectNow bool             `json:"perfect_now"`
	Outcome    *outcomeResponse `json:"outcome,omitempty"`
	Debug      string           `json:"debug,omitempty"`
}

type outcomeResponse struct {
	Success        bool    `json:"success"`
	Perfect        bool    `json:"perfect"`
	TimedOut       bool    `json:"timed_out"`
	Reason         string  `json:"reason"`
	CompletionTime float64 `json:"completion_time"`
}

func toEventResponse(s session.Snapshot, showDebug bool) eventResponse { //nolint:gocritic // hugeParam: snapshot copied by value
	r := eventResponse{
		ID:         s.ID,
		Identifier: s.Identifier,
		Owner:      s.Owner,
		Priority:   s.Priority,
		State:      s.State,
		Target:     s.Target,
		Duration:   s.Duration.Seconds(),
		Elapsed:    s.Elapsed.Seconds(),
		Remaining:  s.Remaining.Seconds(),
		PerfectMin: s.PerfectMin,
		PerfectMax: s.PerfectMax,
		PerfectNow: s.PerfectNow,
	}
	if s.Outcome != nil {
		r.Outcome = &outcomeResponse{
			Success:        s.Outcome.Success,
			Perfect:        s.Outcome.Perfect,
			TimedOut:       s.Outcome.TimedOut,
			Reason:         s.Outcome.Reason().String(),
			CompletionTime: s.Outcome.CompletionTime.Seconds(),
		}
	}
	if showDebug && s.State == qte.StateActive.String() {
		r.Debug = s.Debug
	}
	return r
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	recordErrorCode(w, code)
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// classify maps domain and session errors to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, qte.ErrInvalidDefinition):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrNoOwner):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, ErrBackpressure), errors.Is(err, session.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, session.ErrStopped),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}
