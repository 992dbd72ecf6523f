package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/qte/pkg/logger"
)

const (
	writeWait  = 5 * time.Second
	ackBuffer  = 16
	frameEvent = "event"
	frameInput = "input"
	frameError = "error"
)

// StreamHandler pushes lifecycle notifications over a websocket and accepts
// key press frames on the same connection.
type StreamHandler struct {
	sess      Session
	input     *InputHandler
	showDebug bool
	upgrader  websocket.Upgrader
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(sess Session, input *InputHandler, showDebug bool) *StreamHandler {
	return &StreamHandler{
		sess:      sess,
		input:     input,
		showDebug: showDebug,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// streamFrame is every server to client message.
type streamFrame struct {
	Type         string         `json:"type"`
	Notification string         `json:"notification,omitempty"`
	At           float64        `json:"at,omitempty"`
	Event        *eventResponse `json:"event,omitempty"`
	Input        *inputResponse `json:"input,omitempty"`
	Error        *errorResponse `json:"error,omitempty"`
}

// HandleStream handles GET /stream.
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events, stop := h.sess.Subscribe()
	defer stop()

	acks := make(chan streamFrame, ackBuffer)
	readDone := make(chan struct{})
	go h.readLoop(ctx, conn, acks, readDone)

	for {
		select {
		case <-readDone:
			return
		case n, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session stopped"),
					time.Now().Add(writeWait))
				return
			}
			ev := toEventResponse(n.Snapshot, h.showDebug)
			if !h.write(ctx, conn, streamFrame{Type: frameEvent, Notification: n.Type, At: n.At.Seconds(), Event: &ev}) {
				return
			}
		case f := <-acks:
			if !h.write(ctx, conn, f) {
				return
			}
		}
	}
}

func (h *StreamHandler) write(ctx context.Context, conn *websocket.Conn, f streamFrame) bool { //nolint:gocritic // frames are small
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(f); err != nil {
		logger.Get().Debug(ctx, "stream write failed", logger.Error(err))
		return false
	}
	return true
}

// readLoop decodes key press frames until the connection closes.
func (h *StreamHandler) readLoop(ctx context.Context, conn *websocket.Conn, acks chan<- streamFrame, done chan<- struct{}) {
	defer close(done)
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req inputRequest
		var f streamFrame
		if err := json.Unmarshal(payload, &req); err != nil {
			f = errorFrame("bad_request", "malformed input frame")
		} else if resp, err := h.input.press(ctx, req); err != nil {
			f = errorFrame(codeFor(err), err.Error())
		} else {
			f = streamFrame{Type: frameInput, Input: &resp}
		}
		select {
		case acks <- f:
		case <-ctx.Done():
			return
		}
	}
}

func errorFrame(code, msg string) streamFrame {
	return streamFrame{Type: frameError, Error: &errorResponse{Code: code, Message: msg}}
}

func codeFor(err error) string {
	_, code := classify(err)
	return code
}
