package api

import (
	"context"
	"net/http"

	"github.com/okian/qte/internal/adapters/session"
)

// StatsProvider reports session counters.
type StatsProvider interface {
	Stats(ctx context.Context) (session.Stats, error)
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

type statsResponse struct {
	Started    uint64  `json:"started"`
	Succeeded  uint64  `json:"succeeded"`
	Perfect    uint64  `json:"perfect"`
	WrongInput uint64  `json:"wrong_input"`
	TimedOut   uint64  `json:"timed_out"`
	Cancelled  uint64  `json:"cancelled"`
	Presses    uint64  `json:"presses"`
	Consumed   uint64  `json:"consumed"`
	Dropped    uint64  `json:"dropped_notifications"`
	Active     int     `json:"active"`
	Owners     int     `json:"owners"`
	QueueLen   int     `json:"queue_len"`
	Now        float64 `json:"now"`
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.statsProvider.Stats(r.Context())
	if err != nil {
		writeFailure(w, Wrap("stats", err))
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Started:    st.Started,
		Succeeded:  st.Succeeded,
		Perfect:    st.Perfect,
		WrongInput: st.WrongInput,
		TimedOut:   st.TimedOut,
		Cancelled:  st.Cancelled,
		Presses:    st.Presses,
		Consumed:   st.Consumed,
		Dropped:    st.Dropped,
		Active:     st.Active,
		Owners:     st.Owners,
		QueueLen:   st.QueueLen,
		Now:        st.Now.Seconds(),
	})
}
