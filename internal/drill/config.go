package drill

import (
	"io"
	"time"
)

// Config holds configuration for a drill run.
type Config struct {
	BaseURL        string        // Base URL of the service
	Prompts        int           // Number of QTEs to start
	Owners         int           // Distinct owners the prompts are spread over
	Workers        int           // Number of concurrent workers
	Timeout        time.Duration // HTTP request timeout
	PromptDuration time.Duration // Duration of every drill QTE
	LogFile        string        // Log file for drill output
	Verbose        bool          // Log every prompt
	Out            io.Writer     // Summary destination; nil means stdout
}

// Action is what a worker does with a started prompt.
type Action int

// Drill actions.
const (
	ActionHit Action = iota
	ActionHitTwice
	ActionCancel
	ActionMiss
	actionCount
)

func (a Action) String() string {
	switch a {
	case ActionHit:
		return "hit"
	case ActionHitTwice:
		return "hit_twice"
	case ActionCancel:
		return "cancel"
	default:
		return "miss"
	}
}

// Prompt is one planned QTE.
type Prompt struct {
	Identifier string
	Owner      string
	Priority   int
	Key        string
	PressID    string
	Action     Action
}

// startRequest mirrors the POST /events body.
type startRequest struct {
	Identifier      string  `json:"identifier"`
	Owner           string  `json:"owner"`
	Priority        int     `json:"priority"`
	Duration        float64 `json:"duration"`
	TargetKey       string  `json:"target_key"`
	WrongInputFails bool    `json:"wrong_input_fails"`
}

type eventResponse struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

type inputRequest struct {
	Key     string `json:"key"`
	PressID string `json:"press_id"`
}

type inputResponse struct {
	Consumed  bool `json:"consumed"`
	Duplicate bool `json:"duplicate"`
}

// ServiceStats mirrors the GET /stats body.
type ServiceStats struct {
	Started    uint64 `json:"started"`
	Succeeded  uint64 `json:"succeeded"`
	WrongInput uint64 `json:"wrong_input"`
	TimedOut   uint64 `json:"timed_out"`
	Cancelled  uint64 `json:"cancelled"`
	Presses    uint64 `json:"presses"`
	Consumed   uint64 `json:"consumed"`
	Active     int    `json:"active"`
}

// Report holds drill statistics.
type Report struct {
	Planned    map[Action]int
	Started    int
	Failed     int
	Duplicates int
	Before     ServiceStats
	After      ServiceStats
	StartTime  time.Time
	Duration   time.Duration
}
