package drill

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// verifyResults checks the service counters moved by exactly what was played.
func verifyResults(r *Report) error {
	if r.Failed > 0 {
		return fmt.Errorf("%d prompts failed", r.Failed)
	}
	hits := uint64(r.Planned[ActionHit] + r.Planned[ActionHitTwice])
	checks := []struct {
		name          string
		before, after uint64
		want          uint64
	}{
		{"started", r.Before.Started, r.After.Started, uint64(r.Started)},
		{"succeeded", r.Before.Succeeded, r.After.Succeeded, hits},
		{"consumed", r.Before.Consumed, r.After.Consumed, hits},
		{"cancelled", r.Before.Cancelled, r.After.Cancelled, uint64(r.Planned[ActionCancel])},
		{"timed_out", r.Before.TimedOut, r.After.TimedOut, uint64(r.Planned[ActionMiss])},
		{"wrong_input", r.Before.WrongInput, r.After.WrongInput, 0},
	}
	var problems []string
	for _, c := range checks {
		if got := c.after - c.before; got != c.want {
			problems = append(problems, fmt.Sprintf("%s moved by %d, want %d", c.name, got, c.want))
		}
	}
	if r.After.Active != r.Before.Active {
		problems = append(problems, fmt.Sprintf("active is %d, want %d", r.After.Active, r.Before.Active))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

func displayFinalStats(config *Config, r *Report) {
	var w io.Writer = os.Stdout
	if config.Out != nil {
		w = config.Out
	}
	fmt.Fprintf(w, `
Drill summary
  prompts:    %d started, %d failed
  planned:    %d hit, %d hit twice, %d cancel, %d miss
  duplicates: %d acknowledged
  service:    +%d succeeded, +%d cancelled, +%d timed out
  duration:   %s
`,
		r.Started, r.Failed,
		r.Planned[ActionHit], r.Planned[ActionHitTwice], r.Planned[ActionCancel], r.Planned[ActionMiss],
		r.Duplicates,
		r.After.Succeeded-r.Before.Succeeded, r.After.Cancelled-r.Before.Cancelled, r.After.TimedOut-r.Before.TimedOut,
		r.Duration.Round(time.Millisecond),
	)
}
