package ui

import (
	"context"
	"time"

	"github.com/okian/qte/internal/domain/model"
	"github.com/okian/qte/internal/domain/qte"
	"github.com/okian/qte/internal/domain/timer"
	"github.com/okian/qte/pkg/logger"
)

const (
	playerOwner   = "player"
	promptGap     = 800 * time.Millisecond
	historyLength = 5
)

// DefaultScript is the prompt loop the player cycles through.
func DefaultScript() []model.Definition {
	return []model.Definition{
		{
			Identifier: "door",
			Input:      model.InputSpec{TargetKey: "e", WrongInputFails: true},
		},
		{
			Identifier: "dodge",
			Settings:   model.Settings{Duration: 1500 * time.Millisecond, PerfectRangeMin: 0.7, PerfectRangeMax: 1},
			Input:      model.InputSpec{TargetAction: "jump", WrongInputFails: true},
		},
		{
			Identifier: "grab",
			Settings:   model.Settings{Duration: 2500 * time.Millisecond, PerfectRangeMin: 0.4, PerfectRangeMax: 0.6},
			Input:      model.InputSpec{TargetKey: "f", IgnoredKeys: []model.Key{"e"}},
		},
		{
			Identifier: "parry",
			Settings:   model.Settings{Duration: time.Second, PerfectRangeMin: 0.5, PerfectRangeMax: 0.9},
			Input:      model.InputSpec{TargetKey: "q", WrongInputFails: true},
		},
	}
}

// Score tallies the player's results.
type Score struct {
	Hits     int
	Perfect  int
	Wrong    int
	Timeouts int
	Streak   int
	Best     int
}

// Result is one finished prompt.
type Result struct {
	Identifier string
	Outcome    model.Outcome
}

// game runs QTEs on a world clock owned by the Bubble Tea loop.
type game struct {
	world      *timer.Manager
	dispatcher *qte.Dispatcher
	owner      *qte.Owner
	mapper     qte.InputMapper
	script     []model.Definition
	log        logger.Logger

	next     int
	current  *qte.Instance
	resumeAt time.Duration
	paused   bool
	score    Score
	history  []Result
	err      error
}

func newGame(policy qte.Policy, mapper qte.InputMapper, script []model.Definition, log logger.Logger) *game {
	if len(script) == 0 {
		script = DefaultScript()
	}
	world := timer.New()
	d := qte.NewDispatcher(policy, qte.WithInputMapper(mapper), qte.WithLogger(log))
	return &game{
		world:      world,
		dispatcher: d,
		owner:      qte.NewOwner(playerOwner, world, d),
		mapper:     mapper,
		script:     script,
		log:        log,
	}
}

// advance moves the world clock and starts the next prompt once the gap is over.
func (g *game) advance(ctx context.Context, dt time.Duration) {
	if g.paused {
		return
	}
	g.world.Advance(dt)
	if !g.current.IsActive() && g.world.Now() >= g.resumeAt {
		g.spawn(ctx)
	}
}

func (g *game) spawn(ctx context.Context) {
	def := g.script[g.next%len(g.script)]
	g.next++

	i, err := qte.NewInstance(ctx, g.owner, def, 0)
	if err != nil {
		g.err = err
		g.resumeAt = g.world.Now() + promptGap
		g.log.Error(ctx, "prompt rejected", logger.String("qte", def.DisplayID()), logger.Error(err))
		return
	}
	name := i.DisplayID()
	record := func(out model.Outcome) { g.record(name, out) }
	i.Subscribe(record, record)
	if err := i.Start(ctx); err != nil {
		g.err = err
		g.resumeAt = g.world.Now() + promptGap
		return
	}
	g.current = i
	g.err = nil
}

func (g *game) record(name string, out model.Outcome) {
	switch {
	case out.Success:
		g.score.Hits++
		g.score.Streak++
		if out.Perfect {
			g.score.Perfect++
		}
		if g.score.Streak > g.score.Best {
			g.score.Best = g.score.Streak
		}
	case out.TimedOut:
		g.score.Timeouts++
		g.score.Streak = 0
	default:
		g.score.Wrong++
		g.score.Streak = 0
	}
	g.history = append([]Result{{Identifier: name, Outcome: out}}, g.history...)
	if len(g.history) > historyLength {
		g.history = g.history[:historyLength]
	}
	g.resumeAt = g.world.Now() + promptGap
}

// press routes one key and reports whether a prompt consumed it.
func (g *game) press(ctx context.Context, key model.Key) bool {
	if g.paused {
		return false
	}
	return g.dispatcher.TryConsumeInput(ctx, key)
}

func (g *game) togglePause() {
	g.paused = !g.paused
}

func (g *game) stop(ctx context.Context) {
	g.owner.Destroy(ctx)
	g.dispatcher.Deinitialize(ctx)
}
