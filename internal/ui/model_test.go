package ui

import (
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/okian/qte/internal/domain/input"
	"github.com/okian/qte/internal/domain/model"
	"github.com/okian/qte/internal/domain/qte"
	"github.com/okian/qte/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.InitWithWriter(io.Discard); err != nil {
		panic(err)
	}
}

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func newPlayer() Model {
	mapper := input.NewMapper()
	mapper.AddContext(input.NewMappingContext("default").Bind("jump", "space"), 0)
	policy := qte.DefaultPolicy()
	policy.DebugLogging = false
	return New(policy, mapper)
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// at delivers a frame at t0+offset.
func at(m Model, offset time.Duration) Model {
	m, _ = send(m, frameMsg(t0.Add(offset)))
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel(t *testing.T) {
	Convey("Given a new player", t, func() {
		m := newPlayer()

		Convey("Init schedules the first frame", func() {
			So(m.Init(), ShouldNotBeNil)
		})

		Convey("The first frame starts the first prompt", func() {
			m = at(m, 0)
			So(m.game.current.IsActive(), ShouldBeTrue)
			So(m.game.current.DisplayID(), ShouldEqual, "door")
			So(m.View(), ShouldContainSubstring, "door")
			So(m.View(), ShouldContainSubstring, "press")

			Convey("A late correct press is a perfect hit", func() {
				m = at(m, 1900*time.Millisecond)
				So(m.View(), ShouldContainSubstring, "NOW!")
				m, _ = send(m, runes("e"))

				So(m.Score().Hits, ShouldEqual, 1)
				So(m.Score().Perfect, ShouldEqual, 1)
				So(m.Score().Streak, ShouldEqual, 1)
				So(m.History()[0].Identifier, ShouldEqual, "door")
				So(m.View(), ShouldContainSubstring, "PERFECT")

				Convey("The next prompt waits for the gap and resolves through the action mapping", func() {
					m = at(m, 2500*time.Millisecond)
					So(m.game.current.IsActive(), ShouldBeFalse)
					So(m.View(), ShouldContainSubstring, "get ready")

					m = at(m, 2700*time.Millisecond)
					So(m.game.current.DisplayID(), ShouldEqual, "dodge")
					So(m.View(), ShouldContainSubstring, "JUMP [SPACE]")

					m, _ = send(m, tea.KeyMsg{Type: tea.KeySpace})
					So(m.Score().Hits, ShouldEqual, 2)
					So(m.Score().Best, ShouldEqual, 2)
				})
			})

			Convey("An early correct press succeeds without perfect", func() {
				m = at(m, time.Second)
				m, _ = send(m, runes("E"))
				So(m.Score().Hits, ShouldEqual, 1)
				So(m.Score().Perfect, ShouldEqual, 0)
			})

			Convey("A wrong key fails the prompt", func() {
				m, _ = send(m, runes("x"))
				So(m.Score().Wrong, ShouldEqual, 1)
				So(m.History()[0].Outcome.Reason(), ShouldEqual, model.ReasonWrongInput)
				So(m.View(), ShouldContainSubstring, "wrong_input")
			})

			Convey("Letting the clock run out times the prompt out once", func() {
				m = at(m, 2*time.Second)
				m = at(m, 2500*time.Millisecond)
				So(m.Score().Timeouts, ShouldEqual, 1)
				So(m.History(), ShouldHaveLength, 1)
			})

			Convey("Pausing freezes the clock and drops input", func() {
				m, _ = send(m, tea.KeyMsg{Type: tea.KeyCtrlP})
				m = at(m, 5*time.Second)
				m, _ = send(m, runes("e"))
				So(m.Score().Hits, ShouldEqual, 0)
				So(m.game.current.Elapsed(), ShouldEqual, 0)
				So(m.View(), ShouldContainSubstring, "paused")

				m, _ = send(m, tea.KeyMsg{Type: tea.KeyCtrlP})
				m = at(m, 6*time.Second)
				So(m.game.current.Elapsed(), ShouldEqual, time.Second)
			})

			Convey("Tab toggles the debug overlay", func() {
				So(m.View(), ShouldNotContainSubstring, "QuickTimeEvent:")
				m, _ = send(m, tea.KeyMsg{Type: tea.KeyTab})
				So(m.View(), ShouldContainSubstring, "QuickTimeEvent: door | Time: 0.00/2.00 | Perfect: NO")
			})

			Convey("Esc quits and cancels the running prompt", func() {
				prompt := m.game.current
				var cmd tea.Cmd
				m, cmd = send(m, tea.KeyMsg{Type: tea.KeyEsc})
				So(cmd, ShouldNotBeNil)
				So(cmd(), ShouldResemble, tea.QuitMsg{})
				So(prompt.State(), ShouldEqual, qte.StateCancelled)
				So(m.View(), ShouldBeEmpty)
			})
		})

		Convey("The window size bounds the bar", func() {
			m, _ = send(m, tea.WindowSizeMsg{Width: 200, Height: 40})
			So(m.bar.Width, ShouldEqual, maxBarWidth)
			m, _ = send(m, tea.WindowSizeMsg{Width: 5, Height: 40})
			So(m.bar.Width, ShouldEqual, minBarWidth)
		})
	})

	Convey("Given a script with an invalid prompt", t, func() {
		m := New(qte.DefaultPolicy(), nil, WithScript([]model.Definition{{
			Identifier: "broken",
			Settings:   model.Settings{Duration: -time.Second},
			Input:      model.InputSpec{TargetKey: "e"},
		}}))
		m = at(m, 0)

		Convey("The error is shown instead of a prompt", func() {
			So(m.game.current, ShouldBeNil)
			So(m.View(), ShouldContainSubstring, "error:")
		})
	})
}
