package engine_test

import (
	"math"
	"testing"
	"time"

	"github.com/okian/urchin/internal/domain/balance"
	"github.com/okian/urchin/internal/domain/layout"
	"github.com/okian/urchin/internal/domain/timeline"
	"github.com/okian/urchin/internal/engine"
	"github.com/okian/urchin/internal/render"
	"github.com/okian/urchin/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// fakeTimer is one scheduled callback of the fake clock.
type fakeTimer struct {
	fireAt  time.Time
	fn      func()
	stopped bool
	fired   bool
}

// fakeClock drives engine timers deterministically. Advance fires due
// callbacks in order, moving Now to each fire time so elapsed-time math in
// the callbacks sees the scheduled interval.
type fakeClock struct {
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) func() {
	timer := &fakeTimer{fireAt: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, timer)
	return func() { timer.stopped = true }
}

func (c *fakeClock) Advance(d time.Duration) {
	target := c.now.Add(d)
	for {
		var next *fakeTimer
		for _, timer := range c.timers {
			if timer.stopped || timer.fired || timer.fireAt.After(target) {
				continue
			}
			if next == nil || timer.fireAt.Before(next.fireAt) {
				next = timer
			}
		}
		if next == nil {
			break
		}
		if next.fireAt.After(c.now) {
			c.now = next.fireAt
		}
		next.fired = true
		next.fn()
	}
	c.now = target
}

// recordingSurface keeps the most recent frame pushed by the engine.
type recordingSurface struct {
	frames int
	last   *render.Frame
}

func (s *recordingSurface) Render(frame *render.Frame) {
	s.frames++
	s.last = frame
}

func weekSchedule() *timeline.Schedule {
	return &timeline.Schedule{
		Events: []timeline.Event{
			{Label: "Sleep", Start: "23:00", End: "07:00", Date: "Monday", Agent: "atlas"},
			{Label: "Work", Start: "09:00", End: "17:00", Date: "Monday", Agent: "atlas"},
			{Label: "Gym", Start: "18:00", End: "19:00", Date: "Tuesday", Agent: "nova"},
		},
		Metadata: map[string]any{"generatedAt": "2026-01-05T08:00:00Z"},
	}
}

func newTestEngine(clock *fakeClock, surface *recordingSurface, opts ...engine.Option) *engine.Engine {
	base := []engine.Option{
		engine.WithClock(clock),
		engine.WithSize(640, 640),
	}
	if surface != nil {
		base = append(base, engine.WithSurface(surface))
	}
	return engine.New(append(base, opts...)...)
}

func TestEngineUpdate(t *testing.T) {
	Convey("Given an engine with a surface", t, func() {
		clock := newFakeClock()
		surface := &recordingSurface{}
		e := newTestEngine(clock, surface)
		Reset(e.Destroy)

		Convey("When a schedule with events arrives", func() {
			e.Update(weekSchedule(), "", "")

			Convey("Then the engine should hold renderable data", func() {
				So(e.HasRenderableData(), ShouldBeTrue)
				So(e.Layout(), ShouldNotBeNil)
				So(surface.frames, ShouldEqual, 1)
				So(surface.last.Empty, ShouldBeFalse)
				So(len(surface.last.Arcs), ShouldEqual, 3)
			})

			Convey("And the share breakdown should cover the visible activities", func() {
				So(e.Share().TotalMinutes, ShouldEqual, 1020)
				So(len(e.Share().Segments), ShouldEqual, 3)
			})

			Convey("And a wraparound event should keep its full duration", func() {
				var sleep *render.Arc
				for i := range surface.last.Arcs {
					if surface.last.Arcs[i].Label == "Sleep" {
						sleep = &surface.last.Arcs[i]
					}
				}
				So(sleep, ShouldNotBeNil)
				sweep := sleep.EndAngle - sleep.StartAngle
				So(sweep, ShouldAlmostEqual, 480.0/1440.0*2*math.Pi, 1e-9)
			})
		})

		Convey("When an empty schedule arrives", func() {
			e.Update(&timeline.Schedule{}, "", "")

			Convey("Then the engine should render the placeholder state", func() {
				So(e.HasRenderableData(), ShouldBeFalse)
				So(surface.last.Empty, ShouldBeTrue)
				So(surface.last.Message, ShouldContainSubstring, "No activities available")
			})
		})

		Convey("When a populated schedule is replaced by an empty one", func() {
			e.Update(weekSchedule(), "", "")
			e.Update(&timeline.Schedule{}, "", "")

			Convey("Then the engine should fall back to the placeholder", func() {
				So(e.HasRenderableData(), ShouldBeFalse)
				So(surface.last.Empty, ShouldBeTrue)
			})
		})

		Convey("When the mode changes", func() {
			e.Update(weekSchedule(), "", "")
			e.SetMode(layout.ModeAgentRings)

			So(e.Mode(), ShouldEqual, layout.ModeAgentRings)
			So(e.Layout().Mode, ShouldEqual, layout.ModeAgentRings)
		})

		Convey("When a label is hidden", func() {
			e.Update(weekSchedule(), "", "")
			e.SetLabelHidden("Work", true)

			Convey("Then its arcs should leave the frame but not the totals", func() {
				for _, arc := range surface.last.Arcs {
					So(arc.Label, ShouldNotEqual, "Work")
				}
				So(e.Share().Segments[0].Label, ShouldNotEqual, "Work")
			})

			Convey("And unhiding should restore them", func() {
				e.SetLabelHidden("Work", false)
				So(len(surface.last.Arcs), ShouldEqual, 3)
			})
		})

		Convey("When an agent filter is active", func() {
			e.Update(weekSchedule(), "", "nova")

			Convey("Then non-matching arcs should render dimmed", func() {
				for _, arc := range surface.last.Arcs {
					if arc.Label == "Gym" {
						So(arc.Alpha, ShouldEqual, 1.0)
					} else {
						So(arc.Alpha, ShouldAlmostEqual, 0.25)
					}
				}
			})
		})

		Convey("When the agent highlight is set directly", func() {
			e.Update(weekSchedule(), "", "")
			e.SetSelectedAgent("nova")

			Convey("Then the highlight should be readable back and dim the rest", func() {
				So(e.SelectedAgent(), ShouldEqual, "nova")
				for _, arc := range surface.last.Arcs {
					if arc.Label == "Gym" {
						So(arc.Alpha, ShouldEqual, 1.0)
					} else {
						So(arc.Alpha, ShouldAlmostEqual, 0.25)
					}
				}
			})

			Convey("And clearing it should restore full opacity", func() {
				e.SetSelectedAgent("")
				So(e.SelectedAgent(), ShouldBeEmpty)
				for _, arc := range surface.last.Arcs {
					So(arc.Alpha, ShouldEqual, 1.0)
				}
			})
		})

		Convey("When a schedule update arrives twice in a row", func() {
			e.Update(weekSchedule(), "", "")
			before := append([]render.Arc(nil), surface.last.Arcs...)
			e.Update(weekSchedule(), "", "")

			Convey("Then the arcs should come out identical", func() {
				So(len(surface.last.Arcs), ShouldEqual, len(before))
				for i, arc := range surface.last.Arcs {
					So(arc.ID, ShouldEqual, before[i].ID)
					So(arc.StartAngle, ShouldEqual, before[i].StartAngle)
					So(arc.EndAngle, ShouldEqual, before[i].EndAngle)
					So(arc.InnerRadius, ShouldEqual, before[i].InnerRadius)
				}
			})
		})
	})
}

func TestEngineZoom(t *testing.T) {
	Convey("Given an engine with a populated schedule", t, func() {
		clock := newFakeClock()
		surface := &recordingSurface{}
		e := newTestEngine(clock, surface)
		Reset(e.Destroy)
		e.Update(&timeline.Schedule{Events: []timeline.Event{
			{Label: "Work", Start: "09:00", End: "17:00"},
		}}, "", "")

		Convey("When zooming in hard at the bottom of the dial", func() {
			// The bottom of the dial is noon; a large negative delta
			// clamps the span to its minimum.
			e.Wheel(-10000, 320, 620)
			start, span := e.Zoom()

			Convey("Then the window should clamp to the minimum span around noon", func() {
				So(span, ShouldEqual, 120)
				So(start, ShouldEqual, 660)
			})

			Convey("And the arc should be clipped to the window", func() {
				So(len(surface.last.Arcs), ShouldEqual, 1)
				arc := surface.last.Arcs[0]
				sweep := arc.EndAngle - arc.StartAngle
				So(sweep, ShouldAlmostEqual, 2*math.Pi, 1e-9)
			})
		})

		Convey("When zooming onto a window that excludes a wrapping event", func() {
			e.Update(weekSchedule(), "", "")

			// Anchoring at 11:00 puts the minimum window at 10:00 to 12:00.
			angle := layout.MinutesToAngle(660)
			e.Wheel(-10000, 320+200*math.Cos(angle), 320+200*math.Sin(angle))
			start, span := e.Zoom()

			Convey("Then the window should land on the anchor", func() {
				So(span, ShouldEqual, 120)
				So(start, ShouldAlmostEqual, 600, 1e-6)
			})

			Convey("And the overnight event should drop out of the frame", func() {
				So(len(surface.last.Arcs), ShouldEqual, 1)
				So(surface.last.Arcs[0].Label, ShouldEqual, "Work")
			})
		})

		Convey("When zooming out past the full day", func() {
			e.Wheel(10000, 320, 620)
			_, span := e.Zoom()

			Convey("Then the span should clamp to the full day", func() {
				So(span, ShouldEqual, 1440)
			})
		})

		Convey("When the zoom is reset", func() {
			e.Wheel(-10000, 320, 620)
			e.ResetZoom()
			start, span := e.Zoom()

			So(start, ShouldEqual, 0)
			So(span, ShouldEqual, 1440)
		})
	})
}

func TestEnginePlayback(t *testing.T) {
	Convey("Given an engine with a fake clock", t, func() {
		clock := newFakeClock()
		surface := &recordingSurface{}
		e := newTestEngine(clock, surface)
		Reset(e.Destroy)
		e.Update(&timeline.Schedule{Events: []timeline.Event{
			{Label: "Work", Start: "09:00", End: "17:00"},
		}}, "", "")

		Convey("When playback runs for a minute at normal speed", func() {
			So(e.ScrubMinutes(), ShouldEqual, 480)
			e.StartPlayback()
			clock.Advance(time.Minute)

			Convey("Then the scrub line should advance one minute", func() {
				So(e.Playing(), ShouldBeTrue)
				So(e.ScrubMinutes(), ShouldAlmostEqual, 481, 0.05)
			})
		})

		Convey("When the speed is doubled", func() {
			e.SetSpeed(2)
			e.StartPlayback()
			clock.Advance(time.Minute)

			So(e.ScrubMinutes(), ShouldAlmostEqual, 482, 0.1)
		})

		Convey("When speed values are off the supported set", func() {
			e.SetSpeed(0.6)
			So(e.Speed(), ShouldEqual, 0.5)
			e.SetSpeed(100)
			So(e.Speed(), ShouldEqual, 2)
		})

		Convey("When playback is stopped", func() {
			e.StartPlayback()
			clock.Advance(time.Second)
			e.StopPlayback()
			position := e.ScrubMinutes()
			clock.Advance(time.Minute)

			Convey("Then the scrub line should hold its position", func() {
				So(e.Playing(), ShouldBeFalse)
				So(e.ScrubMinutes(), ShouldEqual, position)
			})
		})

		Convey("When playback is toggled", func() {
			So(e.TogglePlayback(), ShouldBeTrue)
			So(e.TogglePlayback(), ShouldBeFalse)
		})

		Convey("When the line sweeps across an arc during playback", func() {
			e.SetScrub(539)
			So(surface.last.Tooltip, ShouldBeNil)
			e.StartPlayback()
			clock.Advance(2 * time.Minute)

			Convey("Then the tooltip should follow the playback line", func() {
				So(surface.last.Tooltip, ShouldNotBeNil)
				So(surface.last.Tooltip.Title, ShouldEqual, "Work")
			})
		})

		Convey("When the scrub is moved by hand", func() {
			e.SetScrub(600)

			Convey("Then the position should move without surfacing a tooltip", func() {
				So(e.ScrubMinutes(), ShouldEqual, 600)
				So(surface.last.Tooltip, ShouldBeNil)
			})
		})

		Convey("When the scrub position wraps past midnight", func() {
			e.SetScrub(1500)
			So(e.ScrubMinutes(), ShouldEqual, 60)
		})
	})
}

func TestEngineHover(t *testing.T) {
	Convey("Given an engine with a populated schedule", t, func() {
		clock := newFakeClock()
		surface := &recordingSurface{}
		e := newTestEngine(clock, surface)
		Reset(e.Destroy)
		e.Update(&timeline.Schedule{Events: []timeline.Event{
			{Label: "Work", Start: "09:00", End: "17:00"},
		}}, "", "")

		arc := surface.last.Arcs[0]
		midRadius := (arc.InnerRadius + arc.OuterRadius) / 2
		midAngle := arc.StartAngle + (arc.EndAngle-arc.StartAngle)/2
		overX := 320 + midRadius*math.Cos(midAngle)
		overY := 320 + midRadius*math.Sin(midAngle)

		Convey("When the pointer settles over an arc", func() {
			e.PointerMove(overX, overY)
			So(e.HoverArc(), ShouldBeNil)
			clock.Advance(200 * time.Millisecond)

			Convey("Then the hover should resolve after the debounce", func() {
				So(e.HoverArc(), ShouldNotBeNil)
				So(e.HoverArc().Label, ShouldEqual, "Work")
				So(surface.last.Tooltip, ShouldNotBeNil)
				So(surface.last.Tooltip.Title, ShouldEqual, "Work")
				So(surface.last.Tooltip.Lines, ShouldContain, "8h")
			})
		})

		Convey("When the pointer keeps moving", func() {
			e.PointerMove(overX, overY)
			clock.Advance(100 * time.Millisecond)
			e.PointerMove(5, 5)
			clock.Advance(200 * time.Millisecond)

			Convey("Then only the settled position should be hit-tested", func() {
				So(e.HoverArc(), ShouldBeNil)
			})
		})

		Convey("When the pointer leaves the surface", func() {
			e.PointerMove(overX, overY)
			clock.Advance(200 * time.Millisecond)
			e.PointerLeave()

			Convey("Then hover state and tooltip should clear", func() {
				So(e.HoverArc(), ShouldBeNil)
				So(surface.last.Tooltip, ShouldBeNil)
			})
		})

		Convey("When the pointer settles over empty space", func() {
			e.PointerMove(320, 320)
			clock.Advance(200 * time.Millisecond)

			So(e.HoverArc(), ShouldBeNil)
		})
	})
}

func TestEngineSelection(t *testing.T) {
	Convey("Given an engine with several arcs", t, func() {
		clock := newFakeClock()
		surface := &recordingSurface{}
		var selected []string
		var announced []string
		e := newTestEngine(clock, surface,
			engine.WithSelectHandler(func(event *timeline.Event) {
				selected = append(selected, event.Label)
			}),
			engine.WithAnnouncer(func(message string) {
				announced = append(announced, message)
			}),
		)
		Reset(e.Destroy)
		e.Update(&timeline.Schedule{Events: []timeline.Event{
			{Label: "Breakfast", Start: "08:00", End: "08:30", Date: "Monday"},
			{Label: "Work", Start: "09:00", End: "17:00", Date: "Monday"},
			{Label: "Dinner", Start: "19:00", End: "20:00", Date: "Tuesday"},
		}}, "", "")

		Convey("When a hovered arc is clicked", func() {
			arc := surface.last.Arcs[1]
			midRadius := (arc.InnerRadius + arc.OuterRadius) / 2
			midAngle := arc.StartAngle + (arc.EndAngle-arc.StartAngle)/2
			e.PointerMove(320+midRadius*math.Cos(midAngle), 320+midRadius*math.Sin(midAngle))
			clock.Advance(200 * time.Millisecond)
			e.Click()

			Convey("Then the selection should commit and notify", func() {
				So(e.SelectedArc(), ShouldNotBeNil)
				So(e.SelectedArc().Label, ShouldEqual, "Work")
				So(selected, ShouldResemble, []string{"Work"})
				So(announced[len(announced)-1], ShouldContainSubstring, "Work")
			})
		})

		Convey("When clicking with nothing hovered", func() {
			e.Click()
			So(e.SelectedArc(), ShouldBeNil)
		})

		Convey("When navigating with arrow keys", func() {
			e.KeyDown(engine.KeyRight)

			Convey("Then the first arc should be the starting point", func() {
				So(e.SelectedArc(), ShouldNotBeNil)
				first := e.SelectedArc().Label
				So(first, ShouldBeIn, "Breakfast", "Work")
			})

			Convey("And right should cycle within the ring", func() {
				before := e.SelectedArc().Label
				e.KeyDown(engine.KeyRight)
				So(e.SelectedArc().Label, ShouldNotEqual, before)
			})

			Convey("And down should move to the next ring", func() {
				e.KeyDown(engine.KeyDown)
				So(e.SelectedArc().Label, ShouldEqual, "Dinner")
			})
		})

		Convey("When escape is pressed with a selection", func() {
			e.KeyDown(engine.KeyRight)
			So(e.SelectedArc(), ShouldNotBeNil)
			e.KeyDown(engine.KeyEscape)

			Convey("Then the selection should clear with an announcement", func() {
				So(e.SelectedArc(), ShouldBeNil)
				So(announced[len(announced)-1], ShouldEqual, "Selection cleared")
			})
		})

		Convey("When an unknown key arrives", func() {
			e.KeyDown("pageup")
			So(e.SelectedArc(), ShouldBeNil)
		})
	})
}

func TestEngineHistory(t *testing.T) {
	Convey("Given an engine", t, func() {
		clock := newFakeClock()
		surface := &recordingSurface{}
		e := newTestEngine(clock, surface)
		Reset(e.Destroy)

		Convey("When capturing a snapshot from a populated schedule", func() {
			captured := e.CaptureBalanceSnapshot(weekSchedule())

			Convey("Then one entry should be recorded", func() {
				So(captured, ShouldBeTrue)
				So(e.TotalRuns(), ShouldEqual, 1)
				entries := e.HistoryEntries()
				So(len(entries), ShouldEqual, 1)
				So(entries[0].RunNumber, ShouldEqual, 1)
				So(entries[0].TotalMinutes, ShouldEqual, 1020)
			})

			Convey("And capturing the identical schedule again should be refused", func() {
				So(e.CaptureBalanceSnapshot(weekSchedule()), ShouldBeFalse)
				So(e.TotalRuns(), ShouldEqual, 1)
			})

			Convey("And a changed schedule should capture a second run", func() {
				changed := weekSchedule()
				changed.Metadata["generatedAt"] = "2026-01-06T08:00:00Z"
				So(e.CaptureBalanceSnapshot(changed), ShouldBeTrue)
				So(e.TotalRuns(), ShouldEqual, 2)
			})
		})

		Convey("When capturing from a schedule without positive totals", func() {
			empty := &timeline.Schedule{Events: []timeline.Event{
				{Label: "Blink", Start: "09:00", End: "09:00"},
			}}

			So(e.CaptureBalanceSnapshot(empty), ShouldBeFalse)
			So(e.TotalRuns(), ShouldEqual, 0)
		})

		Convey("When toggling the panel with an empty history", func() {
			Convey("Then opening should be refused", func() {
				So(e.ToggleBalanceHistory(), ShouldBeFalse)
				So(e.HistoryOpen(), ShouldBeFalse)
			})
		})

		Convey("When toggling the panel after a capture", func() {
			e.Update(weekSchedule(), "", "")
			e.CaptureBalanceSnapshot(weekSchedule())

			So(e.ToggleBalanceHistory(), ShouldBeTrue)
			So(e.HistoryOpen(), ShouldBeTrue)
			So(e.ToggleBalanceHistory(), ShouldBeFalse)
		})

		Convey("When restoring history from storage", func() {
			e.SetBalanceHistory([]balance.Entry{
				{ID: "a", RunNumber: 7, Signature: "timestamp:t7"},
			}, 7)

			Convey("Then the counter and dedupe state should carry over", func() {
				So(e.TotalRuns(), ShouldEqual, 7)
				So(len(e.HistoryEntries()), ShouldEqual, 1)
			})
		})
	})
}

func TestEngineDestroy(t *testing.T) {
	Convey("Given a running engine", t, func() {
		clock := newFakeClock()
		surface := &recordingSurface{}
		e := newTestEngine(clock, surface)
		e.Update(weekSchedule(), "", "")
		e.StartPlayback()

		Convey("When the engine is destroyed", func() {
			e.Destroy()

			Convey("Then playback should stop and state should freeze", func() {
				So(e.Playing(), ShouldBeFalse)
				scrub := e.ScrubMinutes()
				clock.Advance(time.Minute)
				e.SetScrub(100)
				e.Update(weekSchedule(), "", "")
				So(e.ScrubMinutes(), ShouldEqual, scrub)
			})

			Convey("And destroying again should be harmless", func() {
				So(e.Destroy, ShouldNotPanic)
			})
		})
	})
}

func TestEngineExport(t *testing.T) {
	Convey("Given an engine", t, func() {
		clock := newFakeClock()
		e := newTestEngine(clock, nil)
		Reset(e.Destroy)

		Convey("When exporting the empty state", func() {
			doc := string(e.ExportSVG())

			So(doc, ShouldContainSubstring, "No activities available")
		})

		Convey("When exporting a populated frame", func() {
			e.Update(weekSchedule(), "", "")
			doc := string(e.ExportSVG())
			data, err := e.ExportPNG(0)

			Convey("Then both formats should carry the diagram", func() {
				So(doc, ShouldContainSubstring, "<path")
				So(err, ShouldBeNil)
				So(len(data), ShouldBeGreaterThan, 8)
				So(string(data[1:4]), ShouldEqual, "PNG")
			})
		})
	})
}
