// Package engine provides the discrete-event scheduler and the simulation
// driver that runs arrivals and movements on it.
package engine

import (
	"container/heap"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
)

// Engine is a discrete-event scheduler on a virtual clock. Exactly one
// event body runs at a time, to completion. Events with equal timestamps
// run in the order they were scheduled.
type Engine struct {
	now      float64
	seq      uint64
	calendar calendar
	running  atomic.Bool
	fired    uint64
}

// NewEngine creates a scheduler with the clock at zero.
func NewEngine() *Engine {
	return &Engine{}
}

// Now returns the current simulated time.
func (e *Engine) Now() float64 {
	return e.now
}

// Pending returns the number of scheduled events not yet run.
func (e *Engine) Pending() int {
	return len(e.calendar)
}

// Running reports whether RunUntil is in progress and has not been stopped.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Fired returns the number of events run so far.
func (e *Engine) Fired() uint64 {
	return e.fired
}

// ScheduleAt schedules fn to run at simulated time t. Scheduling in the
// past is a programming error and panics.
func (e *Engine) ScheduleAt(fn func(), t float64) {
	if t < e.now || math.IsNaN(t) {
		panic(fmt.Sprintf("engine: schedule at %g before now %g", t, e.now))
	}
	e.seq++
	heap.Push(&e.calendar, &event{at: t, seq: e.seq, fn: fn})
}

// ScheduleAfter schedules fn to run delay time units from now.
func (e *Engine) ScheduleAfter(fn func(), delay float64) {
	e.ScheduleAt(fn, e.now+delay)
}

// RunUntil runs events in time order until the next one would fall after
// maxTime, the calendar empties, or Stop is called. The clock ends at
// maxTime unless stopped early.
func (e *Engine) RunUntil(maxTime float64) {
	e.running.Store(true)
	slog.Info("simulation engine started", "now", e.now, "until", maxTime)

	for e.running.Load() && len(e.calendar) > 0 {
		if e.calendar[0].at > maxTime {
			break
		}
		ev := heap.Pop(&e.calendar).(*event)
		e.now = ev.at
		e.fired++
		ev.fn()
	}
	if e.running.Load() && e.now < maxTime {
		e.now = maxTime
	}
	e.running.Store(false)

	slog.Info("simulation engine stopped", "now", e.now, "events", e.fired, "pending", len(e.calendar))
}

// Stop halts RunUntil after the current event. Safe to call from another
// goroutine, e.g. a signal handler.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// SimTime formats a simulated timestamp for logs and reports.
func SimTime(t float64) string {
	return fmt.Sprintf("t=%.3f", t)
}

type event struct {
	at  float64
	seq uint64
	fn  func()
}

// calendar is a min-heap ordered by (at, seq).
type calendar []*event

func (c calendar) Len() int { return len(c) }

func (c calendar) Less(i, j int) bool {
	if c[i].at != c[j].at {
		return c[i].at < c[j].at
	}
	return c[i].seq < c[j].seq
}

func (c calendar) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

func (c *calendar) Push(x any) { *c = append(*c, x.(*event)) }

func (c *calendar) Pop() any {
	old := *c
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	*c = old[:n-1]
	return ev
}
