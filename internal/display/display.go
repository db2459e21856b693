// Package display draws the room on a terminal after every arrival and
// movement.
package display

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell"

	"github.com/talgya/roomsim/internal/agents"
	"github.com/talgya/roomsim/internal/engine"
	"github.com/talgya/roomsim/internal/world"
)

var healthStyles = [agents.NumHealthTypes]tcell.Style{
	agents.HealthUnvaccinated: tcell.StyleDefault.Foreground(tcell.ColorYellow),
	agents.HealthInfected:     tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
	agents.HealthVaccinated:   tcell.StyleDefault.Foreground(tcell.ColorGreen),
}

// Terminal renders a simulation onto a tcell screen.
type Terminal struct {
	screen tcell.Screen
	delay  time.Duration
}

// NewTerminal initializes screen and returns a renderer that pauses for
// delay after each frame.
func NewTerminal(screen tcell.Screen, delay time.Duration) (*Terminal, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	screen.Clear()
	return &Terminal{screen: screen, delay: delay}, nil
}

// Render draws the room border, one glyph per occupant, and a status line.
// It matches engine.Simulation.OnRender.
func (t *Terminal) Render(sim *engine.Simulation) {
	t.screen.Clear()
	room := sim.Room
	rows, cols := room.Rows(), room.Cols()
	border := tcell.StyleDefault.Foreground(tcell.ColorGray)

	for x := 0; x <= cols+1; x++ {
		t.screen.SetContent(x, 0, '-', nil, border)
		t.screen.SetContent(x, rows+1, '-', nil, border)
	}
	for y := 1; y <= rows; y++ {
		t.screen.SetContent(0, y, '|', nil, border)
		t.screen.SetContent(cols+1, y, '|', nil, border)
	}
	entry := room.Entry()
	t.screen.SetContent(entry.Col+1, 0, ' ', nil, border)

	room.Each(func(loc world.Location, p *agents.Person) {
		t.screen.SetContent(loc.Col+1, loc.Row+1, p.Health.Glyph(), nil, healthStyles[p.Health])
	})

	comp := sim.Composition()
	status := fmt.Sprintf("%s  people %d  U %d  I %d  V %d  new %d",
		engine.SimTime(sim.Now()), len(sim.People),
		comp[agents.HealthUnvaccinated], comp[agents.HealthInfected], comp[agents.HealthVaccinated],
		sim.Stats.NewlyInfected)
	for i, r := range status {
		t.screen.SetContent(i, rows+2, r, nil, tcell.StyleDefault)
	}

	t.screen.Show()
	if t.delay > 0 {
		time.Sleep(t.delay)
	}
}

// Watch polls the screen's input until Close, calling stop on Ctrl-C or
// Escape.
func (t *Terminal) Watch(stop func()) {
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			t.HandleEvent(ev, stop)
		}
	}()
}

// HandleEvent reacts to one input event and reports whether it was used.
func (t *Terminal) HandleEvent(ev tcell.Event, stop func()) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyCtrlC, tcell.KeyEscape:
			stop()
			return true
		case tcell.KeyCtrlL:
			t.screen.Sync()
			return true
		}
	case *tcell.EventResize:
		t.screen.Sync()
		return true
	}
	return false
}

// Close restores the terminal.
func (t *Terminal) Close() {
	t.screen.Fini()
}
