// Simulation is one run: the room, its people, the random streams, and the
// scheduler, wired together.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/roomsim/internal/agents"
	"github.com/talgya/roomsim/internal/rng"
	"github.com/talgya/roomsim/internal/world"
)

// Simulation holds the complete state of a run. Every counter and registry
// lives here, so two runs never share state.
type Simulation struct {
	RunID  uuid.UUID
	Config Config

	Engine  *Engine
	RNG     *rng.Manager
	Room    *world.Room[*agents.Person]
	Env     *agents.Env
	Spawner *agents.Spawner

	People     []*agents.Person
	Stats      agents.Stats
	Population Population
	Events     []Event
	History    []Sample

	// OnRender, if set, is called after every arrival and movement.
	OnRender func(s *Simulation)
}

// Event is a notable occurrence during a run.
type Event struct {
	Time        float64 `json:"time" db:"time"`
	Category    string  `json:"category" db:"category"` // "arrival", "rejected", "infection", "recovery"
	PersonID    uint64  `json:"person_id" db:"person_id"`
	Description string  `json:"description" db:"description"`
}

// Sample is a point on the infection curve.
type Sample struct {
	Time          float64 `json:"time"`
	NewlyInfected int     `json:"newly_infected"`
	Infected      int     `json:"infected"`
}

// NewSimulation validates cfg and builds a fresh session.
func NewSimulation(cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	room, err := world.NewRoom[*agents.Person](cfg.Rows, cfg.Cols)
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	streams := rng.New()
	if cfg.Seed != nil {
		streams.SetSeed(*cfg.Seed)
	}

	sim := &Simulation{
		RunID:  uuid.New(),
		Config: cfg,
		Engine: NewEngine(),
		RNG:    streams,
		Room:   room,
		Spawner: agents.NewSpawner(agents.SpawnConfig{
			PropInfected:   cfg.PropInfected,
			PropVaccinated: cfg.PropVaccinated,
			Vision:         cfg.Vision,
			Policy:         cfg.Policy,
		}),
	}
	sim.Env = &agents.Env{
		Room:   room,
		Draw:   streams,
		Clock:  sim.Engine,
		Stats:  &sim.Stats,
		Health: cfg.Health,
	}
	return sim, nil
}

// Run schedules the first arrival and advances the clock to MaxTime.
func (s *Simulation) Run() {
	s.Stats.Reset()
	slog.Info("run starting",
		"run", s.RunID,
		"room", fmt.Sprintf("%dx%d", s.Config.Rows, s.Config.Cols),
		"max_people", s.Config.MaxPeople,
		"seeded", s.Config.Seed != nil,
		"policy", s.Config.Policy,
	)

	s.sample()
	s.Engine.ScheduleAfter(s.arrive, s.interarrival())
	s.Engine.RunUntil(s.Config.MaxTime)
	s.sample()

	seed, _ := s.RNG.Seed()
	slog.Info("run finished",
		"run", s.RunID,
		"time", SimTime(s.Engine.Now()),
		"seed", seed,
		"people", len(s.People),
		"rejected", s.Population.Rejected,
		"newly_infected", s.Stats.NewlyInfected,
		"vaccinated_infections", s.Stats.VaccinatedInfections,
		"unvaccinated_infections", s.Stats.UnvaccinatedInfections,
	)
}

// Stop ends the run after the current event.
func (s *Simulation) Stop() {
	s.Engine.Stop()
}

// Now returns the current simulated time.
func (s *Simulation) Now() float64 {
	return s.Engine.Now()
}

// move is the recurring movement event of one person.
func (s *Simulation) move(p *agents.Person) {
	if p.Health == agents.HealthInfected && p.Recover(s.Env) {
		s.record("recovery", p, fmt.Sprintf("P%d recovered as %s", p.ID, p.Health))
		s.sample()
	}
	was := p.Health
	if p.Expose(s.Env) {
		s.record("infection", p, fmt.Sprintf("P%d (%s) infected at %v", p.ID, was, p.Location()))
		s.sample()
	}
	p.Move(s.Env)
	s.render()

	delay := s.RNG.Uniform(s.Config.MoveInterval.Min, s.Config.MoveInterval.Max, rng.StreamMovementTime)
	s.Engine.ScheduleAfter(func() { s.move(p) }, delay)
}

func (s *Simulation) record(category string, p *agents.Person, desc string) {
	ev := Event{Time: s.Engine.Now(), Category: category, Description: desc}
	if p != nil {
		ev.PersonID = uint64(p.ID)
	}
	s.Events = append(s.Events, ev)
	slog.Debug("event", "time", SimTime(ev.Time), "category", category, "description", desc)
}

func (s *Simulation) sample() {
	infected := 0
	for _, p := range s.People {
		if p.Health == agents.HealthInfected {
			infected++
		}
	}
	s.History = append(s.History, Sample{
		Time:          s.Engine.Now(),
		NewlyInfected: s.Stats.NewlyInfected,
		Infected:      infected,
	})
}

func (s *Simulation) render() {
	if s.OnRender != nil {
		s.OnRender(s)
	}
}

// Composition counts the current population by health type.
func (s *Simulation) Composition() [agents.NumHealthTypes]int {
	var out [agents.NumHealthTypes]int
	for _, p := range s.People {
		out[p.Health]++
	}
	return out
}
