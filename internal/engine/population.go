// Arrivals and population bookkeeping.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/roomsim/internal/agents"
	"github.com/talgya/roomsim/internal/rng"
)

// Population tracks who arrived, by health type at arrival.
type Population struct {
	Arrived  int                        `json:"arrived"`
	Rejected int                        `json:"rejected"` // Arrivals dropped at an occupied entry
	Initial  [agents.NumHealthTypes]int `json:"initial"`
}

// StartingInfections is the number of persons who arrived infected.
func (p Population) StartingInfections() int {
	return p.Initial[agents.HealthInfected]
}

// arrive is the arrival event. An occupied entry drops the arrival without
// retry; the next arrival is scheduled either way while below the cap.
func (s *Simulation) arrive() {
	if p, ok := s.Spawner.Arrive(s.Env); ok {
		s.addPerson(p)
		s.record("arrival", p, fmt.Sprintf("P%d arrives %s", p.ID, p.Health))
		s.sample()
		s.render()
		s.Engine.ScheduleAfter(func() { s.move(p) }, 0)
	} else {
		s.Population.Rejected++
		s.record("rejected", nil, "arrival rejected, entry occupied")
	}

	if len(s.People) < s.Config.MaxPeople {
		s.Engine.ScheduleAfter(s.arrive, s.interarrival())
	} else {
		slog.Debug("population cap reached", "people", len(s.People), "time", SimTime(s.Engine.Now()))
	}
}

// addPerson registers a new person in the session.
func (s *Simulation) addPerson(p *agents.Person) {
	s.People = append(s.People, p)
	s.Population.Arrived++
	s.Population.Initial[p.Health]++
}

func (s *Simulation) interarrival() float64 {
	return s.RNG.Exponential(s.Config.ArrivalRate, rng.StreamArrival)
}
