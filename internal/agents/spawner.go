// Person spawning at the room's entry cell.
package agents

import (
	"github.com/talgya/roomsim/internal/rng"
)

// SpawnConfig controls how arriving persons are created.
type SpawnConfig struct {
	PropInfected   float64        // Share arriving infected
	PropVaccinated float64        // Share arriving vaccinated-susceptible
	Vision         int            // Movement range, in cells
	Policy         MovementPolicy // How destinations are picked
}

// Spawner creates persons and issues their IDs. One per session.
type Spawner struct {
	cfg    SpawnConfig
	nextID PersonID
}

// NewSpawner creates a spawner whose first person gets ID 1.
func NewSpawner(cfg SpawnConfig) *Spawner {
	return &Spawner{cfg: cfg, nextID: 1}
}

// NextID returns the ID the next spawned person will get.
func (s *Spawner) NextID() PersonID {
	return s.nextID
}

// Arrive creates a person on the room's entry cell. When the entry is
// occupied nothing is created and ok is false.
func (s *Spawner) Arrive(env *Env) (p *Person, ok bool) {
	if env.Room.IsEntryOccupied() {
		return nil, false
	}
	p = &Person{
		ID:         s.nextID,
		Health:     s.drawHealthType(env.Draw),
		Vision:     s.cfg.Vision,
		Policy:     s.cfg.Policy,
		InfectedAt: NoOnset,
	}
	if !env.Room.Arrival(p) {
		return nil, false
	}
	s.nextID++
	if p.Health == HealthInfected {
		p.InfectedAt = env.Clock.Now()
	}
	return p, true
}

// drawHealthType is a three-outcome weighted draw over the configured
// proportions; the remainder arrives unvaccinated.
func (s *Spawner) drawHealthType(draw Sampler) HealthType {
	u := draw.Float(rng.StreamHealthType)
	switch {
	case u < s.cfg.PropInfected:
		return HealthInfected
	case u < s.cfg.PropInfected+s.cfg.PropVaccinated:
		return HealthVaccinated
	default:
		return HealthUnvaccinated
	}
}
