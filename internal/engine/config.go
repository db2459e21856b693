package engine

import (
	"errors"
	"fmt"

	"github.com/talgya/roomsim/internal/agents"
)

// ErrInvalidConfig wraps every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds every parameter of one run.
type Config struct {
	Rows      int `json:"rows"`
	Cols      int `json:"cols"`
	MaxPeople int `json:"max_people"` // Arrivals accepted before arrivals stop

	PropInfected   float64 `json:"prop_infected"`   // Share arriving infected
	PropVaccinated float64 `json:"prop_vaccinated"` // Share arriving vaccinated and not infected

	// Seed for all random streams. Nil means a nondeterministic run.
	Seed *uint64 `json:"seed,omitempty"`

	MaxTime      float64      `json:"max_time"`      // Simulated run length
	ArrivalRate  float64      `json:"arrival_rate"`  // Exponential inter-arrival rate
	MoveInterval agents.Range `json:"move_interval"` // Uniform inter-movement interval

	Vision int                   `json:"vision"`
	Policy agents.MovementPolicy `json:"policy"`
	Health agents.HealthParams   `json:"health"`
}

// DefaultConfig returns the reference classroom scenario: a 20x15 room
// filled to a fifth of its cells.
func DefaultConfig() Config {
	seed := uint64(8675309)
	rows, cols := 20, 15
	return Config{
		Rows:           rows,
		Cols:           cols,
		MaxPeople:      rows * cols / 5,
		PropInfected:   0.35,
		PropVaccinated: 0.5,
		Seed:           &seed,
		MaxTime:        100,
		ArrivalRate:    1.0,
		MoveInterval:   agents.Range{Min: 0.5, Max: 2.5},
		Vision:         1,
		Policy:         agents.MoveUniform,
		Health:         agents.DefaultHealthParams(),
	}
}

// WithSeed returns a copy of c using seed.
func (c Config) WithSeed(seed uint64) Config {
	c.Seed = &seed
	return c
}

// Validate reports every invalid field, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	if c.Rows <= 0 || c.Cols <= 0 {
		errs = append(errs, fmt.Errorf("room dimensions %dx%d must be positive", c.Rows, c.Cols))
	}
	if c.MaxPeople <= 0 {
		errs = append(errs, fmt.Errorf("max people %d must be positive", c.MaxPeople))
	} else if c.Rows > 0 && c.Cols > 0 && c.MaxPeople > c.Rows*c.Cols {
		errs = append(errs, fmt.Errorf("max people %d exceeds %d cells", c.MaxPeople, c.Rows*c.Cols))
	}
	if c.PropInfected < 0 || c.PropVaccinated < 0 || c.PropInfected+c.PropVaccinated > 1 {
		errs = append(errs, fmt.Errorf("proportions infected %g and vaccinated %g must be non-negative and sum to at most 1",
			c.PropInfected, c.PropVaccinated))
	}
	if !(c.MaxTime > 0) {
		errs = append(errs, fmt.Errorf("max time %g must be positive", c.MaxTime))
	}
	if !(c.ArrivalRate > 0) {
		errs = append(errs, fmt.Errorf("arrival rate %g must be positive", c.ArrivalRate))
	}
	if c.MoveInterval.Min < 0 || c.MoveInterval.Max < c.MoveInterval.Min || !(c.MoveInterval.Max > 0) {
		errs = append(errs, fmt.Errorf("movement interval [%g, %g) invalid", c.MoveInterval.Min, c.MoveInterval.Max))
	}
	if c.Vision < 1 {
		errs = append(errs, fmt.Errorf("vision %d must be at least 1", c.Vision))
	}
	if err := c.Health.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
