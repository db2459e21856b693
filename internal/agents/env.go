package agents

import (
	"errors"
	"fmt"

	"github.com/talgya/roomsim/internal/rng"
	"github.com/talgya/roomsim/internal/world"
)

// Sampler is the subset of rng.Manager the person logic draws from.
type Sampler interface {
	Float(s rng.Stream) float64
	Uniform(a, b float64, s rng.Stream) float64
	IntN(n int, s rng.Stream) int
}

// Clock reports the current simulated time.
type Clock interface {
	Now() float64
}

// Env is the per-run context every person operation acts within. One Env
// exists per simulation session; nothing in this package keeps global state.
type Env struct {
	Room   *world.Room[*Person]
	Draw   Sampler
	Clock  Clock
	Stats  *Stats
	Health HealthParams
}

// Range is a closed-open interval [Min, Max).
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r Range) valid() bool {
	return r.Min >= 0 && r.Max >= r.Min
}

// HealthParams controls exposure and recovery.
type HealthParams struct {
	// Per infected neighbor, each tick, a contribution is drawn from the
	// range matching the evaluating person's vaccination status.
	UnvaccinatedExposure Range `json:"unvaccinated_exposure"`
	VaccinatedExposure   Range `json:"vaccinated_exposure"`

	// Elapsed simulated time since onset. From RecoveryFirst on, each tick
	// recovers with RecoveryChance; from RecoverySecond on, always.
	RecoveryFirst  float64 `json:"recovery_first"`
	RecoverySecond float64 `json:"recovery_second"`
	RecoveryChance float64 `json:"recovery_chance"`

	// Share of recoveries that come back vaccinated-susceptible.
	RecoveredVaccinatedShare float64 `json:"recovered_vaccinated_share"`
}

// DefaultHealthParams returns the reference disease parameters.
func DefaultHealthParams() HealthParams {
	return HealthParams{
		UnvaccinatedExposure:     Range{Min: 0.2, Max: 0.257},
		VaccinatedExposure:       Range{Min: 0.05, Max: 0.107},
		RecoveryFirst:            60,
		RecoverySecond:           100,
		RecoveryChance:           0.5,
		RecoveredVaccinatedShare: 0.6,
	}
}

// Validate checks every parameter and returns all problems joined.
func (h HealthParams) Validate() error {
	var errs []error
	if !h.UnvaccinatedExposure.valid() {
		errs = append(errs, fmt.Errorf("unvaccinated exposure range %+v", h.UnvaccinatedExposure))
	}
	if !h.VaccinatedExposure.valid() {
		errs = append(errs, fmt.Errorf("vaccinated exposure range %+v", h.VaccinatedExposure))
	}
	if h.RecoveryFirst < 0 || h.RecoverySecond < h.RecoveryFirst {
		errs = append(errs, fmt.Errorf("recovery thresholds %g/%g must satisfy 0 <= first <= second",
			h.RecoveryFirst, h.RecoverySecond))
	}
	if !probability(h.RecoveryChance) {
		errs = append(errs, fmt.Errorf("recovery chance %g not in [0,1]", h.RecoveryChance))
	}
	if !probability(h.RecoveredVaccinatedShare) {
		errs = append(errs, fmt.Errorf("recovered vaccinated share %g not in [0,1]", h.RecoveredVaccinatedShare))
	}
	return errors.Join(errs...)
}

func probability(p float64) bool {
	return p >= 0 && p <= 1
}
