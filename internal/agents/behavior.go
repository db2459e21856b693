// Per-tick person behavior: recovery, exposure, and movement.
package agents

import (
	"log/slog"

	"github.com/talgya/roomsim/internal/rng"
	"github.com/talgya/roomsim/internal/world"
)

// Recover runs the two-threshold recovery check for an infected person,
// measured on the simulated clock. It reports whether the person recovered.
func (p *Person) Recover(env *Env) bool {
	if p.Health != HealthInfected {
		return false
	}
	h := env.Health
	elapsed := env.Clock.Now() - p.InfectedAt
	switch {
	case elapsed >= h.RecoverySecond:
	case elapsed >= h.RecoveryFirst:
		if env.Draw.Float(rng.StreamRecovery) >= h.RecoveryChance {
			return false
		}
	default:
		return false
	}

	if env.Draw.Float(rng.StreamRecovery) < h.RecoveredVaccinatedShare {
		p.Health = HealthVaccinated
	} else {
		p.Health = HealthUnvaccinated
	}
	slog.Debug("recovered", "person", p.ID, "as", p.Health, "elapsed", elapsed)
	return true
}

// Expose evaluates infection risk from infected occupants of adjacent
// cells. Each one adds an independent contribution; the sum, clamped to
// [0,1], is the probability of one Bernoulli trial. Infected persons are
// skipped entirely. It reports whether the person became infected.
func (p *Person) Expose(env *Env) bool {
	if !p.Health.Susceptible() {
		return false
	}

	span, stream := env.Health.UnvaccinatedExposure, rng.StreamExposureUnvaxed
	if p.Health == HealthVaccinated {
		span, stream = env.Health.VaccinatedExposure, rng.StreamExposureVaxed
	}

	var prob float64
	for _, loc := range env.Room.Neighbors(p) {
		other, ok := env.Room.OccupantAt(loc)
		if !ok || other.Health != HealthInfected {
			continue
		}
		prob += env.Draw.Uniform(span.Min, span.Max, stream)
	}
	if prob <= 0 {
		return false
	}
	if prob > 1 {
		prob = 1
	}
	if env.Draw.Float(rng.StreamInfection) >= prob {
		return false
	}

	env.Stats.recordInfection(p.Health)
	slog.Debug("infected", "person", p.ID, "was", p.Health, "p", prob)
	p.Health = HealthInfected
	p.InfectedAt = env.Clock.Now()
	return true
}

// Move relocates the person to a free cell within vision, chosen by its
// movement policy. With no free cell in view the person stays put. It
// reports whether the person moved.
func (p *Person) Move(env *Env) bool {
	var free []world.Location
	for _, loc := range env.Room.Neighborhood(p) {
		if env.Room.InBounds(loc) && !env.Room.IsOccupied(loc) {
			free = append(free, loc)
		}
	}
	if len(free) == 0 {
		return false
	}

	dest := p.chooseDestination(env, free)
	env.Room.DepartCurrentLocation(p)
	env.Room.OccupyNewLocation(p, dest.Row, dest.Col)
	return true
}

func (p *Person) chooseDestination(env *Env, free []world.Location) world.Location {
	if p.Policy == MoveUniform {
		return free[env.Draw.IntN(len(free), rng.StreamMoveChoice)]
	}

	var best []world.Location
	bestCount := -1
	for _, loc := range free {
		n := env.Room.NeighborCount(loc)
		// The mover leaves its cell, so it is not its own neighbor.
		if world.Chebyshev(loc, p.loc) == 1 {
			n--
		}
		better := n > bestCount
		if p.Policy == MoveDistancing {
			better = bestCount < 0 || n < bestCount
		}
		switch {
		case better:
			best = append(best[:0], loc)
			bestCount = n
		case n == bestCount:
			best = append(best, loc)
		}
	}
	return best[env.Draw.IntN(len(best), rng.StreamMoveChoice)]
}
