// Package agents provides the Person model: health state, movement, and the
// per-tick exposure and recovery procedures.
package agents

import (
	"fmt"
	"strings"

	"github.com/talgya/roomsim/internal/world"
)

// PersonID is a unique, monotonically increasing identifier.
type PersonID uint64

// HealthType is the tri-state health of a person.
type HealthType uint8

const (
	HealthUnvaccinated HealthType = iota // Susceptible, not vaccinated
	HealthInfected                       // Infected and infectious
	HealthVaccinated                     // Susceptible, vaccinated

	numHealthTypes
)

// NumHealthTypes is the number of HealthType values.
const NumHealthTypes = int(numHealthTypes)

func (h HealthType) String() string {
	switch h {
	case HealthUnvaccinated:
		return "unvaccinated"
	case HealthInfected:
		return "infected"
	case HealthVaccinated:
		return "vaccinated"
	}
	return fmt.Sprintf("health(%d)", uint8(h))
}

// Susceptible reports whether the person can be infected.
func (h HealthType) Susceptible() bool {
	return h == HealthUnvaccinated || h == HealthVaccinated
}

// Glyph returns the single-rune symbol used when drawing the room.
func (h HealthType) Glyph() rune {
	switch h {
	case HealthInfected:
		return 'I'
	case HealthVaccinated:
		return 'V'
	default:
		return 'U'
	}
}

// MovementPolicy selects a destination among free cells in view.
type MovementPolicy uint8

const (
	MoveUniform    MovementPolicy = iota // Any free cell, uniformly
	MoveGregarious                       // Most crowded free cell, ties random
	MoveDistancing                       // Least crowded free cell, ties random
)

func (m MovementPolicy) String() string {
	switch m {
	case MoveGregarious:
		return "gregarious"
	case MoveDistancing:
		return "distancing"
	default:
		return "uniform"
	}
}

// ParseMovementPolicy maps a policy name to its value.
func ParseMovementPolicy(s string) (MovementPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "uniform":
		return MoveUniform, nil
	case "gregarious", "seek":
		return MoveGregarious, nil
	case "distancing", "avoid":
		return MoveDistancing, nil
	}
	return MoveUniform, fmt.Errorf("unknown movement policy %q", s)
}

// NoOnset marks a person that has never been infected.
const NoOnset = -1.0

// Person is one agent in the room. Its location is owned by the Room: only
// Room operations change it.
type Person struct {
	ID     PersonID
	Health HealthType
	Vision int
	Policy MovementPolicy

	// InfectedAt is the simulated time of the most recent infection onset,
	// or NoOnset.
	InfectedAt float64

	loc world.Location
}

// Location returns the person's current cell.
func (p *Person) Location() world.Location { return p.loc }

// SetLocation records a new cell. Called by the Room.
func (p *Person) SetLocation(l world.Location) { p.loc = l }

// VisionRadius returns how far the person looks for movement candidates.
func (p *Person) VisionRadius() int { return p.Vision }

// Row returns the current row.
func (p *Person) Row() int { return p.loc.Row }

// Col returns the current column.
func (p *Person) Col() int { return p.loc.Col }

func (p *Person) String() string {
	return fmt.Sprintf("P%d[%s]@%v", p.ID, p.Health, p.loc)
}
