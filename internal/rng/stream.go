package rng

import "fmt"

// Stream identifies one independent random sequence. Each stochastic
// concern of the simulation draws from its own stream so that adding draws
// to one concern never shifts the values seen by another.
type Stream uint8

const (
	StreamArrival         Stream = iota // Inter-arrival intervals
	StreamMovementTime                  // Inter-movement intervals
	StreamExposureUnvaxed               // Exposure contributions, unvaccinated
	StreamExposureVaxed                 // Exposure contributions, vaccinated
	StreamInfection                     // Bernoulli infection outcome
	StreamRecovery                      // Recovery coin flip and susceptible split
	StreamMoveChoice                    // Destination choice and tie-breaking
	StreamHealthType                    // Health type assigned on arrival

	// NumStreams must stay last.
	NumStreams
)

var streamNames = [NumStreams]string{
	"arrival",
	"movement_time",
	"exposure_unvaccinated",
	"exposure_vaccinated",
	"infection",
	"recovery",
	"move_choice",
	"health_type",
}

func (s Stream) String() string {
	if s < NumStreams {
		return streamNames[s]
	}
	return fmt.Sprintf("stream(%d)", uint8(s))
}
