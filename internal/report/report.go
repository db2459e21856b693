// Package report renders the end-of-run summary and infection chart.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/roomsim/internal/agents"
	"github.com/talgya/roomsim/internal/engine"
)

// Summary is everything the end-of-run report shows.
type Summary struct {
	RunID      uuid.UUID
	Seed       uint64
	Seeded     bool
	EndTime    float64
	Population engine.Population
	Final      [agents.NumHealthTypes]int
	Stats      agents.Stats
}

// FromSimulation collects the summary of a finished run.
func FromSimulation(sim *engine.Simulation) Summary {
	seed, _ := sim.RNG.Seed()
	return Summary{
		RunID:      sim.RunID,
		Seed:       seed,
		Seeded:     sim.Config.Seed != nil,
		EndTime:    sim.Now(),
		Population: sim.Population,
		Final:      sim.Composition(),
		Stats:      sim.Stats,
	}
}

// UnvaccinatedShare is the share of new infections among unvaccinated
// persons, in percent. Zero when nobody was newly infected.
func (s Summary) UnvaccinatedShare() float64 {
	return 100 * s.Stats.Share(s.Stats.UnvaccinatedInfections)
}

// VaccinatedShare is the share of new infections among vaccinated
// persons, in percent. Zero when nobody was newly infected.
func (s Summary) VaccinatedShare() float64 {
	return 100 * s.Stats.Share(s.Stats.VaccinatedInfections)
}

// Write prints the textual report.
func Write(w io.Writer, s Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	seed := fmt.Sprint(s.Seed)
	if !s.Seeded {
		seed += " (random)"
	}
	initial := s.Population.Initial
	rows := [][2]string{
		{"Run", s.RunID.String()},
		{"Seed", seed},
		{"Simulated time", engine.SimTime(s.EndTime)},
		{"Arrivals", fmt.Sprintf("%s (%s rejected at the entry)",
			humanize.Comma(int64(s.Population.Arrived)), humanize.Comma(int64(s.Population.Rejected)))},
		{"Unvaccinated Population", count(initial[agents.HealthUnvaccinated])},
		{"Vaccinated Population", count(initial[agents.HealthVaccinated])},
		{"Initial Infections", count(s.Population.StartingInfections())},
		{"Newly Infected", count(s.Stats.NewlyInfected)},
		{"Unvaccinated Infections", count(s.Stats.UnvaccinatedInfections)},
		{"Vaccinated Infections", count(s.Stats.VaccinatedInfections)},
		{"New Infections among Unvaccinated", percent(s.UnvaccinatedShare())},
		{"New Infections among Vaccinated", percent(s.VaccinatedShare())},
		{"Infected at End", count(s.Final[agents.HealthInfected])},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func count(n int) string {
	return humanize.Comma(int64(n))
}

func percent(v float64) string {
	return humanize.FtoaWithDigits(v, 2) + "%"
}
