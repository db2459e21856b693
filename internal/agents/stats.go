package agents

// Stats holds the run's aggregate infection counters. Only the exposure
// procedure increments them.
type Stats struct {
	NewlyInfected          int `json:"newly_infected"`
	VaccinatedInfections   int `json:"vaccinated_infections"`
	UnvaccinatedInfections int `json:"unvaccinated_infections"`
}

// Reset zeroes all counters.
func (s *Stats) Reset() {
	*s = Stats{}
}

func (s *Stats) recordInfection(was HealthType) {
	if was == HealthVaccinated {
		s.VaccinatedInfections++
	} else {
		s.UnvaccinatedInfections++
	}
	s.NewlyInfected++
}

// Share returns part/NewlyInfected, or 0 when nobody was newly infected.
func (s Stats) Share(part int) float64 {
	if s.NewlyInfected == 0 {
		return 0
	}
	return float64(part) / float64(s.NewlyInfected)
}
