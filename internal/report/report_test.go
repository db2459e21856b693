package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/roomsim/internal/agents"
	"github.com/talgya/roomsim/internal/engine"
)

func reportLines(t *testing.T, s Summary) map[string]string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, s))
	out := make(map[string]string)
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		key, value, ok := strings.Cut(line, ":")
		require.True(t, ok, line)
		out[key] = strings.TrimSpace(value)
	}
	return out
}

func TestReportPercentages(t *testing.T) {
	s := Summary{
		Seed:   8675309,
		Seeded: true,
		Population: engine.Population{
			Arrived:  60,
			Rejected: 3,
			Initial:  [agents.NumHealthTypes]int{9, 21, 30},
		},
		Stats: agents.Stats{NewlyInfected: 3, UnvaccinatedInfections: 1, VaccinatedInfections: 2},
	}
	lines := reportLines(t, s)

	assert.Equal(t, "8675309", lines["Seed"])
	assert.Equal(t, "9", lines["Unvaccinated Population"])
	assert.Equal(t, "30", lines["Vaccinated Population"])
	assert.Equal(t, "21", lines["Initial Infections"])
	assert.Equal(t, "3", lines["Newly Infected"])
	assert.Equal(t, "33.33%", lines["New Infections among Unvaccinated"])
	assert.Equal(t, "66.67%", lines["New Infections among Vaccinated"])
	assert.Contains(t, lines["Arrivals"], "3 rejected")
}

func TestReportWithoutInfections(t *testing.T) {
	lines := reportLines(t, Summary{})
	assert.Equal(t, "0%", lines["New Infections among Unvaccinated"])
	assert.Equal(t, "0%", lines["New Infections among Vaccinated"])
	assert.True(t, strings.HasSuffix(lines["Seed"], "(random)"))
}

func TestReportFromSimulation(t *testing.T) {
	sim, err := engine.NewSimulation(engine.DefaultConfig())
	require.NoError(t, err)
	sim.Run()

	s := FromSimulation(sim)
	assert.Equal(t, sim.RunID, s.RunID)
	assert.Equal(t, uint64(8675309), s.Seed)
	assert.Equal(t, sim.Stats, s.Stats)
	assert.Equal(t, 100.0, s.EndTime)
	if s.Stats.NewlyInfected > 0 {
		assert.InDelta(t, 100, s.UnvaccinatedShare()+s.VaccinatedShare(), 1e-9)
	} else {
		assert.Zero(t, s.UnvaccinatedShare()+s.VaccinatedShare())
	}
}

func TestChartRendersPNG(t *testing.T) {
	history := []engine.Sample{
		{Time: 0, NewlyInfected: 0, Infected: 2},
		{Time: 10, NewlyInfected: 1, Infected: 3},
		{Time: 25, NewlyInfected: 4, Infected: 5},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, history))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestChartFlatHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, []engine.Sample{{Time: 5}, {Time: 5}}))
	assert.NotZero(t, buf.Len())
}

func TestChartNeedsTwoSamples(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteChart(&buf, []engine.Sample{{Time: 1}}), ErrNotEnoughData)
}
