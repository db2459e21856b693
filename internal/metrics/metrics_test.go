package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/roomsim/internal/engine"
)

func TestObserveMirrorsRun(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.MaxTime = 30
	sim, err := engine.NewSimulation(cfg)
	require.NoError(t, err)
	sim.Run()

	c := New(sim.RunID.String())
	c.Observe(sim)

	comp := sim.Composition()
	assert.Equal(t, float64(comp[0]), testutil.ToFloat64(c.persons.WithLabelValues("unvaccinated")))
	assert.Equal(t, float64(comp[1]), testutil.ToFloat64(c.persons.WithLabelValues("infected")))
	assert.Equal(t, float64(sim.Population.Arrived), testutil.ToFloat64(c.arrivals.WithLabelValues("accepted")))
	assert.Equal(t, float64(sim.Stats.VaccinatedInfections), testutil.ToFloat64(c.infections.WithLabelValues("vaccinated")))
	assert.Equal(t, 30.0, testutil.ToFloat64(c.simTime))
	n, err := testutil.GatherAndCount(c.Registry)
	require.NoError(t, err)
	assert.Equal(t, 9, n)
}

func TestWriteTextfile(t *testing.T) {
	c := New("run-1")
	c.simTime.Set(12)
	path := filepath.Join(t.TempDir(), "roomsim.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `roomsim_simulated_time{run_id="run-1"} 12`)
}
