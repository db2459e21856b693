package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/roomsim/internal/agents"
	"github.com/talgya/roomsim/internal/engine"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func finishedRun(t *testing.T) *engine.Simulation {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.Rows, cfg.Cols, cfg.MaxPeople = 6, 6, 12
	cfg.MaxTime = 40
	sim, err := engine.NewSimulation(cfg)
	require.NoError(t, err)
	sim.Run()
	return sim
}

func TestSaveRunRoundTrip(t *testing.T) {
	db := openTemp(t)
	sim := finishedRun(t)
	require.NoError(t, db.SaveRun(sim))

	rec, err := db.Run(sim.RunID.String())
	require.NoError(t, err)
	assert.Equal(t, "8675309", rec.Seed)
	assert.True(t, rec.Seeded)
	assert.Equal(t, sim.Population.Arrived, rec.Arrived)
	assert.Equal(t, sim.Stats.NewlyInfected, rec.NewlyInfected)
	assert.Equal(t, sim.Stats.VaccinatedInfections, rec.VaccinatedInfections)
	assert.Equal(t, 40.0, rec.EndTime)

	cfg, err := rec.Config()
	require.NoError(t, err)
	assert.Equal(t, sim.Config, cfg)

	events, err := db.RunEvents(sim.RunID.String())
	require.NoError(t, err)
	assert.Equal(t, sim.Events, events)

	counts, err := db.CountPersons(sim.RunID.String())
	require.NoError(t, err)
	comp := sim.Composition()
	for h := agents.HealthType(0); int(h) < agents.NumHealthTypes; h++ {
		assert.Equal(t, comp[h], counts[h.String()], h.String())
	}

	last, err := db.GetMeta("last_run")
	require.NoError(t, err)
	assert.Equal(t, sim.RunID.String(), last)
}

func TestSaveRunTwiceFails(t *testing.T) {
	db := openTemp(t)
	sim := finishedRun(t)
	require.NoError(t, db.SaveRun(sim))
	assert.Error(t, db.SaveRun(sim))

	// The failed transaction leaves no duplicate events behind.
	events, err := db.RunEvents(sim.RunID.String())
	require.NoError(t, err)
	assert.Len(t, events, len(sim.Events))
}

func TestMissingRun(t *testing.T) {
	db := openTemp(t)
	_, err := db.Run("nope")
	assert.Error(t, err)
}
