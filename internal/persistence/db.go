// Package persistence provides a SQLite archive of finished runs.
// Runs are appended for later analysis; nothing is loaded back into a
// simulation.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/roomsim/internal/engine"
)

// DB wraps a SQLite connection holding the run archive.
type DB struct {
	conn *sqlx.DB
}

// RunRecord is one archived run.
type RunRecord struct {
	ID                     string  `db:"id"`
	FinishedAt             string  `db:"finished_at"`
	Seed                   string  `db:"seed"`
	Seeded                 bool    `db:"seeded"`
	ConfigJSON             string  `db:"config_json"`
	EndTime                float64 `db:"end_time"`
	Arrived                int     `db:"arrived"`
	Rejected               int     `db:"rejected"`
	StartingInfections     int     `db:"starting_infections"`
	NewlyInfected          int     `db:"newly_infected"`
	VaccinatedInfections   int     `db:"vaccinated_infections"`
	UnvaccinatedInfections int     `db:"unvaccinated_infections"`
}

// Config decodes the archived run configuration. With Run, RunEvents,
// CountPersons and GetMeta it forms the archive's read side, used for
// offline analysis of past runs; the simulator itself only writes.
func (r RunRecord) Config() (engine.Config, error) {
	var cfg engine.Config
	if err := json.Unmarshal([]byte(r.ConfigJSON), &cfg); err != nil {
		return cfg, fmt.Errorf("decode config of run %s: %w", r.ID, err)
	}
	return cfg, nil
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		finished_at TEXT NOT NULL,
		seed TEXT NOT NULL,
		seeded INTEGER NOT NULL,
		config_json TEXT NOT NULL,
		end_time REAL NOT NULL,
		arrived INTEGER NOT NULL,
		rejected INTEGER NOT NULL,
		starting_infections INTEGER NOT NULL,
		newly_infected INTEGER NOT NULL,
		vaccinated_infections INTEGER NOT NULL,
		unvaccinated_infections INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS persons (
		run_id TEXT NOT NULL,
		id INTEGER NOT NULL,
		health TEXT NOT NULL,
		loc_row INTEGER NOT NULL,
		loc_col INTEGER NOT NULL,
		infected_at REAL,
		PRIMARY KEY (run_id, id)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		time REAL NOT NULL,
		category TEXT NOT NULL,
		person_id INTEGER NOT NULL,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS archive_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id, time);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun archives a finished run: its summary, final persons, and event
// log, in one transaction.
func (db *DB) SaveRun(sim *engine.Simulation) error {
	slog.Info("archiving run", "run", sim.RunID, "persons", len(sim.People), "events", len(sim.Events))

	cfgJSON, err := json.Marshal(sim.Config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	seed, _ := sim.RNG.Seed()
	runID := sim.RunID.String()

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rec := RunRecord{
		ID:                     runID,
		FinishedAt:             time.Now().UTC().Format(time.RFC3339),
		Seed:                   fmt.Sprint(seed),
		Seeded:                 sim.Config.Seed != nil,
		ConfigJSON:             string(cfgJSON),
		EndTime:                sim.Now(),
		Arrived:                sim.Population.Arrived,
		Rejected:               sim.Population.Rejected,
		StartingInfections:     sim.Population.StartingInfections(),
		NewlyInfected:          sim.Stats.NewlyInfected,
		VaccinatedInfections:   sim.Stats.VaccinatedInfections,
		UnvaccinatedInfections: sim.Stats.UnvaccinatedInfections,
	}
	if _, err := tx.NamedExec(`INSERT INTO runs
		(id, finished_at, seed, seeded, config_json, end_time, arrived, rejected,
		 starting_infections, newly_infected, vaccinated_infections, unvaccinated_infections)
		VALUES (:id, :finished_at, :seed, :seeded, :config_json, :end_time, :arrived, :rejected,
		 :starting_infections, :newly_infected, :vaccinated_infections, :unvaccinated_infections)`, rec); err != nil {
		return fmt.Errorf("insert run %s: %w", runID, err)
	}

	stmt, err := tx.Preparex(`INSERT INTO persons
		(run_id, id, health, loc_row, loc_col, infected_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range sim.People {
		var onset *float64
		if p.InfectedAt >= 0 {
			v := p.InfectedAt
			onset = &v
		}
		if _, err := stmt.Exec(runID, p.ID, p.Health.String(), p.Row(), p.Col(), onset); err != nil {
			return fmt.Errorf("insert person %d: %w", p.ID, err)
		}
	}

	for _, e := range sim.Events {
		_, err := tx.Exec(
			"INSERT INTO events (run_id, time, category, person_id, description) VALUES (?, ?, ?, ?, ?)",
			runID, e.Time, e.Category, e.PersonID, e.Description,
		)
		if err != nil {
			return err
		}
	}

	if _, err := tx.Exec("INSERT OR REPLACE INTO archive_meta (key, value) VALUES ('last_run', ?)", runID); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("run archived", "run", runID)
	return nil
}

// GetMeta retrieves a metadata value, e.g. "last_run". Read API.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM archive_meta WHERE key = ?", key)
	return value, err
}

// Run returns one archived run by ID. Read API.
func (db *DB) Run(id string) (RunRecord, error) {
	var rec RunRecord
	err := db.conn.Get(&rec, "SELECT * FROM runs WHERE id = ?", id)
	return rec, err
}

// RunEvents returns the event log of a run in time order. Read API.
func (db *DB) RunEvents(runID string) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT time, category, person_id, description FROM events WHERE run_id = ? ORDER BY id",
		runID,
	)
	return events, err
}

// CountPersons returns how many persons a run archived, by health name.
// Read API.
func (db *DB) CountPersons(runID string) (map[string]int, error) {
	rows := []struct {
		Health string `db:"health"`
		N      int    `db:"n"`
	}{}
	err := db.conn.Select(&rows,
		"SELECT health, COUNT(*) AS n FROM persons WHERE run_id = ? GROUP BY health", runID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Health] = r.N
	}
	return out, nil
}
