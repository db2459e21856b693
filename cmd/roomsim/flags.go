package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/akamensky/argparse"

	"github.com/talgya/roomsim/internal/agents"
	"github.com/talgya/roomsim/internal/engine"
)

// options is everything the command line controls.
type options struct {
	Config engine.Config

	Display    bool
	FrameDelay time.Duration
	LogLevel   string

	DBPath      string // Run archive; empty disables
	MetricsPath string // Prometheus textfile; empty disables
	ChartPath   string // Infection curve PNG; empty disables

	HTTPPort int    // Live status API; 0 disables
	AdminKey string // Bearer token for POST /api/v1/stop
}

// parseArgs builds options from args (including the program name),
// starting from engine.DefaultConfig.
func parseArgs(args []string) (options, error) {
	def := engine.DefaultConfig()
	parser := argparse.NewParser("roomsim", "Simulates infection spread among people moving in a room")

	rows := parser.Int("r", "rows", &argparse.Options{Default: def.Rows, Help: "Room rows"})
	cols := parser.Int("c", "cols", &argparse.Options{Default: def.Cols, Help: "Room columns"})
	maxPeople := parser.Int("n", "max-people", &argparse.Options{Default: 0, Help: "Population cap; 0 means rows*cols/5"})
	propInfected := parser.Float("i", "prop-infected", &argparse.Options{Default: def.PropInfected, Help: "Share arriving infected"})
	propVaccinated := parser.Float("v", "prop-vaccinated", &argparse.Options{Default: def.PropVaccinated, Help: "Share arriving vaccinated and not infected"})
	seed := parser.String("s", "seed", &argparse.Options{Default: fmt.Sprint(*def.Seed), Help: `PRNG seed; "random" for a nondeterministic run`})
	maxTime := parser.Float("t", "max-time", &argparse.Options{Default: def.MaxTime, Help: "Simulated run length"})
	arrivalRate := parser.Float("a", "arrival-rate", &argparse.Options{Default: def.ArrivalRate, Help: "Exponential inter-arrival rate"})
	moveMin := parser.Float("m", "move-min", &argparse.Options{Default: def.MoveInterval.Min, Help: "Shortest inter-movement interval"})
	moveMax := parser.Float("M", "move-max", &argparse.Options{Default: def.MoveInterval.Max, Help: "Longest inter-movement interval"})
	vision := parser.Int("e", "vision", &argparse.Options{Default: def.Vision, Help: "Movement range in cells"})
	policy := parser.Selector("p", "policy", []string{"uniform", "gregarious", "distancing"},
		&argparse.Options{Default: def.Policy.String(), Help: "Destination choice"})
	recoveryFirst := parser.Float("f", "recovery-first", &argparse.Options{Default: def.Health.RecoveryFirst, Help: "Infection age at which recovery becomes possible"})
	recoverySecond := parser.Float("F", "recovery-second", &argparse.Options{Default: def.Health.RecoverySecond, Help: "Infection age at which recovery is certain"})

	display := parser.Flag("d", "display", &argparse.Options{Help: "Draw the room in the terminal"})
	delayMS := parser.Int("D", "frame-delay", &argparse.Options{Default: 10, Help: "Pause after each frame, in milliseconds"})
	logLevel := parser.String("l", "log-level", &argparse.Options{Default: "info", Help: "debug, info, warn or error"})
	dbPath := parser.String("b", "db", &argparse.Options{Default: envOrDefault("ROOMSIM_DB", ""), Help: "SQLite run archive (env ROOMSIM_DB)"})
	metricsPath := parser.String("x", "metrics", &argparse.Options{Default: envOrDefault("ROOMSIM_METRICS", ""), Help: "Prometheus textfile output (env ROOMSIM_METRICS)"})
	chartPath := parser.String("g", "chart", &argparse.Options{Default: envOrDefault("ROOMSIM_CHART", ""), Help: "Infection chart PNG output (env ROOMSIM_CHART)"})
	httpPort := parser.Int("H", "http-port", &argparse.Options{Default: envIntOrDefault("ROOMSIM_HTTP_PORT", 0), Help: "Serve live run status on this port (env ROOMSIM_HTTP_PORT)"})

	if err := parser.Parse(args); err != nil {
		return options{}, fmt.Errorf("%w\n%s", err, parser.Usage(nil))
	}

	cfg := def
	cfg.Rows, cfg.Cols = *rows, *cols
	cfg.MaxPeople = *maxPeople
	if cfg.MaxPeople == 0 {
		cfg.MaxPeople = cfg.Rows * cfg.Cols / 5
	}
	cfg.PropInfected, cfg.PropVaccinated = *propInfected, *propVaccinated
	cfg.MaxTime = *maxTime
	cfg.ArrivalRate = *arrivalRate
	cfg.MoveInterval = agents.Range{Min: *moveMin, Max: *moveMax}
	cfg.Vision = *vision
	cfg.Health.RecoveryFirst = *recoveryFirst
	cfg.Health.RecoverySecond = *recoverySecond

	p, err := agents.ParseMovementPolicy(*policy)
	if err != nil {
		return options{}, err
	}
	cfg.Policy = p

	switch s := strings.TrimSpace(*seed); strings.ToLower(s) {
	case "", "random", "none":
		cfg.Seed = nil
	default:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return options{}, fmt.Errorf("seed %q: %w", s, err)
		}
		cfg = cfg.WithSeed(n)
	}

	if err := cfg.Validate(); err != nil {
		return options{}, err
	}

	return options{
		Config:      cfg,
		Display:     *display,
		FrameDelay:  time.Duration(*delayMS) * time.Millisecond,
		LogLevel:    *logLevel,
		DBPath:      *dbPath,
		MetricsPath: *metricsPath,
		ChartPath:   *chartPath,
		HTTPPort:    *httpPort,
		AdminKey:    envOrDefault("ROOMSIM_ADMIN_KEY", ""),
	}, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
