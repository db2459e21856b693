// Command roomsim runs one simulation of infection spread among people
// moving through a room, then prints the end-of-run report.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell"

	"github.com/talgya/roomsim/internal/api"
	"github.com/talgya/roomsim/internal/display"
	"github.com/talgya/roomsim/internal/engine"
	"github.com/talgya/roomsim/internal/metrics"
	"github.com/talgya/roomsim/internal/persistence"
	"github.com/talgya/roomsim/internal/report"
)

func main() {
	opts, err := parseArgs(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// While the room is drawn, logs are held back and printed afterwards.
	var held bytes.Buffer
	var logOut io.Writer = os.Stderr
	if opts.Display {
		logOut = &held
	}
	level, err := log.ParseLevel(opts.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger := log.NewWithOptions(logOut, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "roomsim",
	})
	slog.SetDefault(slog.New(logger))

	// ── Simulation ────────────────────────────────────────────────────
	sim, err := engine.NewSimulation(opts.Config)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var term *display.Terminal
	if opts.Display {
		screen, err := tcell.NewScreen()
		if err != nil {
			slog.Error("terminal unavailable", "error", err)
			os.Exit(1)
		}
		term, err = display.NewTerminal(screen, opts.FrameDelay)
		if err != nil {
			slog.Error("terminal unavailable", "error", err)
			os.Exit(1)
		}
		sim.OnRender = term.Render
		// The screen swallows Ctrl-C, so interrupts arrive as key events.
		term.Watch(sim.Stop)
	}

	var server *api.Server
	if opts.HTTPPort > 0 {
		server = &api.Server{
			Port:     opts.HTTPPort,
			AdminKey: opts.AdminKey,
			Metrics:  metrics.New(sim.RunID.String()),
			Stop:     sim.Stop,
		}
		server.Publish(sim)
		draw := sim.OnRender
		sim.OnRender = func(s *engine.Simulation) {
			server.Publish(s)
			if draw != nil {
				draw(s)
			}
		}
		server.Start()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, stopping run", "signal", sig)
		sim.Stop()
	}()

	sim.Run()
	signal.Stop(sigCh)

	if server != nil {
		server.Publish(sim)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := server.Shutdown(ctx); err != nil {
			slog.Warn("HTTP shutdown", "error", err)
		}
		cancel()
	}

	if term != nil {
		// Restore the terminal before printing anything.
		sim.OnRender = nil
		term.Close()
		os.Stderr.Write(held.Bytes())
		logger.SetOutput(os.Stderr)
	}

	if err := finish(sim, opts, os.Stdout); err != nil {
		slog.Error("run output failed", "error", err)
		os.Exit(1)
	}
}

// finish writes the report and every optional output of a finished run.
func finish(sim *engine.Simulation, opts options, out io.Writer) error {
	if err := report.Write(out, report.FromSimulation(sim)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if opts.ChartPath != "" {
		switch err := writeChart(opts.ChartPath, sim.History); {
		case errors.Is(err, report.ErrNotEnoughData):
			slog.Warn("chart skipped", "path", opts.ChartPath, "samples", len(sim.History))
		case err != nil:
			return err
		default:
			slog.Info("chart written", "path", opts.ChartPath)
		}
	}

	if opts.MetricsPath != "" {
		m := metrics.New(sim.RunID.String())
		m.Observe(sim)
		if err := m.WriteTextfile(opts.MetricsPath); err != nil {
			return err
		}
		slog.Info("metrics written", "path", opts.MetricsPath)
	}

	if opts.DBPath != "" {
		db, err := persistence.Open(opts.DBPath)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer db.Close()
		if err := db.SaveRun(sim); err != nil {
			return fmt.Errorf("archive run: %w", err)
		}
	}
	return nil
}

// writeChart leaves no file behind when the chart cannot be rendered.
func writeChart(path string, history []engine.Sample) error {
	var buf bytes.Buffer
	if err := report.WriteChart(&buf, history); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}
