// Package metrics mirrors a run's statistics as Prometheus gauges, served
// live by the API or written once as a node-exporter textfile.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/talgya/roomsim/internal/agents"
	"github.com/talgya/roomsim/internal/engine"
)

// Collector holds the gauges of one run in its own registry.
type Collector struct {
	Registry *prometheus.Registry

	persons    *prometheus.GaugeVec
	arrivals   *prometheus.GaugeVec
	infections *prometheus.GaugeVec
	simTime    prometheus.Gauge
	events     prometheus.Gauge
}

// New creates a collector whose series all carry the run ID.
func New(runID string) *Collector {
	labels := prometheus.Labels{"run_id": runID}
	c := &Collector{
		Registry: prometheus.NewRegistry(),
		persons: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "roomsim",
			Name:        "persons",
			Help:        "Persons in the room, by health type.",
			ConstLabels: labels,
		}, []string{"health"}),
		arrivals: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "roomsim",
			Name:        "arrivals",
			Help:        "Arrival attempts by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		infections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "roomsim",
			Name:        "new_infections",
			Help:        "Infections acquired in the room, by vaccination status at exposure.",
			ConstLabels: labels,
		}, []string{"status"}),
		simTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "roomsim",
			Name:        "simulated_time",
			Help:        "Current simulated time.",
			ConstLabels: labels,
		}),
		events: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "roomsim",
			Name:        "scheduler_events",
			Help:        "Events run by the scheduler.",
			ConstLabels: labels,
		}),
	}
	c.Registry.MustRegister(c.persons, c.arrivals, c.infections, c.simTime, c.events)
	return c
}

// Observe records the state of sim.
func (c *Collector) Observe(sim *engine.Simulation) {
	comp := sim.Composition()
	for h := agents.HealthType(0); int(h) < agents.NumHealthTypes; h++ {
		c.persons.WithLabelValues(h.String()).Set(float64(comp[h]))
	}
	c.arrivals.WithLabelValues("accepted").Set(float64(sim.Population.Arrived))
	c.arrivals.WithLabelValues("rejected").Set(float64(sim.Population.Rejected))
	c.infections.WithLabelValues("vaccinated").Set(float64(sim.Stats.VaccinatedInfections))
	c.infections.WithLabelValues("unvaccinated").Set(float64(sim.Stats.UnvaccinatedInfections))
	c.simTime.Set(sim.Now())
	c.events.Set(float64(sim.Engine.Fired()))
}

// WriteTextfile writes every series to path atomically.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.Registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
