package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "companions"
)

var (
	// Whistles cuenta invocaciones de whistle por categoría y resultado.
	Whistles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "whistles_total",
			Help:      "Total number of whistle commands",
		},
		[]string{"category", "outcome"}, // outcome: called/cooldown/empty/failed/error
	)

	// Teleported cuenta compañeros traídos al jugador.
	Teleported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "teleported_total",
			Help:      "Total number of companions teleported to their owner",
		},
		[]string{"category", "source"}, // source: live/reconstructed
	)

	// RecallFailures cuenta candidatos que no se pudieron traer.
	RecallFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recall_failures_total",
			Help:      "Total number of candidates that failed to be recalled",
		},
		[]string{"category", "reason"}, // no_state/spawn/teleport/ineligible
	)

	// DeadPurged cuenta registros eliminados por criaturas muertas.
	DeadPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dead_purged_total",
			Help:      "Total number of dead companions purged from the registry",
		},
	)

	// Snapshots cuenta upserts por origen.
	Snapshots = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_total",
			Help:      "Total number of registry snapshots",
		},
		[]string{"source"}, // find/load/interact/proximity/recall
	)

	// RegistrySize es la cantidad de registros por zona al último flush.
	RegistrySize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registry_records",
			Help:      "Number of records in each zone registry",
		},
		[]string{"zone"},
	)

	// PersistDuration mide cada SaveZone.
	PersistDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "persist_duration_seconds",
			Help:      "Zone save latency in seconds",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"status"},
	)

	// Commands cuenta comandos de ciclo de vida.
	Commands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Total number of lifecycle commands",
		},
		[]string{"cmd", "status"}, // cmd: find/list/debug/release/dismiss
	)
)

func RecordWhistle(category, outcome string) {
	Whistles.WithLabelValues(category, outcome).Inc()
}

func RecordTeleported(category, source string, n int) {
	if n <= 0 {
		return
	}
	Teleported.WithLabelValues(category, source).Add(float64(n))
}

func RecordRecallFailure(category, reason string) {
	RecallFailures.WithLabelValues(category, reason).Inc()
}

func RecordDeadPurged(n int) {
	if n <= 0 {
		return
	}
	DeadPurged.Add(float64(n))
}

func RecordSnapshot(source string) {
	Snapshots.WithLabelValues(source).Inc()
}

func SetRegistrySize(zone string, n int) {
	RegistrySize.WithLabelValues(zone).Set(float64(n))
}

func RecordPersist(d time.Duration, ok bool) {
	status := "success"
	if !ok {
		status = "error"
	}
	PersistDuration.WithLabelValues(status).Observe(d.Seconds())
}

func RecordCommand(cmd string, ok bool) {
	status := "success"
	if !ok {
		status = "error"
	}
	Commands.WithLabelValues(cmd, status).Inc()
}
