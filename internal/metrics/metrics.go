package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

type Metrics struct {
	registry         *prometheus.Registry
	runs             *prometheus.CounterVec // total runs
	runDuration      prometheus.Histogram   // time to run
	dnsRequests      *prometheus.CounterVec // dns provider requests
	fleetRequests    *prometheus.CounterVec // fleet inventory requests
	recordOperations *prometheus.CounterVec // applied record mutations
	inventoryNames   prometheus.Gauge       // short names in last inventory
	zoneRecords      *prometheus.GaugeVec   // managed records in last snapshot
}

// Public interface for metrics operations
func (m *Metrics) IncRun(mode string, success bool) {
	status := boolToResult(success)
	m.runs.WithLabelValues(mode, status).Inc()
}

func (m *Metrics) SetRunDuration(duration time.Duration) {
	m.runDuration.Observe(duration.Seconds())
}

func (m *Metrics) IncDNSRequest(operation, zone string, success bool) {
	if !isValidOperation(operation) || zone == "" {
		return
	}
	status := boolToResult(success)
	m.dnsRequests.WithLabelValues(operation, zone, status).Inc()
}

func (m *Metrics) IncFleetRequest(operation string, success bool) {
	if !isValidOperation(operation) {
		return
	}
	status := boolToResult(success)
	m.fleetRequests.WithLabelValues(operation, status).Inc()
}

func (m *Metrics) IncRecordOperation(operation, zone string, success bool) {
	if !isValidOperation(operation) || zone == "" {
		return
	}
	status := boolToResult(success)
	m.recordOperations.WithLabelValues(operation, zone, status).Inc()
}

func (m *Metrics) SetInventoryNames(count int) {
	m.inventoryNames.Set(float64(count))
}

func (m *Metrics) SetZoneRecords(zone string, count int) {
	m.zoneRecords.WithLabelValues(zone).Set(float64(count))
}

// Validation helpers
func boolToResult(b bool) string {
	if b {
		return "success"
	}
	return "failure"
}

func isValidOperation(op string) bool {
	switch op {
	case "create", "read", "delete", "login", "skip":
		return true
	}
	return false
}

func New(register bool) *Metrics {
	registry := prometheus.NewRegistry()
	namespace := "fleet_dns_sync"

	m := &Metrics{
		registry: registry,

		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of reconciliation runs",
		}, []string{"mode", "status"}),

		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of reconciliation runs in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		dnsRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dns_requests_total",
			Help:      "Total DNS provider requests",
		}, []string{"operation", "zone", "status"}),

		fleetRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fleet_requests_total",
			Help:      "Total fleet inventory requests",
		}, []string{"operation", "status"}),

		recordOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_operations_total",
			Help:      "Total record mutations attempted by the applicator",
		}, []string{"operation", "zone", "status"}),

		inventoryNames: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inventory_names",
			Help:      "Distinct short device names in the last inventory fetch",
		}),

		zoneRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "zone_records",
			Help:      "Managed address records seen in the last zone snapshot",
		}, []string{"zone"}),
	}

	if register {
		registry.MustRegister(
			m.runs,
			m.runDuration,
			m.dnsRequests,
			m.fleetRequests,
			m.recordOperations,
			m.inventoryNames,
			m.zoneRecords,
		)
	}
	return m
}

// Push sends the registry to a Pushgateway. A run is a batch job, so nothing
// would be around to be scraped.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	return push.New(url, job).Gatherer(m.registry).PushContext(ctx)
}
