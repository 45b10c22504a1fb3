package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/evanofslack/fleet-dns-sync/internal/metrics"
	"github.com/evanofslack/fleet-dns-sync/internal/provider"
	"github.com/evanofslack/fleet-dns-sync/internal/source"
)

type Engine interface {
	Run(ctx context.Context, mode Mode) (Results, error)
}

type Options struct {
	Zone             provider.Zone
	Workers          int
	DryRun           bool
	ProtectedRecords []string
}

type engine struct {
	source     source.Source
	provider   provider.Provider
	applicator *Applicator
	zone       provider.Zone
	workers    int
	protected  map[Name]bool
	metrics    *metrics.Metrics
}

func NewEngine(src source.Source, dp provider.Provider, opts Options, metrics *metrics.Metrics) *engine {
	protected := make(map[Name]bool)
	for _, r := range opts.ProtectedRecords {
		protected[Name(r)] = true
	}
	return &engine{
		source:     src,
		provider:   dp,
		applicator: NewApplicator(dp, opts.Zone, metrics, opts.Workers, opts.DryRun),
		zone:       opts.Zone,
		workers:    max(opts.Workers, 1),
		protected:  protected,
		metrics:    metrics,
	}
}

// Run logs in, fetches the zone and the inventory, compares them and applies
// the changes for mode. Only login and fetch failures are returned; record
// mutations that fail are logged and left out of the counts.
func (e *engine) Run(ctx context.Context, mode Mode) (Results, error) {
	if mode != ModeUpdate && mode != ModeClear {
		return Results{}, fmt.Errorf("unknown mode %q", mode)
	}

	start := time.Now()
	results, err := e.run(ctx, mode)
	e.metrics.SetRunDuration(time.Since(start))
	e.metrics.IncRun(string(mode), err == nil)
	return results, err
}

func (e *engine) run(ctx context.Context, mode Mode) (Results, error) {
	slog.Debug("Reconcile stage", "stage", "logging in")
	loggedIn, err := e.source.Login(ctx)
	if err != nil {
		return Results{}, &AuthenticationError{Err: err}
	}
	if !loggedIn {
		return Results{}, &AuthenticationError{}
	}

	slog.Debug("Reconcile stage", "stage", "fetching dns")
	slog.Info("Fetching current dns records", "action", "fetching current dns records", "zone", e.zone.Name)
	zone, err := FetchZone(ctx, e.provider, e.zone, e.workers)
	if err != nil {
		return Results{}, err
	}
	e.metrics.SetZoneRecords(e.zone.Name, zone.Count())

	slog.Debug("Reconcile stage", "stage", "fetching inventory")
	slog.Info("Fetching current fleet device info", "action", "fetching current fleet device info")
	inv, err := FetchInventory(ctx, e.source)
	if err != nil {
		return Results{}, err
	}
	e.metrics.SetInventoryNames(len(inv))

	slog.Debug("Reconcile stage", "stage", "reconciling")
	plan := Reconcile(inv, zone)
	slog.Debug("Reconciled", "missing", len(plan.Missing), "obsolete", len(plan.Obsolete), "existing", len(plan.Existing))

	slog.Debug("Reconcile stage", "stage", "applying")
	results := Results{Plan: plan}
	switch mode {
	case ModeUpdate:
		results.Removed = e.applicator.Remove(ctx, e.unprotected(plan.Obsolete))
		results.Added = e.applicator.Add(ctx, e.unprotected(plan.Missing))
		slog.Info("DNS records updated", "status", "dns records updated", "zone", e.zone.Name, "added", results.Added, "removed", results.Removed)
	case ModeClear:
		results.Removed = e.applicator.Remove(ctx, e.unprotected(plan.Existing))
		slog.Info("DNS records cleared", "status", "dns records cleared", "zone", e.zone.Name, "removed", results.Removed)
	}

	slog.Debug("Reconcile stage", "stage", "done")
	return results, nil
}

// unprotected drops records whose name is configured as protected.
func (e *engine) unprotected(records []Record) []Record {
	if len(e.protected) == 0 {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if e.protected[r.Name] {
			slog.Warn("Skipping protected record", "name", r.Name, "ip", r.IP, "zone", e.zone.Name)
			e.metrics.IncRecordOperation("skip", e.zone.Name, true)
			continue
		}
		out = append(out, r)
	}
	return out
}
