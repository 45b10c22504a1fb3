package reconcile

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/evanofslack/fleet-dns-sync/internal/metrics"
	"github.com/evanofslack/fleet-dns-sync/internal/provider"
)

// Applicator issues record mutations one record at a time. A failed record is
// logged and skipped; callers only learn how many succeeded.
type Applicator struct {
	provider provider.Provider
	zone     provider.Zone
	metrics  *metrics.Metrics
	workers  int
	dryRun   bool
}

func NewApplicator(p provider.Provider, zone provider.Zone, metrics *metrics.Metrics, workers int, dryRun bool) *Applicator {
	return &Applicator{
		provider: p,
		zone:     zone,
		metrics:  metrics,
		workers:  max(workers, 1),
		dryRun:   dryRun,
	}
}

// Remove deletes each record by ID and returns the number deleted.
func (a *Applicator) Remove(ctx context.Context, records []Record) int {
	return a.each(records, func(r Record) bool {
		if a.dryRun {
			slog.Info("Dry run, would remove dns record", "status", "dry run", "zone", a.zone.Name, "name", r.Name, "ip", r.IP, "id", r.ID)
			return false
		}

		err := a.provider.DeleteRecord(ctx, a.zone, provider.Record{ID: r.ID, Name: string(r.Name), Type: recordType, Data: r.IP})
		a.metrics.IncRecordOperation("delete", a.zone.Name, err == nil)
		if err != nil {
			slog.Error("Failed to remove dns record", "error", "cannot remove dns record", "zone", a.zone.Name, "name", r.Name, "ip", r.IP, "id", r.ID, "reason", err)
			return false
		}
		slog.Info("Removed dns record", "action", "removed dns record", "zone", a.zone.Name, "name", r.Name, "ip", r.IP, "id", r.ID)
		return true
	})
}

// Add creates an address record for each entry and returns the number created.
func (a *Applicator) Add(ctx context.Context, records []Record) int {
	return a.each(records, func(r Record) bool {
		if a.dryRun {
			slog.Info("Dry run, would add dns record", "status", "dry run", "zone", a.zone.Name, "name", r.Name, "ip", r.IP)
			return false
		}

		err := a.create(ctx, r)
		a.metrics.IncRecordOperation("create", a.zone.Name, err == nil)
		if err != nil {
			slog.Error("Failed to add dns record", "error", "cannot add dns record", "zone", a.zone.Name, "name", r.Name, "ip", r.IP, "reason", err)
			return false
		}
		slog.Info("Added dns record", "action", "added dns record", "zone", a.zone.Name, "name", r.Name, "ip", r.IP)
		return true
	})
}

func (a *Applicator) create(ctx context.Context, r Record) error {
	rec, err := provider.AddressRecord(string(r.Name), r.IP, RecordTTL)
	if err != nil {
		return err
	}
	if rec.Type != recordType {
		return &unsupportedAddressError{ip: r.IP}
	}
	return a.provider.CreateRecord(ctx, a.zone, rec)
}

func (a *Applicator) each(records []Record, fn func(Record) bool) int {
	var done atomic.Int64
	if a.workers == 1 {
		for _, r := range records {
			if fn(r) {
				done.Add(1)
			}
		}
		return int(done.Load())
	}

	var g errgroup.Group
	g.SetLimit(a.workers)
	for _, r := range records {
		g.Go(func() error {
			if fn(r) {
				done.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	return int(done.Load())
}

type unsupportedAddressError struct {
	ip string
}

func (e *unsupportedAddressError) Error() string {
	return "not an ipv4 address: " + e.ip
}
