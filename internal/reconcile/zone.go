package reconcile

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/evanofslack/fleet-dns-sync/internal/provider"
)

// FetchZone reads every page of the zone listing and keeps the address
// records whose name is a device name. Any failed page aborts the fetch.
// With workers above one, pages after the first are fetched concurrently.
func FetchZone(ctx context.Context, p provider.Provider, zone provider.Zone, workers int) (ZoneSnapshot, error) {
	first, err := p.ListRecords(ctx, zone, 1)
	if err != nil {
		return nil, &ProviderError{Op: "list records", Err: err}
	}

	total := first.TotalPages
	if total < 1 {
		total = 1
	}
	pages := make([][]provider.Record, total)
	pages[0] = first.Records

	if total > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(max(workers, 1))
		for page := 2; page <= total; page++ {
			g.Go(func() error {
				res, err := p.ListRecords(gctx, zone, page)
				if err != nil {
					return err
				}
				pages[page-1] = res.Records
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, &ProviderError{Op: "list records", Err: err}
		}
	}

	snapshot := make(ZoneSnapshot)
	for _, records := range pages {
		for _, r := range records {
			if r.Type != recordType {
				continue
			}
			name, err := ParseName(r.Name)
			if err != nil {
				continue
			}
			snapshot[name] = append(snapshot[name], Record{Name: name, IP: r.Data, ID: r.ID})
		}
	}
	slog.Debug("Fetched zone snapshot", "zone", zone.Name, "pages", total, "names", len(snapshot))
	return snapshot, nil
}
