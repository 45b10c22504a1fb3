package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/evanofslack/fleet-dns-sync/internal/source"
)

// FetchInventory lists every device and groups their addresses by short name.
// Devices sharing a short name have their addresses merged.
func FetchInventory(ctx context.Context, src source.Source) (Inventory, error) {
	devices, err := src.Devices(ctx)
	if err != nil {
		if errors.Is(err, source.ErrNotLoggedIn) {
			return nil, &AuthenticationError{Err: err}
		}
		return nil, &ProviderError{Op: "list devices", Err: err}
	}

	inv := make(Inventory, len(devices))
	for _, d := range devices {
		name, err := NameFromUUID(d.UUID)
		if err != nil {
			slog.Warn("Skipping device with malformed uuid", "uuid", d.UUID, "error", err)
			continue
		}

		ips, seen := inv[name]
		if seen {
			slog.Warn("Devices share a short name, merging addresses", "name", name, "uuid", d.UUID)
		} else {
			ips = NewIPSet()
			inv[name] = ips
		}
		for _, ip := range strings.Fields(d.IPAddress) {
			ips.Add(ip)
		}
	}
	return inv, nil
}
