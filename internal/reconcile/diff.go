package reconcile

import (
	"log/slog"
	"maps"
	"slices"
)

// Reconcile compares the inventory with the zone for every inventory name.
// Names only present in the zone are left alone.
//
// Missing holds addresses without a record, Obsolete the records whose address
// left the inventory, and Existing every record found for the name.
func Reconcile(inv Inventory, zone ZoneSnapshot) Result {
	res := Result{
		Missing:  []Record{},
		Obsolete: []Record{},
		Existing: []Record{},
	}

	for _, name := range slices.Sorted(maps.Keys(inv)) {
		deviceIPs := inv[name]
		records := dedupe(name, zone[name])

		dnsIPs := NewIPSet()
		for _, r := range records {
			dnsIPs.Add(r.IP)
		}

		for _, ip := range deviceIPs.Sorted() {
			if !dnsIPs.Has(ip) {
				res.Missing = append(res.Missing, Record{Name: name, IP: ip})
			}
		}
		for _, r := range records {
			if !deviceIPs.Has(r.IP) {
				res.Obsolete = append(res.Obsolete, r)
			}
			res.Existing = append(res.Existing, r)
		}
	}
	return res
}

// dedupe keeps the first record for each address. Later duplicates are
// reported and never acted upon.
func dedupe(name Name, records []Record) []Record {
	if len(records) < 2 {
		return records
	}
	seen := NewIPSet()
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if seen.Has(r.IP) {
			slog.Warn("Duplicate address records for name, using first", "error", "data integrity", "name", name, "ip", r.IP, "id", r.ID)
			continue
		}
		seen.Add(r.IP)
		out = append(out, r)
	}
	return out
}
