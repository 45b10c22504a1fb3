package reconcile

import (
	"maps"
	"slices"
	"time"
)

// RecordTTL is the TTL of every record the applicator creates.
const RecordTTL = 303 * time.Second

const recordType = "A"

// IPSet is a set of string encoded addresses.
type IPSet map[string]struct{}

func NewIPSet(ips ...string) IPSet {
	s := make(IPSet, len(ips))
	for _, ip := range ips {
		s.Add(ip)
	}
	return s
}

func (s IPSet) Add(ip string) {
	s[ip] = struct{}{}
}

func (s IPSet) Has(ip string) bool {
	_, ok := s[ip]
	return ok
}

func (s IPSet) Len() int {
	return len(s)
}

func (s IPSet) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// Inventory maps each device name to its live addresses.
type Inventory map[Name]IPSet

// Record is an address record. ID is empty for records that do not exist yet.
type Record struct {
	Name Name
	IP   string
	ID   string
}

// ZoneSnapshot maps each name to its address records in listing order.
type ZoneSnapshot map[Name][]Record

// Count is the number of records in the snapshot.
func (z ZoneSnapshot) Count() int {
	n := 0
	for _, records := range z {
		n += len(records)
	}
	return n
}

// Result is the outcome of comparing an inventory with a zone snapshot.
type Result struct {
	Missing  []Record
	Obsolete []Record
	Existing []Record
}

type Mode string

const (
	ModeUpdate Mode = "update"
	ModeClear  Mode = "clear"
)

type Results struct {
	Plan    Result
	Added   int
	Removed int
}
