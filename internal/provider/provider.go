package provider

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/libdns/libdns"
)

type Provider interface {
	ListRecords(ctx context.Context, zone Zone, page int) (RecordPage, error)
	CreateRecord(ctx context.Context, zone Zone, record Record) error
	DeleteRecord(ctx context.Context, zone Zone, record Record) error
}

// Zone identifies a zone within a provider account. Providers that scope
// zones globally ignore Account.
type Zone struct {
	Account string
	Name    string
}

func (z Zone) String() string {
	return z.Name
}

type Record struct {
	ID   string
	Name string
	Type string
	Data string
	TTL  time.Duration
}

// RecordPage is one page of a zone listing. Pages are numbered from 1.
type RecordPage struct {
	Records    []Record
	Page       int
	TotalPages int
}

func FromLibdns(r libdns.Record) Record {
	rr := r.RR()
	return Record{
		Name: rr.Name,
		Type: rr.Type,
		Data: rr.Data,
		TTL:  rr.TTL,
	}
}

// ToLibdns validates r as an address record.
func ToLibdns(r Record) (libdns.Record, error) {
	switch r.Type {
	case "A", "AAAA":
		addr, err := netip.ParseAddr(r.Data)
		if err != nil {
			return nil, fmt.Errorf("fail parse ip addr %s, err=%w", r.Data, err)
		}
		out := &libdns.Address{
			Name: r.Name,
			IP:   addr,
			TTL:  r.TTL,
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported record type %s", r.Type)
	}
}

// AddressRecord builds a validated address record for ip. The record type
// follows the address family.
func AddressRecord(name, ip string, ttl time.Duration) (Record, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return Record{}, fmt.Errorf("fail parse ip addr %s, err=%w", ip, err)
	}
	return FromLibdns(&libdns.Address{Name: name, IP: addr, TTL: ttl}), nil
}
