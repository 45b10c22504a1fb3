package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/evanofslack/fleet-dns-sync/internal/provider"
	"github.com/evanofslack/fleet-dns-sync/internal/source"
)

type MockSource struct {
	loggedIn   bool
	loginErr   error
	devices    []source.Device
	devicesErr error
	session    bool
}

func (m *MockSource) Login(ctx context.Context) (bool, error) {
	m.session = m.loggedIn && m.loginErr == nil
	return m.loggedIn, m.loginErr
}

func (m *MockSource) Devices(ctx context.Context) ([]source.Device, error) {
	if !m.session {
		return nil, source.ErrNotLoggedIn
	}
	return m.devices, m.devicesErr
}

// MockProvider is an in-memory zone served in pages of perPage records.
type MockProvider struct {
	mu        sync.Mutex
	records   []provider.Record
	perPage   int
	nextID    int
	listErr   map[int]error
	createErr map[string]error // keyed by ip
	deleteErr map[string]error // keyed by id
	lists     []int
	created   []provider.Record
	deleted   []string
}

func NewMockProvider(perPage int, records ...provider.Record) *MockProvider {
	m := &MockProvider{perPage: perPage, nextID: 1000}
	for _, r := range records {
		if r.ID == "" {
			r.ID = m.newID()
		}
		m.records = append(m.records, r)
	}
	return m
}

func (m *MockProvider) newID() string {
	m.nextID++
	return strconv.Itoa(m.nextID)
}

func (m *MockProvider) ListRecords(ctx context.Context, zone provider.Zone, page int) (provider.RecordPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists = append(m.lists, page)
	if err := m.listErr[page]; err != nil {
		return provider.RecordPage{}, err
	}

	total := (len(m.records) + m.perPage - 1) / m.perPage
	if total == 0 {
		total = 1
	}
	lo := (page - 1) * m.perPage
	hi := min(lo+m.perPage, len(m.records))
	var out []provider.Record
	if lo < hi {
		out = append(out, m.records[lo:hi]...)
	}
	return provider.RecordPage{Records: out, Page: page, TotalPages: total}, nil
}

func (m *MockProvider) CreateRecord(ctx context.Context, zone provider.Zone, r provider.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.createErr[r.Data]; err != nil {
		return err
	}
	r.ID = m.newID()
	m.records = append(m.records, r)
	m.created = append(m.created, r)
	return nil
}

func (m *MockProvider) DeleteRecord(ctx context.Context, zone provider.Zone, r provider.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.deleteErr[r.ID]; err != nil {
		return err
	}
	for i, rec := range m.records {
		if rec.ID == r.ID {
			m.records = append(m.records[:i], m.records[i+1:]...)
			m.deleted = append(m.deleted, r.ID)
			return nil
		}
	}
	return errors.New("record not found")
}

// addresses returns the sorted "name/ip" pairs of the A records in the zone.
func (m *MockProvider) addresses() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, r := range m.records {
		if r.Type == "A" {
			out = append(out, fmt.Sprintf("%s/%s", r.Name, r.Data))
		}
	}
	sort.Strings(out)
	return out
}

func aRecord(id, name, ip string) provider.Record {
	return provider.Record{ID: id, Name: name, Type: "A", Data: ip, TTL: RecordTTL}
}
