package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/evanofslack/fleet-dns-sync/internal/provider"
)

var testZone = provider.Zone{Account: "1010", Name: "example.com"}

func TestFetchZone(t *testing.T) {
	records := []provider.Record{
		aRecord("1", "abcd123", "10.0.0.1"),
		{ID: "2", Name: "", Type: "NS", Data: "ns1.example.com"},
		aRecord("3", "www", "10.1.1.1"),
		aRecord("4", "abcd123", "10.0.0.2"),
		{ID: "5", Name: "abcd123", Type: "CNAME", Data: "elsewhere.example.com"},
		aRecord("6", "abcd1234", "10.0.0.3"),
		aRecord("7", "ffff000", "192.168.1.5"),
	}
	expected := ZoneSnapshot{
		"abcd123": {
			{Name: "abcd123", IP: "10.0.0.1", ID: "1"},
			{Name: "abcd123", IP: "10.0.0.2", ID: "4"},
		},
		"ffff000": {
			{Name: "ffff000", IP: "192.168.1.5", ID: "7"},
		},
	}

	for _, perPage := range []int{1, 2, 3, 100} {
		for _, workers := range []int{1, 4} {
			t.Run(fmt.Sprintf("perPage=%d/workers=%d", perPage, workers), func(t *testing.T) {
				p := NewMockProvider(perPage, records...)

				got, err := FetchZone(context.Background(), p, testZone, workers)
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if diff := cmp.Diff(expected, got); diff != "" {
					t.Errorf("FetchZone() mismatch (-want +got):\n%s", diff)
				}

				pages := (len(records) + perPage - 1) / perPage
				if len(p.lists) != pages {
					t.Errorf("expected %d list calls, got %d (%v)", pages, len(p.lists), p.lists)
				}
			})
		}
	}
}

func TestFetchZoneEmpty(t *testing.T) {
	p := NewMockProvider(10)
	got, err := FetchZone(context.Background(), p, testZone, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty snapshot, got %v", got)
	}
}

func TestFetchZonePageFailure(t *testing.T) {
	records := []provider.Record{
		aRecord("1", "abcd123", "10.0.0.1"),
		aRecord("2", "bbbb222", "10.0.0.2"),
		aRecord("3", "cccc333", "10.0.0.3"),
	}

	for _, failing := range []int{1, 2, 3} {
		t.Run(fmt.Sprintf("page %d", failing), func(t *testing.T) {
			p := NewMockProvider(1, records...)
			p.listErr = map[int]error{failing: errors.New("rate limited")}

			got, err := FetchZone(context.Background(), p, testZone, 2)
			var provErr *ProviderError
			if !errors.As(err, &provErr) {
				t.Fatalf("expected ProviderError, got %v", err)
			}
			if got != nil {
				t.Errorf("expected no partial snapshot, got %v", got)
			}
		})
	}
}
