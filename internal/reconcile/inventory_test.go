package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/evanofslack/fleet-dns-sync/internal/source"
)

func TestFetchInventory(t *testing.T) {
	tests := []struct {
		name     string
		devices  []source.Device
		expected Inventory
	}{
		{
			name: "addresses split and deduplicated",
			devices: []source.Device{
				{UUID: "abcd1234567890", IPAddress: "10.0.0.1 10.0.0.2 10.0.0.1"},
				{UUID: "ffff0001234567", IPAddress: "192.168.1.5"},
			},
			expected: Inventory{
				"abcd123": NewIPSet("10.0.0.1", "10.0.0.2"),
				"ffff000": NewIPSet("192.168.1.5"),
			},
		},
		{
			name: "device without addresses",
			devices: []source.Device{
				{UUID: "abcd1234567890", IPAddress: ""},
				{UUID: "bbbb2224567890", IPAddress: "   "},
			},
			expected: Inventory{
				"abcd123": NewIPSet(),
				"bbbb222": NewIPSet(),
			},
		},
		{
			name: "short uuid skipped",
			devices: []source.Device{
				{UUID: "abc", IPAddress: "10.0.0.1"},
				{UUID: "abcd1234567890", IPAddress: "10.0.0.2"},
			},
			expected: Inventory{
				"abcd123": NewIPSet("10.0.0.2"),
			},
		},
		{
			name: "shared prefix merged",
			devices: []source.Device{
				{UUID: "abcd123aaaaaaa", IPAddress: "10.0.0.1"},
				{UUID: "abcd123bbbbbbb", IPAddress: "10.0.0.2"},
			},
			expected: Inventory{
				"abcd123": NewIPSet("10.0.0.1", "10.0.0.2"),
			},
		},
		{
			name:     "empty fleet",
			devices:  nil,
			expected: Inventory{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &MockSource{loggedIn: true, devices: tt.devices}
			if _, err := src.Login(context.Background()); err != nil {
				t.Fatal(err)
			}

			got, err := FetchInventory(context.Background(), src)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("FetchInventory() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFetchInventoryErrors(t *testing.T) {
	t.Run("not logged in", func(t *testing.T) {
		_, err := FetchInventory(context.Background(), &MockSource{})

		var authErr *AuthenticationError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthenticationError, got %v", err)
		}
	})

	t.Run("provider failure", func(t *testing.T) {
		src := &MockSource{loggedIn: true, devicesErr: errors.New("boom")}
		_, _ = src.Login(context.Background())

		_, err := FetchInventory(context.Background(), src)
		var provErr *ProviderError
		if !errors.As(err, &provErr) {
			t.Fatalf("expected ProviderError, got %v", err)
		}
		if provErr.Op != "list devices" {
			t.Errorf("unexpected op %q", provErr.Op)
		}
	})
}
