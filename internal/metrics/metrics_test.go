package metrics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// samples renders every counter and gauge in the registry as
// name{label="value",...} value, one per line.
func samples(t *testing.T, m *Metrics) string {
	t.Helper()
	families, err := m.registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	var b strings.Builder
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			var labels []string
			for _, lp := range metric.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case metric.GetCounter() != nil:
				fmt.Fprintf(&b, "%s %g\n", name, metric.GetCounter().GetValue())
			case metric.GetGauge() != nil:
				fmt.Fprintf(&b, "%s %g\n", name, metric.GetGauge().GetValue())
			}
		}
	}
	return b.String()
}

func TestCounters(t *testing.T) {
	m := New(true)
	m.IncRun("update", true)
	m.IncDNSRequest("read", "example.com", true)
	m.IncDNSRequest("bogus", "example.com", true)
	m.IncRecordOperation("delete", "example.com", false)
	m.IncFleetRequest("login", true)
	m.SetInventoryNames(3)
	m.SetZoneRecords("example.com", 2)

	body := samples(t, m)
	for _, want := range []string{
		`fleet_dns_sync_runs_total{mode="update",status="success"} 1`,
		`fleet_dns_sync_dns_requests_total{operation="read",status="success",zone="example.com"} 1`,
		`fleet_dns_sync_record_operations_total{operation="delete",status="failure",zone="example.com"} 1`,
		`fleet_dns_sync_fleet_requests_total{operation="login",status="success"} 1`,
		`fleet_dns_sync_inventory_names 3`,
		`fleet_dns_sync_zone_records{zone="example.com"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("registry missing %q", want)
		}
	}
	if strings.Contains(body, "bogus") {
		t.Error("invalid operation should not be recorded")
	}
}

func TestPush(t *testing.T) {
	var gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := New(true)
	m.IncRun("clear", false)
	if err := m.Push(context.Background(), srv.URL, "fleet_dns_sync"); err != nil {
		t.Fatalf("push: %v", err)
	}
	if gotPath != "/metrics/job/fleet_dns_sync" {
		t.Errorf("unexpected push path %q", gotPath)
	}
	if len(gotBody) == 0 {
		t.Error("expected metrics body")
	}
}

func TestUnregistered(t *testing.T) {
	m := New(false)
	m.IncRun("update", true)
	m.SetInventoryNames(2)

	if body := samples(t, m); body != "" {
		t.Errorf("expected empty registry, got:\n%s", body)
	}
}
