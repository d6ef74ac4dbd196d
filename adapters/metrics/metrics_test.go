package metrics_test

import (
	"testing"

	"github.com/artpar/formgate/adapters/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func TestNewWithRegistry(t *testing.T) {
	// Use a new registry to avoid conflicts with other tests
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	if m == nil {
		t.Fatal("NewWithRegistry returned nil")
	}
	if m.RequestsTotal == nil {
		t.Error("RequestsTotal is nil")
	}
	if m.ValidationFailures == nil {
		t.Error("ValidationFailures is nil")
	}
	if m.SubmissionsTotal == nil {
		t.Error("SubmissionsTotal is nil")
	}
	if m.SyncPlacements == nil {
		t.Error("SyncPlacements is nil")
	}
	if m.ConfigReloads == nil {
		t.Error("ConfigReloads is nil")
	}
}

func TestCountersGather(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.SubmissionsTotal.WithLabelValues("contact-us", "anonymous").Inc()
	m.SyncPlacements.WithLabelValues("added").Add(2)
	m.ValidationFailures.WithLabelValues("scope:registration").Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}
	for _, name := range []string{
		"formgate_submissions_total",
		"formgate_sync_placements_total",
		"formgate_validation_failures_total",
	} {
		if !found[name] {
			t.Errorf("%s metric not found", name)
		}
	}
}
