package flightfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/tarmac/internal/core/alloc"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flights.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestFetchParsesFlights(t *testing.T) {
	path := writeFixture(t, `[
		{"id": "abc123", "callsign": "AFR447", "aircraft_size": "medium", "direction": "arrival"},
		{"id": "def456", "callsign": "DLH400", "aircraft_size": "large"}
	]`)

	flights, err := New(path).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(flights) != 2 {
		t.Fatalf("expected 2 flights, got %d", len(flights))
	}
	if flights[0].Callsign != "AFR447" || flights[0].Size != alloc.SizeMedium {
		t.Errorf("unexpected flight: %+v", flights[0])
	}
	// Missing direction defaults to arrival.
	if flights[1].Direction != alloc.DirectionArrival {
		t.Errorf("expected arrival default, got %s", flights[1].Direction)
	}
}

func TestFetchRejectsBadRecords(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing id", `[{"callsign": "AFR447", "aircraft_size": "medium"}]`},
		{"bad size", `[{"id": "abc123", "aircraft_size": "jumbo"}]`},
		{"not json", `{broken`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(writeFixture(t, tt.content)).Fetch(context.Background()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFetchMissingFile(t *testing.T) {
	if _, err := New("/nonexistent/flights.json").Fetch(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}
