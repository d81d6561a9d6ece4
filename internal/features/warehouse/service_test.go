package warehouse

import (
	"strings"
	"testing"
	"time"

	"trackdoc/internal/features/report"
)

func TestUpsertStatement(t *testing.T) {
	row := report.RegisterRow{
		Number:         "POL-IT-2026-001",
		Title:          "Access Policy",
		Version:        "2.0",
		Status:         "approved",
		TypeName:       "Policy",
		DepartmentName: "IT",
		AuthorName:     "jsmith",
		CreatedAt:      time.Now(),
	}

	query, values := upsertStatement("document_register", row)

	if !strings.HasPrefix(query, "INSERT INTO document_register (") {
		t.Fatalf("unexpected query prefix: %s", query)
	}
	if !strings.Contains(query, "ON CONFLICT (number, version) DO UPDATE SET") {
		t.Fatalf("query missing conflict clause: %s", query)
	}
	if strings.Contains(query, "number = $") || strings.Contains(query, "version = $2") {
		t.Fatalf("conflict key columns must not be updated: %s", query)
	}
	if len(values) != len(registerColumns) {
		t.Fatalf("expected %d values, got %d", len(registerColumns), len(values))
	}
	if values[0] != "POL-IT-2026-001" {
		t.Fatalf("expected number first, got %v", values[0])
	}
}
