package document

import "testing"

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		prefix, dept string
		year         int
		seq          int64
		want         string
	}{
		{"POL", "IT", 2026, 1, "POL-IT-2026-001"},
		{"POL", "IT", 2026, 42, "POL-IT-2026-042"},
		{"PRO", "HR", 2025, 999, "PRO-HR-2025-999"},
		{"PRO", "HR", 2025, 1000, "PRO-HR-2025-1000"},
		{"INS", "FIN", 2026, 12345, "INS-FIN-2026-12345"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.prefix, tt.dept, tt.year, tt.seq); got != tt.want {
			t.Errorf("FormatNumber(%s, %s, %d, %d) = %s, want %s", tt.prefix, tt.dept, tt.year, tt.seq, got, tt.want)
		}
	}
}
