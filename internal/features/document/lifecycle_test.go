package document

import (
	"errors"
	"testing"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to DocumentStatus
		want     bool
	}{
		{StatusDraft, StatusPending, true},
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusDraft, StatusApproved, false},
		{StatusDraft, StatusRejected, false},
		{StatusApproved, StatusPending, false},
		{StatusApproved, StatusDraft, false},
		{StatusRejected, StatusPending, false},
		{StatusRejected, StatusDraft, false},
		{StatusPending, StatusDraft, false},
		{StatusApproved, StatusRejected, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCheckTransitionError(t *testing.T) {
	err := CheckTransition(StatusApproved, StatusPending)
	var transition *InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if transition.From != StatusApproved || transition.To != StatusPending {
		t.Errorf("unexpected transition error %v", transition)
	}

	if err := CheckTransition(StatusDraft, StatusPending); err != nil {
		t.Errorf("draft to pending should be allowed: %v", err)
	}
}

func TestNextVersion(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1.0", "2.0"},
		{"2.0", "3.0"},
		{"9.0", "10.0"},
		{"3.1", "4.0"},
		{"", "1.0"},
		{"garbage", "1.0"},
	}
	for _, tt := range tests {
		if got := NextVersion(tt.in); got != tt.want {
			t.Errorf("NextVersion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
