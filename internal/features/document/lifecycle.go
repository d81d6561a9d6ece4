package document

import (
	"fmt"
	"strconv"
	"strings"
)

// transitions is the document lifecycle. Approved and rejected are
// terminal; continuing work on a terminal document means creating a new
// version, not mutating this one.
var transitions = map[DocumentStatus][]DocumentStatus{
	StatusDraft:   {StatusPending},
	StatusPending: {StatusApproved, StatusRejected},
}

// CanTransition reports whether the lifecycle allows moving a document
// from one status to another.
func CanTransition(from, to DocumentStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CheckTransition returns an InvalidTransitionError when the move is not
// allowed.
func CheckTransition(from, to DocumentStatus) error {
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}

// NextVersion increments the major component of a version string, so
// "1.0" becomes "2.0". An unparseable version restarts at "1.0".
func NextVersion(version string) string {
	major, _, _ := strings.Cut(version, ".")
	n, err := strconv.Atoi(major)
	if err != nil || n < 1 {
		return "1.0"
	}
	return fmt.Sprintf("%d.0", n+1)
}
