package document

import (
	"errors"
	"fmt"
)

// ErrDuplicateNumber surfaces a unique index violation on the
// (number, version) pair. Callers retry allocation a bounded number of
// times before giving up.
var ErrDuplicateNumber = errors.New("document number already taken")

// ErrInvalidTypeOrDepartment is returned when a document references a
// missing or inactive document type or department.
var ErrInvalidTypeOrDepartment = errors.New("document type or department is missing or inactive")

// ErrNotLatestVersion is returned when a new version is requested from a
// document that already has a successor.
var ErrNotLatestVersion = errors.New("a newer version of this document already exists")

// InvalidTransitionError describes a lifecycle move the state machine
// does not allow.
type InvalidTransitionError struct {
	From DocumentStatus
	To   DocumentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid document transition from %s to %s", e.From, e.To)
}
