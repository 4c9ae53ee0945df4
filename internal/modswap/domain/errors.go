package domain

import (
	"errors"
	"fmt"
)

// Exported error variables allow callers to use errors.Is() for error checking.
var (
	ErrStoreCorrupt       = errors.New("pointer store is corrupt")
	ErrInvalidTarget      = errors.New("set not found in catalog")
	ErrRelocationConflict = errors.New("destination already has a file with the same name")
	ErrIOFailure          = errors.New("filesystem operation failed")
	ErrRecoveryRequired   = errors.New("an interrupted swap must be recovered first")

	ErrSetNameEmpty        = errors.New("set name cannot be empty")
	ErrSetNameDot          = errors.New("set name cannot be '.' or '..'")
	ErrSetNameSeparator    = errors.New("set name cannot contain path separators")
	ErrSetNameNullByte     = errors.New("set name contains null byte")
	ErrSetNameNonPrintable = errors.New("set name contains control characters")
)

// Phase names the step during which a relocation or record error happened.
// PhaseLoad and PhasePersist cover reading and writing the pointer file and
// the journal.
type Phase string

const (
	PhasePlan     Phase = "plan"
	PhasePark     Phase = "park"
	PhasePull     Phase = "pull"
	PhaseRollback Phase = "rollback"
	PhaseRecover  Phase = "recover"
	PhaseLoad     Phase = "load"
	PhasePersist  Phase = "persist"
)

// RelocationError reports which file and which phase a relocation failed at.
// Kind is one of the category sentinels above; Err is the underlying cause.
type RelocationError struct {
	Phase Phase
	Path  string
	Kind  error
	Err   error
}

func (e *RelocationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Phase, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Phase, e.Path, e.Kind, e.Err)
}

// Unwrap exposes both the category and the cause to errors.Is and errors.As.
func (e *RelocationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IOFailure wraps a filesystem error with its phase and path.
func IOFailure(phase Phase, path string, err error) error {
	return &RelocationError{Phase: phase, Path: path, Kind: ErrIOFailure, Err: err}
}

// Conflict reports a destination that is already occupied.
func Conflict(phase Phase, path string) error {
	return &RelocationError{Phase: phase, Path: path, Kind: ErrRelocationConflict}
}
