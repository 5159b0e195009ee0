package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration            = errors.New("configuration error")
	ErrUnresolvedRelation       = errors.New("unresolved relation")
	ErrCyclicDependency         = errors.New("cyclic dependency")
	ErrInsufficientRelationPool = errors.New("insufficient relation pool")
	ErrUnsupportedGeneratorKind = errors.New("unsupported generator kind")
	ErrInvalidColumnSubset      = errors.New("invalid column subset")
	ErrSequenceExhausted        = errors.New("row sequence exhausted")
)

// Configf wraps ErrConfiguration with a formatted message.
func Configf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// CycleError reports the entities forming a dependency cycle.
// The first and last element of Path are the same entity.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCyclicDependency, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error {
	return ErrCyclicDependency
}

// InsufficientPoolError is returned when sampling without replacement asks for
// more keys than the target entity holds.
type InsufficientPoolError struct {
	Entity    string
	Target    string
	Requested int
	Available int
}

func (e *InsufficientPoolError) Error() string {
	return fmt.Sprintf("%s: entity %s needs %d unique keys from %s but only %d exist",
		ErrInsufficientRelationPool, e.Entity, e.Requested, e.Target, e.Available)
}

func (e *InsufficientPoolError) Unwrap() error {
	return ErrInsufficientRelationPool
}
