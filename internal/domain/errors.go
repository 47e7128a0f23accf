package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrMisalignedDates  = errors.New("misaligned dates")
	// ErrNotApplicable marks analyses whose preconditions are not met at
	// all, like a seasonal decomposition over less than two cycles
	ErrNotApplicable    = errors.New("not applicable")
	ErrDegenerateFactor = errors.New("degenerate factor")
)

type InsufficientDataError struct {
	Operation string
	Have      int
	Need      int
	// set when the shortfall makes the whole analysis undefined rather
	// than just imprecise
	NotApplicable bool
}

func (e InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data, have %d observations but need at least %d", e.Operation, e.Have, e.Need)
}

func (e InsufficientDataError) Is(target error) bool {
	if target == ErrInsufficientData {
		return true
	}
	return e.NotApplicable && target == ErrNotApplicable
}

// MisalignedDatesError is returned when a target series and its factors
// share no common date after alignment
type MisalignedDatesError struct {
	TargetDates int
	FactorDates map[string]int
}

func (e MisalignedDatesError) Error() string {
	names := make([]string, 0, len(e.FactorDates))
	for name := range e.FactorDates {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, e.FactorDates[name]))
	}
	return fmt.Sprintf("no common dates between target (%d dates) and factors (%s)", e.TargetDates, strings.Join(parts, ", "))
}

func (e MisalignedDatesError) Is(target error) bool {
	return target == ErrMisalignedDates
}

// DegenerateFactorError is returned when factors are constant over the
// aligned sample and cannot be separated from the intercept. a value
// factor over no more sectors than its bucket size is always 0
type DegenerateFactorError struct {
	Factors      []string
	Observations int
}

func (e DegenerateFactorError) Error() string {
	return fmt.Sprintf("factors have no variance over %d aligned observations: %s", e.Observations, strings.Join(e.Factors, ", "))
}

func (e DegenerateFactorError) Is(target error) bool {
	return target == ErrDegenerateFactor
}
