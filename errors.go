package circlette

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidEncoding is returned for malformed codeword input.
	ErrInvalidEncoding = errors.New("invalid codeword encoding")

	// ErrNoUniqueRule is returned when no non-trivial candidate preserves
	// the valid spectrum.
	ErrNoUniqueRule = errors.New("no non-trivial rule preserves the spectrum")

	// ErrMultipleRulesFound matches *MultipleRulesError.
	ErrMultipleRulesFound = errors.New("multiple rules preserve the spectrum")

	// ErrNotBijective is returned when a candidate is not a bijection on the
	// full universe and so cannot be admitted to the search.
	ErrNotBijective = errors.New("rule is not a bijection")

	// ErrClassificationInconsistency matches *ClassificationInconsistencyError.
	ErrClassificationInconsistency = errors.New("orbit classification inconsistent")

	// ErrSimulationInstability matches *SimulationInstabilityError.
	ErrSimulationInstability = errors.New("walk simulation unstable")

	// ErrCoinNotClosed is returned when the rule moves the walk's internal
	// basis states outside the two-state internal space.
	ErrCoinNotClosed = errors.New("rule does not act within the walk's internal space")

	// ErrEmptySpectrum is returned when an operation needs at least one
	// valid codeword.
	ErrEmptySpectrum = errors.New("valid spectrum is empty")
)

// MultipleRulesError lists every non-trivial candidate that passed.
type MultipleRulesError struct {
	Family  string
	Passing []Rule
}

func (e *MultipleRulesError) Error() string {
	names := make([]string, len(e.Passing))
	for i, r := range e.Passing {
		names[i] = r.Name()
	}
	return fmt.Sprintf("%d rules in family %q preserve the spectrum: %s",
		len(e.Passing), e.Family, strings.Join(names, ", "))
}

func (e *MultipleRulesError) Is(target error) bool {
	return target == ErrMultipleRulesFound
}

// ClassificationInconsistencyError reports a valid state on which the
// accepted rule does not behave as an involution of the valid set.
type ClassificationInconsistencyError struct {
	Rule   string
	Reason string
	State  Codeword
	Image  Codeword
	Second Codeword
}

func (e *ClassificationInconsistencyError) Error() string {
	return fmt.Sprintf("rule %s: %s: %s → %s → %s",
		e.Rule, e.Reason, e.State, e.Image, e.Second)
}

func (e *ClassificationInconsistencyError) Is(target error) bool {
	return target == ErrClassificationInconsistency
}

// SimulationInstabilityError reports the step at which total probability
// drifted beyond tolerance.
type SimulationInstabilityError struct {
	Step      int
	Norm      float64
	Reference float64
	Tolerance float64
}

func (e *SimulationInstabilityError) Error() string {
	return fmt.Sprintf("norm %.9g drifted from %.9g beyond %.3g at step %d",
		e.Norm, e.Reference, e.Tolerance, e.Step)
}

func (e *SimulationInstabilityError) Is(target error) bool {
	return target == ErrSimulationInstability
}
