package peg

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrNoMatch reports that the input does not match the grammar.
	ErrNoMatch = errors.New("no match")
	// ErrUndefinedRule reports a reference to a rule that was never defined.
	ErrUndefinedRule = errors.New("undefined rule")
	// ErrUndefinedStart reports a missing or undefined start rule.
	ErrUndefinedStart = errors.New("undefined start rule")
	// ErrDuplicateRule reports a second definition of the same rule name.
	ErrDuplicateRule = errors.New("duplicate rule")
	// ErrEmptyRuleName reports a rule defined without a name.
	ErrEmptyRuleName = errors.New("empty rule name")
	// ErrBuilderSealed reports a definition made after Build.
	ErrBuilderSealed = errors.New("builder already built")
	// ErrInvalidCharSet reports a malformed character class body.
	ErrInvalidCharSet = errors.New("invalid character class")
)

// ActionError is returned when an action fails. It aborts the whole parse
// rather than failing the enclosing match.
type ActionError struct {
	// Action is the action's name or code, when known.
	Action string
	// Offset is the byte offset where the governed expression started.
	Offset int
	// Err is the error returned by the action.
	Err error
}

func (e *ActionError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("action at offset %d: %v", e.Offset, e.Err)
	}

	return fmt.Sprintf("action %q at offset %d: %v", e.Action, e.Offset, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// abort carries a fatal error out of a running match. It is recovered at the
// boundary of Run and Parse.
type abort struct {
	err error
}
