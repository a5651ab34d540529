package compiler

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a construction failure.
type ErrorKind int

const (
	// MalformedConstruction: a node was built with an internally inconsistent
	// shape, such as an unknown back-reference or an unassignable rest target.
	MalformedConstruction ErrorKind = iota
	// UnresolvableVariable: a scope failed to produce storage for a name.
	// This indicates an internal fault, never a user diagnostic.
	UnresolvableVariable
	// ShapeInconsistency: a parameter or destructuring list is
	// contradictory, e.g. two rest targets at one level.
	ShapeInconsistency
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedConstruction:
		return "malformed construction"
	case UnresolvableVariable:
		return "unresolvable variable"
	case ShapeInconsistency:
		return "shape inconsistency"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinels for errors.Is matching against an *Error of the given kind.
var (
	ErrMalformed    = errors.New("malformed construction")
	ErrUnresolvable = errors.New("unresolvable variable")
	ErrShape        = errors.New("shape inconsistency")
)

// Error is a construction error. Any Error aborts the unit being built.
type Error struct {
	Kind ErrorKind
	Line int
	msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.msg)
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrMalformed:
		return e.Kind == MalformedConstruction
	case ErrUnresolvable:
		return e.Kind == UnresolvableVariable
	case ErrShape:
		return e.Kind == ShapeInconsistency
	}
	return false
}

func errorAt(kind ErrorKind, line int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Line: line, msg: fmt.Sprintf(format, args...)}
}
