package fung

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrOutOfDomain is matched by every *DomainError.
	ErrOutOfDomain = errors.New("fung: argument out of domain")
	// ErrShape is matched by every *ShapeError.
	ErrShape = errors.New("fung: shape mismatch")
	// ErrInconsistent is matched by every *ConsistencyError.
	ErrInconsistent = errors.New("fung: inconsistent derivative request")
	// ErrUnknownVariable reports a variable id that does not occur in an expression.
	ErrUnknownVariable = errors.New("fung: unknown variable")
)

// DomainError is returned by an update whose argument lies outside the
// domain of an elementary function. The function keeps its previous point.
type DomainError struct {
	Func  string
	Range string
	Arg   float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("fung: %s: argument %g outside %s", e.Func, e.Arg, e.Range)
}

func (e *DomainError) Unwrap() error { return ErrOutOfDomain }

// ShapeError reports a value of the wrong kind or dimensions.
type ShapeError struct {
	Op   string
	Want string
	Got  string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("fung: %s: want %s, got %s", e.Op, e.Want, e.Got)
}

func (e *ShapeError) Unwrap() error { return ErrShape }

// ConsistencyError reports a derivative request that cannot be served, for
// instance a second derivative whose first-order prerequisite is undefined.
type ConsistencyError struct {
	IDs    []VarID
	Reason string
	// Err is a more specific cause, such as ErrUnknownVariable.
	Err error
}

func (e *ConsistencyError) Error() string {
	if len(e.IDs) == 0 {
		return "fung: " + e.Reason
	}
	return fmt.Sprintf("fung: derivative %s: %s", formatIDs(e.IDs), e.Reason)
}

func (e *ConsistencyError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInconsistent}
	}
	return []error{ErrInconsistent, e.Err}
}

func formatIDs(ids []VarID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "x" + strconv.Itoa(int(id))
	}
	return "d/(" + strings.Join(parts, ",") + ")"
}
