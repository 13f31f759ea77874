package bacontract

import "errors"

// Sentinel errors for the engine's control-flow conditions (spec.md §7).
// EmptyBox and NoBisectableVariable are caught by the solver/optimizer
// loops and turned into ordinary branch decisions, never surfaced as
// failures to a caller; TimeOut unwinds the loop while preserving the
// best-known bounds; the IntList errors are programmer errors.
var (
	// ErrEmptyBox signals a contractor proved its input box has no
	// feasible point.
	ErrEmptyBox = errors.New("bacontract: empty box")

	// ErrNoBisectableVariable signals every dimension of a box is at
	// float granularity; the caller routes the box to the epsilon-box
	// path instead of treating this as failure.
	ErrNoBisectableVariable = errors.New("bacontract: no bisectable variable")

	// ErrTimeOut signals the loop's elapsed-time budget was exceeded.
	ErrTimeOut = errors.New("bacontract: search timed out")

	// ErrInvalidValue is returned by IntList when a value falls outside
	// [0, n).
	ErrInvalidValue = errors.New("bacontract: invalid value")

	// ErrNotAnElement is returned by IntList operations on a value not
	// currently a member.
	ErrNotAnElement = errors.New("bacontract: not an element")

	// ErrRepetition is returned when inserting a value already present.
	ErrRepetition = errors.New("bacontract: repetition")

	// ErrEmptyList names the empty-IntList condition; IntList.First and
	// Last return sentinel on an empty list rather than this error.
	ErrEmptyList = errors.New("bacontract: empty list")

	// ErrOutOfBounds is returned walking past a non-circular list end.
	ErrOutOfBounds = errors.New("bacontract: out of bounds")

	// ErrSyntaxError wraps a system-file parse failure; surfaced to the
	// caller unchanged per spec.md §7 rule 4.
	ErrSyntaxError = errors.New("bacontract: syntax error")

	// ErrLPBridgeFail marks a request the LP bridge could not complete;
	// LR treats this the same as StatusUnknown for the current face.
	ErrLPBridgeFail = errors.New("bacontract: lp bridge failure")
)
