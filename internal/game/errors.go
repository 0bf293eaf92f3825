package game

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a card is not in the zone it was looked up in.
	ErrNotFound = errors.New("card not found")

	// ErrStop ends a selection stream. It is returned by Stream.Next when the
	// client stops or no eligible card remains.
	ErrStop = errors.New("stream stopped")
)

// StateError reports an engine invariant violation. The operation that
// produced it cannot continue.
type StateError struct {
	Op  string
	Msg string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func stateErrorf(op, format string, args ...any) error {
	return &StateError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// ProtocolViolation reports a malformed or inconsistent prompt response
// from a single client.
type ProtocolViolation struct {
	Player string
	Msg    string
}

func (e *ProtocolViolation) Error() string {
	if e.Player == "" {
		return "protocol violation: " + e.Msg
	}
	return fmt.Sprintf("protocol violation by %s: %s", e.Player, e.Msg)
}

func violationf(format string, args ...any) error {
	return &ProtocolViolation{Msg: fmt.Sprintf(format, args...)}
}

// RuleError reports an action the game rules forbid, such as buying without
// enough coins. It is always returned before any state is changed.
type RuleError struct {
	Msg string
}

func (e *RuleError) Error() string {
	return "rule: " + e.Msg
}

func ruleErrorf(format string, args ...any) error {
	return &RuleError{Msg: fmt.Sprintf(format, args...)}
}

// IsProtocolViolation reports whether err is or wraps a ProtocolViolation.
func IsProtocolViolation(err error) bool {
	var pv *ProtocolViolation
	return errors.As(err, &pv)
}

// IsStateError reports whether err is or wraps a StateError.
func IsStateError(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}

// IsRuleError reports whether err is or wraps a RuleError.
func IsRuleError(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}
