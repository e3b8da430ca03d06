// Package perr provides the classified error taxonomy used throughout the
// proxy: end-of-transport (normal source exhaustion), invalid option
// (configuration-time), invalid data (a codec cannot frame/parse), and
// fatal (any other unrecoverable stage error). All wrapping follows the
// "component.method: action failed: %w" convention so log lines read the
// same regardless of which stage raised the error.
package perr

import (
	"errors"
	"fmt"
)

// Class classifies an error for the engine's single dispatch decision:
// keep running, stop cleanly, or abort.
type Class int

const (
	// ClassInvalidOption covers configuration-time failures: unknown stage
	// names, malformed options, bad addresses.
	ClassInvalidOption Class = iota
	// ClassInvalidData covers a codec that cannot frame or parse its input.
	ClassInvalidData
	// ClassFatal covers anything else that escapes a stage.
	ClassFatal
)

func (c Class) String() string {
	switch c {
	case ClassInvalidOption:
		return "invalid-option"
	case ClassInvalidData:
		return "invalid-data"
	case ClassFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// ErrEndOfTransport is the sentinel a source's Pull returns once exhausted.
// It is not a Classified error: it drives the engine's flush pass, not its
// fatal-error path.
var ErrEndOfTransport = errors.New("end of transport")

// Classified wraps an error together with the component/operation that
// raised it and the class the engine should treat it as.
type Classified struct {
	Class     Class
	Component string
	Operation string
	Action    string
	Err       error
}

func (e *Classified) Error() string {
	return fmt.Sprintf("%s.%s: %s failed: %v", e.Component, e.Operation, e.Action, e.Err)
}

func (e *Classified) Unwrap() error { return e.Err }

func classify(class Class, err error, component, operation, action string) error {
	if err == nil {
		return nil
	}
	return &Classified{Class: class, Component: component, Operation: operation, Action: action, Err: err}
}

// WrapInvalidOption marks err as a configuration-time failure.
func WrapInvalidOption(err error, component, operation, action string) error {
	return classify(ClassInvalidOption, err, component, operation, action)
}

// WrapInvalidData marks err as a framing/parsing failure a codec raised.
func WrapInvalidData(err error, component, operation, action string) error {
	return classify(ClassInvalidData, err, component, operation, action)
}

// WrapFatal marks err as an unrecoverable stage failure.
func WrapFatal(err error, component, operation, action string) error {
	return classify(ClassFatal, err, component, operation, action)
}

// IsInvalidOption reports whether err (or any error it wraps) is classified
// as a configuration-time failure.
func IsInvalidOption(err error) bool { return classOf(err) == ClassInvalidOption }

// IsInvalidData reports whether err is classified as a framing failure.
func IsInvalidData(err error) bool { return classOf(err) == ClassInvalidData }

// IsFatal reports whether err is classified as fatal, or is unclassified
// (any error escaping a stage that nobody classified is treated as fatal
// by the engine — see internal/engine).
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var c *Classified
	if errors.As(err, &c) {
		return c.Class == ClassFatal
	}
	return true
}

func classOf(err error) Class {
	var c *Classified
	if errors.As(err, &c) {
		return c.Class
	}
	return ClassFatal
}

// AsFatal coerces any unclassified error into a Fatal one at the boundary
// where it escapes a stage, per SPEC_FULL.md's resolution of spec.md's
// open question about unexpected errors: nothing leaves a stage
// unclassified.
func AsFatal(err error, component, operation, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrEndOfTransport) {
		return err
	}
	var c *Classified
	if errors.As(err, &c) {
		return err
	}
	return WrapFatal(err, component, operation, action)
}
