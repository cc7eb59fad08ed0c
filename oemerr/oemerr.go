// Package oemerr defines the two error kinds the sequencer surfaces
// synchronously: malformed requests and invariant violations
// (IllegalArgument), and buffer-budget overruns (OutOfMemory).
package oemerr

import "fmt"

// IllegalArgument reports a malformed request or a violated invariant
// from the data model (nSamp not a multiple of 64, unknown scan kind, bad
// probe name, a value out of its documented range,...).
type IllegalArgument struct {
	Field string
	Reason string
}

func (e *IllegalArgument) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("illegal argument: %s", e.Reason)
	}
	return fmt.Sprintf("illegal argument: %s: %s", e.Field, e.Reason)
}

// NewIllegalArgument builds an *IllegalArgument for a named field.
func NewIllegalArgument(field, format string, a ...interface{}) error {
	return &IllegalArgument{Field: field, Reason: fmt.Sprintf(format, a...)}
}

// OutOfMemory reports that the requested schedule would exceed the
// per-OEM 4 GB DDR budget.
type OutOfMemory struct {
	OEM int
	Requested uint64
	Budget uint64
}

func (e *OutOfMemory) Error() string {
	return fmt.Sprintf("out of memory: OEM %d requires %d bytes, budget is %d bytes", e.OEM, e.Requested, e.Budget)
}

// NewOutOfMemory builds an *OutOfMemory for the given OEM.
func NewOutOfMemory(oem int, requested, budget uint64) error {
	return &OutOfMemory{OEM: oem, Requested: requested, Budget: budget}
}
