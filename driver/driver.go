// Package driver defines the downstream hardware command contract:
// the synchronous, per-OEM command set that the Hardware Programmer
// (C4) and the Acquisition & Demultiplexer (C5) issue, and a
// retry-once wrapper for the two commands known to be retryable.
package driver

import (
	"fmt"
)

// OEM is one front-end module's synchronous command surface. All
// methods are blocking; errors are rethrown to the caller except
// where the retry helper below is used (EnableHV, SetHVVoltage).
type OEM interface {
	SetTxAperture(mask string, firing int) error
	SetTxDelays(delays []float64, firing int) error
	SetTxFrequency(hz float64, firing int) error
	SetTxHalfPeriods(n int, firing int) error
	SetTxInvert(invert int, firing int) error
	SetActiveChannelGroup(mask string, firing int) error
	SetRxAperture(mask string, firing int) error
	SetRxTime(seconds float64, firing int) error
	SetRxDelay(seconds float64, firing int) error
	TGCSetSamples(curve []float64, firing int) error

	SetNumberOfFirings(n int) error
	EnableTransmit() error
	EnableReceive() error

	SetNTriggers(n int) error
	SetTrigger(priUs float64, syncIn, syncOut int, idx int) error

	ClearScheduledReceive() error
	ScheduleReceive(offset, length, decimation, firstSample int) error

	TriggerStart() error
	TriggerSync() error
	TriggerStop() error

	// TransferAllRXBuffersToHost pulls this OEM's DDR buffer to host
	// memory: nSamp·nTrig·32 int16 words. Hardware's implementation
	// delegates to the dmaxfer subpackage.
	TransferAllRXBuffersToHost(nWords int) ([]int16, error)

	EnableHV() error
	SetHVVoltage(volts float64) error

	// Front-end analog configuration, set once at session open.
	SetPGAGain(db float64) error
	SetLPFCutoff(hz float64) error
	SetActiveTermination(ohms float64) error
	SetLNAGain(db float64) error
	SetDTGCEnable(enabled bool) error
	SetTGCEnable(enabled bool) error
	ProgramChannelMap(tx, rx [][]int) error
}

// Warner receives the "retrying" notice when a retryable command
// fails on its first attempt.
type Warner interface {
	Warn(msg string)
}

// RetryOnce calls fn; if it fails, it warns and calls fn exactly one
// more time, returning that second result. This is the only retry
// policy the downstream contract allows, and only for EnableHV and
// SetHVVoltage.
func RetryOnce(warn Warner, label string, fn func() error) error {
	if err := fn(); err != nil {
		if warn != nil {
			warn.Warn(fmt.Sprintf("%s failed, retrying once: %v", label, err))
		}
		return fn()
	}
	return nil
}
