package diag

import (
	"fmt"

	"github.com/usctl/oemcore/driver"
)

// TraceOEM wraps a driver.OEM so every command it issues is also
// appended to a Tracer's command trace, without changing the
// programmer's behavior.
type TraceOEM struct {
	Inner driver.OEM
	Tracer *Tracer
	Index int
}

var _ driver.OEM = (*TraceOEM)(nil)

func (t *TraceOEM) record(firing int, command string, args ...interface{}) {
	if t.Tracer == nil {
		return
	}
	_ = t.Tracer.Record(t.Index, firing, command, fmt.Sprint(args...))
}

func (t *TraceOEM) SetTxAperture(mask string, firing int) error {
	t.record(firing, "SetTxAperture", mask)
	return t.Inner.SetTxAperture(mask, firing)
}
func (t *TraceOEM) SetTxDelays(delays []float64, firing int) error {
	t.record(firing, "SetTxDelays", len(delays))
	return t.Inner.SetTxDelays(delays, firing)
}
func (t *TraceOEM) SetTxFrequency(hz float64, firing int) error {
	t.record(firing, "SetTxFrequency", hz)
	return t.Inner.SetTxFrequency(hz, firing)
}
func (t *TraceOEM) SetTxHalfPeriods(n int, firing int) error {
	t.record(firing, "SetTxHalfPeriods", n)
	return t.Inner.SetTxHalfPeriods(n, firing)
}
func (t *TraceOEM) SetTxInvert(invert int, firing int) error {
	t.record(firing, "SetTxInvert", invert)
	return t.Inner.SetTxInvert(invert, firing)
}
func (t *TraceOEM) SetActiveChannelGroup(mask string, firing int) error {
	t.record(firing, "SetActiveChannelGroup", mask)
	return t.Inner.SetActiveChannelGroup(mask, firing)
}
func (t *TraceOEM) SetRxAperture(mask string, firing int) error {
	t.record(firing, "SetRxAperture", mask)
	return t.Inner.SetRxAperture(mask, firing)
}
func (t *TraceOEM) SetRxTime(seconds float64, firing int) error {
	t.record(firing, "SetRxTime", seconds)
	return t.Inner.SetRxTime(seconds, firing)
}
func (t *TraceOEM) SetRxDelay(seconds float64, firing int) error {
	t.record(firing, "SetRxDelay", seconds)
	return t.Inner.SetRxDelay(seconds, firing)
}
func (t *TraceOEM) TGCSetSamples(curve []float64, firing int) error {
	t.record(firing, "TGCSetSamples", len(curve))
	return t.Inner.TGCSetSamples(curve, firing)
}
func (t *TraceOEM) SetNumberOfFirings(n int) error {
	t.record(-1, "SetNumberOfFirings", n)
	return t.Inner.SetNumberOfFirings(n)
}
func (t *TraceOEM) EnableTransmit() error {
	t.record(-1, "EnableTransmit")
	return t.Inner.EnableTransmit()
}
func (t *TraceOEM) EnableReceive() error {
	t.record(-1, "EnableReceive")
	return t.Inner.EnableReceive()
}
func (t *TraceOEM) SetNTriggers(n int) error {
	t.record(-1, "SetNTriggers", n)
	return t.Inner.SetNTriggers(n)
}
func (t *TraceOEM) SetTrigger(priUs float64, syncIn, syncOut int, idx int) error {
	t.record(idx, "SetTrigger", priUs, syncIn, syncOut)
	return t.Inner.SetTrigger(priUs, syncIn, syncOut, idx)
}
func (t *TraceOEM) ClearScheduledReceive() error {
	t.record(-1, "ClearScheduledReceive")
	return t.Inner.ClearScheduledReceive()
}
func (t *TraceOEM) ScheduleReceive(offset, length, decimation, firstSample int) error {
	t.record(-1, "ScheduleReceive", offset, length, decimation, firstSample)
	return t.Inner.ScheduleReceive(offset, length, decimation, firstSample)
}
func (t *TraceOEM) TriggerStart() error {
	t.record(-1, "TriggerStart")
	return t.Inner.TriggerStart()
}
func (t *TraceOEM) TriggerSync() error {
	t.record(-1, "TriggerSync")
	return t.Inner.TriggerSync()
}
func (t *TraceOEM) TriggerStop() error {
	t.record(-1, "TriggerStop")
	return t.Inner.TriggerStop()
}
func (t *TraceOEM) TransferAllRXBuffersToHost(nWords int) ([]int16, error) {
	t.record(-1, "TransferAllRXBuffersToHost", nWords)
	return t.Inner.TransferAllRXBuffersToHost(nWords)
}
func (t *TraceOEM) EnableHV() error {
	t.record(-1, "EnableHV")
	return t.Inner.EnableHV()
}
func (t *TraceOEM) SetHVVoltage(volts float64) error {
	t.record(-1, "SetHVVoltage", volts)
	return t.Inner.SetHVVoltage(volts)
}
