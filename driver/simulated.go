package driver

import (
	"fmt"
	"math"
	"math/rand"
)

// Simulated is an in-memory OEM implementation for tests and the demo
// CLI: it records every command issued and, on
// TransferAllRXBuffersToHost, synthesizes a 12-bit-range sine+dither
// RF buffer instead of reading real hardware.
type Simulated struct {
	Index int // this OEM's index, 0-based

	Calls []string

	nFirings int
	nTriggers int

	FailEnableHVOnce bool
	FailHVVoltageOnce bool
	enableHVAttempts int
	setHVVoltageAttempts int

	// SampleFreq and ToneFreq drive the synthetic waveform; defaults
	// to a 5 MHz tone at 65 MHz if left zero.
	SampleFreq float64
	ToneFreq float64
}

var _ OEM = (*Simulated)(nil)

func (s *Simulated) log(format string, args ...interface{}) {
	s.Calls = append(s.Calls, fmt.Sprintf(format, args...))
}

func (s *Simulated) SetTxAperture(mask string, firing int) error {
	s.log("SetTxAperture(%s,%d)", mask, firing)
	return nil
}
func (s *Simulated) SetTxDelays(delays []float64, firing int) error {
	s.log("SetTxDelays(len=%d,%d)", len(delays), firing)
	return nil
}
func (s *Simulated) SetTxFrequency(hz float64, firing int) error {
	s.log("SetTxFrequency(%g,%d)", hz, firing)
	return nil
}
func (s *Simulated) SetTxHalfPeriods(n int, firing int) error {
	s.log("SetTxHalfPeriods(%d,%d)", n, firing)
	return nil
}
func (s *Simulated) SetTxInvert(invert int, firing int) error {
	s.log("SetTxInvert(%d,%d)", invert, firing)
	return nil
}
func (s *Simulated) SetActiveChannelGroup(mask string, firing int) error {
	s.log("SetActiveChannelGroup(%s,%d)", mask, firing)
	return nil
}
func (s *Simulated) SetRxAperture(mask string, firing int) error {
	s.log("SetRxAperture(%s,%d)", mask, firing)
	return nil
}
func (s *Simulated) SetRxTime(seconds float64, firing int) error {
	s.log("SetRxTime(%g,%d)", seconds, firing)
	return nil
}
func (s *Simulated) SetRxDelay(seconds float64, firing int) error {
	s.log("SetRxDelay(%g,%d)", seconds, firing)
	return nil
}
func (s *Simulated) TGCSetSamples(curve []float64, firing int) error {
	s.log("TGCSetSamples(len=%d,%d)", len(curve), firing)
	return nil
}

func (s *Simulated) SetNumberOfFirings(n int) error {
	s.nFirings = n
	s.log("SetNumberOfFirings(%d)", n)
	return nil
}
func (s *Simulated) EnableTransmit() error { s.log("EnableTransmit()"); return nil }
func (s *Simulated) EnableReceive() error { s.log("EnableReceive()"); return nil }

func (s *Simulated) SetNTriggers(n int) error {
	s.nTriggers = n
	s.log("SetNTriggers(%d)", n)
	return nil
}
func (s *Simulated) SetTrigger(priUs float64, syncIn, syncOut int, idx int) error {
	s.log("SetTrigger(%g,%d,%d,%d)", priUs, syncIn, syncOut, idx)
	return nil
}

func (s *Simulated) ClearScheduledReceive() error {
	s.log("ClearScheduledReceive()")
	return nil
}
func (s *Simulated) ScheduleReceive(offset, length, decimation, firstSample int) error {
	s.log("ScheduleReceive(%d,%d,%d,%d)", offset, length, decimation, firstSample)
	return nil
}

func (s *Simulated) TriggerStart() error { s.log("TriggerStart()"); return nil }
func (s *Simulated) TriggerSync() error { s.log("TriggerSync()"); return nil }
func (s *Simulated) TriggerStop() error { s.log("TriggerStop()"); return nil }

// TransferAllRXBuffersToHost synthesizes nWords int16 samples: a
// sine tone per 32-channel lane with light dither, matching the
// teacher's synthetic-data generation style but without the FIFO.
func (s *Simulated) TransferAllRXBuffersToHost(nWords int) ([]int16, error) {
	s.log("TransferAllRXBuffersToHost(%d)", nWords)
	sampleFreq := s.SampleFreq
	if sampleFreq == 0 {
		sampleFreq = 65e6
	}
	toneFreq := s.ToneFreq
	if toneFreq == 0 {
		toneFreq = 5e6
	}
	out := make([]int16, nWords)
	phaseStep := 2 * math.Pi * toneFreq / sampleFreq
	for i := range out {
		val := 2000.0*math.Cos(float64(i)*phaseStep) + (rand.Float64()-0.5)*4
		if val > 32767 {
			val = 32767
		}
		if val < -32768 {
			val = -32768
		}
		out[i] = int16(val)
	}
	return out, nil
}

func (s *Simulated) EnableHV() error {
	s.enableHVAttempts++
	s.log("EnableHV() attempt=%d", s.enableHVAttempts)
	if s.FailEnableHVOnce && s.enableHVAttempts == 1 {
		return fmt.Errorf("simulated EnableHV failure")
	}
	return nil
}

func (s *Simulated) SetHVVoltage(volts float64) error {
	s.setHVVoltageAttempts++
	s.log("SetHVVoltage(%g) attempt=%d", volts, s.setHVVoltageAttempts)
	if s.FailHVVoltageOnce && s.setHVVoltageAttempts == 1 {
		return fmt.Errorf("simulated SetHVVoltage failure")
	}
	return nil
}

func (s *Simulated) SetPGAGain(db float64) error {
	s.log("SetPGAGain(%g)", db)
	return nil
}
func (s *Simulated) SetLPFCutoff(hz float64) error {
	s.log("SetLPFCutoff(%g)", hz)
	return nil
}
func (s *Simulated) SetActiveTermination(ohms float64) error {
	s.log("SetActiveTermination(%g)", ohms)
	return nil
}
func (s *Simulated) SetLNAGain(db float64) error {
	s.log("SetLNAGain(%g)", db)
	return nil
}
func (s *Simulated) SetDTGCEnable(enabled bool) error {
	s.log("SetDTGCEnable(%v)", enabled)
	return nil
}
func (s *Simulated) SetTGCEnable(enabled bool) error {
	s.log("SetTGCEnable(%v)", enabled)
	return nil
}
func (s *Simulated) ProgramChannelMap(tx, rx [][]int) error {
	s.log("ProgramChannelMap(tx=%d rows, rx=%d rows)", len(tx), len(rx))
	return nil
}
