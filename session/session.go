// Package session wires C1-C5 together behind the upstream consumer
// API: session_open, upload, run, runLoop and close.
package session

import (
	"github.com/usctl/oemcore/acquire"
	"github.com/usctl/oemcore/diag"
	"github.com/usctl/oemcore/driver"
	"github.com/usctl/oemcore/oemerr"
	"github.com/usctl/oemcore/oemprog"
	"github.com/usctl/oemcore/planner"
	"github.com/usctl/oemcore/probe"
	"github.com/usctl/oemcore/sequence"
	"github.com/usctl/oemcore/telemetry"
)

const (
	pgaGainDB = 30
	lpfCutoffHz = 15e6
	terminationOhms = 200
	lnaGainDB = 24
	voltageStepVpp = 0.5
	maxVoltageParam = 90
)

// Warner receives non-fatal warnings.
type Warner interface {
	Warn(msg string)
}

// Config is session_open's parameter set.
type Config struct {
	NOEM int
	ProbeName string
	AdapterTag string // "packed" or "interleaved"
	Voltage float64 // [0,90], scaled by 0.5 Vpp/step
	LogTiming bool
	Tracer *diag.Tracer // optional command-trace sink
	Telemetry *telemetry.Hub // optional websocket observer
}

// Session is the upstream handle returned by session_open.
type Session struct {
	oems []driver.OEM
	probe *probe.Probe
	warn Warner
	cfg Config

	acq *acquire.Acquisition
	frame int
}

// Open implements session_open: it programs channel maps, sets
// fixed front-end analog parameters, and enables HV at the requested
// voltage (retrying once on failure for EnableHV/SetHVVoltage).
func Open(cfg Config, rawOEMs []driver.OEM, warn Warner) (*Session, error) {
	if cfg.Voltage < 0 || cfg.Voltage > maxVoltageParam {
		return nil, oemerr.NewIllegalArgument("voltage", "must be in [0,%d], got %g", maxVoltageParam, cfg.Voltage)
	}

	var adapter probe.Adapter
	switch cfg.AdapterTag {
	case "packed", "":
		adapter = probe.AdapterPacked
	case "interleaved":
		adapter = probe.AdapterInterleaved
	default:
		return nil, oemerr.NewIllegalArgument("adapterTag", "unknown adapter tag %q", cfg.AdapterTag)
	}

	p, err := probe.Lookup(cfg.ProbeName, cfg.NOEM, adapter)
	if err != nil {
		return nil, err
	}

	oems := make([]driver.OEM, len(rawOEMs))
	for i, o := range rawOEMs {
		if cfg.Tracer != nil {
			oems[i] = &diag.TraceOEM{Inner: o, Tracer: cfg.Tracer, Index: i}
		} else {
			oems[i] = o
		}
	}

	s := &Session{oems: oems, probe: p, warn: warn, cfg: cfg}

	for _, oem := range oems {
		if err := oem.ProgramChannelMap(p.TxChannelMap(), p.RxChannelMap()); err != nil {
			return nil, err
		}
		if err := oem.SetPGAGain(pgaGainDB); err != nil {
			return nil, err
		}
		if err := oem.SetLPFCutoff(lpfCutoffHz); err != nil {
			return nil, err
		}
		if err := oem.SetActiveTermination(terminationOhms); err != nil {
			return nil, err
		}
		if err := oem.SetLNAGain(lnaGainDB); err != nil {
			return nil, err
		}
		if err := oem.SetDTGCEnable(false); err != nil {
			return nil, err
		}
		if err := oem.SetTGCEnable(true); err != nil {
			return nil, err
		}
		if err := driver.RetryOnce(s, "EnableHV", oem.EnableHV); err != nil {
			return nil, err
		}
		volts := cfg.Voltage * voltageStepVpp
		if err := driver.RetryOnce(s, "SetHVVoltage", func() error { return oem.SetHVVoltage(volts) }); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Warn satisfies driver.Warner by forwarding to the session's own
// observer and to the telemetry hub, if either was configured.
func (s *Session) Warn(msg string) {
	if s.warn != nil {
		s.warn.Warn(msg)
	}
	if s.cfg.Telemetry != nil {
		s.cfg.Telemetry.Warn(msg)
	}
}

// Upload implements upload(request): it runs the normalizer, planner
// and hardware programmer in sequence, then opens the acquisition
// (TriggerStart + the open-loop pause) so Run can be called
// repeatedly.
func (s *Session) Upload(req sequence.Request) error {
	n, err := sequence.Normalize(req, s.probe, s)
	if err != nil {
		return err
	}
	plan := planner.Plan(n, s.probe)

	nFire := plan.NTx * plan.NSubTx
	nRep, err := n.ResolveRepetitions(nFire)
	if err != nil {
		return err
	}

	result, err := oemprog.Program(s.oems, plan, n, s.probe, nRep)
	if err != nil {
		return err
	}

	s.acq = acquire.New(s.oems, n, plan, s.probe, nRep, result, nil)
	return s.acq.Open()
}

// Run implements run(): returns the canonical RF tensor for one
// acquisition of the uploaded sequence.
func (s *Session) Run() (*acquire.RFTensor, error) {
	if s.acq == nil {
		return nil, oemerr.NewIllegalArgument("session", "Run called before Upload")
	}
	rf, err := s.acq.Run()
	if err != nil {
		return nil, err
	}
	s.frame++
	if s.cfg.Telemetry != nil {
		s.cfg.Telemetry.FrameComplete(s.frame, rf.NTx, rf.NSamp)
	}
	return rf, nil
}

// RunLoop implements runLoop(shouldContinue, onFrame): it calls Run
// repeatedly, invoking onFrame per successful frame, until
// shouldContinue returns false or Run errors.
func (s *Session) RunLoop(shouldContinue func() bool, onFrame func(*acquire.RFTensor)) error {
	for shouldContinue() {
		rf, err := s.Run()
		if err != nil {
			return err
		}
		onFrame(rf)
	}
	return nil
}

// Close implements close(): TriggerStop on OEM 0, the only supported
// way to end a session's acquisition.
func (s *Session) Close() error {
	if s.acq == nil {
		return nil
	}
	return s.acq.Close()
}
