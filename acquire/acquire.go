package acquire

import (
	"time"

	"github.com/usctl/oemcore/driver"
	"github.com/usctl/oemcore/oemprog"
	"github.com/usctl/oemcore/planner"
	"github.com/usctl/oemcore/probe"
	"github.com/usctl/oemcore/sequence"
)

// pauseMultip is the open-loop sleep multiplier applied after
// TriggerStart and TriggerSync: an upper bound on worst-case
// scan duration, not a tight synchronization primitive.
const pauseMultip = 1.5

// Sleeper abstracts the open-loop wait so tests can skip real time.
type Sleeper interface {
	Sleep(d time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// RealSleeper sleeps using the wall clock.
var RealSleeper Sleeper = realSleeper{}

// Acquisition runs C5's open/run/close lifecycle against a programmed
// set of OEMs.
type Acquisition struct {
	oems []driver.OEM
	n *sequence.NormalizedSequence
	plan *planner.Plan
	p *probe.Probe
	nRep int
	nTrig int
	sleeper Sleeper
}

// New wraps a programmed Result (from oemprog.Program) into an
// Acquisition ready for open()/run()/close().
func New(oems []driver.OEM, n *sequence.NormalizedSequence, plan *planner.Plan, p *probe.Probe, nRep int, result *oemprog.Result, sleeper Sleeper) *Acquisition {
	if sleeper == nil {
		sleeper = RealSleeper
	}
	return &Acquisition{oems: oems, n: n, plan: plan, p: p, nRep: nRep, nTrig: result.NTrig, sleeper: sleeper}
}

func (a *Acquisition) pause() {
	a.sleeper.Sleep(time.Duration(pauseMultip * a.n.TxPri * float64(a.nTrig) * float64(time.Second)))
}

// Open issues TriggerStart on OEM 0 and waits the open-loop pause.
func (a *Acquisition) Open() error {
	if err := a.oems[0].TriggerStart(); err != nil {
		return err
	}
	a.pause()
	return nil
}

// Run executes one acquisition: re-enables receive on every OEM,
// triggers a sync pulse on OEM 0, waits, then pulls each OEM's DDR
// buffer and demultiplexes it into the canonical RF tensor.
func (a *Acquisition) Run() (*RFTensor, error) {
	for _, oem := range a.oems {
		if err := oem.EnableReceive(); err != nil {
			return nil, err
		}
	}
	if err := a.oems[0].TriggerSync(); err != nil {
		return nil, err
	}
	a.pause()

	nWords := a.n.NSamp * a.nTrig * 32
	raw := make([][]int16, len(a.oems))
	for k, oem := range a.oems {
		buf, err := oem.TransferAllRXBuffersToHost(nWords)
		if err != nil {
			return nil, err
		}
		raw[k] = buf
	}

	return Demux(raw, a.n, a.plan, a.p, a.nRep), nil
}

// Close issues TriggerStop on OEM 0, the only supported way to end an
// acquisition: there is no mid-acquisition cancellation path.
func (a *Acquisition) Close() error {
	return a.oems[0].TriggerStop()
}
