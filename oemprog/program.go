package oemprog

import (
	"github.com/usctl/oemcore/driver"
	"github.com/usctl/oemcore/oemerr"
	"github.com/usctl/oemcore/planner"
	"github.com/usctl/oemcore/probe"
	"github.com/usctl/oemcore/sequence"
)

const (
	rxTimeSeconds = 160e-6
	rxDelaySeconds = 5e-6
	pipelineDelay = 240

	maxNFire = 1024
	maxNTrig = 16384
	maxBytesPerOEM = 4 * 1024 * 1024 * 1024
)

// Result records the firing/trigger counts C5 needs to know the
// acquisition's shape and timing.
type Result struct {
	NFire int
	NTrig int
}

// Program runs C4's operations: per-OEM, per-firing parameter
// loading, the device-global trigger table, and each OEM's scheduled
// receive list.
func Program(oems []driver.OEM, plan *planner.Plan, n *sequence.NormalizedSequence, p *probe.Probe, nRep int) (*Result, error) {
	nFire := plan.NTx * plan.NSubTx
	if nFire <= 0 || nFire > maxNFire {
		return nil, oemerr.NewIllegalArgument("nFire", "%d exceeds invariant nFire <= %d", nFire, maxNFire)
	}
	nTrig := nFire * nRep
	if nTrig <= 0 || nTrig > maxNTrig {
		return nil, oemerr.NewIllegalArgument("nTrig", "%d exceeds invariant nTrig <= %d", nTrig, maxNTrig)
	}
	bytesPerOEM := uint64(n.NSamp) * uint64(nTrig) * 32 * 2
	if bytesPerOEM > maxBytesPerOEM {
		return nil, oemerr.NewOutOfMemory(-1, bytesPerOEM, maxBytesPerOEM)
	}
	if len(oems) != p.NOEM() {
		return nil, oemerr.NewIllegalArgument("oems", "expected %d OEM handles, got %d", p.NOEM(), len(oems))
	}

	for k, oem := range oems {
		actChan := activeChannels128(p, k)
		gm := groupMask(actChan)

		for t := 0; t < plan.NTx; t++ {
			txApPhys := make([]bool, probe.TxChannelsPerOEM)
			txDelPhys := make([]float64, probe.TxChannelsPerOEM)
			for c := 0; c < probe.TxChannelsPerOEM; c++ {
				if !actChan[c] {
					continue
				}
				e := p.SelectElem(c, k)
				if e >= p.NElem() {
					continue
				}
				txApPhys[c] = plan.TxApMask[t][e]
				if txApPhys[c] {
					txDelPhys[c] = plan.TxDel[t][e]
				}
			}

			subMasks := rxSubApMasks(n, plan, p, k, t)

			for s := 0; s < plan.NSubTx; s++ {
				f := t*plan.NSubTx + s
				if err := oem.SetTxAperture(maskString(txApPhys), f); err != nil {
					return nil, err
				}
				if err := oem.SetTxDelays(txDelPhys, f); err != nil {
					return nil, err
				}
				if err := oem.SetTxFrequency(n.TxFrequency, f); err != nil {
					return nil, err
				}
				if err := oem.SetTxHalfPeriods(2*n.TxNPeriods, f); err != nil {
					return nil, err
				}
				if err := oem.SetTxInvert(0, f); err != nil {
					return nil, err
				}
				if err := oem.SetActiveChannelGroup(gm, f); err != nil {
					return nil, err
				}
				if err := oem.SetRxAperture(maskString(subMasks[s]), f); err != nil {
					return nil, err
				}
				if err := oem.SetRxTime(rxTimeSeconds, f); err != nil {
					return nil, err
				}
				if err := oem.SetRxDelay(rxDelaySeconds, f); err != nil {
					return nil, err
				}
				if err := oem.TGCSetSamples(n.TgcCurve, f); err != nil {
					return nil, err
				}
			}
		}

		if err := oem.SetNumberOfFirings(nFire); err != nil {
			return nil, err
		}
		if err := oem.EnableTransmit(); err != nil {
			return nil, err
		}
		if err := oem.EnableReceive(); err != nil {
			return nil, err
		}
	}

	if err := programTriggerTable(oems[0], n.TxPri, nTrig); err != nil {
		return nil, err
	}

	for _, oem := range oems {
		if err := programScheduledReceive(oem, n, nTrig); err != nil {
			return nil, err
		}
	}

	return &Result{NFire: nFire, NTrig: nTrig}, nil
}

// programTriggerTable runs trigger table construction on OEM 0
// only: the last trigger asserts syncOut, all others do not.
func programTriggerTable(oem0 driver.OEM, txPri float64, nTrig int) error {
	if err := oem0.SetNTriggers(nTrig); err != nil {
		return err
	}
	txPriUs := txPri * 1e6
	for i := 0; i < nTrig; i++ {
		syncOut := 0
		if i == nTrig-1 {
			syncOut = 1
		}
		if err := oem0.SetTrigger(txPriUs, 0, syncOut, i); err != nil {
			return err
		}
	}
	return nil
}

// programScheduledReceive runs scheduled receive: each OEM
// schedules nTrig receive windows into its DDR buffer, offset by
// i·nSamp, with the fixed +240-sample pipeline delay added to the
// start sample.
func programScheduledReceive(oem driver.OEM, n *sequence.NormalizedSequence, nTrig int) error {
	if err := oem.ClearScheduledReceive(); err != nil {
		return err
	}
	for i := 0; i < nTrig; i++ {
		offset := i * n.NSamp
		if err := oem.ScheduleReceive(offset, n.NSamp, n.FsDivider-1, n.StartSample+pipelineDelay); err != nil {
			return err
		}
	}
	return nil
}
