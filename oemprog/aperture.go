package oemprog

import (
	"github.com/usctl/oemcore/planner"
	"github.com/usctl/oemcore/probe"
	"github.com/usctl/oemcore/sequence"
)

// activeChannels128 returns actChan[c,k] for all 128 physical
// channels of OEM k. It delegates to probe.ActiveChannel,
// which already implements the type-0/type-1 formulas from C1.
func activeChannels128(p *probe.Probe, k int) []bool {
	out := make([]bool, probe.TxChannelsPerOEM)
	for c := 0; c < probe.TxChannelsPerOEM; c++ {
		out[c] = p.ActiveChannel(c, k)
	}
	return out
}

// rxApertureMask reports, for transmit t, whether global element e is
// inside the RX aperture (rxApMask, expressed per element
// rather than per physical channel c — equivalent once selectElem is
// applied at the lookup site).
func rxApertureMask(n *sequence.NormalizedSequence, plan *planner.Plan, p *probe.Probe, t int) []bool {
	nElem := p.NElem()
	mask := make([]bool, nElem)
	if n.Kind != sequence.LIN {
		for e := range mask {
			mask[e] = true
		}
		return mask
	}
	rxApSize := rxApertureSize(p)
	orig := plan.RxApOrig[t]
	for e := 0; e < nElem; e++ {
		mask[e] = e >= orig && e < orig+rxApSize
	}
	return mask
}

// rxApertureSize mirrors planner's unexported helper: 32 channels for
// type-0 (packed), 32·nOEM for type-1 (interleaved) —.
func rxApertureSize(p *probe.Probe) int {
	if p.Adapter() == probe.AdapterInterleaved {
		return 32 * p.NOEM()
	}
	return 32
}

// rxSubApMasks partitions OEM k's 128 physical RX channels among
// nSubTx sub-transmits for logical transmit t: channel c belongs to
// sub-transmit s if it is active, in the RX aperture, and its
// cumulative position among active-in-aperture channels (1-based)
// falls in the s-th group of 32.
func rxSubApMasks(n *sequence.NormalizedSequence, plan *planner.Plan, p *probe.Probe, k, t int) [][]bool {
	actChan := activeChannels128(p, k)
	rxMask := rxApertureMask(n, plan, p, t)

	inAperture := make([]bool, probe.TxChannelsPerOEM)
	for c := 0; c < probe.TxChannelsPerOEM; c++ {
		e := p.SelectElem(c, k)
		inAperture[c] = actChan[c] && e < p.NElem() && rxMask[e]
	}

	out := make([][]bool, plan.NSubTx)
	for s := range out {
		out[s] = make([]bool, probe.TxChannelsPerOEM)
	}

	cumulative := 0
	for c := 0; c < probe.TxChannelsPerOEM; c++ {
		if !inAperture[c] {
			continue
		}
		cumulative++
		group := (cumulative - 1) / 32 // 0-based group index
		if group < plan.NSubTx {
			out[group][c] = true
		}
	}
	return out
}
