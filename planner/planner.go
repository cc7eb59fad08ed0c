// Package planner implements the Aperture & Delay Planner (C3): it
// turns a normalized sequence and probe geometry into per-element TX
// aperture masks, TX delays and the number of sub-transmits required
// per firing.
package planner

import (
	"math"

	"github.com/usctl/oemcore/probe"
	"github.com/usctl/oemcore/sequence"
)

// Plan is C3's output and C4's input. Matrices are column-major:
// TxApMask[t] and TxDel[t] are length-nElem columns for transmit t.
// Callers (oemprog) index physical channel c on OEM k through
// probe.SelectElem(c,k) rather than through a materialized
// zero-padded 128·nOEM-row matrix (see the comment at the end of
// Plan below).
type Plan struct {
	NTx int
	NSubTx int

	// TxApMask[t][e] reports whether element e participates in
	// transmit t's aperture.
	TxApMask [][]bool
	// TxDel[t][e] is the TX delay (seconds) for element e in transmit
	// t, zeroed outside the aperture.
	TxDel [][]float64
	// TxDelCent[t] is the common aperture-center delay, constant across t.
	TxDelCent []float64

	// RxApOrig[t] is the LIN-mode RX aperture origin (0-based element
	// index); nil/unused for STA/PWI.
	RxApOrig []int
}

// Plan runs C3's operations.
func Plan(n *sequence.NormalizedSequence, p *probe.Probe) *Plan {
	xElem := p.XElem()
	nElem := p.NElem()
	nTx := n.NTx
	c := n.SpeedOfSound

	mask := make([][]bool, nTx)
	del := make([][]float64, nTx)
	preCenters := make([]float64, nTx)

	for t := 0; t < nTx; t++ {
		mask[t] = make([]bool, nElem)
		del[t] = make([]float64, nElem)
		apCent := n.TxApertureCenter[t]
		apSize := n.TxApertureSize[t]
		halfWidth := ((apSize - 1) / 2) * p.Pitch()

		for e := 0; e < nElem; e++ {
			mask[t][e] = math.Abs(xElem[e]-apCent) <= halfWidth
		}

		focus := n.TxFocus[t]
		angle := n.TxAngle[t]
		if math.IsInf(focus, 1) {
			for e := 0; e < nElem; e++ {
				del[t][e] = xElem[e] * math.Sin(angle) / c
			}
			preCenters[t] = apCent * math.Sin(angle) / c
		} else {
			xF := focus*math.Sin(angle) + apCent
			zF := focus * math.Cos(angle)
			focDefoc := 1.0
			if zF < 0 {
				focDefoc = -1.0
			}
			for e := 0; e < nElem; e++ {
				dx := xF - xElem[e]
				del[t][e] = focDefoc * math.Sqrt(dx*dx+zF*zF) / c
			}
			centerDist := math.Sqrt((xF-apCent)*(xF-apCent) + zF*zF)
			preCenters[t] = focDefoc * centerDist / c
		}

		// mask off outside the aperture, then shift column min to 0.
		minInAp := math.Inf(1)
		for e := 0; e < nElem; e++ {
			if mask[t][e] && del[t][e] < minInAp {
				minInAp = del[t][e]
			}
		}
		if math.IsInf(minInAp, 1) {
			minInAp = 0
		}
		for e := 0; e < nElem; e++ {
			if mask[t][e] {
				del[t][e] -= minInAp
			} else {
				del[t][e] = 0
			}
		}
		preCenters[t] -= minInAp
	}

	txDelCent := make([]float64, nTx)
	common := 0.0
	for _, v := range preCenters {
		if v > common {
			common = v
		}
	}
	for t := 0; t < nTx; t++ {
		shift := common - preCenters[t]
		for e := 0; e < nElem; e++ {
			if mask[t][e] {
				del[t][e] += shift
			}
		}
		txDelCent[t] = common
	}

	// Row extension to 128·nOEM physical channel rows is done lazily
	// at the lookup site (oemprog, via probe.SelectElem bounds-checked
	// against nElem) rather than materialized here: selectElem(c,k)
	// never exceeds nElem rows of real data, so indexing the
	// nElem-row TxApMask/TxDel through it and treating out-of-range
	// indices as "masked off" is equivalent to zero-padding the
	// matrices up front.
	nSubTx := computeNSubTx(n.Kind, nElem, p)

	var rxApOrig []int
	if n.Kind == sequence.LIN {
		rxApSize := rxApertureSize(p)
		rxApOrig = make([]int, nTx)
		for t := 0; t < nTx; t++ {
			// rxApOrig is 0-based here, the 0-based equivalent of the
			// spec's 1-based rxApOrig[t] = round(rxCentElem - (rxApSize-1)/2).
			rxCentElem := sequence.InterpPositionToIndex(xElem, n.TxApertureCenter[t])
			orig := round(rxCentElem - (float64(rxApSize)-1)/2)
			rxApOrig[t] = clampInt(orig, 0, nElem-rxApSize)
		}
	}

	return &Plan{
		NTx: nTx,
		NSubTx: nSubTx,
		TxApMask: mask,
		TxDel: del,
		TxDelCent: txDelCent,
		RxApOrig: rxApOrig,
	}
}

// computeNSubTx implements sub-transmit count.
func computeNSubTx(kind sequence.ScanKind, nElem int, p *probe.Probe) int {
	if kind == sequence.LIN {
		return 1
	}
	switch p.Adapter() {
	case probe.AdapterInterleaved:
		n := min(128, nElem)
		return minInt(4, ceilDiv(n, 32*p.NOEM()))
	default:
		return minInt(4, ceilDiv(nElem, 32))
	}
}

// rxApertureSize is rxApSize: 32 for type-0 (packed), 32·nOEM
// for type-1 (interleaved).
func rxApertureSize(p *probe.Probe) int {
	if p.Adapter() == probe.AdapterInterleaved {
		return 32 * p.NOEM()
	}
	return 32
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func min(a, b int) int { return minInt(a, b) }

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round(x float64) int {
	if x >= 0 {
		return int(x + 0.5)
	}
	return int(x - 0.5)
}
