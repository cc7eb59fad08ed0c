package acquire

import (
	"github.com/usctl/oemcore/planner"
	"github.com/usctl/oemcore/probe"
	"github.com/usctl/oemcore/sequence"
)

// Demux implements reshape/permute/align pipeline: rawPerOEM[k]
// is OEM k's flat int16 buffer of nSamp·nTrig·32 words, in trigger
// order (t·nSubTx+s, repeated nRep times); the result is the canonical
// RF tensor with the adapter-specific channel axis ordering and, for
// LIN scans, the per-transmit circular alignment applied.
func Demux(rawPerOEM [][]int16, n *sequence.NormalizedSequence, plan *planner.Plan, p *probe.Probe, nRep int) *RFTensor {
	nSamp := n.NSamp
	nSubTx := plan.NSubTx
	nTx := plan.NTx
	nOEM := p.NOEM()
	composite := 32 * nSubTx * nOEM

	full := newTensor(nSamp, composite, nTx, nRep)
	for oem := 0; oem < nOEM; oem++ {
		buf := rawPerOEM[oem]
		for rep := 0; rep < nRep; rep++ {
			for t := 0; t < nTx; t++ {
				for s := 0; s < nSubTx; s++ {
					windowBase := 32 * nSamp * (s + nSubTx*(t+nTx*rep))
					for samp := 0; samp < nSamp; samp++ {
						for c32 := 0; c32 < 32; c32++ {
							v := buf[windowBase+c32+32*samp]
							var cComposite int
							if p.Adapter() == probe.AdapterInterleaved {
								cComposite = c32 + 32*oem + 32*nOEM*s
							} else {
								cComposite = c32 + 32*s + 32*nSubTx*oem
							}
							full.set(samp, cComposite, t, rep, v)
						}
					}
				}
			}
		}
	}

	if n.Kind == sequence.LIN {
		return alignLIN(full, plan, p)
	}
	return sliceChannels(full, minInt(p.NElem(), composite))
}

// alignLIN implements LIN-mode alignment: per transmit, roll
// the composite channel axis so the RX aperture's first channel lands
// at index 0. Type-0 additionally slices down to 32 channels (its
// rxApSize); type-1's rxApSize already spans the whole composite axis
// (32·nOEM), so no further slicing is needed.
func alignLIN(full *RFTensor, plan *planner.Plan, p *probe.Probe) *RFTensor {
	composite := full.NChannels

	if p.Adapter() == probe.AdapterInterleaved {
		out := newTensor(full.NSamp, composite, full.NTx, full.NRep)
		for t := 0; t < full.NTx; t++ {
			orig1 := plan.RxApOrig[t] + 1
			shift := (orig1 - 1) % composite
			for samp := 0; samp < full.NSamp; samp++ {
				for rep := 0; rep < full.NRep; rep++ {
					for c := 0; c < composite; c++ {
						out.set(samp, c, t, rep, full.At(samp, mod(c+shift, composite), t, rep))
					}
				}
			}
		}
		return out
	}

	out := newTensor(full.NSamp, 32, full.NTx, full.NRep)
	for t := 0; t < full.NTx; t++ {
		orig1 := plan.RxApOrig[t] + 1 // 1-based rxApOrig for this formula

		coarse := minInt(32, maxInt(0, orig1-1-32*3))
		inBand := orig1 > 1+32*3 && orig1 <= 1+32*4
		fine := 0
		if !inBand {
			fine = (orig1 - 1) % 32
		}

		for samp := 0; samp < full.NSamp; samp++ {
			for rep := 0; rep < full.NRep; rep++ {
				for c := 0; c < 32; c++ {
					// the coarse shift selects the first 32 channels of
					// the shifted axis; the fine shift then rotates
					// within that 32-channel slice.
					c2 := mod(c+fine, 32)
					src := mod(c2+coarse, composite)
					out.set(samp, c, t, rep, full.At(samp, src, t, rep))
				}
			}
		}
	}
	return out
}

// sliceChannels truncates the composite channel axis to the first n
// channels (STA/PWI's "slice axis-2 to min(nElem, 32·nSubTx·nOEM)").
func sliceChannels(full *RFTensor, n int) *RFTensor {
	if n >= full.NChannels {
		return full
	}
	out := newTensor(full.NSamp, n, full.NTx, full.NRep)
	for t := 0; t < full.NTx; t++ {
		for rep := 0; rep < full.NRep; rep++ {
			for samp := 0; samp < full.NSamp; samp++ {
				for c := 0; c < n; c++ {
					out.set(samp, c, t, rep, full.At(samp, c, t, rep))
				}
			}
		}
	}
	return out
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
