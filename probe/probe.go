// Package probe holds the immutable element geometry, TX/RX channel
// maps and adapter topology of a transducer probe wired through a
// probe adapter to one or more OEM front-end modules (C1).
//
// Indexing convention: every element, channel and OEM index in this
// package and its callers (planner, oemprog, acquire) is 0-based
// throughout.
package probe

import "github.com/usctl/oemcore/oemerr"

// Adapter is the tagged topology choice between an OEM's physical
// channels and the probe elements they serve.
type Adapter int

const (
	// AdapterPacked is the type-0 "packed" adapter (00001111):
	// element e is served by OEM e/128, logical channel e%128.
	AdapterPacked Adapter = iota
	// AdapterInterleaved is the type-1 "interleaved" adapter
	// (01010101): every OEM sees all 128 logical channels, but only
	// a strided subset is active per OEM.
	AdapterInterleaved
)

func (a Adapter) String() string {
	switch a {
	case AdapterPacked:
		return "packed"
	case AdapterInterleaved:
		return "interleaved"
	default:
		return "unknown"
	}
}

const (
	// TxChannelsPerOEM is the number of logical TX channels one OEM exposes.
	TxChannelsPerOEM = 128
	// RxChannelsPerOEM is the number of logical RX channels one OEM exposes.
	RxChannelsPerOEM = 32
)

// Probe is immutable after construction (C1).
type Probe struct {
	name string
	nElem int
	pitch float64
	nOEM int
	adapter Adapter

	// txChanMap[k][c] and rxChanMap[k][c] give the physical hardware
	// lane that logical channel c on OEM k is wired to. They are a
	// property of the adapter, not of any scan.
	txChanMap [][]int
	rxChanMap [][]int
}

// New builds a Probe with default (identity) channel maps: logical
// channel c on OEM k maps to physical lane k*width+c. Call
// WithChannelMaps to override with the adapter's real wiring.
func New(name string, nElem int, pitch float64, nOEM int, adapter Adapter) (*Probe, error) {
	if nElem <= 0 {
		return nil, oemerr.NewIllegalArgument("nElem", "must be positive, got %d", nElem)
	}
	if nOEM <= 0 {
		return nil, oemerr.NewIllegalArgument("nOEM", "must be positive, got %d", nOEM)
	}
	if nElem > TxChannelsPerOEM*nOEM {
		return nil, oemerr.NewIllegalArgument("nElem", "%d exceeds %d·nOEM=%d addressable TX channels", nElem, TxChannelsPerOEM, TxChannelsPerOEM*nOEM)
	}
	if pitch <= 0 {
		return nil, oemerr.NewIllegalArgument("pitch", "must be positive, got %g", pitch)
	}

	txMap := make([][]int, nOEM)
	rxMap := make([][]int, nOEM)
	for k := 0; k < nOEM; k++ {
		txMap[k] = make([]int, TxChannelsPerOEM)
		for c := 0; c < TxChannelsPerOEM; c++ {
			txMap[k][c] = k*TxChannelsPerOEM + c
		}
		rxMap[k] = make([]int, RxChannelsPerOEM)
		for c := 0; c < RxChannelsPerOEM; c++ {
			rxMap[k][c] = k*RxChannelsPerOEM + c
		}
	}

	return &Probe{
		name: name,
		nElem: nElem,
		pitch: pitch,
		nOEM: nOEM,
		adapter: adapter,
		txChanMap: txMap,
		rxChanMap: rxMap,
	}, nil
}

// WithChannelMaps replaces the default identity channel maps,
// validating that both are total functions into their physical
// address range.
func (p *Probe) WithChannelMaps(tx, rx [][]int) error {
	if len(tx) != p.nOEM || len(rx) != p.nOEM {
		return oemerr.NewIllegalArgument("channelMap", "expected %d OEM rows", p.nOEM)
	}
	for k := 0; k < p.nOEM; k++ {
		if len(tx[k]) != TxChannelsPerOEM {
			return oemerr.NewIllegalArgument("txChannelMap", "OEM %d: expected %d columns, got %d", k, TxChannelsPerOEM, len(tx[k]))
		}
		for _, lane := range tx[k] {
			if lane < 0 || lane >= TxChannelsPerOEM*p.nOEM {
				return oemerr.NewIllegalArgument("txChannelMap", "OEM %d: lane %d out of range [0,%d)", k, lane, TxChannelsPerOEM*p.nOEM)
			}
		}
		if len(rx[k]) != RxChannelsPerOEM {
			return oemerr.NewIllegalArgument("rxChannelMap", "OEM %d: expected %d columns, got %d", k, RxChannelsPerOEM, len(rx[k]))
		}
		for _, lane := range rx[k] {
			if lane < 0 || lane >= RxChannelsPerOEM*p.nOEM {
				return oemerr.NewIllegalArgument("rxChannelMap", "OEM %d: lane %d out of range [0,%d)", k, lane, RxChannelsPerOEM*p.nOEM)
			}
		}
	}
	p.txChanMap = tx
	p.rxChanMap = rx
	return nil
}

func (p *Probe) Name() string { return p.name }
func (p *Probe) NElem() int { return p.nElem }
func (p *Probe) Pitch() float64 { return p.pitch }
func (p *Probe) NOEM() int { return p.nOEM }
func (p *Probe) Adapter() Adapter { return p.adapter }
func (p *Probe) TxChannelMap() [][]int { return p.txChanMap }
func (p *Probe) RxChannelMap() [][]int { return p.rxChanMap }

// XElem returns the element center positions (meters), symmetric
// around the origin: x[i] = (i - (nElem-1)/2)·pitch.
func (p *Probe) XElem() []float64 {
	x := make([]float64, p.nElem)
	mid := float64(p.nElem-1) / 2
	for i := range x {
		x[i] = (float64(i) - mid) * p.pitch
	}
	return x
}

// SelectElem returns the probe element (0-based) served by physical
// channel c (0-based) on OEM k (0-based). The result may be >= nElem;
// ActiveChannel reports whether it is a real element. For AdapterPacked
// this is c+128·k; for AdapterInterleaved it is always c (every OEM's ADC
// channel c observes probe element c when that OEM owns it — see
// ActiveChannel).
func (p *Probe) SelectElem(c, k int) int {
	switch p.adapter {
	case AdapterInterleaved:
		return c
	default: // AdapterPacked
		return c + TxChannelsPerOEM*k
	}
}

// ActiveChannel reports whether physical channel c (0-based, in
// [0,128)) on OEM k (0-based) is wired to a real probe element at all,
// independent of any particular scan's aperture.
func (p *Probe) ActiveChannel(c, k int) bool {
	e := p.SelectElem(c, k)
	if e >= p.nElem {
		return false
	}
	switch p.adapter {
	case AdapterInterleaved:
		owner := (c / RxChannelsPerOEM) % p.nOEM
		return owner == k%p.nOEM
	default:
		return true
	}
}
