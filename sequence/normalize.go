// Package sequence implements the Sequence Normalizer (C2): it
// validates an acquisition request, materializes scalar/vector
// defaults, resolves depth-range/sample-count, and builds the TGC
// curve.
package sequence

import (
	"math"

	"github.com/usctl/oemcore/oemerr"
	"github.com/usctl/oemcore/probe"
)

// ScanKind tags the three supported acquisition modes. LIN/STA/PWI
// differ only in how nTx, rxApOrig and nSubTx are computed and in
// post-acquisition axis alignment — modeled as a small enum
// rather than a type hierarchy.
type ScanKind int

const (
	LIN ScanKind = iota
	STA
	PWI
)

func (k ScanKind) String() string {
	switch k {
	case LIN:
		return "LIN"
	case STA:
		return "STA"
	case PWI:
		return "PWI"
	default:
		return "unknown"
	}
}

// RepMax is the sentinel value for Request.NRepetitions meaning "as
// many repetitions as the trigger-table budget allows".
const RepMax = -1

// Request is the tagged scan description handed to Normalize.
type Request struct {
	Kind ScanKind

	// Aperture specification: TxApertureCenter is used when set,
	// otherwise TxCenterElement. STA/LIN need one of them; PWI with
	// neither defaults to the array center.
	TxCenterElement []float64 // fractional element index, length nTx
	TxApertureCenter []float64 // meters, length nTx

	TxApertureSize []float64 // elements; scalar (len 1, broadcast) or length nTx

	TxFocus []float64 // meters; +Inf => plane wave; negative => virtual source behind array
	TxAngle []float64 // radians

	SpeedOfSound float64 // m/s

	TxFrequency float64 // Hz
	TxNPeriods int

	RxDepthRange *[2]float64 // meters [zMin,zMax]
	RxNSamples *[2]int // 1-indexed inclusive [first,last]

	TxPri float64 // seconds between firings
	NRepetitions int // >=1, or RepMax
	FsDivider int // >=1

	TgcStart float64 // dB
	TgcSlope float64 // dB/m
}

// NormalizedSequence is the output of Normalize and the input to the
// Aperture & Delay Planner (C3).
type NormalizedSequence struct {
	Kind ScanKind

	NTx int

	TxApertureCenter []float64 // meters, length nTx
	TxApertureSize []float64 // elements, length nTx
	TxFocus []float64 // meters, length nTx
	TxAngle []float64 // radians, length nTx

	SpeedOfSound float64
	TxFrequency float64
	TxNPeriods int

	RxSampFreq float64 // Hz
	StartSample int // 1-indexed
	NSamp int

	TxPri float64
	NRepetitions int // resolved later via ResolveRepetitions once nFire is known
	FsDivider int

	TgcCurve []float64 // normalized to [0,1]
}

// ResolveRepetitions turns the RepMax sentinel into a concrete
// repetition count once the firing count (nFire = nTx·nSubTx) is
// known, honoring invariant (3): nTrig = nFire·nRep ≤ 16384.
func (n *NormalizedSequence) ResolveRepetitions(nFire int) (int, error) {
	if nFire <= 0 {
		return 0, oemerr.NewIllegalArgument("nFire", "must be positive")
	}
	if n.NRepetitions == RepMax {
		return 16384 / nFire, nil
	}
	return n.NRepetitions, nil
}

const (
	maxNSampleWords = 1 << 13 // invariant (5) numerator, 
	maxNFire = 1024 // invariant (2), 
	maxNTrig = 16384 // invariant (3), 
)

// Normalize runs C2's operations in order.
func Normalize(req Request, p *probe.Probe, warn Warner) (*NormalizedSequence, error) {
	if req.FsDivider < 1 {
		return nil, oemerr.NewIllegalArgument("fsDivider", "must be >= 1, got %d", req.FsDivider)
	}
	if req.SpeedOfSound <= 0 {
		return nil, oemerr.NewIllegalArgument("speedOfSound", "must be positive")
	}
	if req.TxNPeriods <= 0 {
		return nil, oemerr.NewIllegalArgument("txNPeriods", "must be positive")
	}
	if req.NRepetitions != RepMax && req.NRepetitions < 1 {
		return nil, oemerr.NewIllegalArgument("nRepetitions", "must be >= 1 or RepMax")
	}

	// 1. rxSampFreq
	rxSampFreq := 65e6 / float64(req.FsDivider)

	// 2. depth <-> samples
	startSample, nSamp, err := resolveSamples(req, rxSampFreq)
	if err != nil {
		return nil, err
	}
	if nSamp <= 0 {
		return nil, oemerr.NewIllegalArgument("nSamp", "must be positive, got %d", nSamp)
	}
	if nSamp%64 != 0 {
		return nil, oemerr.NewIllegalArgument("nSamp", "must be a multiple of 64, got %d", nSamp)
	}
	if nSamp > maxNSampleWords/req.FsDivider {
		return nil, oemerr.NewIllegalArgument("nSamp", "%d exceeds invariant nSamp <= 2^13/fsDivider = %d", nSamp, maxNSampleWords/req.FsDivider)
	}

	// 3. TX aperture center
	txApCenter, err := resolveApertureCenter(req, p)
	if err != nil {
		return nil, err
	}

	// 4. nTx
	nTx, err := resolveNTx(req, txApCenter)
	if err != nil {
		return nil, err
	}

	txApSize, err := broadcast(req.TxApertureSize, nTx, "txApertureSize")
	if err != nil {
		return nil, err
	}
	txFocus, err := broadcast(req.TxFocus, nTx, "txFocus")
	if err != nil {
		return nil, err
	}
	txAngle, err := broadcast(req.TxAngle, nTx, "txAngle")
	if err != nil {
		return nil, err
	}
	if len(txApCenter) == 1 && nTx > 1 {
		txApCenter, err = broadcast(txApCenter, nTx, "txApertureCenter")
		if err != nil {
			return nil, err
		}
	}

	// 5. TGC curve
	tgcCurve := buildTGCCurve(req.TgcStart, req.TgcSlope, req.SpeedOfSound, rxSampFreq, req.FsDivider, startSample, nSamp, warn)

	return &NormalizedSequence{
		Kind: req.Kind,
		NTx: nTx,
		TxApertureCenter: txApCenter,
		TxApertureSize: txApSize,
		TxFocus: txFocus,
		TxAngle: txAngle,
		SpeedOfSound: req.SpeedOfSound,
		TxFrequency: req.TxFrequency,
		TxNPeriods: req.TxNPeriods,
		RxSampFreq: rxSampFreq,
		StartSample: startSample,
		NSamp: nSamp,
		TxPri: req.TxPri,
		NRepetitions: req.NRepetitions,
		FsDivider: req.FsDivider,
		TgcCurve: tgcCurve,
	}, nil
}

func resolveSamples(req Request, rxSampFreq float64) (startSample, nSamp int, err error) {
	if req.RxNSamples != nil {
		return req.RxNSamples[0], req.RxNSamples[1] - req.RxNSamples[0] + 1, nil
	}
	if req.RxDepthRange == nil {
		return 0, 0, oemerr.NewIllegalArgument("rxDepthRange", "either rxDepthRange or rxNSamples must be set")
	}
	zMin, zMax := req.RxDepthRange[0], req.RxDepthRange[1]
	round := func(x float64) int {
		if x >= 0 {
			return int(x + 0.5)
		}
		return int(x - 0.5)
	}
	s0 := round(2*rxSampFreq*zMin/req.SpeedOfSound) + 1
	s1 := round(2*rxSampFreq*zMax/req.SpeedOfSound) + 1
	n := s1 - s0 + 1
	n = roundUpTo64(n)
	return s0, n, nil
}

func roundUpTo64(n int) int {
	if n <= 0 {
		return 64
	}
	rem := n % 64
	if rem == 0 {
		return n
	}
	return n + (64 - rem)
}

func resolveApertureCenter(req Request, p *probe.Probe) ([]float64, error) {
	if len(req.TxApertureCenter) > 0 {
		return req.TxApertureCenter, nil
	}
	if len(req.TxCenterElement) == 0 {
		if req.Kind == PWI {
			// PWI has no aperture-center requirement beyond angle; default to array center.
			return []float64{0}, nil
		}
		return nil, oemerr.NewIllegalArgument("txApertureCenter", "either txApertureCenter or txCenterElement must be set")
	}
	xElem := p.XElem()
	out := make([]float64, len(req.TxCenterElement))
	for i, idx := range req.TxCenterElement {
		out[i] = interpIndex(xElem, idx)
	}
	return out, nil
}

func resolveNTx(req Request, txApCenter []float64) (int, error) {
	switch req.Kind {
	case PWI:
		if len(req.TxAngle) == 0 {
			return 0, oemerr.NewIllegalArgument("txAngle", "PWI requires txAngle")
		}
		return len(req.TxAngle), nil
	case STA, LIN:
		if len(txApCenter) == 0 {
			return 0, oemerr.NewIllegalArgument("txApertureCenter", "STA/LIN requires a resolved aperture center")
		}
		return len(txApCenter), nil
	default:
		return 0, oemerr.NewIllegalArgument("kind", "unknown scan kind %v", req.Kind)
	}
}

// broadcast expands a scalar (length-1) slice to length n, or
// validates that an already-length-n slice matches.
func broadcast(v []float64, n int, field string) ([]float64, error) {
	if len(v) == 0 {
		return nil, oemerr.NewIllegalArgument(field, "must not be empty")
	}
	if len(v) == n {
		return v, nil
	}
	if len(v) == 1 {
		out := make([]float64, n)
		for i := range out {
			out[i] = v[0]
		}
		return out, nil
	}
	return nil, oemerr.NewIllegalArgument(field, "length %d does not match nTx=%d and is not scalar", len(v), n)
}

// PlaneWaveFocus is the sentinel meaning "plane wave" for TxFocus:
// +∞ selects a plane-wave transmit instead of a focused one.
var PlaneWaveFocus = math.Inf(1)
