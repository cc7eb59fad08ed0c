package planner

import (
	"math"
	"testing"

	"github.com/usctl/oemcore/probe"
	"github.com/usctl/oemcore/sequence"
)

func testProbe(t *testing.T, nElem, nOEM int, adapter probe.Adapter) *probe.Probe {
	t.Helper()
	p, err := probe.New("test", nElem, 0.3e-3, nOEM, adapter)
	if err != nil {
		t.Fatalf("probe.New: %v", err)
	}
	return p
}

func TestPlaneWaveIdentity(t *testing.T) {
	p := testProbe(t, 128, 1, probe.AdapterPacked)
	n := &sequence.NormalizedSequence{
		Kind: sequence.PWI,
		NTx: 1,
		TxApertureCenter: []float64{0},
		TxApertureSize: []float64{128},
		TxFocus: []float64{sequence.PlaneWaveFocus},
		TxAngle: []float64{0},
		SpeedOfSound: 1540,
	}
	plan := Plan(n, p)
	for e, inAp := range plan.TxApMask[0] {
		if inAp && plan.TxDel[0][e] != 0 {
			t.Errorf("txDel[%d]=%g, want 0 for plane wave theta=0", e, plan.TxDel[0][e])
		}
	}
	if plan.NSubTx != 4 {
		t.Errorf("nSubTx=%d, want 4 for PWI/1 OEM/128 elements", plan.NSubTx)
	}
}

func TestFocalSymmetry(t *testing.T) {
	p := testProbe(t, 128, 1, probe.AdapterPacked)
	n := &sequence.NormalizedSequence{
		Kind: sequence.PWI,
		NTx: 1,
		TxApertureCenter: []float64{0},
		TxApertureSize: []float64{128},
		TxFocus: []float64{0.02},
		TxAngle: []float64{0},
		SpeedOfSound: 1540,
	}
	plan := Plan(n, p)
	nElem := p.NElem()
	for e := 0; e < nElem; e++ {
		mirror := nElem - 1 - e
		if plan.TxApMask[0][e] != plan.TxApMask[0][mirror] {
			continue
		}
		if plan.TxApMask[0][e] && math.Abs(plan.TxDel[0][e]-plan.TxDel[0][mirror]) > 1e-12 {
			t.Errorf("txDel[%d]=%g != txDel[%d]=%g, want symmetric focal delays", e, plan.TxDel[0][e], mirror, plan.TxDel[0][mirror])
		}
	}
}

func TestDefocusSignFlip(t *testing.T) {
	p := testProbe(t, 128, 1, probe.AdapterPacked)
	focused := &sequence.NormalizedSequence{
		Kind: sequence.PWI, NTx: 1,
		TxApertureCenter: []float64{0}, TxApertureSize: []float64{128},
		TxFocus: []float64{0.02}, TxAngle: []float64{0}, SpeedOfSound: 1540,
	}
	defocused := &sequence.NormalizedSequence{
		Kind: sequence.PWI, NTx: 1,
		TxApertureCenter: []float64{0}, TxApertureSize: []float64{128},
		TxFocus: []float64{-0.02}, TxAngle: []float64{0}, SpeedOfSound: 1540,
	}
	pf := Plan(focused, p)
	pd := Plan(defocused, p)
	nElem := p.NElem()
	for e := 0; e < nElem; e++ {
		if !pf.TxApMask[0][e] {
			continue
		}
		f := pf.TxDel[0][e] - pf.TxDelCent[0]
		d := pd.TxDel[0][e] - pd.TxDelCent[0]
		if math.Abs(f+d) > 1e-9 {
			t.Errorf("element %d: focused-delay %g and defocused-delay %g not sign-flipped (up to normalization)", e, f, d)
		}
	}
}

func TestCausalityAndConstantDelCent(t *testing.T) {
	p := testProbe(t, 192, 2, probe.AdapterPacked)
	n := &sequence.NormalizedSequence{
		Kind: sequence.STA, NTx: 3,
		TxApertureCenter: []float64{-0.015, 0, 0.015},
		TxApertureSize: []float64{32, 32, 32},
		TxFocus: []float64{-0.006, -0.006, -0.006},
		TxAngle: []float64{0, 0, 0},
		SpeedOfSound: 1540,
	}
	plan := Plan(n, p)
	for tx := 0; tx < plan.NTx; tx++ {
		minDel := math.Inf(1)
		for e, inAp := range plan.TxApMask[tx] {
			if inAp && plan.TxDel[tx][e] < minDel {
				minDel = plan.TxDel[tx][e]
			}
		}
		if math.Abs(minDel) > 1e-9 {
			t.Errorf("transmit %d: min(txDel in aperture)=%g, want 0", tx, minDel)
		}
		if plan.TxDelCent[tx] != plan.TxDelCent[0] {
			t.Errorf("transmit %d: txDelCent=%g != txDelCent[0]=%g", tx, plan.TxDelCent[tx], plan.TxDelCent[0])
		}
	}
}

func TestNSubTxLINIsOne(t *testing.T) {
	p := testProbe(t, 192, 2, probe.AdapterPacked)
	n := &sequence.NormalizedSequence{Kind: sequence.LIN, NTx: 1, TxApertureCenter: []float64{0}, TxApertureSize: []float64{32}, TxFocus: []float64{0.02}, TxAngle: []float64{0}, SpeedOfSound: 1540}
	plan := Plan(n, p)
	if plan.NSubTx != 1 {
		t.Errorf("nSubTx=%d, want 1 for LIN", plan.NSubTx)
	}
}
