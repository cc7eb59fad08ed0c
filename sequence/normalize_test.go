package sequence

import (
	"math"
	"testing"

	"github.com/usctl/oemcore/probe"
)

type collectingWarner struct{ msgs []string }

func (w *collectingWarner) Warn(msg string) { w.msgs = append(w.msgs, msg) }

func testProbe(t *testing.T) *probe.Probe {
	t.Helper()
	p, err := probe.New("test", 128, 0.3e-3, 1, probe.AdapterPacked)
	if err != nil {
		t.Fatalf("probe.New: %v", err)
	}
	return p
}

func TestNormalizeDepthRangeRoundTrip(t *testing.T) {
	p := testProbe(t)
	req := Request{
		Kind: LIN,
		TxApertureCenter: []float64{0},
		TxApertureSize: []float64{64},
		TxFocus: []float64{PlaneWaveFocus},
		TxAngle: []float64{0},
		SpeedOfSound: 1540,
		TxFrequency: 5e6,
		TxNPeriods: 2,
		RxDepthRange: &[2]float64{0.01, 0.05},
		TxPri: 200e-6,
		NRepetitions: 1,
		FsDivider: 1,
	}
	n, err := Normalize(req, p, nil)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if n.NSamp%64 != 0 {
		t.Errorf("nSamp=%d not a multiple of 64", n.NSamp)
	}
	wantStart := int(2*n.RxSampFreq*0.01/1540+0.5) + 1
	if n.StartSample != wantStart {
		t.Errorf("startSample=%d, want %d", n.StartSample, wantStart)
	}
	// mapping startSample back to depth recovers zMin within one sample.
	zBack := float64(n.StartSample-1) * 1540 / (2 * n.RxSampFreq)
	if tol := 1540 / (2 * n.RxSampFreq); math.Abs(zBack-0.01) > tol {
		t.Errorf("depth of startSample = %g, want 0.01 within %g", zBack, tol)
	}
}

func TestNormalizeTGCClamp(t *testing.T) {
	p := testProbe(t)
	w := &collectingWarner{}
	req := Request{
		Kind: LIN,
		TxApertureCenter: []float64{0},
		TxApertureSize: []float64{64},
		TxFocus: []float64{PlaneWaveFocus},
		TxAngle: []float64{0},
		SpeedOfSound: 1540,
		TxFrequency: 5e6,
		TxNPeriods: 2,
		RxNSamples: &[2]int{1, 1024},
		TxPri: 200e-6,
		NRepetitions: 1,
		FsDivider: 1,
		TgcStart: 5,
		TgcSlope: 0,
	}
	n, err := Normalize(req, p, w)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(w.msgs) == 0 {
		t.Fatal("expected a TGC clamp warning")
	}
	for _, v := range n.TgcCurve {
		if math.Abs(v-0.0) > 1e-9 {
			t.Errorf("tgcCurve value = %g, want 0.0 (gain clamped to 14dB)", v)
		}
	}
}

func TestNormalizeRejectsOversizeNSamp(t *testing.T) {
	p := testProbe(t)
	req := Request{
		Kind: LIN,
		TxApertureCenter: []float64{0},
		TxApertureSize: []float64{64},
		TxFocus: []float64{PlaneWaveFocus},
		TxAngle: []float64{0},
		SpeedOfSound: 1540,
		TxFrequency: 5e6,
		TxNPeriods: 2,
		RxNSamples: &[2]int{1, 1<<13 + 64},
		TxPri: 200e-6,
		NRepetitions: 1,
		FsDivider: 1,
	}
	if _, err := Normalize(req, p, nil); err == nil {
		t.Fatal("expected IllegalArgument for oversize nSamp")
	}
}

func TestNormalizeRejectsNonMultipleOf64NSamp(t *testing.T) {
	p := testProbe(t)
	req := Request{
		Kind: LIN,
		TxApertureCenter: []float64{0},
		TxApertureSize: []float64{64},
		TxFocus: []float64{PlaneWaveFocus},
		TxAngle: []float64{0},
		SpeedOfSound: 1540,
		TxFrequency: 5e6,
		TxNPeriods: 2,
		RxNSamples: &[2]int{1, 100},
		TxPri: 200e-6,
		NRepetitions: 1,
		FsDivider: 1,
	}
	if _, err := Normalize(req, p, nil); err == nil {
		t.Fatal("expected IllegalArgument for nSamp not a multiple of 64")
	}
}

func TestNormalizeBroadcastsScalarApertureSize(t *testing.T) {
	p := testProbe(t)
	req := Request{
		Kind: STA,
		TxApertureCenter: []float64{-0.01, 0, 0.01},
		TxApertureSize: []float64{32},
		TxFocus: []float64{0.03, 0.03, 0.03},
		TxAngle: []float64{0, 0, 0},
		SpeedOfSound: 1540,
		TxFrequency: 5e6,
		TxNPeriods: 2,
		RxNSamples: &[2]int{1, 64},
		TxPri: 200e-6,
		NRepetitions: RepMax,
		FsDivider: 1,
	}
	n, err := Normalize(req, p, nil)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if n.NTx != 3 {
		t.Fatalf("nTx=%d, want 3", n.NTx)
	}
	if len(n.TxApertureSize) != 3 || n.TxApertureSize[1] != 32 {
		t.Errorf("txApertureSize not broadcast correctly: %v", n.TxApertureSize)
	}
	rep, err := n.ResolveRepetitions(6)
	if err != nil {
		t.Fatalf("ResolveRepetitions: %v", err)
	}
	if rep != 16384/6 {
		t.Errorf("resolved repetitions = %d, want %d", rep, 16384/6)
	}
}

func TestNormalizeRequiresApertureSpec(t *testing.T) {
	p := testProbe(t)
	req := Request{
		Kind: STA,
		SpeedOfSound: 1540,
		TxNPeriods: 1,
		RxNSamples: &[2]int{1, 64},
		FsDivider: 1,
		NRepetitions: 1,
	}
	if _, err := Normalize(req, p, nil); err == nil {
		t.Fatal("expected IllegalArgument when neither txApertureCenter nor txCenterElement is set")
	}
}
