package oemprog

import (
	"strings"
	"testing"

	"github.com/usctl/oemcore/driver"
	"github.com/usctl/oemcore/planner"
	"github.com/usctl/oemcore/probe"
	"github.com/usctl/oemcore/sequence"
)

func TestProgramPWISingleOEMTriggerTable(t *testing.T) {
	p, err := probe.New("test", 128, 0.3e-3, 1, probe.AdapterPacked)
	if err != nil {
		t.Fatalf("probe.New: %v", err)
	}
	n := &sequence.NormalizedSequence{
		Kind: sequence.PWI, NTx: 1,
		TxApertureCenter: []float64{0}, TxApertureSize: []float64{128},
		TxFocus: []float64{sequence.PlaneWaveFocus}, TxAngle: []float64{0},
		SpeedOfSound: 1540, TxFrequency: 5e6, TxNPeriods: 2,
		NSamp: 64, StartSample: 1, FsDivider: 1, TxPri: 200e-6,
		TgcCurve: []float64{0.5},
	}
	plan := planner.Plan(n, p)
	if plan.NSubTx != 4 {
		t.Fatalf("nSubTx=%d, want 4", plan.NSubTx)
	}

	sim := &driver.Simulated{}
	result, err := Program([]driver.OEM{sim}, plan, n, p, 5)
	if err != nil {
		t.Fatalf("Program: %v", err)
	}
	if result.NFire != 4 {
		t.Errorf("nFire=%d, want 4", result.NFire)
	}
	if result.NTrig != 20 {
		t.Errorf("nTrig=%d, want 20", result.NTrig)
	}

	var triggerCalls []string
	for _, c := range sim.Calls {
		if strings.HasPrefix(c, "SetTrigger(") {
			triggerCalls = append(triggerCalls, c)
		}
	}
	if len(triggerCalls) != 20 {
		t.Fatalf("got %d SetTrigger calls, want 20", len(triggerCalls))
	}
	for i, c := range triggerCalls {
		wantSyncOut := "0"
		if i == 19 {
			wantSyncOut = "1"
		}
		if !strings.Contains(c, ",0,"+wantSyncOut+",") {
			t.Errorf("trigger %d = %q, expected syncOut=%s", i, c, wantSyncOut)
		}
	}
}

func TestProgramRejectsExcessiveNFire(t *testing.T) {
	p, _ := probe.New("test", 128, 0.3e-3, 1, probe.AdapterPacked)
	n := &sequence.NormalizedSequence{
		Kind: sequence.STA, NTx: 1024,
		TxApertureCenter: make([]float64, 1024), TxApertureSize: make([]float64, 1024),
		TxFocus: make([]float64, 1024), TxAngle: make([]float64, 1024),
		SpeedOfSound: 1540, NSamp: 4096, StartSample: 1, FsDivider: 1, TxPri: 200e-6,
		TgcCurve: []float64{0.5},
	}
	for i := range n.TxApertureCenter {
		n.TxApertureCenter[i] = 0
		n.TxApertureSize[i] = 32
		n.TxFocus[i] = 0.02
	}
	plan := planner.Plan(n, p)
	sim := &driver.Simulated{}
	if _, err := Program([]driver.OEM{sim}, plan, n, p, 1); err == nil {
		t.Fatal("expected IllegalArgument for nFire > 1024")
	}
}

func TestRxSubApMasksCoverAndDisjoint(t *testing.T) {
	p, _ := probe.New("test", 192, 0.3e-3, 2, probe.AdapterPacked)
	n := &sequence.NormalizedSequence{Kind: sequence.STA, NTx: 1,
		TxApertureCenter: []float64{0}, TxApertureSize: []float64{32},
		TxFocus: []float64{0.02}, TxAngle: []float64{0}, SpeedOfSound: 1540}
	plan := planner.Plan(n, p)

	for k := 0; k < p.NOEM(); k++ {
		actChan := activeChannels128(p, k)
		rxMask := rxApertureMask(n, plan, p, 0)
		var expected []bool
		for c := 0; c < probe.TxChannelsPerOEM; c++ {
			e := p.SelectElem(c, k)
			expected = append(expected, actChan[c] && e < p.NElem() && rxMask[e])
		}

		subMasks := rxSubApMasks(n, plan, p, k, 0)
		union := make([]bool, probe.TxChannelsPerOEM)
		for s, mask := range subMasks {
			count := 0
			for c, v := range mask {
				if v {
					count++
					if union[c] {
						t.Errorf("OEM %d channel %d appears in more than one sub-transmit", k, c)
					}
					union[c] = true
				}
			}
			if count > 32 {
				t.Errorf("OEM %d sub-transmit %d has %d active channels, want <= 32", k, s, count)
			}
		}
		for c := range expected {
			if union[c] != expected[c] {
				t.Errorf("OEM %d channel %d: union=%v, want %v", k, c, union[c], expected[c])
			}
		}
	}
}
