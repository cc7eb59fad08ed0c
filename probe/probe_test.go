package probe

import (
	"math"
	"testing"
)

func TestXElemSymmetric(t *testing.T) {
	p, err := New("test", 8, 0.3e-3, 1, AdapterPacked)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	x := p.XElem()
	for i := range x {
		mirror := x[len(x)-1-i]
		if math.Abs(x[i]+mirror) > 1e-12 {
			t.Errorf("x[%d]=%g not antisymmetric with mirror %g", i, x[i], mirror)
		}
	}
}

func TestNElemExceedsAddressable(t *testing.T) {
	if _, err := New("big", 300, 0.3e-3, 2, AdapterPacked); err == nil {
		t.Fatal("expected error for nElem > 128*nOEM")
	}
}

func TestSelectElemPacked(t *testing.T) {
	p, _ := New("test", 256, 0.3e-3, 2, AdapterPacked)
	if e := p.SelectElem(10, 1); e != 138 {
		t.Errorf("SelectElem(10,1) = %d, want 138", e)
	}
}

func TestActiveChannelInterleaved(t *testing.T) {
	p, _ := New("test", 128, 0.3e-3, 2, AdapterInterleaved)
	// channel group 0 (c in [0,32)) belongs to OEM 0, group 1 to OEM 1, etc (mod nOEM).
	if !p.ActiveChannel(5, 0) {
		t.Error("channel 5 (group 0) should be active on OEM 0")
	}
	if p.ActiveChannel(5, 1) {
		t.Error("channel 5 (group 0) should not be active on OEM 1")
	}
	if !p.ActiveChannel(40, 1) {
		t.Error("channel 40 (group 1) should be active on OEM 1")
	}
}

func TestActiveChannelPackedOutOfRange(t *testing.T) {
	p, _ := New("test", 130, 0.3e-3, 2, AdapterPacked)
	if !p.ActiveChannel(1, 1) {
		t.Error("channel 1 on OEM 1 (element 129) should be active")
	}
	if p.ActiveChannel(5, 1) {
		t.Error("channel 5 on OEM 1 (element 133) exceeds nElem=130, should be inactive")
	}
}

func TestWithChannelMapsValidation(t *testing.T) {
	p, _ := New("test", 64, 0.3e-3, 1, AdapterPacked)
	bad := make([][]int, 1)
	bad[0] = make([]int, TxChannelsPerOEM)
	bad[0][0] = 99999
	rx := p.RxChannelMap()
	if err := p.WithChannelMaps(bad, rx); err == nil {
		t.Fatal("expected error for out-of-range lane")
	}
}
