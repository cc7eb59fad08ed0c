package session

import (
	"testing"

	"github.com/usctl/oemcore/driver"
	"github.com/usctl/oemcore/sequence"
	"github.com/usctl/oemcore/telemetry"
)

func TestSessionLifecycle(t *testing.T) {
	sim := &driver.Simulated{}
	s, err := Open(Config{NOEM: 1, ProbeName: "L7-4", AdapterTag: "packed", Voltage: 40}, []driver.OEM{sim}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	req := sequence.Request{
		Kind: sequence.PWI,
		TxApertureCenter: []float64{0},
		TxApertureSize: []float64{128},
		TxFocus: []float64{sequence.PlaneWaveFocus},
		TxAngle: []float64{0},
		SpeedOfSound: 1540,
		TxFrequency: 5e6,
		TxNPeriods: 2,
		RxNSamples: &[2]int{1, 64},
		TxPri: 100e-6,
		NRepetitions: 2,
		FsDivider: 1,
	}
	if err := s.Upload(req); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	rf, err := s.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rf.NTx != 1 {
		t.Errorf("rf.NTx=%d, want 1", rf.NTx)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestSessionOpenRejectsVoltageOutOfRange(t *testing.T) {
	sim := &driver.Simulated{}
	if _, err := Open(Config{NOEM: 1, ProbeName: "L7-4", Voltage: 200}, []driver.OEM{sim}, nil); err == nil {
		t.Fatal("expected IllegalArgument for voltage > 90")
	}
}

func TestSessionRunBroadcastsToTelemetry(t *testing.T) {
	sim := &driver.Simulated{}
	hub := telemetry.NewHub()
	s, err := Open(Config{NOEM: 1, ProbeName: "L7-4", AdapterTag: "packed", Voltage: 10, Telemetry: hub}, []driver.OEM{sim}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	req := sequence.Request{
		Kind: sequence.PWI,
		TxApertureCenter: []float64{0},
		TxApertureSize: []float64{128},
		TxFocus: []float64{sequence.PlaneWaveFocus},
		TxAngle: []float64{0},
		SpeedOfSound: 1540,
		TxFrequency: 5e6,
		TxNPeriods: 2,
		RxNSamples: &[2]int{1, 64},
		TxPri: 100e-6,
		NRepetitions: 2,
		FsDivider: 1,
	}
	if err := s.Upload(req); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	// No client is connected; Run/FrameComplete and Warn must still
	// succeed as no-op broadcasts rather than blocking or panicking.
	if _, err := s.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.frame != 1 {
		t.Errorf("frame counter = %d, want 1", s.frame)
	}
	s.Warn("test warning")

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestSessionOpenRetriesEnableHVOnce(t *testing.T) {
	sim := &driver.Simulated{FailEnableHVOnce: true}
	_, err := Open(Config{NOEM: 1, ProbeName: "L7-4", Voltage: 10}, []driver.OEM{sim}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	count := 0
	for _, c := range sim.Calls {
		if len(c) >= len("EnableHV") && c[:len("EnableHV")] == "EnableHV" {
			count++
		}
	}
	if count != 2 {
		t.Errorf("EnableHV called %d times, want 2 (one retry)", count)
	}
}
