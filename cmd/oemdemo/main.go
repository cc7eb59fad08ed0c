// Command oemdemo exercises a full session lifecycle against the
// simulated driver: session_open, one upload, a short runLoop of
// -frames acquisitions, then close. It has no persisted state and no
// reconstruction — it prints per-frame channel/sample counts only.
package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/usctl/oemcore/acquire"
	"github.com/usctl/oemcore/driver"
	"github.com/usctl/oemcore/sequence"
	"github.com/usctl/oemcore/session"
	"github.com/usctl/oemcore/telemetry"
)

func main() {
	nOEM := flag.Int("noem", 1, "number of OEM modules")
	probeName := flag.String("probe", "L7-4", "probe catalog name")
	adapter := flag.String("adapter", "packed", "adapter topology: packed or interleaved")
	voltage := flag.Float64("voltage", 20, "HV voltage parameter, [0,90]")
	frames := flag.Int("frames", 3, "number of runLoop frames to acquire")
	telemetryAddr := flag.String("telemetry-addr", "", "if set, serve a websocket telemetry feed on this address (e.g. :8080)")
	flag.Parse()

	oems := make([]driver.OEM, *nOEM)
	for i := range oems {
		oems[i] = &driver.Simulated{Index: i}
	}

	var hub *telemetry.Hub
	if *telemetryAddr != "" {
		hub = telemetry.NewHub()
		http.Handle("/telemetry", hub)
		go func() {
			if err := http.ListenAndServe(*telemetryAddr, nil); err != nil {
				log.Printf("telemetry server: %v", err)
			}
		}()
	}

	s, err := session.Open(session.Config{
		NOEM: *nOEM,
		ProbeName: *probeName,
		AdapterTag: *adapter,
		Voltage: *voltage,
		Telemetry: hub,
	}, oems, nil)
	if err != nil {
		log.Fatalf("session_open: %v", err)
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
		RxDepthRange: &[2]float64{0, 0.06},
		TxPri: 200e-6,
		NRepetitions: 4,
		FsDivider: 1,
		TgcStart: 20,
		TgcSlope: 0,
	}

	if err := s.Upload(req); err != nil {
		log.Fatalf("upload: %v", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Printf("close: %v", err)
		}
	}()

	frame := 0
	err = s.RunLoop(func() bool { return frame < *frames }, func(rf *acquire.RFTensor) {
		frame++
		log.Printf("frame %d: %d samples x %d channels x %d transmits", frame, rf.NSamp, rf.NChannels, rf.NTx)
	})
	if err != nil {
		log.Fatalf("runLoop: %v", err)
	}
	log.Printf("acquired %d frames", frame)
}
