package sequence

import "log"

// tgcCharacteristic is the fixed 41-point non-linear DAC
// characteristic: knot i (i=0..40) is the DAC code i/40
// normalized to [0,1]; tgcCharacteristic[i] is the actual gain, in dB,
// that DAC code produces. The knots are nominally 14+i dB but the
// real hardware curve departs from that line, which is exactly what
// this table captures.
var tgcCharacteristic = [41]float64{
	14.000, 14.001, 14.002, 14.003, 14.024, 14.168, 14.480, 14.825, 15.234, 15.770,
	16.508, 17.382, 18.469, 19.796, 20.933, 21.862, 22.891, 24.099, 25.543, 26.596,
	27.651, 28.837, 30.265, 31.690, 32.843, 34.045, 35.543, 37.184, 38.460, 39.680,
	41.083, 42.740, 44.269, 45.540, 46.936, 48.474, 49.895, 50.966, 52.083, 53.256,
	54.000,
}

const (
	tgcMinDB = 14.0
	tgcMaxDB = 54.0
)

// clampTGC clamps gainDB to [14,54] dB, reporting whether clamping
// occurred so the caller can emit the warning.
func clampTGC(gainDB float64) (clamped float64, wasClamped bool) {
	if gainDB < tgcMinDB {
		return tgcMinDB, true
	}
	if gainDB > tgcMaxDB {
		return tgcMaxDB, true
	}
	return gainDB, false
}

// remapToDAC inverts the characteristic table: given a desired gain in
// dB (already clamped to [14,54]), it finds the DAC code (normalized
// to [0,1]) that the hardware's non-linear DAC would need to produce
// that gain, via piecewise-linear interpolation over the table's
// monotonically increasing knots.
func remapToDAC(gainDB float64) float64 {
	for i := 0; i < len(tgcCharacteristic)-1; i++ {
		lo, hi := tgcCharacteristic[i], tgcCharacteristic[i+1]
		if gainDB >= lo && gainDB <= hi {
			frac := 0.0
			if hi > lo {
				frac = (gainDB - lo) / (hi - lo)
			}
			code := float64(i) + frac
			return code / float64(len(tgcCharacteristic)-1)
		}
	}
	// gainDB outside the table after clamping can't happen, but guard anyway.
	if gainDB <= tgcCharacteristic[0] {
		return 0
	}
	return 1
}

// Warner receives non-fatal warnings (TGC clamp, HV retry).
// A nil Warner is valid and simply discards warnings.
type Warner interface {
	Warn(msg string)
}

// logWarner routes warnings to the standard logger.
type logWarner struct{}

func (logWarner) Warn(msg string) { log.Println("[warn]", msg) }

// DefaultWarner logs via the standard library logger.
var DefaultWarner Warner = logWarner{}

// buildTGCCurve implements the normalization steps: a probe-depth grid, gain from
// tgcStart+tgcSlope·depth, clamped to [14,54] dB, remapped through the
// DAC characteristic into a monotone [0,1] curve.
func buildTGCCurve(tgcStart, tgcSlope, speedOfSound, rxSampFreq float64, fsDivider, startSample, nSamp int, warn Warner) []float64 {
	if warn == nil {
		warn = DefaultWarner
	}

	round := func(x float64) int {
		if x >= 0 {
			return int(x + 0.5)
		}
		return int(x - 0.5)
	}

	base := round(400.0 / float64(fsDivider))
	step := round(150.0 / float64(fsDivider))
	lastSample := startSample + nSamp - 1

	var curve []float64
	clampedAny := false
	for n := 0; ; n++ {
		sampleIdx := base + n*step
		if sampleIdx < startSample {
			continue
		}
		if sampleIdx > lastSample {
			break
		}
		depth := float64(sampleIdx) / rxSampFreq * speedOfSound
		gainDB := tgcStart + tgcSlope*depth
		clamped, wasClamped := clampTGC(gainDB)
		if wasClamped {
			clampedAny = true
		}
		curve = append(curve, remapToDAC(clamped))
	}

	if clampedAny {
		warn.Warn("TGC gain clamped to [14,54] dB")
	}

	return curve
}
