// Package mock generates plausible vital-sign series for demos and tests.
package mock

import (
	"math"
	"math/rand"
	"time"
)

const (
	heartPoints   = 30
	heartStep     = 10 // seconds
	heartBase     = 75.0
	heartMin      = 50.0
	heartMax      = 120.0
	heartInvalid  = 10 // value reported when detection fails
	heartBadRatio = 0.10

	hrvPoints   = 20
	hrvStep     = 30 // seconds
	hrvBase     = 75.0
	hrvMin      = 20.0
	hrvMax      = 150.0
	hrvGapRatio = 0.05
)

// HeartRateSeries is five minutes of heart-rate samples.
type HeartRateSeries struct {
	HeartWaveform []float64
	TimeStamp     []int64
	InBed         bool
}

// HRVSeries is ten minutes of HRV samples; nil entries are gaps.
type HRVSeries struct {
	Values     []*float64
	Timestamps []int64
}

// HeartRate returns 30 samples spaced 10s apart ending at now: a 75 bpm base
// with a slow sine trend, noise and an activity spike on samples 16-19,
// clamped to 50-120. About one in ten samples is the invalid value 10.
func HeartRate(now time.Time, rng *rand.Rand) HeartRateSeries {
	end := now.Unix()
	out := HeartRateSeries{
		HeartWaveform: make([]float64, 0, heartPoints),
		TimeStamp:     make([]int64, 0, heartPoints),
		InBed:         true,
	}
	for i := 0; i < heartPoints; i++ {
		out.TimeStamp = append(out.TimeStamp, end-int64(heartPoints-1-i)*heartStep)

		trend := math.Sin(float64(i)*0.1) * 8
		noise := (rng.Float64() - 0.5) * 12
		spike := 0.0
		if i > 15 && i < 20 {
			spike = 15
		}
		value := clamp(heartBase+trend+noise+spike, heartMin, heartMax)

		if rng.Float64() < heartBadRatio {
			out.HeartWaveform = append(out.HeartWaveform, heartInvalid)
			continue
		}
		out.HeartWaveform = append(out.HeartWaveform, math.Round(value))
	}
	return out
}

// HRV returns 20 samples spaced 30s apart ending at now around 75 ms,
// clamped to 20-150, with roughly 5% gaps.
func HRV(now time.Time, rng *rand.Rand) HRVSeries {
	end := now.Unix()
	out := HRVSeries{
		Values:     make([]*float64, 0, hrvPoints),
		Timestamps: make([]int64, 0, hrvPoints),
	}
	for i := 0; i < hrvPoints; i++ {
		out.Timestamps = append(out.Timestamps, end-int64(hrvPoints-1-i)*hrvStep)

		variation := math.Sin(float64(i)*0.3)*20 + rng.Float64()*15 - 7.5
		value := math.Round(clamp(hrvBase+variation, hrvMin, hrvMax))

		if rng.Float64() <= hrvGapRatio {
			out.Values = append(out.Values, nil)
			continue
		}
		out.Values = append(out.Values, &value)
	}
	return out
}

// Waveform returns n samples of a noisy sine with the given period in samples.
func Waveform(n int, period, amplitude float64, rng *rand.Rand) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude*math.Sin(2*math.Pi*float64(i)/period) + (rng.Float64()-0.5)*amplitude*0.1
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
