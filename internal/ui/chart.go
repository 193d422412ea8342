package ui

import (
	"math"
	"strings"
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// sparkline draws values into width cells. Longer series are bucketed by
// averaging; NaN samples render as a gap. Only the last width samples are
// kept when the series is shorter than the buckets would need.
func sparkline(values []float64, width int) string {
	if width <= 0 || len(values) == 0 {
		return ""
	}
	cells := bucket(values, width)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range cells {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var b strings.Builder
	for _, v := range cells {
		switch {
		case math.IsNaN(v):
			b.WriteRune(' ')
		case hi == lo:
			b.WriteRune(sparkRunes[len(sparkRunes)/2])
		default:
			idx := int(math.Round((v - lo) / (hi - lo) * float64(len(sparkRunes)-1)))
			b.WriteRune(sparkRunes[idx])
		}
	}
	return b.String()
}

// bucket reduces values to at most width cells.
func bucket(values []float64, width int) []float64 {
	if len(values) <= width {
		return values
	}
	out := make([]float64, width)
	per := float64(len(values)) / float64(width)
	for i := range out {
		start := int(float64(i) * per)
		end := int(float64(i+1) * per)
		if end <= start {
			end = start + 1
		}
		sum, n := 0.0, 0
		for _, v := range values[start:end] {
			if math.IsNaN(v) {
				continue
			}
			sum += v
			n++
		}
		if n == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(n)
	}
	return out
}

// gaps converts optional samples, mapping nil to NaN.
func gaps(values []*float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	return out
}

// seriesStats returns min, max and the latest value, ignoring NaN.
func seriesStats(values []float64) (lo, hi, last float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		last = v
		ok = true
	}
	return lo, hi, last, ok
}

// bar renders a horizontal bar of value/limit over width cells.
func bar(value, limit, width int) string {
	if width <= 0 || limit <= 0 || value <= 0 {
		return ""
	}
	n := value * width / limit
	if n == 0 {
		n = 1
	}
	if n > width {
		n = width
	}
	return strings.Repeat("█", n)
}
