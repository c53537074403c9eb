package scope

import (
	"time"

	"github.com/itohio/sndmon/pkg/sample"
)

// axes is the visible data range of the plot.
type axes struct {
	yMin, yMax float64
	xMin, xMax time.Time
}

// autoScale fits the Y axis to the levels and the threshold with a 10% margin
// and spans the X axis over the samples, at least window wide.
func autoScale(samples []sample.Sample, threshold int, window time.Duration, now time.Time) axes {
	if len(samples) == 0 {
		return axes{
			yMin: 0,
			yMax: float64(threshold) * 1.25,
			xMin: now,
			xMax: now.Add(window),
		}
	}

	a := axes{
		yMin: float64(threshold),
		yMax: float64(threshold),
	}
	for _, s := range samples {
		v := float64(s.Level)
		if v < a.yMin {
			a.yMin = v
		}
		if v > a.yMax {
			a.yMax = v
		}
	}

	margin := (a.yMax - a.yMin) * 0.1
	if margin == 0 {
		margin = 10
	}
	a.yMin -= margin
	a.yMax += margin
	if a.yMin < 0 {
		a.yMin = 0
	}

	a.xMax = samples[len(samples)-1].Timestamp
	a.xMin = a.xMax.Add(-window)
	if first := samples[0].Timestamp; first.Before(a.xMin) {
		a.xMin = first
	}

	return a
}

// project maps a (time, value) point into plot coordinates with y growing downwards.
func (a axes) project(t time.Time, v float64, plotX, plotY, plotWidth, plotHeight float32) (float32, float32) {
	span := a.xMax.Sub(a.xMin).Seconds()
	if span <= 0 {
		span = 1
	}
	yRange := a.yMax - a.yMin
	if yRange <= 0 {
		yRange = 1
	}

	x := plotX + float32(t.Sub(a.xMin).Seconds()/span)*plotWidth
	y := plotY + plotHeight - float32((v-a.yMin)/yRange)*plotHeight
	return x, y
}
