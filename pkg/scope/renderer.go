package scope

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/sndmon/pkg/meter"
	"github.com/itohio/sndmon/pkg/sample"
)

var (
	gridColor      = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor     = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	levelColor     = color.RGBA{R: 255, G: 165, B: 0, A: 255}   // Orange
	actuatorColor  = color.RGBA{R: 0, G: 160, B: 255, A: 140}   // Dim blue
	thresholdColor = color.RGBA{R: 220, G: 50, B: 50, A: 255}   // Red
	soundColor     = color.NRGBA{R: 255, G: 165, B: 0, A: 40}   // Translucent orange
	alarmColor     = color.NRGBA{R: 220, G: 50, B: 50, A: 160}  // Red strip
	statusColor    = color.RGBA{R: 200, G: 200, B: 200, A: 255} // Light gray
)

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *ScopeWidget

	background *canvas.Rectangle
	objects    []fyne.CanvasObject
	lastSize   fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh rebuilds the plot from the widget data.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	samples := r.scope.displaySamples
	episodes := r.scope.episodes
	stats := r.scope.stats
	latest := r.scope.latest
	hasData := r.scope.hasData
	a := r.scope.axes
	board := r.scope.board()
	threshold := board.SoundThreshold
	outMin, outMax := board.OutMin, board.OutMax
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.background}

	marginLeft := float32(50.0)
	marginRight := float32(20.0)
	marginTop := float32(30.0)
	marginBottom := float32(40.0)

	plotWidth := size.Width - marginLeft - marginRight
	plotHeight := size.Height - marginTop - marginBottom
	plotX := marginLeft
	plotY := marginTop

	r.drawEpisodes(plotX, plotY, plotWidth, plotHeight, episodes, a)
	r.drawGrid(plotX, plotY, plotWidth, plotHeight, a)
	r.drawThreshold(plotX, plotY, plotWidth, plotHeight, threshold, a)
	if len(samples) > 1 {
		r.drawActuatorLine(plotX, plotY, plotWidth, plotHeight, samples, outMin, outMax, a)
		r.drawLevelLine(plotX, plotY, plotWidth, plotHeight, samples, a)
	}
	if hasData {
		r.drawStatus(plotX, latest, stats)
	}
}

// drawGrid draws the oscilloscope-style grid.
func (r *scopeRenderer) drawGrid(plotX, plotY, plotWidth, plotHeight float32, a axes) {
	numHLines := 8
	for i := 0; i < numHLines+1; i++ {
		y := plotY + float32(i)*plotHeight/float32(numHLines)
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(plotX, y)
		line.Position2 = fyne.NewPos(plotX+plotWidth, y)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)

		value := a.yMax - float64(i)*(a.yMax-a.yMin)/float64(numHLines)
		text := canvas.NewText(fmt.Sprintf("%.0f", value), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(plotX-5, y-6))
		r.objects = append(r.objects, text)
	}

	numVLines := 10
	span := a.xMax.Sub(a.xMin)
	for i := 0; i < numVLines+1; i++ {
		x := plotX + float32(i)*plotWidth/float32(numVLines)
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(x, plotY)
		line.Position2 = fyne.NewPos(x, plotY+plotHeight)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)

		// Time relative to the newest sample
		offset := span - time.Duration(i)*span/time.Duration(numVLines)
		text := canvas.NewText(formatAgo(offset), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-20, plotY+plotHeight+5))
		r.objects = append(r.objects, text)
	}
}

// drawThreshold draws the sound threshold as a horizontal line.
func (r *scopeRenderer) drawThreshold(plotX, plotY, plotWidth, plotHeight float32, threshold int, a axes) {
	_, y := a.project(a.xMin, float64(threshold), plotX, plotY, plotWidth, plotHeight)
	line := canvas.NewLine(thresholdColor)
	line.Position1 = fyne.NewPos(plotX, y)
	line.Position2 = fyne.NewPos(plotX+plotWidth, y)
	line.StrokeWidth = 1
	r.objects = append(r.objects, line)
}

// drawLevelLine draws the smoothed sound level curve.
func (r *scopeRenderer) drawLevelLine(plotX, plotY, plotWidth, plotHeight float32, samples []sample.Sample, a axes) {
	prevX, prevY := a.project(samples[0].Timestamp, float64(samples[0].Level), plotX, plotY, plotWidth, plotHeight)
	for _, s := range samples[1:] {
		x, y := a.project(s.Timestamp, float64(s.Level), plotX, plotY, plotWidth, plotHeight)
		line := canvas.NewLine(levelColor)
		line.Position1 = fyne.NewPos(prevX, prevY)
		line.Position2 = fyne.NewPos(x, y)
		line.StrokeWidth = 1.5
		r.objects = append(r.objects, line)
		prevX, prevY = x, y
	}
}

// drawActuatorLine draws the LED output scaled to the full plot height.
func (r *scopeRenderer) drawActuatorLine(plotX, plotY, plotWidth, plotHeight float32, samples []sample.Sample, outMin, outMax int, a axes) {
	if outMax <= outMin {
		return
	}
	span := float32(outMax - outMin)
	point := func(s sample.Sample) (float32, float32) {
		x, _ := a.project(s.Timestamp, a.yMin, plotX, plotY, plotWidth, plotHeight)
		return x, plotY + plotHeight - float32(s.Actuator-outMin)/span*plotHeight
	}

	prevX, prevY := point(samples[0])
	for _, s := range samples[1:] {
		x, y := point(s)
		line := canvas.NewLine(actuatorColor)
		line.Position1 = fyne.NewPos(prevX, prevY)
		line.Position2 = fyne.NewPos(x, y)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)
		prevX, prevY = x, y
	}
}

// drawEpisodes shades sound episodes and marks alarm episodes with a strip at the bottom.
func (r *scopeRenderer) drawEpisodes(plotX, plotY, plotWidth, plotHeight float32, episodes []meter.Episode, a axes) {
	const stripHeight = 6

	for _, e := range episodes {
		x1, _ := a.project(e.StartTime, a.yMin, plotX, plotY, plotWidth, plotHeight)
		x2, _ := a.project(e.EndTime, a.yMin, plotX, plotY, plotWidth, plotHeight)
		if x1 < plotX {
			x1 = plotX
		}
		width := x2 - x1
		if width < 2 {
			width = 2
		}

		var rect *canvas.Rectangle
		switch e.Kind {
		case meter.EpisodeAlarm:
			rect = canvas.NewRectangle(alarmColor)
			rect.Move(fyne.NewPos(x1, plotY+plotHeight-stripHeight))
			rect.Resize(fyne.NewSize(width, stripHeight))
		default:
			rect = canvas.NewRectangle(soundColor)
			rect.Move(fyne.NewPos(x1, plotY))
			rect.Resize(fyne.NewSize(width, plotHeight))
		}
		r.objects = append(r.objects, rect)
	}
}

// drawStatus draws the latest level, LED value and counters above the plot.
func (r *scopeRenderer) drawStatus(plotX float32, latest sample.Sample, stats meter.Stats) {
	status := fmt.Sprintf("level %d  LED %d/255  cycles %d  alarms %d  triggers %d  max %d",
		latest.Level, latest.Actuator, stats.Cycles, stats.AlarmCycles, stats.SoundCycles, stats.MaxLevel)
	text := canvas.NewText(status, statusColor)
	text.TextSize = 11
	text.Alignment = fyne.TextAlignLeading
	text.Move(fyne.NewPos(plotX, 8))
	r.objects = append(r.objects, text)

	if latest.LineActive {
		alarm := canvas.NewText("ALARM", thresholdColor)
		alarm.TextSize = 12
		alarm.TextStyle = fyne.TextStyle{Bold: true}
		alarm.Move(fyne.NewPos(r.lastSize.Width-70, 8))
		r.objects = append(r.objects, alarm)
	}
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {}

// formatAgo formats a duration before now as "-12.5s".
func formatAgo(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	return fmt.Sprintf("-%.1fs", d.Seconds())
}
