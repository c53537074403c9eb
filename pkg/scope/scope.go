package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/sndmon/pkg/config"
	"github.com/itohio/sndmon/pkg/meter"
	"github.com/itohio/sndmon/pkg/monitor"
	"github.com/itohio/sndmon/pkg/sample"
)

// ScopeWidget is a custom Fyne widget that plots the sound level history.
type ScopeWidget struct {
	widget.BaseWidget

	cfg       *config.Config
	simulated bool // Plot against cfg.Monitor instead of the board defaults

	// Data (protected by mu)
	mu       sync.RWMutex
	episodes []meter.Episode
	stats    meter.Stats
	latest   sample.Sample
	hasData  bool

	// Display buffer (reused for downsampling)
	displaySamples []sample.Sample

	axes axes

	maxDisplayPoints int
}

// New creates a new ScopeWidget instance. Threshold and LED range are taken
// from cfg.BoardConfig(simulated).
func New(cfg *config.Config, simulated bool) *ScopeWidget {
	s := &ScopeWidget{
		cfg:              cfg,
		simulated:        simulated,
		episodes:         make([]meter.Episode, 0),
		displaySamples:   make([]sample.Sample, 0, 1000),
		maxDisplayPoints: 1000, // Limit points for efficient rendering
	}
	s.axes = autoScale(nil, s.board().SoundThreshold, cfg.Display.Window(), time.Now())
	s.ExtendBaseWidget(s)
	s.Refresh()
	return s
}

// UpdateData updates the widget with new history.
// This should be called on the main thread using fyne.Do().
func (s *ScopeWidget) UpdateData(samples []sample.Sample, episodes []meter.Episode, stats meter.Stats) {
	s.mu.Lock()

	s.displaySamples = sample.Downsample(s.displaySamples, samples, s.maxDisplayPoints)
	s.episodes = episodes
	s.stats = stats
	s.hasData = len(samples) > 0
	if s.hasData {
		s.latest = samples[len(samples)-1]
	}
	s.axes = autoScale(s.displaySamples, s.board().SoundThreshold, s.cfg.Display.Window(), time.Now())

	s.mu.Unlock()

	// Refresh outside the lock, the renderer takes a read lock
	s.Refresh()
}

func (s *ScopeWidget) board() monitor.Config {
	return s.cfg.BoardConfig(s.simulated)
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	background := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255})
	return &scopeRenderer{
		scope:      s,
		background: background,
		objects:    []fyne.CanvasObject{background},
	}
}
