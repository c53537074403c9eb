package meter

import (
	"sync"
	"time"

	"github.com/itohio/sndmon/pkg/config"
	"github.com/itohio/sndmon/pkg/sample"
)

var _ SoundMeter = (*Meter)(nil)

// EpisodeKind tells which notification an episode is made of.
type EpisodeKind int

const (
	// EpisodeSound is a run of cycles above the sound threshold.
	EpisodeSound EpisodeKind = iota
	// EpisodeAlarm is a run of cycles with the line sensor active.
	EpisodeAlarm
)

// Episode is a run of consecutive cycles carrying the same notification.
type Episode struct {
	Kind       EpisodeKind
	StartIndex int       // Start sample index in buffer
	EndIndex   int       // End sample index in buffer (updated as the episode continues)
	StartTime  time.Time // Start timestamp
	EndTime    time.Time // End timestamp (updated as the episode continues)
	Cycles     int       // Total length in cycles, including cycles already evicted
	Peak       int       // Highest smoothed level seen during the episode
}

// Stats are counters accumulated over every processed sample.
type Stats struct {
	Cycles      int
	AlarmCycles int
	SoundCycles int
	MaxLevel    int
}

// SoundMeter keeps a time window of samples and tracks notification episodes.
type SoundMeter interface {
	ProcessSamples(input <-chan sample.Sample)
	Samples() []sample.Sample                                                // Current samples buffer, ordered first to last
	Episodes() []Episode                                                     // Episodes within window
	Stats() Stats                                                            // Counters since creation
	OnUpdate(func(samples []sample.Sample, episodes []Episode, stats Stats)) // Register callback for updates
}

// Meter implements SoundMeter.
// Samples are kept in a FIFO ordered first to last; removal is based on
// timestamp (time window), not number of samples.
type Meter struct {
	samples  []sample.Sample
	episodes []Episode
	stats    Stats

	mu sync.RWMutex

	callbacks []func(samples []sample.Sample, episodes []Episode, stats Stats)
	cbMu      sync.RWMutex

	windowDuration time.Duration
	minCycles      int

	// Set when the input channel closes, prevents further callbacks
	shutdown bool
}

// New creates a new Meter instance.
func New(cfg *config.Config) *Meter {
	minCycles := cfg.Display.MinEpisodeCycles
	if minCycles < 1 {
		minCycles = 1
	}

	window := cfg.Display.Window()
	if window <= 0 {
		window = config.Default().Display.Window()
	}

	return &Meter{
		samples:        make([]sample.Sample, 0),
		episodes:       make([]Episode, 0),
		windowDuration: window,
		minCycles:      minCycles,
	}
}

// ProcessSamples consumes samples until the input channel closes.
// When the input channel closes, it sets shutdown flag to prevent further callbacks.
func (m *Meter) ProcessSamples(input <-chan sample.Sample) {
	for s := range input {
		m.processSample(s)
	}
	m.mu.Lock()
	m.shutdown = true
	m.mu.Unlock()
}

// processSample adds a sample to the buffer, evicts old samples and updates episodes.
func (m *Meter) processSample(s sample.Sample) {
	m.mu.Lock()

	m.samples = append(m.samples, s)
	m.evict(s.Timestamp.Add(-m.windowDuration))
	m.updateEpisodes()
	m.updateStats(s)

	shouldNotify := !m.shutdown
	m.mu.Unlock()

	if shouldNotify {
		m.notifyCallbacks()
	}
}

// evict removes samples at or before cutoff and shifts episode indices.
func (m *Meter) evict(cutoff time.Time) {
	cutoffIndex := len(m.samples)
	for i, s := range m.samples {
		if s.Timestamp.After(cutoff) {
			cutoffIndex = i
			break
		}
	}
	if cutoffIndex == 0 {
		return
	}

	m.samples = m.samples[cutoffIndex:]

	valid := m.episodes[:0]
	for _, e := range m.episodes {
		e.StartIndex -= cutoffIndex
		e.EndIndex -= cutoffIndex
		if e.EndIndex < 0 {
			continue
		}
		if e.StartIndex < 0 {
			e.StartIndex = 0
			e.StartTime = m.samples[0].Timestamp
		}
		valid = append(valid, e)
	}
	m.episodes = valid
}

// updateEpisodes extends or starts episodes for the newest sample.
func (m *Meter) updateEpisodes() {
	last := len(m.samples) - 1
	if last < 0 {
		return
	}
	s := m.samples[last]

	if s.SoundTriggered {
		m.extend(EpisodeSound, last, s)
	}
	if s.LineActive {
		m.extend(EpisodeAlarm, last, s)
	}
}

func (m *Meter) extend(kind EpisodeKind, idx int, s sample.Sample) {
	for i := len(m.episodes) - 1; i >= 0; i-- {
		e := &m.episodes[i]
		if e.Kind != kind {
			continue
		}
		if e.EndIndex == idx-1 {
			e.EndIndex = idx
			e.EndTime = s.Timestamp
			e.Cycles++
			if s.Level > e.Peak {
				e.Peak = s.Level
			}
			return
		}
		break
	}

	m.episodes = append(m.episodes, Episode{
		Kind:       kind,
		StartIndex: idx,
		EndIndex:   idx,
		StartTime:  s.Timestamp,
		EndTime:    s.Timestamp,
		Cycles:     1,
		Peak:       s.Level,
	})
}

func (m *Meter) updateStats(s sample.Sample) {
	m.stats.Cycles++
	if s.LineActive {
		m.stats.AlarmCycles++
	}
	if s.SoundTriggered {
		m.stats.SoundCycles++
	}
	if s.Level > m.stats.MaxLevel {
		m.stats.MaxLevel = s.Level
	}
}

// SetWindow changes the history window. Samples older than the new window are
// dropped with the next processed sample.
func (m *Meter) SetWindow(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windowDuration = d
}

// Samples returns a copy of the current samples buffer.
func (m *Meter) Samples() []sample.Sample {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]sample.Sample, len(m.samples))
	copy(result, m.samples)
	return result
}

// Episodes returns a copy of the episodes within the window that lasted at
// least the configured minimum number of cycles.
func (m *Meter) Episodes() []Episode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.visibleEpisodes()
}

func (m *Meter) visibleEpisodes() []Episode {
	result := make([]Episode, 0, len(m.episodes))
	for _, e := range m.episodes {
		if e.Cycles >= m.minCycles {
			result = append(result, e)
		}
	}
	return result
}

// Stats returns the accumulated counters.
func (m *Meter) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// OnUpdate registers a callback function that will be called when samples are updated.
// The callback should copy data quickly and return as fast as possible.
func (m *Meter) OnUpdate(callback func(samples []sample.Sample, episodes []Episode, stats Stats)) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// ResetShutdown resets the shutdown flag, allowing callbacks to be sent again.
// This should be called before starting a new measurement chain.
func (m *Meter) ResetShutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdown = false
}

// notifyCallbacks invokes all registered callbacks with current data.
// Makes copies of data while holding read lock, then calls callbacks without lock.
func (m *Meter) notifyCallbacks() {
	m.mu.RLock()
	samplesCopy := make([]sample.Sample, len(m.samples))
	copy(samplesCopy, m.samples)
	episodes := m.visibleEpisodes()
	stats := m.stats
	m.mu.RUnlock()

	m.cbMu.RLock()
	callbacks := make([]func(samples []sample.Sample, episodes []Episode, stats Stats), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(samplesCopy, episodes, stats)
		}
	}
}
