package sim

import (
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/itohio/sndmon/pkg/hal"
)

// Config describes the signals produced by the simulated board.
type Config struct {
	Baseline      float32       `yaml:"baseline" validate:"gte=0,lte=1023"` // Quiet room ADC level
	NoiseLevel    float32       `yaml:"noise_level" validate:"gte=0"`       // Peak-to-peak noise in ADC counts
	BurstLevel    float32       `yaml:"burst_level"`                        // Added to baseline during a burst
	BurstDuration time.Duration `yaml:"burst_duration" validate:"gte=0"`
	BurstPeriod   time.Duration `yaml:"burst_period" validate:"gte=0"`
	AlarmDuration time.Duration `yaml:"alarm_duration" validate:"gte=0"` // Line sensor held low for this long
	AlarmPeriod   time.Duration `yaml:"alarm_period" validate:"gte=0"`
}

// DefaultConfig returns a simulation that crosses the default sound
// threshold for two seconds out of every ten and trips the line sensor once
// every fifteen seconds.
func DefaultConfig() Config {
	return Config{
		Baseline:      320,
		NoiseLevel:    20,
		BurstLevel:    110,
		BurstDuration: 2 * time.Second,
		BurstPeriod:   10 * time.Second,
		AlarmDuration: time.Second,
		AlarmPeriod:   15 * time.Second,
	}
}

// Board simulates the sensor board for host development and tests.
// It is kept out of package hal so the firmware does not link it.
type Board struct {
	cfg Config

	mu      sync.Mutex
	now     func() time.Time
	start   time.Time
	reads   int
	outputs map[hal.Pin]int
}

// New creates a simulated board. A nil config selects DefaultConfig.
func New(cfg *Config) *Board {
	if cfg == nil {
		def := DefaultConfig()
		cfg = &def
	}

	m := &Board{
		cfg:     *cfg,
		now:     time.Now,
		outputs: make(map[hal.Pin]int),
	}
	m.start = m.now()
	return m
}

// SetClock replaces the time source and restarts the simulation from the
// clock's current time.
func (m *Board) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
	m.start = now()
	m.reads = 0
}

// ReadDigital reports the line sensor. The line is active-low, so the pin
// reads false while an alarm window is open.
func (m *Board) ReadDigital(pin hal.Pin) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	elapsed := m.now().Sub(m.start)
	return !inWindow(elapsed, m.cfg.AlarmPeriod, m.cfg.AlarmDuration)
}

// ReadAnalog returns a simulated sound level in [0, hal.MaxAnalog].
func (m *Board) ReadAnalog(pin hal.Pin) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	elapsed := m.now().Sub(m.start)

	phase := float32(m.reads)
	m.reads++
	noise := (math32.Sin(phase*0.7) + math32.Cos(phase*1.3)) * m.cfg.NoiseLevel * 0.25

	value := m.cfg.Baseline + noise
	if inWindow(elapsed, m.cfg.BurstPeriod, m.cfg.BurstDuration) {
		value += m.cfg.BurstLevel
	}

	if value < 0 {
		value = 0
	} else if value > hal.MaxAnalog {
		value = hal.MaxAnalog
	}
	return int(value)
}

// WriteAnalog records the value written to pin.
func (m *Board) WriteAnalog(pin hal.Pin, value int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outputs[pin] = value
}

// Output returns the last value written to pin and whether anything was written.
func (m *Board) Output(pin hal.Pin) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.outputs[pin]
	return v, ok
}

// Ensure Board implements hal.Hardware.
var _ hal.Hardware = (*Board)(nil)

// inWindow reports whether elapsed falls in the last duration of a period.
// The first window therefore opens one full period after start.
func inWindow(elapsed, period, duration time.Duration) bool {
	if period <= 0 || duration <= 0 {
		return false
	}
	if duration > period {
		duration = period
	}
	return elapsed%period >= period-duration
}
