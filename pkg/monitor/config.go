package monitor

import (
	"time"

	"github.com/itohio/sndmon/pkg/hal"
)

// Config holds the pin assignments and thresholds of the sensor loop.
type Config struct {
	// Pins
	LinePin  hal.Pin `yaml:"line_pin"`
	SoundPin hal.Pin `yaml:"sound_pin"`
	LEDPin   hal.Pin `yaml:"led_pin"`

	// Smoothing and notification
	Samples        int `yaml:"samples" validate:"gte=1,lte=1000"` // Analog readings averaged per cycle, bounded so the int32 sum fits
	SoundThreshold int `yaml:"sound_threshold" validate:"gte=0"`  // Level strictly above this triggers

	// Linear remap of the smoothed level onto the LED output
	InMin  int `yaml:"in_min"`
	InMax  int `yaml:"in_max" validate:"gtfield=InMin"`
	OutMin int `yaml:"out_min" validate:"gte=0,lte=255"`
	OutMax int `yaml:"out_max" validate:"gtefield=OutMin,lte=255"`

	Interval time.Duration `yaml:"interval" validate:"gt=0"` // Delay between cycles
}

// DefaultConfig returns the reference board configuration.
func DefaultConfig() Config {
	return Config{
		LinePin:        2,
		SoundPin:       0,
		LEDPin:         9,
		Samples:        20,
		SoundThreshold: 350,
		InMin:          300,
		InMax:          450,
		OutMin:         0,
		OutMax:         hal.MaxOutput,
		Interval:       100 * time.Millisecond,
	}
}
