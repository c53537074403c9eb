package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/itohio/sndmon/pkg/hal"
	"github.com/itohio/sndmon/pkg/hal/sim"
	"github.com/itohio/sndmon/pkg/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(name, []byte(content), 0644))
	return name
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, hal.Pin(2), cfg.Monitor.LinePin)
	assert.Equal(t, hal.Pin(0), cfg.Monitor.SoundPin)
	assert.Equal(t, hal.Pin(9), cfg.Monitor.LEDPin)
	assert.Equal(t, 20, cfg.Monitor.Samples)
	assert.Equal(t, 350, cfg.Monitor.SoundThreshold)
	assert.Equal(t, 300, cfg.Monitor.InMin)
	assert.Equal(t, 450, cfg.Monitor.InMax)
	assert.Equal(t, 0, cfg.Monitor.OutMin)
	assert.Equal(t, 255, cfg.Monitor.OutMax)
	assert.Equal(t, 100*time.Millisecond, cfg.Monitor.Interval)
	assert.Equal(t, float64(30), cfg.Display.WindowSeconds)
	assert.Equal(t, 30*time.Second, cfg.Display.Window())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	name := writeTemp(t, `
serial:
  port: "COM3"
  baud_rate: 9600

monitor:
  line_pin: 3
  sound_pin: 1
  led_pin: 6
  samples: 10
  sound_threshold: 400
  in_min: 200
  in_max: 600
  out_min: 10
  out_max: 200
  interval: 250ms

display:
  window_seconds: 60
  average_cycles: 5
  min_episode_cycles: 3

mock:
  baseline: 100
  burst_period: 5s
`)

	cfg, err := Load(name)
	require.NoError(t, err)

	assert.Equal(t, "COM3", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, hal.Pin(3), cfg.Monitor.LinePin)
	assert.Equal(t, hal.Pin(1), cfg.Monitor.SoundPin)
	assert.Equal(t, hal.Pin(6), cfg.Monitor.LEDPin)
	assert.Equal(t, 10, cfg.Monitor.Samples)
	assert.Equal(t, 400, cfg.Monitor.SoundThreshold)
	assert.Equal(t, 200, cfg.Monitor.InMin)
	assert.Equal(t, 600, cfg.Monitor.InMax)
	assert.Equal(t, 10, cfg.Monitor.OutMin)
	assert.Equal(t, 200, cfg.Monitor.OutMax)
	assert.Equal(t, 250*time.Millisecond, cfg.Monitor.Interval)
	assert.Equal(t, float64(60), cfg.Display.WindowSeconds)
	assert.Equal(t, 5, cfg.Display.AverageCycles)
	assert.Equal(t, 3, cfg.Display.MinEpisodeCycles)
	assert.Equal(t, float32(100), cfg.Mock.Baseline)
	assert.Equal(t, 5*time.Second, cfg.Mock.BurstPeriod)
	// untouched mock fields keep defaults
	assert.Equal(t, sim.DefaultConfig().AlarmPeriod, cfg.Mock.AlarmPeriod)
}

func TestLoad_InvalidYAML(t *testing.T) {
	name := writeTemp(t, "invalid: yaml: content: [")

	cfg, err := Load(name)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	name := writeTemp(t, `
serial:
  port: "/dev/ttyUSB0"
monitor:
  samples: 0
  interval: 0s
`)

	cfg, err := Load(name)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, 20, cfg.Monitor.Samples)                    // default
	assert.Equal(t, 100*time.Millisecond, cfg.Monitor.Interval) // default
	assert.Equal(t, float64(30), cfg.Display.WindowSeconds)     // default
	assert.Equal(t, 350, cfg.Monitor.SoundThreshold)            // default
}

func TestLoad_FailsValidation(t *testing.T) {
	name := writeTemp(t, `
monitor:
  in_min: 500
  in_max: 400
`)

	cfg, err := Load(name)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "InMax")
}

func TestLoad_ExplicitRemapRange(t *testing.T) {
	// A zero output range keeps the LED off and is loaded as written.
	cfg, err := Load(writeTemp(t, `
monitor:
  out_min: 0
  out_max: 0
`))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Monitor.OutMin)
	assert.Equal(t, 0, cfg.Monitor.OutMax)
	assert.Equal(t, 300, cfg.Monitor.InMin) // default

	// A zero input range cannot be remapped and is rejected.
	cfg, err = Load(writeTemp(t, `
monitor:
  in_min: 0
  in_max: 0
`))
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "InMax")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero samples", func(c *Config) { c.Monitor.Samples = 0 }, true},
		{"max samples", func(c *Config) { c.Monitor.Samples = 1000 }, false},
		{"too many samples", func(c *Config) { c.Monitor.Samples = 1001 }, true},
		{"negative threshold", func(c *Config) { c.Monitor.SoundThreshold = -1 }, true},
		{"empty input range", func(c *Config) { c.Monitor.InMax = c.Monitor.InMin }, true},
		{"output above 255", func(c *Config) { c.Monitor.OutMax = 300 }, true},
		{"output range inverted", func(c *Config) { c.Monitor.OutMin = 200; c.Monitor.OutMax = 100 }, true},
		{"zero interval", func(c *Config) { c.Monitor.Interval = 0 }, true},
		{"zero window", func(c *Config) { c.Display.WindowSeconds = 0 }, true},
		{"negative noise", func(c *Config) { c.Mock.NoiseLevel = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBoardConfig(t *testing.T) {
	cfg := Default()
	cfg.Monitor.SoundThreshold = 500
	cfg.Monitor.InMin, cfg.Monitor.InMax = 350, 400

	assert.Equal(t, monitor.DefaultConfig(), cfg.BoardConfig(false), "a real board keeps its constants")
	assert.Equal(t, cfg.Monitor, cfg.BoardConfig(true))
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB1"
	cfg.Monitor.SoundThreshold = 420
	cfg.Display.WindowSeconds = 15

	name := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.Save(name))

	loaded, err := Load(name)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB1", loaded.Serial.Port)
	assert.Equal(t, 420, loaded.Monitor.SoundThreshold)
	assert.Equal(t, float64(15), loaded.Display.WindowSeconds)
	assert.Equal(t, cfg.Monitor, loaded.Monitor)
}
