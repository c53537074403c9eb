package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/itohio/sndmon/pkg/hal/sim"
	"github.com/itohio/sndmon/pkg/monitor"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// validate is the shared validator instance.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Config represents the host application configuration.
type Config struct {
	Serial  SerialConfig   `yaml:"serial"`
	Monitor monitor.Config `yaml:"monitor"`
	Display DisplayConfig  `yaml:"display"`
	Mock    sim.Config     `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate" validate:"gte=0"`
}

// DisplayConfig contains parameters of the host-side history and plot.
type DisplayConfig struct {
	WindowSeconds    float64 `yaml:"window_seconds" validate:"gt=0"`
	AverageCycles    int     `yaml:"average_cycles" validate:"gte=0"`     // Number of cycles to average (0 = disabled, default)
	MinEpisodeCycles int     `yaml:"min_episode_cycles" validate:"gte=1"` // Shorter trigger runs are not shown
}

// Window returns the display window as a duration.
func (d DisplayConfig) Window() time.Duration {
	return time.Duration(d.WindowSeconds * float64(time.Second))
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0", // "COM3" on Windows
			BaudRate: 115200,
		},
		Monitor: monitor.DefaultConfig(),
		Display: DisplayConfig{
			WindowSeconds:    30,
			AverageCycles:    0,
			MinEpisodeCycles: 1,
		},
		Mock: sim.DefaultConfig(),
	}
}

// BoardConfig returns the loop configuration the reporting board runs with.
// A real board runs its compiled-in monitor.DefaultConfig; only the simulated
// board follows the Monitor section.
func (c *Config) BoardConfig(simulated bool) monitor.Config {
	if simulated {
		return c.Monitor
	}
	return monitor.DefaultConfig()
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(err, "failed to read config file")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// Validate checks field constraints, e.g. that the remap input range is not empty.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return errors.Errorf("invalid config: %s failed %q (value %v)", e.Namespace(), e.Tag(), e.Value())
		}
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

// ensureDefaults fills zero values that cannot be meaningful with defaults.
// Remap ranges are left as written: a missing key already keeps its default,
// and an explicit range is either valid or rejected by Validate.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Monitor.Samples == 0 {
		c.Monitor.Samples = def.Monitor.Samples
	}
	if c.Monitor.Interval == 0 {
		c.Monitor.Interval = def.Monitor.Interval
	}

	if c.Display.WindowSeconds == 0 {
		c.Display.WindowSeconds = def.Display.WindowSeconds
	}
	if c.Display.MinEpisodeCycles == 0 {
		c.Display.MinEpisodeCycles = def.Display.MinEpisodeCycles
	}
}
