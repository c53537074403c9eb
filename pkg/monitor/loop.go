package monitor

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/itohio/sndmon/pkg/hal"
)

// Messages written to the reporting channel.
const (
	MsgAlarm          = "Alarm has been triggered!"
	MsgSoundTriggered = "Sound sensor triggered!"
	LevelPrefix       = "Sound level: "
)

// Sleeper blocks for the given duration.
type Sleeper func(time.Duration)

// SoundReading is the outcome of one sound evaluation.
type SoundReading struct {
	Level     int  // Smoothed (averaged) level
	Triggered bool // Level above SoundThreshold
	Actuator  int  // Value written to the LED pin
}

// Result is the outcome of one monitoring cycle.
type Result struct {
	LineActive bool
	Sound      SoundReading
}

// Loop samples the line and sound sensors, reports over out and drives the LED.
// A Loop is not safe for concurrent use; it is meant to be driven by a single
// goroutine (or the firmware main loop).
type Loop struct {
	cfg   Config
	hw    hal.Hardware
	out   io.Writer
	sleep Sleeper

	line []byte // reused line buffer
}

// New creates a Loop. A nil sleep uses time.Sleep.
func New(cfg Config, hw hal.Hardware, out io.Writer, sleep Sleeper) *Loop {
	if cfg.Samples < 1 {
		cfg.Samples = 1
	}
	if sleep == nil {
		sleep = time.Sleep
	}

	return &Loop{
		cfg:   cfg,
		hw:    hw,
		out:   out,
		sleep: sleep,
		line:  make([]byte, 0, 32),
	}
}

// Config returns the loop configuration.
func (l *Loop) Config() Config {
	return l.cfg
}

// Run executes cycles separated by the configured interval until ctx is done.
// On the device the context is never cancelled and Run does not return.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.Cycle()
		l.sleep(l.cfg.Interval)
	}
}

// Cycle evaluates the line sensor and then the sound sensor. Both always run.
func (l *Loop) Cycle() Result {
	active := l.EvaluateLine()
	sound := l.EvaluateSound()
	return Result{
		LineActive: active,
		Sound:      sound,
	}
}

// EvaluateLine reads the active-low line sensor and reports an alarm while it
// is active. There is no edge detection: the alarm repeats every cycle.
func (l *Loop) EvaluateLine() bool {
	active := !l.hw.ReadDigital(l.cfg.LinePin)
	if active {
		l.println(MsgAlarm)
	}
	return active
}

// EvaluateSound averages Samples back-to-back analog readings, reports the
// level, reports a trigger above SoundThreshold and writes the remapped level
// to the LED pin.
func (l *Loop) EvaluateSound() SoundReading {
	// int32 keeps 20 x 1023 from overflowing on targets with a 16-bit int.
	var sum int32
	for i := 0; i < l.cfg.Samples; i++ {
		sum += int32(l.hw.ReadAnalog(l.cfg.SoundPin))
	}
	level := int(sum / int32(l.cfg.Samples))

	l.line = append(l.line[:0], LevelPrefix...)
	l.line = strconv.AppendInt(l.line, int64(level), 10)
	l.line = append(l.line, '\n')
	l.out.Write(l.line)

	triggered := level > l.cfg.SoundThreshold
	if triggered {
		l.println(MsgSoundTriggered)
	}

	actuator := Actuator(l.cfg, level)
	l.hw.WriteAnalog(l.cfg.LEDPin, actuator)

	return SoundReading{
		Level:     level,
		Triggered: triggered,
		Actuator:  actuator,
	}
}

func (l *Loop) println(msg string) {
	l.line = append(l.line[:0], msg...)
	l.line = append(l.line, '\n')
	l.out.Write(l.line)
}
