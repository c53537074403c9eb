package sample

import (
	"time"

	"github.com/itohio/sndmon/pkg/link"
	"github.com/itohio/sndmon/pkg/monitor"
	log "github.com/sirupsen/logrus"
)

// Sample is one monitoring cycle as observed on the reporting channel.
type Sample struct {
	Timestamp      time.Time
	Level          int  // Smoothed sound level
	LineActive     bool // Alarm line was reported this cycle
	SoundTriggered bool // Sound threshold notification was reported this cycle
	Actuator       int  // LED value for Level under the board configuration
}

// Converter transforms a stream of reporting channel events into samples.
type Converter func(in <-chan link.Event) <-chan Sample

// collector folds the lines of one cycle, "[alarm] level [sound]", into a Sample.
type collector struct {
	cfg     monitor.Config
	pending Sample
	alarm   bool // alarm seen before the level line
	hasLine bool // level line seen
}

// NewCollector creates a converter that groups events into per-cycle samples.
// A sample is emitted when the next cycle starts or the input closes.
// cfg must be the configuration the board runs, the LED value is not reported
// on the wire and is recomputed from it.
func NewCollector(cfg monitor.Config, bufSize int) Converter {
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan link.Event) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			c := &collector{cfg: cfg}
			for ev := range in {
				if s, ok := c.add(ev); ok {
					send(out, s)
				}
			}
			if s, ok := c.flush(); ok {
				send(out, s)
			}
		}()

		return out
	}
}

// add consumes one event and returns the previous cycle's sample when ev starts a new cycle.
func (c *collector) add(ev link.Event) (Sample, bool) {
	switch ev.Kind {
	case link.KindAlarm:
		s, ok := c.flush()
		c.alarm = true
		return s, ok

	case link.KindLevel:
		s, ok := c.flush()
		c.pending = Sample{
			Timestamp:  ev.Timestamp,
			Level:      ev.Level,
			LineActive: c.alarm,
			Actuator:   monitor.Actuator(c.cfg, ev.Level),
		}
		c.alarm = false
		c.hasLine = true
		return s, ok

	case link.KindSoundTriggered:
		if !c.hasLine {
			log.Warn("Sound trigger without a level line, ignoring")
			return Sample{}, false
		}
		c.pending.SoundTriggered = true
	}

	return Sample{}, false
}

// flush returns the pending sample, if any, and resets the level state.
// A pending alarm without a level line is kept for the next cycle.
func (c *collector) flush() (Sample, bool) {
	if !c.hasLine {
		return Sample{}, false
	}
	s := c.pending
	c.pending = Sample{}
	c.hasLine = false
	return s, true
}

func send(out chan<- Sample, s Sample) {
	select {
	case out <- s:
	case <-time.After(time.Second):
		log.Warn("Collector output channel full, dropping sample")
	}
}
