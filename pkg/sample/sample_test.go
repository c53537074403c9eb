package sample

import (
	"io"
	"testing"
	"time"

	"github.com/itohio/sndmon/pkg/config"
	"github.com/itohio/sndmon/pkg/hal/sim"
	"github.com/itohio/sndmon/pkg/link"
	"github.com/itohio/sndmon/pkg/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, events []link.Event) []Sample {
	t.Helper()
	return collectWith(t, monitor.DefaultConfig(), events)
}

func collectWith(t *testing.T, cfg monitor.Config, events []link.Event) []Sample {
	t.Helper()

	in := make(chan link.Event, len(events))
	for _, ev := range events {
		in <- ev
	}
	close(in)

	out := NewCollector(cfg, 10)(in)

	var samples []Sample
	timeout := time.After(2 * time.Second)
	for {
		select {
		case s, ok := <-out:
			if !ok {
				return samples
			}
			samples = append(samples, s)
		case <-timeout:
			t.Fatal("collector output did not close")
		}
	}
}

func TestCollector_Cycles(t *testing.T) {
	now := time.Now()
	t1 := now.Add(100 * time.Millisecond)
	t2 := now.Add(200 * time.Millisecond)

	samples := collect(t, []link.Event{
		{Timestamp: now, Kind: link.KindLevel, Level: 320},
		{Timestamp: t1, Kind: link.KindAlarm},
		{Timestamp: t1, Kind: link.KindLevel, Level: 375},
		{Timestamp: t1, Kind: link.KindSoundTriggered},
		{Timestamp: t2, Kind: link.KindAlarm},
		{Timestamp: t2, Kind: link.KindLevel, Level: 500},
		{Timestamp: t2, Kind: link.KindSoundTriggered},
	})

	require.Len(t, samples, 3)
	assert.Equal(t, Sample{Timestamp: now, Level: 320, Actuator: 34}, samples[0])
	assert.Equal(t, Sample{Timestamp: t1, Level: 375, LineActive: true, SoundTriggered: true, Actuator: 127}, samples[1])
	assert.Equal(t, Sample{Timestamp: t2, Level: 500, LineActive: true, SoundTriggered: true, Actuator: 255}, samples[2])
}

// A real board keeps its compiled-in remap, so editing the host remap range
// must not change the LED value reported for its levels.
func TestCollector_ActuatorMatchesBoard(t *testing.T) {
	cfg := config.Default()
	cfg.Monitor.InMin, cfg.Monitor.InMax = 350, 400

	board := sim.New(&sim.Config{Baseline: 360})
	monitor.New(monitor.DefaultConfig(), board, io.Discard, func(time.Duration) {}).EvaluateSound()
	wrote, ok := board.Output(monitor.DefaultConfig().LEDPin)
	require.True(t, ok)
	require.Equal(t, 102, wrote)

	samples := collectWith(t, cfg.BoardConfig(false), []link.Event{{Kind: link.KindLevel, Level: 360}})
	require.Len(t, samples, 1)
	assert.Equal(t, wrote, samples[0].Actuator)

	// The simulated board runs the edited range.
	samples = collectWith(t, cfg.BoardConfig(true), []link.Event{{Kind: link.KindLevel, Level: 360}})
	require.Len(t, samples, 1)
	assert.Equal(t, 51, samples[0].Actuator)
}

func TestCollector_StrayTrigger(t *testing.T) {
	samples := collect(t, []link.Event{
		{Kind: link.KindSoundTriggered},
		{Kind: link.KindLevel, Level: 100},
	})

	require.Len(t, samples, 1)
	assert.False(t, samples[0].SoundTriggered)
	assert.Equal(t, 100, samples[0].Level)
}

func TestCollector_TrailingAlarmDropped(t *testing.T) {
	samples := collect(t, []link.Event{
		{Kind: link.KindLevel, Level: 100},
		{Kind: link.KindAlarm},
	})

	require.Len(t, samples, 1)
	assert.False(t, samples[0].LineActive, "alarm belongs to the next, incomplete cycle")
}

func TestCollector_Empty(t *testing.T) {
	assert.Empty(t, collect(t, nil))
}

func TestCollector_FromSim(t *testing.T) {
	cfg := monitor.DefaultConfig()
	cfg.Interval = 5 * time.Millisecond

	dev := link.NewSim(cfg, nil)
	require.NoError(t, dev.Connect())

	samples := NewCollector(cfg, 10)(dev.Events())

	var got []Sample
	timeout := time.After(5 * time.Second)
	for len(got) < 3 {
		select {
		case s := <-samples:
			got = append(got, s)
		case <-timeout:
			t.Fatal("no samples from simulated board")
		}
	}
	require.NoError(t, dev.Close())

	for _, s := range got {
		assert.Equal(t, monitor.Actuator(cfg, s.Level), s.Actuator)
		assert.Equal(t, s.Level > cfg.SoundThreshold, s.SoundTriggered)
	}

	// drain until closed
	for range samples {
	}
}
