package meter

import (
	"sync"
	"testing"
	"time"

	"github.com/itohio/sndmon/pkg/config"
	"github.com/itohio/sndmon/pkg/sample"
	"github.com/stretchr/testify/assert"
)

// TestMeter_GracefulShutdown_NoCallbacksAfterClose tests that meter stops sending
// callbacks after the input channel is closed.
func TestMeter_GracefulShutdown_NoCallbacksAfterClose(t *testing.T) {
	m := New(config.Default())

	var mu sync.Mutex
	callbackCount := 0
	m.OnUpdate(func(samples []sample.Sample, episodes []Episode, stats Stats) {
		mu.Lock()
		callbackCount++
		mu.Unlock()
	})

	input := make(chan sample.Sample, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.ProcessSamples(input)
	}()

	now := time.Now()
	for i := 0; i < 3; i++ {
		input <- sample.Sample{Timestamp: now.Add(time.Duration(i) * 100 * time.Millisecond), Level: 300}
	}
	close(input)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ProcessSamples did not return after input closed")
	}

	mu.Lock()
	assert.Equal(t, 3, callbackCount)
	mu.Unlock()

	// A straggler processed after shutdown must not reach callbacks.
	m.processSample(sample.Sample{Timestamp: now.Add(time.Second), Level: 300})

	mu.Lock()
	assert.Equal(t, 3, callbackCount, "no callbacks after shutdown")
	mu.Unlock()
	assert.Len(t, m.Samples(), 4)
}

// TestMeter_ResetShutdown tests that callbacks resume for a new chain.
func TestMeter_ResetShutdown(t *testing.T) {
	m := New(config.Default())

	calls := 0
	m.OnUpdate(func(samples []sample.Sample, episodes []Episode, stats Stats) {
		calls++
	})

	input := make(chan sample.Sample)
	close(input)
	m.ProcessSamples(input)

	m.processSample(sample.Sample{Timestamp: time.Now()})
	assert.Equal(t, 0, calls)

	m.ResetShutdown()
	m.processSample(sample.Sample{Timestamp: time.Now()})
	assert.Equal(t, 1, calls)
}
