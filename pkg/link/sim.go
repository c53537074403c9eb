package link

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/itohio/sndmon/pkg/hal/sim"
	"github.com/itohio/sndmon/pkg/monitor"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Sim runs the sensor loop against a simulated board on the host and exposes
// its reporting channel as events. It goes through the same text encoding as
// a real board attached to a serial port.
type Sim struct {
	cfg   monitor.Config
	board *sim.Board

	events    chan Event
	loopDone  chan struct{}
	readDone  chan struct{}
	pr        *io.PipeReader
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// NewSim creates a simulated device. A nil board config selects sim.DefaultConfig.
func NewSim(cfg monitor.Config, board *sim.Config) *Sim {
	return NewSimWithBoard(cfg, sim.New(board))
}

// NewSimWithBoard creates a simulated device running on the given board.
func NewSimWithBoard(cfg monitor.Config, board *sim.Board) *Sim {
	ctx, cancel := context.WithCancel(context.Background())

	return &Sim{
		cfg:      cfg,
		board:    board,
		events:   make(chan Event, DefaultBufferSize),
		loopDone: make(chan struct{}),
		readDone: make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Board returns the simulated board, e.g. to inspect the LED output.
func (s *Sim) Board() *sim.Board {
	return s.board
}

// Connect starts the sensor loop and the reader.
func (s *Sim) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return errors.New("already connected")
	}
	if s.ctx.Err() != nil {
		return errors.New("device closed")
	}

	pr, pw := io.Pipe()
	s.pr = pr
	s.connected = true

	loop := monitor.New(s.cfg, s.board, pw, s.sleep)

	go func() {
		defer close(s.loopDone)
		defer pw.Close()
		if err := loop.Run(s.ctx); err != nil && err != context.Canceled {
			log.Errorf("Simulated loop stopped: %v", err)
		}
	}()

	go func() {
		defer close(s.readDone)
		readEvents(s.ctx, pr, s.events)
	}()

	log.Info("Connected to simulated board")
	return nil
}

// Close stops the loop, waits for both goroutines and closes the events channel.
func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return nil
	}

	s.cancel()
	// Unblocks a loop write that no reader will consume anymore.
	s.pr.Close()

	<-s.loopDone
	<-s.readDone

	s.connected = false
	close(s.events)

	return nil
}

// Events returns the channel of parsed events.
func (s *Sim) Events() <-chan Event {
	return s.events
}

// IsConnected returns whether the simulation is running.
func (s *Sim) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// sleep waits for d or until the simulation is closed.
func (s *Sim) sleep(d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
	case <-s.ctx.Done():
	}
}
