package main

import (
	"github.com/itohio/sndmon/pkg/config"
	"github.com/itohio/sndmon/pkg/link"
	"github.com/itohio/sndmon/pkg/sample"
)

// openDevice creates the event source selected by the flags. It is not connected yet.
func openDevice(cfg *config.Config, useMock bool) link.Device {
	if useMock {
		return link.NewSim(cfg.Monitor, &cfg.Mock)
	}
	return link.New(cfg.Serial.Port, cfg.Serial.BaudRate, link.DefaultBufferSize)
}

// sampleStream chains the converters: events are grouped into per-cycle
// samples, then optionally averaged across cycles for display. The LED value
// is derived with the configuration the board actually runs.
func sampleStream(cfg *config.Config, useMock bool, events <-chan link.Event) <-chan sample.Sample {
	samples := sample.NewCollector(cfg.BoardConfig(useMock), 500)(events)
	if cfg.Display.AverageCycles > 0 {
		samples = sample.NewAveragingConverter(cfg.Display.AverageCycles, 500)(samples)
	}
	return samples
}
