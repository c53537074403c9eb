package main

import (
	"os"
	"os/signal"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var tailCount int

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print cycles as they arrive, without a window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		device := openDevice(cfg, mockFlag)
		if err := device.Connect(); err != nil {
			return errors.Wrap(err, "failed to connect")
		}
		defer device.Close()

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		defer signal.Stop(interrupt)

		samples := sampleStream(cfg, mockFlag, device.Events())
		received := 0
		for {
			select {
			case s, ok := <-samples:
				if !ok {
					return nil
				}
				fields := log.Fields{
					"level": s.Level,
					"led":   s.Actuator,
				}
				switch {
				case s.LineActive && s.SoundTriggered:
					log.WithFields(fields).Warn("Alarm and sound trigger")
				case s.LineActive:
					log.WithFields(fields).Warn("Alarm")
				case s.SoundTriggered:
					log.WithFields(fields).Warn("Sound trigger")
				default:
					log.WithFields(fields).Info("Cycle")
				}

				received++
				if tailCount > 0 && received >= tailCount {
					return nil
				}
			case <-interrupt:
				return nil
			}
		}
	},
}

func init() {
	tailCmd.Flags().IntVarP(&tailCount, "count", "n", 0, "Stop after this many cycles (0 = run until interrupted)")
}
