package main

import (
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/sndmon/pkg/config"
	"github.com/itohio/sndmon/pkg/link"
	"github.com/itohio/sndmon/pkg/meter"
	"github.com/itohio/sndmon/pkg/sample"
	"github.com/itohio/sndmon/pkg/scope"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Open the monitor window (default)",
	Args:  cobra.NoArgs,
	RunE:  runGUI,
}

// measurementChain tracks the components of the measurement chain for graceful shutdown.
type measurementChain struct {
	device         link.Device
	samplesStream  <-chan sample.Sample
	meterGoroutine chan struct{} // Closed when meter goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg         *config.Config
	device      link.Device
	soundMeter  *meter.Meter
	scopeWidget *scope.ScopeWidget
	window      fyne.Window
	connectBtn  *widget.Button
	ledBar      *widget.ProgressBar
	useMock     bool
	chain       *measurementChain // Current measurement chain (nil if not connected)

	// Throttling for scope updates
	lastUpdateTime time.Time
	updateMu       sync.Mutex
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	application := app.NewWithID("com.itohio.sndmon")

	window := application.NewWindow("Sound Monitor")
	window.Resize(fyne.NewSize(1000, 600))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		soundMeter: meter.New(cfg),
		window:     window,
		useMock:    mockFlag,
	}

	// Throttle updates to ~30 FPS; the board reports ten cycles per second
	// but bursts may arrive after a stalled serial read.
	const updateInterval = 33 * time.Millisecond
	state.soundMeter.OnUpdate(func(samples []sample.Sample, episodes []meter.Episode, stats meter.Stats) {
		state.updateMu.Lock()
		now := time.Now()
		if now.Sub(state.lastUpdateTime) < updateInterval {
			state.updateMu.Unlock()
			return
		}
		state.lastUpdateTime = now
		state.updateMu.Unlock()

		var led float64
		if len(samples) > 0 {
			led = float64(samples[len(samples)-1].Actuator)
		}

		fyne.Do(func() {
			state.scopeWidget.UpdateData(samples, episodes, stats)
			state.ledBar.SetValue(led)
		})
	})

	state.scopeWidget = scope.New(cfg, state.useMock)

	state.ledBar = widget.NewProgressBar()
	state.ledBar.Min = 0
	state.ledBar.Max = 255
	state.ledBar.TextFormatter = func() string {
		return fmt.Sprintf("LED %.0f", state.ledBar.Value)
	}

	content := container.NewBorder(
		createToolbar(state),
		state.ledBar,
		nil,
		nil,
		state.scopeWidget,
	)

	window.SetContent(content)
	window.SetOnClosed(func() {
		closeMeasurementChain(state.chain)
	})
	window.ShowAndRun()
	return nil
}

// createToolbar creates the application toolbar with Connect and Settings buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("Connect", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	source := "serial"
	if state.useMock {
		source = "simulated board"
	}

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(connectBtn, settingsBtn),
		widget.NewLabel(source),
		nil,
	)
}

// closeMeasurementChain gracefully closes the measurement chain.
// Waits for the meter goroutine to drain the converters.
func closeMeasurementChain(chain *measurementChain) {
	if chain == nil {
		return
	}

	// Closing the device closes the events channel, which closes the converters in turn
	if chain.device != nil {
		if err := chain.device.Close(); err != nil {
			log.Errorf("Error closing device: %v", err)
		}
	}

	if chain.meterGoroutine != nil {
		<-chain.meterGoroutine
	}
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.device != nil && state.device.IsConnected() {
		closeMeasurementChain(state.chain)
		state.chain = nil
		state.device = nil
		state.connectBtn.SetText("Connect")
		state.connectBtn.SetIcon(theme.LoginIcon())
		log.Info("Disconnected")
		return
	}

	device := openDevice(state.cfg, state.useMock)
	if err := device.Connect(); err != nil {
		if state.useMock {
			dialog.ShowError(errors.Wrap(err, "failed to start simulated board"), state.window)
		} else {
			dialog.ShowError(errors.Wrapf(err, "failed to connect to %s", state.cfg.Serial.Port), state.window)
		}
		return
	}
	state.device = device
	state.connectBtn.SetText("Disconnect")
	state.connectBtn.SetIcon(theme.LogoutIcon())

	state.soundMeter.ResetShutdown()

	samplesStream := sampleStream(state.cfg, state.useMock, device.Events())
	meterDone := make(chan struct{})
	go func() {
		defer close(meterDone)
		state.soundMeter.ProcessSamples(samplesStream)
	}()

	state.chain = &measurementChain{
		device:         device,
		samplesStream:  samplesStream,
		meterGoroutine: meterDone,
	}
}
