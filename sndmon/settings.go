package main

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/sndmon/pkg/config"
	"github.com/itohio/sndmon/pkg/link"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// showSettingsDialog displays the serial and display settings. The sensor
// loop fields are only offered for the simulated board, a real board runs
// its compiled-in thresholds.
// Changes are saved to the config file. The history window applies at once,
// the rest on the next connect.
func showSettingsDialog(state *appState) {
	portSelect := createPortSelect(state.cfg.Serial.Port)

	thresholdEntry := intEntry(state.cfg.Monitor.SoundThreshold)
	inMinEntry := intEntry(state.cfg.Monitor.InMin)
	inMaxEntry := intEntry(state.cfg.Monitor.InMax)
	windowEntry := widget.NewEntry()
	windowEntry.SetText(strconv.FormatFloat(state.cfg.Display.WindowSeconds, 'f', -1, 64))
	averageEntry := intEntry(state.cfg.Display.AverageCycles)

	items := []*widget.FormItem{
		{Text: "Serial port", Widget: portSelect},
	}
	if state.useMock {
		items = append(items,
			&widget.FormItem{Text: "Sound threshold", Widget: thresholdEntry},
			&widget.FormItem{Text: "LED input min", Widget: inMinEntry},
			&widget.FormItem{Text: "LED input max", Widget: inMaxEntry},
		)
	}
	items = append(items,
		&widget.FormItem{Text: "Window (s)", Widget: windowEntry},
		&widget.FormItem{Text: "Average cycles", Widget: averageEntry},
	)

	var d dialog.Dialog
	form := &widget.Form{
		Items: items,
		OnSubmit: func() {
			updated := *state.cfg
			if portSelect.Selected != "" {
				updated.Serial.Port = portSelect.Selected
			}

			var err error
			if state.useMock {
				if updated.Monitor.SoundThreshold, err = strconv.Atoi(thresholdEntry.Text); err != nil {
					dialog.ShowError(errors.Wrap(err, "invalid threshold"), state.window)
					return
				}
				if updated.Monitor.InMin, err = strconv.Atoi(inMinEntry.Text); err != nil {
					dialog.ShowError(errors.Wrap(err, "invalid input min"), state.window)
					return
				}
				if updated.Monitor.InMax, err = strconv.Atoi(inMaxEntry.Text); err != nil {
					dialog.ShowError(errors.Wrap(err, "invalid input max"), state.window)
					return
				}
			}
			if updated.Display.WindowSeconds, err = strconv.ParseFloat(windowEntry.Text, 64); err != nil {
				dialog.ShowError(errors.Wrap(err, "invalid window"), state.window)
				return
			}
			if updated.Display.AverageCycles, err = strconv.Atoi(averageEntry.Text); err != nil {
				dialog.ShowError(errors.Wrap(err, "invalid average cycles"), state.window)
				return
			}

			if err := applySettings(state.cfg, &updated); err != nil {
				dialog.ShowError(err, state.window)
				return
			}
			state.soundMeter.SetWindow(state.cfg.Display.Window())
			d.Hide()
		},
		SubmitText: "Save",
	}

	d = dialog.NewCustom("Settings", "Close", form, state.window)
	d.Resize(fyne.NewSize(420, 360))
	d.Show()
}

// applySettings validates updated, copies it into cfg and saves it.
func applySettings(cfg, updated *config.Config) error {
	if err := updated.Validate(); err != nil {
		return err
	}
	*cfg = *updated

	if err := cfg.Save(configPath); err != nil {
		return errors.Wrap(err, "failed to save settings")
	}
	log.Infof("Settings saved to %s", configPath)
	return nil
}

// createPortSelect lists the available serial ports, keeping current selected
// even when it is not plugged in.
func createPortSelect(current string) *widget.Select {
	var options []string
	ports, err := link.Ports()
	if err != nil {
		log.Warnf("Failed to list serial ports: %v", err)
	}
	found := false
	for _, p := range ports {
		options = append(options, p.Name)
		if p.Name == current {
			found = true
		}
	}
	if !found && current != "" {
		options = append(options, current)
	}

	sel := widget.NewSelect(options, nil)
	if current != "" {
		sel.SetSelected(current)
	}
	return sel
}

func intEntry(v int) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(strconv.Itoa(v))
	return e
}
