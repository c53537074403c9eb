//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"context"
	"machine"

	"github.com/itohio/sndmon/pkg/hal"
	"github.com/itohio/sndmon/pkg/monitor"
)

// board implements hal.Hardware on the XIAO pins.
type board struct {
	digital map[hal.Pin]machine.Pin
	analog  map[hal.Pin]machine.ADC
	pwm     map[hal.Pin]uint8 // PWM channel of ledPWM
	top     uint32
}

func (b *board) ReadDigital(pin hal.Pin) bool {
	p, ok := b.digital[pin]
	if !ok {
		return true // unwired input reads idle
	}
	return p.Get()
}

func (b *board) ReadAnalog(pin hal.Pin) int {
	adc, ok := b.analog[pin]
	if !ok {
		return 0
	}
	return int(adc.Get() >> ADC_SHIFT)
}

func (b *board) WriteAnalog(pin hal.Pin, value int) {
	ch, ok := b.pwm[pin]
	if !ok {
		return
	}
	value = monitor.Clamp(value, 0, hal.MaxOutput)
	ledPWM.Set(ch, b.top*uint32(value)/hal.MaxOutput)
}

func main() {
	cfg := monitor.DefaultConfig()

	// Configure line sensor input; the sensor pulls the line low when active
	PIN_LINE.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	// Configure ADC
	machine.InitADC()
	PIN_SOUND.Configure(machine.PinConfig{Mode: machine.PinInput})
	sound := machine.ADC{Pin: PIN_SOUND}
	sound.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})

	// Configure LED PWM
	if err := ledPWM.Configure(machine.PWMConfig{}); err != nil {
		println("failed to configure PWM:", err.Error())
	}
	ledCh, err := ledPWM.Channel(PIN_LED)
	if err != nil {
		println("failed to get PWM channel:", err.Error())
	}

	machine.Serial.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	hw := &board{
		digital: map[hal.Pin]machine.Pin{cfg.LinePin: PIN_LINE},
		analog:  map[hal.Pin]machine.ADC{cfg.SoundPin: sound},
		pwm:     map[hal.Pin]uint8{cfg.LEDPin: ledCh},
		top:     ledPWM.Top(),
	}

	// Runs until power off or reset
	monitor.New(cfg, hw, machine.Serial, nil).Run(context.Background())
}
