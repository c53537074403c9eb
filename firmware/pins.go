//go:build tinygo

package main

import "machine"

const (
	// Board pins. The hal.Pin numbers in monitor.DefaultConfig follow the
	// silkscreen labels: D2, A0 and D9.
	PIN_LINE  = machine.D2 // Line/contact sensor, active low
	PIN_SOUND = machine.A0 // Sound sensor analog output
	PIN_LED   = machine.D9 // LED, PWM capable

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 10   // Reported range 0-1023
	ADC_SHIFT        = 6    // machine.ADC.Get is left aligned to 16 bits

	// Serial configuration
	// Per cycle at most "Alarm has been triggered!\nSound level: 1023\nSound sensor triggered!\n"
	// = ~68 bytes, 10 cycles/sec = 680 bytes/sec, far below 115200 baud.
	UART_BAUD_RATE = 115200
)

// PWM peripheral driving PIN_LED.
var ledPWM = machine.TCC1
