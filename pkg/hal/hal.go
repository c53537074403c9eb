package hal

// Pin identifies a board pin. The numbering is board specific.
type Pin uint8

// Hardware is the minimal set of pin operations the sensor loop needs.
// Implementations are assumed infallible: a failed read is reported as a
// plain value, never as an error.
type Hardware interface {
	ReadDigital(pin Pin) bool
	ReadAnalog(pin Pin) int
	WriteAnalog(pin Pin, value int)
}

// MaxAnalog is the largest value returned by ReadAnalog on the reference 10-bit ADC.
const MaxAnalog = 1023

// MaxOutput is the largest value accepted by WriteAnalog.
const MaxOutput = 255
