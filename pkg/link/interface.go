package link

// Device is a source of reporting channel events (real or simulated).
type Device interface {
	Connect() error
	Close() error
	Events() <-chan Event
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Sim implements Device.
var _ Device = (*Sim)(nil)
