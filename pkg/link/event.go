package link

import (
	"strconv"
	"strings"
	"time"

	"github.com/itohio/sndmon/pkg/hal"
	"github.com/itohio/sndmon/pkg/monitor"
	"github.com/pkg/errors"
)

// Kind identifies a reporting channel message.
type Kind int

const (
	// KindLevel is a "Sound level: N" line, emitted once per cycle.
	KindLevel Kind = iota
	// KindAlarm is the line sensor alarm notification.
	KindAlarm
	// KindSoundTriggered is the sound threshold notification.
	KindSoundTriggered
)

// String returns a short name of the kind.
func (k Kind) String() string {
	switch k {
	case KindLevel:
		return "level"
	case KindAlarm:
		return "alarm"
	case KindSoundTriggered:
		return "sound"
	default:
		return "unknown"
	}
}

// Event is a single parsed line from the reporting channel.
type Event struct {
	Timestamp time.Time // Host receive time
	Kind      Kind
	Level     int // Smoothed sound level, only for KindLevel
}

// ParseLine parses a line from the reporting channel into an Event.
// The timestamp is left zero.
// Formats:
//
//	Alarm has been triggered!
//	Sound level: 342
//	Sound sensor triggered!
func ParseLine(line string) (Event, error) {
	line = strings.TrimSpace(line)

	switch line {
	case monitor.MsgAlarm:
		return Event{Kind: KindAlarm}, nil
	case monitor.MsgSoundTriggered:
		return Event{Kind: KindSoundTriggered}, nil
	}

	value, ok := strings.CutPrefix(line, monitor.LevelPrefix)
	if !ok {
		return Event{}, errors.Errorf("unknown message %q", line)
	}

	if !isDecimal(value) {
		return Event{}, errors.Errorf("invalid sound level %q", value)
	}
	level, err := strconv.Atoi(value)
	if err != nil {
		return Event{}, errors.Wrap(err, "invalid sound level")
	}
	if level < 0 || level > hal.MaxAnalog {
		return Event{}, errors.Errorf("sound level out of range: %d (max %d)", level, hal.MaxAnalog)
	}

	return Event{Kind: KindLevel, Level: level}, nil
}

// isDecimal reports whether s is a level as the board prints it: plain
// digits, no sign and no leading zero.
func isDecimal(s string) bool {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
