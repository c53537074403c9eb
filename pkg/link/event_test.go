package link

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Event
		wantErr bool
	}{
		{
			name: "alarm",
			line: "Alarm has been triggered!",
			want: Event{Kind: KindAlarm},
		},
		{
			name: "sound triggered",
			line: "Sound sensor triggered!",
			want: Event{Kind: KindSoundTriggered},
		},
		{
			name: "sound level",
			line: "Sound level: 342",
			want: Event{Kind: KindLevel, Level: 342},
		},
		{
			name: "sound level with CRLF",
			line: "Sound level: 0\r\n",
			want: Event{Kind: KindLevel, Level: 0},
		},
		{
			name: "max ADC value",
			line: "Sound level: 1023",
			want: Event{Kind: KindLevel, Level: 1023},
		},
		{
			name:    "level out of range",
			line:    "Sound level: 1024",
			wantErr: true,
		},
		{
			name:    "negative level",
			line:    "Sound level: -1",
			wantErr: true,
		},
		{
			name:    "explicit plus sign",
			line:    "Sound level: +5",
			wantErr: true,
		},
		{
			name:    "leading zero",
			line:    "Sound level: 007",
			wantErr: true,
		},
		{
			name:    "extra space before level",
			line:    "Sound level:  5",
			wantErr: true,
		},
		{
			name:    "non-numeric level",
			line:    "Sound level: abc",
			wantErr: true,
		},
		{
			name:    "missing level",
			line:    "Sound level:",
			wantErr: true,
		},
		{
			name:    "unknown message",
			line:    "hello",
			wantErr: true,
		},
		{
			name:    "alarm with trailing text",
			line:    "Alarm has been triggered!!",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "level", KindLevel.String())
	assert.Equal(t, "alarm", KindAlarm.String())
	assert.Equal(t, "sound", KindSoundTriggered.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

func TestReadEvents(t *testing.T) {
	input := strings.Join([]string{
		"Alarm has been triggered!",
		"Sound level: 360",
		"Sound sensor triggered!",
		"",
		"garbage",
		"Sound level: 120",
	}, "\r\n")

	out := make(chan Event, 10)
	before := time.Now()
	readEvents(context.Background(), strings.NewReader(input), out)
	close(out)

	var kinds []Kind
	var levels []int
	for ev := range out {
		kinds = append(kinds, ev.Kind)
		levels = append(levels, ev.Level)
		assert.False(t, ev.Timestamp.Before(before))
	}

	assert.Equal(t, []Kind{KindAlarm, KindLevel, KindSoundTriggered, KindLevel}, kinds)
	assert.Equal(t, []int{0, 360, 0, 120}, levels)
}

func TestReadEvents_DropsWhenFull(t *testing.T) {
	input := "Sound level: 1\nSound level: 2\nSound level: 3\n"

	out := make(chan Event, 1)
	readEvents(context.Background(), strings.NewReader(input), out)

	require.Len(t, out, 1)
	ev := <-out
	assert.Equal(t, 1, ev.Level)
}

func TestReadEvents_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make(chan Event, 10)
	readEvents(ctx, strings.NewReader("Sound level: 1\n"), out)
	assert.Len(t, out, 0)
}
