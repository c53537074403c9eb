package link

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// readEvents scans lines from r, parses them and forwards the events to out
// until r is exhausted or ctx is cancelled. Unparseable lines are logged and
// skipped. The send is non-blocking: a full channel drops the event.
func readEvents(ctx context.Context, r io.Reader, out chan<- Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Panic in readEvents: %v", r)
		}
	}()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		event, err := ParseLine(line)
		if err != nil {
			log.Warnf("Failed to parse line '%s': %v", line, err)
			continue
		}
		event.Timestamp = time.Now()

		select {
		case out <- event:
		case <-ctx.Done():
			return
		default:
			log.Warn("Events channel full, dropping event")
		}
	}

	if err := scanner.Err(); err != nil && err != io.EOF && ctx.Err() == nil {
		log.Errorf("Error reading reporting channel: %v", err)
	}
}
