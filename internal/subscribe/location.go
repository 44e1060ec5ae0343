package subscribe

import (
	"log/slog"
	"time"
)

// LocationEvents polls read every interval and reports the location
// services state whenever it differs from the previous reading. GNOME
// exposes no change signal for the setting outside GSettings' own monitor.
func LocationEvents(stop <-chan struct{}, interval time.Duration, read func() (bool, error)) <-chan bool {
	events := make(chan bool, 1)

	// The first reading is the baseline; take it before returning so a
	// change made right after is reported.
	prev, err := read()
	known := err == nil

	go func() {
		defer close(events)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
			}

			cur, err := read()
			if err != nil {
				slog.Debug("location poll failed", "err", err)
				continue
			}
			if known && cur == prev {
				continue
			}
			prev, known = cur, true

			select {
			case events <- cur:
			case <-stop:
				return
			}
		}
	}()

	return events
}
