package countdown

import (
	"fmt"
	"time"
)

// Placeholder is shown while no city is active or a tick could not be computed.
const Placeholder = "--:--:--"

// FormatCountdown renders d as zero-padded HH:MM:SS; hours are not wrapped at 24.
func FormatCountdown(d time.Duration) string {
	if d <= 0 {
		return "00:00:00"
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

func FormatClock(t time.Time) string {
	return t.Format("15:04:05")
}
