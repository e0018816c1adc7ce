// Package format renders pipeline quantities for progress output.
package format

import (
	"fmt"
	"time"
)

// Duration formats a timeline position as MM:SS, or HH:MM:SS once the
// video is an hour or longer. Used for window labels and the probe
// report, so the output matches what a player's seek bar shows.
func Duration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
