package domain

import "math"

// Uptime returns the share of "up" results in history as an integer
// percentage. Halves round up (66.5 -> 67). An empty history yields 0.
func Uptime(history []ProbeResult) int {
	if len(history) == 0 {
		return 0
	}
	up := 0
	for _, r := range history {
		if r.Up() {
			up++
		}
	}
	return int(math.Floor(100*float64(up)/float64(len(history)) + 0.5))
}
