package utils

import "fmt"

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders a byte count as a human-readable string using binary
// (1024) units with exactly two decimals, e.g. "12.34 MB". Anything past
// the TB rung is printed as PB.
func FormatBytes(n int64) string {
	v := float64(n)
	for _, unit := range byteUnits {
		if v < 1024.0 {
			return fmt.Sprintf("%.2f %s", v, unit)
		}
		v /= 1024.0
	}
	return fmt.Sprintf("%.2f PB", v)
}
