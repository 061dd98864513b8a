package main

import "fmt"

// bodyLimit formats a byte count for echo's BodyLimit ("10M", "512K", ...).
func bodyLimit(n int64) string {
	switch {
	case n%(1<<20) == 0:
		return fmt.Sprintf("%dM", n>>20)
	case n%(1<<10) == 0:
		return fmt.Sprintf("%dK", n>>10)
	default:
		return fmt.Sprintf("%dB", n)
	}
}
