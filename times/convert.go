package times

import (
	"fmt"
	"strings"
	"time"
)

// Localize interprets a naive wall-clock value in loc and returns the UTC
// instant as unix epoch seconds (truncated to whole seconds).
func Localize(n Naive, loc *time.Location) int64 {
	return time.Date(n.Year, n.Month, n.Day, n.Hour, n.Minute, n.Second, 0, loc).Unix()
}

// LocalizeAll converts a sequence of naive values in order.
func LocalizeAll(naives []Naive, loc *time.Location) []int64 {
	out := make([]int64, len(naives))
	for i, n := range naives {
		out[i] = Localize(n, loc)
	}
	return out
}

// FormatReply renders epoch seconds as Discord auto-localizing timestamp
// tokens, preserving order, joined with ", ".
func FormatReply(epochs []int64) string {
	parts := make([]string, len(epochs))
	for i, e := range epochs {
		parts[i] = fmt.Sprintf("<t:%d:F>", e)
	}
	return "That's " + strings.Join(parts, ", ") + " auto-converted to local time."
}
