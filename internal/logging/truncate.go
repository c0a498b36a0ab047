package logging

import "strconv"

// MaxLogFieldLength caps provider messages placed in log fields
const MaxLogFieldLength = 256

// Truncate shortens s to MaxLogFieldLength characters
func Truncate(s string) string {
	return TruncateN(s, MaxLogFieldLength)
}

// TruncateN shortens s to n bytes, marking the cut with "..."
func TruncateN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// TruncateSlice keeps the first maxItems entries and summarizes the rest
func TruncateSlice(items []string, maxItems int) []string {
	if len(items) <= maxItems {
		return items
	}
	result := make([]string, 0, maxItems+1)
	result = append(result, items[:maxItems]...)
	return append(result, "... and "+strconv.Itoa(len(items)-maxItems)+" more")
}
