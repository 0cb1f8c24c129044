package utils

import "strings"

// SplitList splits s on sep, trims every part and drops the empty ones.
// It returns nil when nothing is left.
func SplitList(s, sep string) []string {
	var result []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
