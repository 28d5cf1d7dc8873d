package utils

import (
	"strconv"
	"strings"
)

// Pointer returns a pointer to the given value
func Pointer[T any](v T) *T {
	return &v
}

// ParseUint safely parses a string to uint; zero means invalid.
func ParseUint(s string) uint {
	i, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint(i)
}

// NormalizeTags trims, drops empties and deduplicates while keeping order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// SplitCSV turns "a, b,c" into a normalized tag list.
func SplitCSV(s string) []string {
	if s == "" {
		return []string{}
	}
	return NormalizeTags(strings.Split(s, ","))
}
