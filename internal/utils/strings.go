package utils

import (
	"strings"
)

// TrimOrEmpty normalizes user input without turning nil into "nil".
func TrimOrEmpty(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeEmail lowercases and trims an email used as a key.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CleanList trims entries, drops empties and case-insensitive duplicates, keeping first spelling.
func CleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, v := range in {
		v = NormalizeSpace(v)
		if v == "" {
			continue
		}
		k := strings.ToLower(v)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out
}

// SplitList splits a newline separated column value into cleaned entries.
func SplitList(raw string) []string {
	return CleanList(strings.Split(raw, "\n"))
}

// JoinList is the inverse of SplitList.
func JoinList(in []string) string {
	return strings.Join(CleanList(in), "\n")
}
