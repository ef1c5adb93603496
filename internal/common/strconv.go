package common

import (
	"strconv"
	"strings"
)

// AtoiDefault parses an integer query value, tolerating surrounding
// whitespace and falling back to the default when parsing fails.
func AtoiDefault(value string, def int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
