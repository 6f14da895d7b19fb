package config

import "strings"

// ParseList splits a comma-separated setting value. Segments that are empty
// after trimming are dropped, kept segments are returned untrimmed.
func ParseList(value string) []string {
	result := []string{}
	if value == "" {
		return result
	}

	for _, part := range strings.Split(value, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		result = append(result, part)
	}
	return result
}
