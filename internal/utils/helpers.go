package utils

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ParseLimit validates and parses the list limit query parameter
func ParseLimit(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return DefaultListLimit, nil
	}

	limit, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("invalid limit format")
	}

	if limit <= 0 {
		return DefaultListLimit, nil
	}
	if limit > MaxListLimit {
		return MaxListLimit, nil
	}

	return limit, nil
}
