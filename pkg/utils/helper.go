package utils

import (
	"strconv"
	"time"
)

// DateLayout is the calendar-day format used on the wire for booking dates.
const DateLayout = "2006-01-02"

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if result < 1 {
		return defaultValue
	}

	return result
}

// ParseDate parses a YYYY-MM-DD calendar day.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.Local)
}

// IsValidDate reports whether value is a YYYY-MM-DD calendar day.
func IsValidDate(value string) bool {
	_, err := ParseDate(value)
	return err == nil
}
