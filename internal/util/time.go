package util

import "time"

// RFC3339Now returns the current UTC time formatted as RFC3339.
func RFC3339Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// HumanTime returns the current local time in a mail-friendly format.
func HumanTime() string {
	return time.Now().Format("02 Jan 2006 15:04 MST")
}

// FormatHumanTime reformats an RFC3339 build timestamp for display.
// Values that do not parse are returned unchanged.
func FormatHumanTime(value string) string {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	return t.Local().Format("02 Jan 2006 15:04")
}
