package models

import "time"

// TimeLayout is the ISO-8601 layout used by every exported timestamp.
const TimeLayout = time.RFC3339Nano

// FormatTime renders t in UTC using TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// IntPtr returns a pointer to a copy of v.
func IntPtr(v int) *int {
	return &v
}

func intOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
