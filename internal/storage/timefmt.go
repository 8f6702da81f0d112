package storage

import (
	"fmt"
	"time"
)

// secondsCutoff separates epoch seconds from epoch milliseconds. Any
// millisecond timestamp after 2001-09-09 is above it.
const secondsCutoff = 1_000_000_000_000

// NormalizeTime returns t as epoch milliseconds.
func NormalizeTime(t int64) int64 {
	if t < secondsCutoff {
		return t * 1000
	}
	return t
}

// CapturedAt converts a seconds-or-milliseconds timestamp to a time.Time.
func CapturedAt(t int64) time.Time {
	return time.UnixMilli(NormalizeTime(t))
}

// HumanDate formats t as "YYYY-MM-DD HH:MM" in loc. A nil loc means local
// time.
func HumanDate(t int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return CapturedAt(t).In(loc).Format("2006-01-02 15:04")
}

// FormatSize renders a byte count in megabytes with two decimals.
func FormatSize(size int64) string {
	return fmt.Sprintf("%.2f MB", float64(size)/1024/1024)
}
