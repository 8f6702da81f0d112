package storage

import (
	"encoding/json"
	"time"
)

// LinkRecord is one generated download link as returned by the downloader
// API. Time may be epoch seconds or milliseconds; see NormalizeTime.
type LinkRecord struct {
	ID           string          `json:"id"`
	Host         string          `json:"host"`
	Filename     string          `json:"filename"`
	Time         int64           `json:"time"`
	Link         string          `json:"link"`
	DownloadLink string          `json:"downloadLink"`
	Expired      bool            `json:"expired"`
	Size         int64           `json:"size"`
	OtherLinks   json.RawMessage `json:"otherLinks,omitempty"`

	// Raw is the full upstream value object, kept verbatim so fields the
	// API adds later survive a round trip.
	Raw json.RawMessage `json:"-"`
}

// CapturedAt returns the record's instant. A record without a time reports
// the current time.
func (r LinkRecord) CapturedAt() time.Time {
	if r.Time == 0 {
		return time.Now()
	}
	return CapturedAt(r.Time)
}

// Direction orders a cursor over the time index.
type Direction int

const (
	// Forward walks oldest first.
	Forward Direction = iota
	// Backward walks newest first.
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Position identifies an entry in the time index.
type Position struct {
	SortTime int64
	ID       string
}

// IterateOptions selects the direction and starting point of a cursor.
type IterateOptions struct {
	Direction Direction
	// After resumes strictly after this position when set.
	After *Position
}

// Stats holds aggregate statistics about the link history.
type Stats struct {
	TotalLinks        int64
	ExpiredLinks      int64
	TotalBytes        int64
	OldestLink        time.Time
	NewestLink        time.Time
	DatabaseSizeBytes int64
	TopHosts          []HostCount
}

// HostCount pairs a host code with its link count.
type HostCount struct {
	Host  string
	Count int64
}
