package view

import (
	"strings"
	"time"

	"github.com/runnerr0/linkhist/internal/storage"
)

// Row is a LinkRecord formatted for display.
type Row struct {
	ID           string `json:"id"`
	Host         string `json:"host"`
	HostClass    string `json:"host_class"`
	Filename     string `json:"filename"`
	Date         string `json:"date"`
	Link         string `json:"link"`
	DownloadLink string `json:"download_link"`
	Size         string `json:"size"`
	Expired      bool   `json:"expired"`
}

// NewRow formats rec. Dates are rendered in loc; a record without a time
// shows the current time.
func NewRow(rec storage.LinkRecord, loc *time.Location) Row {
	if loc == nil {
		loc = time.Local
	}
	return Row{
		ID:           rec.ID,
		Host:         rec.Host,
		HostClass:    HostClass(rec.Host),
		Filename:     rec.Filename,
		Date:         rec.CapturedAt().In(loc).Format("2006-01-02 15:04"),
		Link:         rec.Link,
		DownloadLink: rec.DownloadLink,
		Size:         storage.FormatSize(rec.Size),
		Expired:      rec.Expired,
	}
}

// HostClass is the icon sprite class for a host code.
func HostClass(host string) string {
	return "sprite-" + strings.ReplaceAll(host, ".", "_")
}
