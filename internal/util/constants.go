package util

import "time"

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

const (
	MimeImage = "image/"
	MimeSVG   = "image/svg+xml"
)

var AllowedIconExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg"}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// DateOf truncates t to its calendar date in t's own location, returned as midnight UTC
// so that values survive a round trip through any database driver unchanged.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate compares the calendar dates of a and b, each read in its own location.
func SameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}
