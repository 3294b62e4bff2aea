package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "file": dependency-free file backend (jsonl)
//   - "sqlite": SQLite database file (optional build tag)
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Play records one song change on the stream.
// Keep it compact and schema-stable.
type Play struct {
	At       time.Time
	Song     string
	Artist   string
	RawMeta  string
	Current  int
	Peak     int
}

// SwearRecord archives one forwarded swear-log submission.
type SwearRecord struct {
	At     time.Time
	Date   string
	Time   string
	Song   string
	Artist string
	Show   string
	Report string
}
