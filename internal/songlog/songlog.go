// Package songlog is the file exchange with the station's song-logger
// program. Both programs point at the same directory (the LOGGERPATH
// environment variable): the logger writes what the DJ is playing and any
// swear-log submissions, the bot writes back lyric reports.
package songlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	logx "github.com/kteq-fm/teqbot/pkg/logx"
)

// File names inside the exchange directory. These are shared with the
// song-logger program and must not change unilaterally.
const (
	NowPlayingFile = "nowPlaying.txt"
	LyricsFile     = "lyrics.txt"
	SwearFile      = "swear.json"
	LastSwearFile  = "lastSwear.json"
	ProfanityFile  = "profanity.txt"
)

// Exchange reads and writes the shared directory.
type Exchange struct {
	dir string
	log logx.Logger
}

func New(dir string, log logx.Logger) *Exchange {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Exchange{dir: dir, log: log}
}

// Dir returns the exchange directory path.
func (e *Exchange) Dir() string { return e.dir }

// NowPlaying returns the song metadata the logger last wrote, or "" if the
// logger has not written a file yet.
func (e *Exchange) NowPlaying() (string, error) {
	b, err := os.ReadFile(filepath.Join(e.dir, NowPlayingFile))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read now playing: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// WriteLyrics replaces the lyric report the logger displays. The write is
// atomic so the logger never reads a half-written report.
func (e *Exchange) WriteLyrics(report string) error {
	return e.writeAtomic(LyricsFile, []byte(report))
}

// ProfanityPath is where the station's word list lives; the list is loaded
// per check so edits take effect without a restart.
func (e *Exchange) ProfanityPath() string {
	return filepath.Join(e.dir, ProfanityFile)
}

func (e *Exchange) writeAtomic(name string, data []byte) error {
	path := filepath.Join(e.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", name, err)
	}
	e.log.Trace("exchange file written", logx.String("file", name), logx.Int("bytes", len(data)))
	return nil
}

// SwearEntry is one swear-log submission from the logger. The JSON keys are
// the logger's, spaces included.
type SwearEntry struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Song     string `json:"song title"`
	Artist   string `json:"song artist"`
	Composer string `json:"song composer"`
	Show     string `json:"show name"`
	Report   string `json:"report"`
}

// Valid reports whether the entry carries every field a submission needs.
func (s SwearEntry) Valid() bool {
	return s.Date != "" && s.Time != "" && s.Song != "" &&
		s.Artist != "" && s.Show != "" && s.Report != ""
}

// Message renders the entry as posted to the engineering channel for
// management review.
func (s SwearEntry) Message() string {
	if !s.Valid() {
		return ""
	}
	var b strings.Builder
	b.WriteString("```\n")
	fmt.Fprintf(&b, "SWEAR LOG SUBMISSION FROM %s:\n\n", s.Show)
	fmt.Fprintf(&b, "Date         \t%s\n", s.Date)
	fmt.Fprintf(&b, "Time         \t%s\n", s.Time)
	fmt.Fprintf(&b, "Song     Name\t%s\n", s.Song)
	fmt.Fprintf(&b, "Song   Artist\t%s\n", s.Artist)
	fmt.Fprintf(&b, "Song Composer\t%s\n", s.Composer)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Report:    \t%s", s.Report)
	b.WriteString("```")
	return b.String()
}

// PendingSwear compares the logger's current submission against the last one
// forwarded. When a new submission appears it is recorded as forwarded and
// returned; ok is false when there is nothing new. A missing swear file means
// no submission has ever been made.
func (e *Exchange) PendingSwear() (entry SwearEntry, ok bool, err error) {
	current, err := e.readJSON(SwearFile)
	if errors.Is(err, fs.ErrNotExist) {
		return SwearEntry{}, false, nil
	}
	if err != nil {
		return SwearEntry{}, false, err
	}
	last, err := e.readJSON(LastSwearFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return SwearEntry{}, false, err
	}
	if sameJSON(current, last) {
		return SwearEntry{}, false, nil
	}

	raw, err := json.Marshal(current)
	if err != nil {
		return SwearEntry{}, false, fmt.Errorf("swear log: %w", err)
	}
	if err := e.writeAtomic(LastSwearFile, raw); err != nil {
		return SwearEntry{}, false, err
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return SwearEntry{}, false, fmt.Errorf("swear log: %w", err)
	}
	e.log.Debug("new swear log submission", logx.String("show", entry.Show))
	return entry, true, nil
}

func (e *Exchange) readJSON(name string) (map[string]any, error) {
	b, err := os.ReadFile(filepath.Join(e.dir, name))
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return m, nil
}

// sameJSON compares two decoded JSON objects key by key in both directions.
func sameJSON(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || fmt.Sprint(av) != fmt.Sprint(bv) {
			return false
		}
	}
	return true
}
