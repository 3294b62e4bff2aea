package songlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	logx "github.com/kteq-fm/teqbot/pkg/logx"
)

func TestNowPlaying(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	e := New(dir, logx.Nop())

	np, err := e.NowPlaying()
	if err != nil || np != "" {
		t.Fatalf("missing file = (%q, %v), want empty", np, err)
	}

	if err := os.WriteFile(filepath.Join(dir, NowPlayingFile), []byte("Cool Song __by__ Cool Artist\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	np, err = e.NowPlaying()
	if err != nil {
		t.Fatalf("NowPlaying: %v", err)
	}
	if np != "Cool Song __by__ Cool Artist" {
		t.Fatalf("NowPlaying = %q", np)
	}
}

func TestWriteLyrics(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	e := New(dir, logx.Nop())

	if err := e.WriteLyrics("a lyric report"); err != nil {
		t.Fatalf("WriteLyrics: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, LyricsFile))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(b) != "a lyric report" {
		t.Fatalf("lyrics file = %q", b)
	}

	// Replacement, not append.
	if err := e.WriteLyrics("newer"); err != nil {
		t.Fatalf("WriteLyrics: %v", err)
	}
	b, _ = os.ReadFile(filepath.Join(dir, LyricsFile))
	if string(b) != "newer" {
		t.Fatalf("lyrics file after rewrite = %q", b)
	}
}

const swearJSON = `{
	"date": "2024-03-01",
	"time": "12:34",
	"song title": "Cool Song",
	"song artist": "Cool Artist",
	"song composer": "Someone",
	"show name": "The Cool Show",
	"report": "one swear at 1:23"
}`

func TestPendingSwearForwardsOnce(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	e := New(dir, logx.Nop())

	// Nothing submitted yet.
	if _, ok, err := e.PendingSwear(); err != nil || ok {
		t.Fatalf("empty exchange = ok:%v err:%v", ok, err)
	}

	if err := os.WriteFile(filepath.Join(dir, SwearFile), []byte(swearJSON), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	entry, ok, err := e.PendingSwear()
	if err != nil {
		t.Fatalf("PendingSwear: %v", err)
	}
	if !ok {
		t.Fatal("new submission not detected")
	}
	if entry.Show != "The Cool Show" || entry.Song != "Cool Song" {
		t.Fatalf("entry = %+v", entry)
	}

	// The same submission is not forwarded twice.
	if _, ok, err := e.PendingSwear(); err != nil || ok {
		t.Fatalf("repeat = ok:%v err:%v, want no new submission", ok, err)
	}

	// A changed submission is forwarded again.
	changed := strings.Replace(swearJSON, "12:34", "13:00", 1)
	if err := os.WriteFile(filepath.Join(dir, SwearFile), []byte(changed), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	entry, ok, err = e.PendingSwear()
	if err != nil || !ok {
		t.Fatalf("changed submission = ok:%v err:%v", ok, err)
	}
	if entry.Time != "13:00" {
		t.Fatalf("entry.Time = %q", entry.Time)
	}
}

func TestSwearEntryMessage(t *testing.T) {
	t.Parallel()
	entry := SwearEntry{
		Date:     "2024-03-01",
		Time:     "12:34",
		Song:     "Cool Song",
		Artist:   "Cool Artist",
		Composer: "Someone",
		Show:     "The Cool Show",
		Report:   "one swear at 1:23",
	}
	msg := entry.Message()
	for _, want := range []string{
		"SWEAR LOG SUBMISSION FROM The Cool Show:",
		"Cool Song",
		"Cool Artist",
		"one swear at 1:23",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
	if !strings.HasPrefix(msg, "```") || !strings.HasSuffix(msg, "```") {
		t.Fatalf("message not fenced: %q", msg)
	}

	if (SwearEntry{Show: "incomplete"}).Message() != "" {
		t.Fatal("incomplete entry must render empty")
	}
}
