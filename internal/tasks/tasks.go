// Package tasks holds the station jobs the scheduler dispatches: song
// announcements, stream health sweeps, lyric checks, and swear-log
// forwarding. Each task is a small struct whose Run method matches the
// scheduler's Action signature; collaborators are narrow interfaces so tests
// can substitute fakes.
package tasks

import (
	"context"

	"github.com/kteq-fm/teqbot/internal/genius"
	"github.com/kteq-fm/teqbot/internal/stream"
)

// Canonical task names, as used by the scheduler registry and the `task`
// subcommand.
const (
	NameNowPlaying = "nowplaying"
	NameStatus     = "status"
	NameLyric      = "lyric"
	NameSwear      = "swear"
)

// Notifier posts a message to a named channel with an icon emoji.
type Notifier interface {
	Notify(ctx context.Context, channel, emoji, text string) error
}

// StreamClient is the slice of the Icecast client the tasks use.
type StreamClient interface {
	Ping(ctx context.Context) (string, error)
	Listeners(ctx context.Context) (stream.Counts, error)
}

// LyricService finds a song's lyrics and screens them.
type LyricService interface {
	Check(ctx context.Context, song, artist string, badWords []string) (genius.Report, error)
}
