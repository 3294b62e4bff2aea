package tasks

import (
	"context"
	"fmt"

	"github.com/kteq-fm/teqbot/internal/genius"
	"github.com/kteq-fm/teqbot/internal/notify"
	"github.com/kteq-fm/teqbot/internal/songlog"
	"github.com/kteq-fm/teqbot/internal/stream"
	logx "github.com/kteq-fm/teqbot/pkg/logx"
)

// Lyric checks the lyrics of whatever the song logger says is playing. It
// reads the logger's now-playing file rather than the stream, so it keeps
// working while the stream is down. On a song change it looks the song up,
// screens the lyrics, writes the report back for the logger to display, and
// warns the engineering channel when the song may contain swears.
type Lyric struct {
	Exchange *songlog.Exchange
	Lyrics   LyricService
	Notify   Notifier
	State    *StateFile
	Channel  string
	Log      logx.Logger
}

func (t *Lyric) Run(ctx context.Context) error {
	np, err := t.Exchange.NowPlaying()
	if err != nil {
		return fmt.Errorf("lyric check: %w", err)
	}
	if np == "" {
		return nil
	}

	last := t.State.Get()
	t.Log.Debug("comparing lyrics",
		logx.String("last", last),
		logx.String("current", np))
	if np == last {
		return nil
	}
	// Record the song before looking it up so a failing lookup is not
	// retried on every cycle.
	if err := t.State.Set(np); err != nil {
		return fmt.Errorf("lyric check: %w", err)
	}

	badWords, err := genius.LoadProfanity(t.Exchange.ProfanityPath())
	if err != nil {
		t.Log.Warn("profanity list unavailable, screening disabled", logx.Err(err))
	}

	song, artist := stream.SplitMetadata(np)
	rep, err := t.Lyrics.Check(ctx, song, artist, badWords)
	if err != nil {
		return fmt.Errorf("lyric check: %w", err)
	}

	if !rep.Clean() {
		warning := "Warning! Song Currently Playing On KTEQ " +
			"may contain swears. Generating Report...\n" +
			"```" + rep.String() + "```"
		if err := t.Notify.Notify(ctx, t.Channel, notify.EmojiSkull, warning); err != nil {
			return fmt.Errorf("lyric check: %w", err)
		}
	}
	if err := t.Exchange.WriteLyrics(rep.String()); err != nil {
		return fmt.Errorf("lyric check: %w", err)
	}
	t.Log.Info("lyric report written",
		logx.String("song", song),
		logx.Bool("clean", rep.Clean()))
	return nil
}
