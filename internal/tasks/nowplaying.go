package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/kteq-fm/teqbot/internal/storage"
	"github.com/kteq-fm/teqbot/internal/stream"
	"github.com/kteq-fm/teqbot/internal/tunein"
	logx "github.com/kteq-fm/teqbot/pkg/logx"
)

// NowPlaying announces song changes. Each run compares the stream's current
// metadata against the last announced song; on a change it posts to the
// now-playing channel, pushes the metadata to TuneIn, and appends the play to
// storage.
//
// The now-playing channel should be muted: it updates very often.
type NowPlaying struct {
	Stream  StreamClient
	Notify  Notifier
	TuneIn  tunein.Updater // optional
	Store   storage.Store  // optional
	State   *StateFile
	Channel string
	Emoji   string
	Log     logx.Logger
}

func (t *NowPlaying) Run(ctx context.Context) error {
	meta, err := t.Stream.Ping(ctx)
	if err != nil {
		return fmt.Errorf("now playing: %w", err)
	}
	if meta == "" {
		return nil
	}

	last := t.State.Get()
	t.Log.Debug("comparing songs",
		logx.String("last", last),
		logx.String("current", meta))
	if meta == last {
		return nil
	}
	if err := t.State.Set(meta); err != nil {
		return fmt.Errorf("now playing: %w", err)
	}

	var errs []error
	if err := t.Notify.Notify(ctx, t.Channel, t.Emoji, stream.DisplayMetadata(meta)); err != nil {
		errs = append(errs, err)
	}

	song, artist := stream.SplitMetadata(meta)
	if t.TuneIn != nil {
		if err := t.TuneIn.Update(ctx, song, artist); err != nil {
			errs = append(errs, err)
		}
	}
	if t.Store != nil {
		play := storage.Play{Song: song, Artist: artist, RawMeta: meta}
		// Listener counts are decoration on the history row; a failed
		// read does not block the append.
		if counts, err := t.Stream.Listeners(ctx); err == nil {
			play.Current = counts.Current
			play.Peak = counts.Peak
		}
		if err := t.Store.AppendPlay(ctx, play); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("now playing: %w", errors.Join(errs...))
	}
	t.Log.Info("song announced", logx.String("song", song), logx.String("artist", artist))
	return nil
}
