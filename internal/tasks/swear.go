package tasks

import (
	"context"
	"fmt"

	"github.com/kteq-fm/teqbot/internal/notify"
	"github.com/kteq-fm/teqbot/internal/songlog"
	"github.com/kteq-fm/teqbot/internal/storage"
	logx "github.com/kteq-fm/teqbot/pkg/logx"
)

// Swear forwards new swear-log submissions from the song logger to the
// engineering channel so management hears about incidents promptly, and
// archives them in storage.
type Swear struct {
	Exchange *songlog.Exchange
	Notify   Notifier
	Store    storage.Store // optional
	Channel  string
	Log      logx.Logger
}

func (t *Swear) Run(ctx context.Context) error {
	entry, ok, err := t.Exchange.PendingSwear()
	if err != nil {
		return fmt.Errorf("swear log: %w", err)
	}
	if !ok {
		return nil
	}

	msg := entry.Message()
	if msg == "" {
		t.Log.Warn("swear log submission missing fields, not forwarded",
			logx.String("show", entry.Show))
		return nil
	}
	if err := t.Notify.Notify(ctx, t.Channel, notify.EmojiSkull, msg); err != nil {
		return fmt.Errorf("swear log: %w", err)
	}
	if t.Store != nil {
		rec := storage.SwearRecord{
			Date:   entry.Date,
			Time:   entry.Time,
			Song:   entry.Song,
			Artist: entry.Artist,
			Show:   entry.Show,
			Report: entry.Report,
		}
		if err := t.Store.AppendSwear(ctx, rec); err != nil {
			t.Log.Warn("swear log archive append failed", logx.Err(err))
		}
	}
	t.Log.Info("swear log forwarded", logx.String("show", entry.Show))
	return nil
}
