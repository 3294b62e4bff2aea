package tasks

import (
	"context"
	"fmt"

	"github.com/kteq-fm/teqbot/internal/control"
	"github.com/kteq-fm/teqbot/internal/notify"
	"github.com/kteq-fm/teqbot/internal/stream"
	logx "github.com/kteq-fm/teqbot/pkg/logx"
)

// BackOnlineMessage is posted once when the stream recovers.
const BackOnlineMessage = "The Stream is Back Online!"

// Status sweeps stream health. A down stream is reported to the engineering
// channel with a diagnosis on every sweep until it recovers; the control file
// latches the down state so recovery is announced exactly once, even across
// bot restarts.
type Status struct {
	Stream   StreamClient
	Notify   Notifier
	Control  *control.File
	Attempts int
	Channel  string
	Log      logx.Logger
}

func (t *Status) Run(ctx context.Context) error {
	attempts := t.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if _, err = t.Stream.Ping(ctx); err == nil {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	if err == nil {
		if t.Control.Is(control.StateStreamDown) {
			if err := t.Control.Set(control.StateRunning); err != nil {
				return fmt.Errorf("stream status: %w", err)
			}
			t.Log.Info("stream recovered")
			return t.Notify.Notify(ctx, t.Channel, notify.EmojiRobot, BackOnlineMessage)
		}
		t.Log.Debug("stream is online")
		return nil
	}

	t.Log.Warn("stream is down",
		logx.Int("attempts", attempts),
		logx.Err(err))
	if nerr := t.Notify.Notify(ctx, t.Channel, notify.EmojiSkull, stream.Diagnosis(err)); nerr != nil {
		return fmt.Errorf("stream status: %w", nerr)
	}
	if serr := t.Control.Set(control.StateStreamDown); serr != nil {
		return fmt.Errorf("stream status: %w", serr)
	}
	return nil
}
