// Package notify is the one path through which tasks post to Slack: it
// applies the message icon conventions, rate limits sends, and keeps a short
// in-memory history for debugging. Send failures are logged and returned,
// never fatal.
package notify

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/kteq-fm/teqbot/internal/slackbot"
	logx "github.com/kteq-fm/teqbot/pkg/logx"
)

// Message icons. The robot face is the bot's resting icon; the skull marks
// incidents and the musical note marks song announcements.
const (
	EmojiRobot = ":robot_face:"
	EmojiSkull = ":skull:"
	EmojiMusic = ":musical_note:"
)

const historyMax = 300

// Notification is one posted (or attempted) message.
type Notification struct {
	At      time.Time
	Channel string
	Emoji   string
	Text    string
	Err     string
}

type Notifier struct {
	sender slackbot.Sender
	lim    *rate.Limiter
	log    logx.Logger

	mu      sync.Mutex
	history []Notification
}

// New builds a Notifier. ratePerSec <= 0 defaults to 1, matching Slack's
// per-channel posting guidance.
func New(sender slackbot.Sender, ratePerSec int, log logx.Logger) *Notifier {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Notifier{
		sender: sender,
		lim:    rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
		log:    log,
	}
}

// Notify posts text to a named channel with the given icon emoji.
func (n *Notifier) Notify(ctx context.Context, channel, emoji, text string) error {
	if emoji == "" {
		emoji = EmojiRobot
	}
	if err := n.lim.Wait(ctx); err != nil {
		return err
	}

	err := n.sender.Send(ctx, channel, text, &slackbot.SendOptions{Emoji: emoji})

	item := Notification{At: time.Now(), Channel: channel, Emoji: emoji, Text: text}
	if err != nil {
		item.Err = err.Error()
		n.log.Warn("notification send failed",
			logx.String("channel", channel),
			logx.Err(err))
	} else {
		n.log.Debug("notification sent",
			logx.String("channel", channel),
			logx.String("emoji", emoji))
	}
	n.appendHistory(item)
	return err
}

func (n *Notifier) appendHistory(x Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.history = append(n.history, x)
	if len(n.history) > historyMax {
		n.history = n.history[len(n.history)-historyMax:]
	}
}

// History returns a copy of the recent notification log, oldest first.
func (n *Notifier) History() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.history...)
}
