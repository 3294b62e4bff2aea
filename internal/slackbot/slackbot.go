// Package slackbot is the Slack side of teqbot: a thin adapter over the
// Slack Web API that posts as the bot user to named channels.
package slackbot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/slack-go/slack"

	"github.com/kteq-fm/teqbot/internal/config"
	logx "github.com/kteq-fm/teqbot/pkg/logx"
)

// SendOptions adjust a single post. Zero value posts with the bot's default
// icon.
type SendOptions struct {
	// Emoji overrides the bot icon for this message (e.g. ":skull:").
	Emoji string
}

// Sender posts a message to a named channel. Implemented by Client; tasks
// and the notifier depend on this interface so tests can use fakes.
type Sender interface {
	Send(ctx context.Context, channel, text string, opts *SendOptions) error
}

// Client posts to Slack via chat.postMessage, resolving channel names to IDs
// once and caching them for the life of the process.
type Client struct {
	api      *slack.Client
	username string
	emoji    string
	log      logx.Logger

	mu  sync.Mutex
	ids map[string]string // channel name -> ID
}

func New(cfg config.SlackConfig, log logx.Logger) *Client {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		api:      slack.New(cfg.Token),
		username: cfg.Username,
		emoji:    cfg.Emoji,
		log:      log,
		ids:      map[string]string{},
	}
}

func (c *Client) Send(ctx context.Context, channel, text string, opts *SendOptions) error {
	id, err := c.channelID(ctx, channel)
	if err != nil {
		return err
	}

	emoji := c.emoji
	if opts != nil && opts.Emoji != "" {
		emoji = opts.Emoji
	}

	_, ts, err := c.api.PostMessageContext(ctx, id,
		slack.MsgOptionText(text, false),
		slack.MsgOptionUsername(c.username),
		slack.MsgOptionIconEmoji(emoji),
	)
	if err != nil {
		return fmt.Errorf("slack post to #%s: %w", channel, err)
	}
	c.log.Debug("slack message posted",
		logx.String("channel", channel),
		logx.String("ts", ts))
	return nil
}

// SendText satisfies logx.Sender so warn+ log records can be relayed to a
// channel without the log service knowing about Slack.
func (c *Client) SendText(ctx context.Context, channel, text string) error {
	return c.Send(ctx, channel, text, nil)
}

// channelID resolves a channel name, consulting the cache first and walking
// conversations.list pages on a miss.
func (c *Client) channelID(ctx context.Context, name string) (string, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "#")
	if name == "" {
		return "", fmt.Errorf("slack channel name required")
	}

	c.mu.Lock()
	id, hit := c.ids[name]
	c.mu.Unlock()
	if hit {
		return id, nil
	}

	params := &slack.GetConversationsParameters{
		ExcludeArchived: true,
		Limit:           200,
		Types:           []string{"public_channel"},
	}
	for {
		channels, cursor, err := c.api.GetConversationsContext(ctx, params)
		if err != nil {
			return "", fmt.Errorf("slack channel list: %w", err)
		}
		c.mu.Lock()
		for _, ch := range channels {
			c.ids[ch.Name] = ch.ID
		}
		id, hit = c.ids[name]
		c.mu.Unlock()
		if hit {
			return id, nil
		}
		if cursor == "" {
			return "", fmt.Errorf("slack channel #%s not found", name)
		}
		params.Cursor = cursor
	}
}
