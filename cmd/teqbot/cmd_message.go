package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kteq-fm/teqbot/internal/config"
	"github.com/kteq-fm/teqbot/internal/notify"
)

var messageChannel string

var messageCmd = &cobra.Command{
	Use:   "message <text>...",
	Short: "Send an ad-hoc message to Slack (test utility)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMessage,
}

func init() {
	messageCmd.Flags().StringVar(&messageChannel, "channel", "", "channel to post to (default: the configured test channel)")
}

func runMessage(cmd *cobra.Command, args []string) error {
	if err := loadConfig(config.Need{Slack: true}); err != nil {
		return err
	}

	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.Close()

	channel := messageChannel
	if channel == "" {
		channel = cfg.Slack.Channels.Test
	}
	text := strings.Join(args, " ")
	fmt.Printf("Sending %q to #%s...\n", text, channel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return d.notifier.Notify(ctx, channel, notify.EmojiRobot, text)
}
