package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task <name>",
	Short: "Run one task once, outside the scheduler",
	Long: "Run a single task immediately and exit. Valid names: " +
		strings.Join(taskOrder, ", ") + ".",
	Args: cobra.ExactArgs(1),
	RunE: runTask,
}

func runTask(cmd *cobra.Command, args []string) error {
	name := strings.ToLower(strings.TrimSpace(args[0]))

	// Resolve the name before touching configuration so an unknown task
	// fails fast with no side effects.
	need, err := needFor(name)
	if err != nil {
		return err
	}
	if err := loadConfig(need); err != nil {
		return err
	}

	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.Close()

	action, err := buildTask(d, name)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return action(ctx)
}
