package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kteq-fm/teqbot/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "teqbot",
	Short: "TeqBot - KTEQ-FM station monitoring bot",
	Long: "TeqBot watches the KTEQ-FM Icecast stream and the station's song logger,\n" +
		"announces songs, reports outages, checks lyrics, and forwards swear logs\n" +
		"to the station's Slack.",
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Print usage information",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Root().Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to optional config file (yaml or json)")
	rootCmd.AddCommand(usageCmd, schedulerCmd, taskCmd, killCmd, messageCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig builds the effective configuration for one invocation: defaults,
// then environment, then the optional file (which never carries secrets).
// Validation failures are fatal before any task is scheduled.
func loadConfig(need config.Need) error {
	cfg = config.Default()
	cfg.FromEnv()
	if cfgFile != "" {
		if err := cfg.LoadFile(cfgFile); err != nil {
			return err
		}
	}
	return cfg.Validate(need)
}
