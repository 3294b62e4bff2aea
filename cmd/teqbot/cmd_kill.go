package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kteq-fm/teqbot/internal/config"
	"github.com/kteq-fm/teqbot/internal/control"
	logx "github.com/kteq-fm/teqbot/pkg/logx"
)

var killCmd = &cobra.Command{
	Use:   "kill",
	Short: "Stop a scheduler running in another process",
	Long: "Flip the control file to \"done\". A running scheduler observes the flag\n" +
		"within one poll granularity and exits cleanly.",
	RunE: runKill,
}

func runKill(cmd *cobra.Command, args []string) error {
	if err := loadConfig(config.Need{SongLog: true}); err != nil {
		return err
	}
	ctl := control.NewFile(cfg.SongLog.Path, logx.NewConsole(cfg.Logging.Level))
	if err := ctl.Set(control.StateDone); err != nil {
		return err
	}
	fmt.Println("Halting scheduler running on different process...")
	return nil
}
