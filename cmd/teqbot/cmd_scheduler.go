package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"

	"github.com/kteq-fm/teqbot/internal/config"
	"github.com/kteq-fm/teqbot/internal/control"
	"github.com/kteq-fm/teqbot/internal/scheduler"
	"github.com/kteq-fm/teqbot/internal/tasks"
	logx "github.com/kteq-fm/teqbot/pkg/logx"
)

var (
	schedNowPlaying bool
	schedStatus     bool
	schedLyric      bool
	schedSwear      bool
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the task scheduler loop",
	Long: "Run the monitoring loop until interrupted or `teqbot kill` is invoked.\n" +
		"Task selection flags enable individual tasks; with no flags every task runs.",
	RunE: runScheduler,
}

func init() {
	f := schedulerCmd.Flags()
	f.BoolVarP(&schedNowPlaying, "nowplaying", "n", false, "enable the song announcement task")
	f.BoolVarP(&schedStatus, "status", "s", false, "enable the stream status task")
	f.BoolVarP(&schedLyric, "lyric", "l", false, "enable the lyric check task")
	f.BoolVarP(&schedSwear, "swear", "w", false, "enable the swear log task")
}

func enabledTasks() []string {
	sel := map[string]bool{
		tasks.NameNowPlaying: schedNowPlaying,
		tasks.NameStatus:     schedStatus,
		tasks.NameLyric:      schedLyric,
		tasks.NameSwear:      schedSwear,
	}
	any := schedNowPlaying || schedStatus || schedLyric || schedSwear

	var names []string
	for _, name := range taskOrder {
		if !any || sel[name] {
			names = append(names, name)
		}
	}
	return names
}

func runScheduler(cmd *cobra.Command, args []string) error {
	enabled := enabledTasks()

	// The control file lives in the exchange directory, so the scheduler
	// always needs it regardless of task selection.
	need := config.Need{SongLog: true}
	for _, name := range enabled {
		n, err := needFor(name)
		if err != nil {
			return err
		}
		need.Slack = need.Slack || n.Slack
		need.Stream = need.Stream || n.Stream
		need.TuneIn = need.TuneIn || n.TuneIn
		need.Genius = need.Genius || n.Genius
		need.SongLog = need.SongLog || n.SongLog
	}
	if err := loadConfig(need); err != nil {
		return err
	}

	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.Close()

	granularity, err := config.ParseDurationOrDefault(
		"scheduler.granularity", cfg.Scheduler.Granularity, time.Second)
	if err != nil {
		return err
	}

	sched := scheduler.New(
		scheduler.WithLogger(d.log.With(logx.String("component", "scheduler"))),
		scheduler.WithGranularity(granularity),
	)
	for _, name := range enabled {
		action, err := buildTask(d, name)
		if err != nil {
			return err
		}
		if err := sched.Register(name, cadenceFor(name), action); err != nil {
			return err
		}
	}

	ctl := control.NewFile(cfg.SongLog.Path, d.log)
	// A stale file from a previous run (crash, stream-down latch) must not
	// stop or confuse this one.
	if err := ctl.Clear(); err != nil {
		return err
	}
	if err := ctl.Set(control.StateRunning); err != nil {
		return err
	}
	defer func() { _ = ctl.Clear() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go ctl.Watch(ctx, sched.Stop)

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	err = sched.Run(ctx)
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
