package main

import (
	"fmt"
	"time"

	"github.com/kteq-fm/teqbot/internal/config"
	"github.com/kteq-fm/teqbot/internal/control"
	"github.com/kteq-fm/teqbot/internal/genius"
	"github.com/kteq-fm/teqbot/internal/notify"
	"github.com/kteq-fm/teqbot/internal/scheduler"
	"github.com/kteq-fm/teqbot/internal/slackbot"
	"github.com/kteq-fm/teqbot/internal/songlog"
	"github.com/kteq-fm/teqbot/internal/storage"
	"github.com/kteq-fm/teqbot/internal/stream"
	"github.com/kteq-fm/teqbot/internal/tasks"
	"github.com/kteq-fm/teqbot/internal/tunein"
	logx "github.com/kteq-fm/teqbot/pkg/logx"
)

// taskOrder is the canonical registration order; the scheduler executes due
// tasks in this order within a tick.
var taskOrder = []string{tasks.NameNowPlaying, tasks.NameStatus, tasks.NameLyric, tasks.NameSwear}

// needFor returns the environment a task requires. Every task posts to
// Slack.
func needFor(name string) (config.Need, error) {
	switch name {
	case tasks.NameNowPlaying:
		return config.Need{Slack: true, Stream: true, TuneIn: true}, nil
	case tasks.NameStatus:
		return config.Need{Slack: true, Stream: true, SongLog: true}, nil
	case tasks.NameLyric:
		return config.Need{Slack: true, Genius: true, SongLog: true}, nil
	case tasks.NameSwear:
		return config.Need{Slack: true, SongLog: true}, nil
	default:
		return config.Need{}, fmt.Errorf("%w: %q", scheduler.ErrTaskNotFound, name)
	}
}

// deps is everything a command builds after configuration is validated.
type deps struct {
	logSvc   *logx.Service
	log      logx.Logger
	slack    *slackbot.Client
	notifier *notify.Notifier
	store    storage.Store
}

func (d *deps) Close() {
	if d.store != nil {
		_ = d.store.Close()
	}
	if d.logSvc != nil {
		_ = d.logSvc.Close()
	}
}

// bootstrap builds the shared runtime: Slack client, log service (with the
// Slack relay wired through the client), notifier, and optional storage.
func bootstrap() (*deps, error) {
	slack := slackbot.New(cfg.Slack, logx.NewConsole(cfg.Logging.Level))
	svc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Slack: logx.SlackConfig{
			Enabled:    cfg.Logging.Slack.Enabled,
			Channel:    cfg.Logging.Slack.Channel,
			MinLevel:   cfg.Logging.Slack.MinLevel,
			RatePerSec: cfg.Logging.Slack.RatePerSec,
		},
	}, slack)

	d := &deps{
		logSvc:   svc,
		log:      log,
		slack:    slack,
		notifier: notify.New(slack, 0, log),
	}

	busy, err := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
	if err != nil {
		d.Close()
		return nil, err
	}
	store, err := storage.Open(storage.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: busy,
	}, log.With(logx.String("component", "storage")))
	if err != nil {
		d.Close()
		return nil, err
	}
	d.store = store
	return d, nil
}

// buildTask wires one named task to its collaborators.
func buildTask(d *deps, name string) (scheduler.Action, error) {
	switch name {
	case tasks.NameNowPlaying:
		timeout, err := config.ParseDurationOrDefault("stream.timeout", cfg.Stream.Timeout, 60*time.Second)
		if err != nil {
			return nil, err
		}
		t := &tasks.NowPlaying{
			Stream:  stream.New(cfg.Stream.URL, timeout, d.log),
			Notify:  d.notifier,
			TuneIn:  tunein.New(cfg.TuneIn.StationID, cfg.TuneIn.PartnerID, cfg.TuneIn.PartnerKey, d.log),
			Store:   d.store,
			State:   tasks.NewStateFile(".", tasks.SongStateFile),
			Channel: cfg.Slack.Channels.NowPlaying,
			Emoji:   notify.EmojiMusic,
			Log:     d.log.With(logx.String("task", name)),
		}
		return t.Run, nil

	case tasks.NameStatus:
		timeout, err := config.ParseDurationOrDefault("stream.timeout", cfg.Stream.Timeout, 60*time.Second)
		if err != nil {
			return nil, err
		}
		t := &tasks.Status{
			Stream:   stream.New(cfg.Stream.URL, timeout, d.log),
			Notify:   d.notifier,
			Control:  control.NewFile(cfg.SongLog.Path, d.log),
			Attempts: cfg.Stream.Attempts,
			Channel:  cfg.Slack.Channels.Engineering,
			Log:      d.log.With(logx.String("task", name)),
		}
		return t.Run, nil

	case tasks.NameLyric:
		timeout, err := config.ParseDurationOrDefault("genius.timeout", cfg.Genius.Timeout, 30*time.Second)
		if err != nil {
			return nil, err
		}
		t := &tasks.Lyric{
			Exchange: songlog.New(cfg.SongLog.Path, d.log),
			Lyrics:   genius.New(cfg.Genius.Token, timeout, d.log),
			Notify:   d.notifier,
			State:    tasks.NewStateFile(".", tasks.LyricStateFile),
			Channel:  cfg.Slack.Channels.Engineering,
			Log:      d.log.With(logx.String("task", name)),
		}
		return t.Run, nil

	case tasks.NameSwear:
		t := &tasks.Swear{
			Exchange: songlog.New(cfg.SongLog.Path, d.log),
			Notify:   d.notifier,
			Store:    d.store,
			Channel:  cfg.Slack.Channels.Engineering,
			Log:      d.log.With(logx.String("task", name)),
		}
		return t.Run, nil

	default:
		return nil, fmt.Errorf("%w: %q", scheduler.ErrTaskNotFound, name)
	}
}

// cadenceFor returns the configured schedule string for a task.
func cadenceFor(name string) string {
	switch name {
	case tasks.NameNowPlaying:
		return cfg.Scheduler.NowPlaying
	case tasks.NameStatus:
		return cfg.Scheduler.Status
	case tasks.NameLyric:
		return cfg.Scheduler.Lyric
	case tasks.NameSwear:
		return cfg.Scheduler.Swear
	default:
		return ""
	}
}
