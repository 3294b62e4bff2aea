package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Environment variables recognized by teqbot. Secrets and collaborator
// endpoints live here, never in the config file.
const (
	EnvSlackToken       = "SLACK_TOKEN"
	EnvStreamURL        = "STREAM_URL"
	EnvTuneInStationID  = "TUNEIN_STATION_ID"
	EnvTuneInPartnerID  = "TUNEIN_PARTNER_ID"
	EnvTuneInPartnerKey = "TUNEIN_PARTNER_KEY"
	EnvGeniusToken      = "GENIUS_TOKEN"
	EnvLoggerPath       = "LOGGERPATH"
)

// ConfigError reports missing or invalid configuration. It is fatal at
// startup: the process prints it and exits before any task is scheduled.
type ConfigError struct {
	Missing []string // environment variables that are required but unset
	Invalid []string // human-readable field problems
}

func (e *ConfigError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		m := append([]string(nil), e.Missing...)
		sort.Strings(m)
		parts = append(parts, "missing environment: "+strings.Join(m, ", "))
	}
	for _, p := range e.Invalid {
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return "invalid configuration"
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

// Need declares which features the current invocation uses, so validation
// only demands the environment those features touch.
type Need struct {
	Slack   bool // any Slack posting (all tasks, message command)
	Stream  bool // nowplaying + status tasks
	TuneIn  bool // nowplaying task
	Genius  bool // lyric task
	SongLog bool // lyric + swear tasks, control file
}

// NeedAll requires every collaborator.
func NeedAll() Need {
	return Need{Slack: true, Stream: true, TuneIn: true, Genius: true, SongLog: true}
}

// FromEnv reads the recognized environment variables into cfg.
// Unset variables are left empty here; Validate decides what is fatal.
func (c *Config) FromEnv() {
	c.Slack.Token = os.Getenv(EnvSlackToken)
	c.Stream.URL = os.Getenv(EnvStreamURL)
	c.TuneIn.StationID = os.Getenv(EnvTuneInStationID)
	c.TuneIn.PartnerID = os.Getenv(EnvTuneInPartnerID)
	c.TuneIn.PartnerKey = os.Getenv(EnvTuneInPartnerKey)
	c.Genius.Token = os.Getenv(EnvGeniusToken)
	c.SongLog.Path = os.Getenv(EnvLoggerPath)
}

// Validate checks cfg against the declared needs and the tunable fields.
// It returns a *ConfigError listing every problem at once.
func (c *Config) Validate(need Need) error {
	e := &ConfigError{}

	requireEnv := func(ok bool, name, val string) {
		if ok && strings.TrimSpace(val) == "" {
			e.Missing = append(e.Missing, name)
		}
	}
	requireEnv(need.Slack, EnvSlackToken, c.Slack.Token)
	requireEnv(need.Stream, EnvStreamURL, c.Stream.URL)
	requireEnv(need.TuneIn, EnvTuneInStationID, c.TuneIn.StationID)
	requireEnv(need.TuneIn, EnvTuneInPartnerID, c.TuneIn.PartnerID)
	requireEnv(need.TuneIn, EnvTuneInPartnerKey, c.TuneIn.PartnerKey)
	requireEnv(need.Genius, EnvGeniusToken, c.Genius.Token)
	requireEnv(need.SongLog, EnvLoggerPath, c.SongLog.Path)

	if need.SongLog && strings.TrimSpace(c.SongLog.Path) != "" {
		if fi, err := os.Stat(c.SongLog.Path); err != nil || !fi.IsDir() {
			e.Invalid = append(e.Invalid,
				fmt.Sprintf("%s: %q is not a directory", EnvLoggerPath, c.SongLog.Path))
		}
	}

	checkDuration := func(path, raw string) {
		if _, err := ParseDurationField(path, raw); err != nil {
			e.Invalid = append(e.Invalid, err.Error())
		}
	}
	checkDuration("stream.timeout", c.Stream.Timeout)
	checkDuration("genius.timeout", c.Genius.Timeout)
	checkDuration("scheduler.granularity", c.Scheduler.Granularity)
	checkDuration("storage.busy_timeout", c.Storage.BusyTimeout)

	if c.Stream.Attempts < 1 {
		e.Invalid = append(e.Invalid, "stream.attempts: must be >= 1")
	}

	if len(e.Missing) > 0 || len(e.Invalid) > 0 {
		return e
	}
	return nil
}
