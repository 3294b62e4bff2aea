package config

// Config is the full teqbot configuration.
//
// Secrets and collaborator endpoints come from environment variables
// (FromEnv); tunables may additionally be set from an optional YAML or JSON
// file (LoadFile), which never overrides the environment for secret fields.
type Config struct {
	Slack     SlackConfig     `json:"slack"`
	Stream    StreamConfig    `json:"stream"`
	TuneIn    TuneInConfig    `json:"tunein"`
	Genius    GeniusConfig    `json:"genius"`
	SongLog   SongLogConfig   `json:"songlog"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Logging   LoggingConfig   `json:"logging"`
	Storage   StorageConfig   `json:"storage"`
}

type SlackConfig struct {
	// Token comes from SLACK_TOKEN; not settable from file.
	Token    string         `json:"-"`
	Username string         `json:"username"`
	Emoji    string         `json:"emoji"`
	Channels ChannelsConfig `json:"channels"`
}

// ChannelsConfig names the Slack channels each kind of message goes to.
type ChannelsConfig struct {
	NowPlaying  string `json:"nowplaying"`
	Engineering string `json:"engineering"`
	Test        string `json:"test"`
}

type StreamConfig struct {
	// URL comes from STREAM_URL; the Icecast status page of the station.
	URL string `json:"-"`
	// Timeout is a Go duration string for the status page request.
	Timeout string `json:"timeout"`
	// Attempts is how many times the status task pings before declaring
	// the stream down.
	Attempts int `json:"attempts"`
}

type TuneInConfig struct {
	StationID  string `json:"-"` // TUNEIN_STATION_ID
	PartnerID  string `json:"-"` // TUNEIN_PARTNER_ID
	PartnerKey string `json:"-"` // TUNEIN_PARTNER_KEY
}

type GeniusConfig struct {
	Token string `json:"-"` // GENIUS_TOKEN
	// Timeout is a Go duration string for Genius API / lyric page requests.
	Timeout string `json:"timeout"`
}

type SongLogConfig struct {
	// Path comes from LOGGERPATH; the exchange directory shared with the
	// song-logging process (nowPlaying.txt, lyrics.txt, swear.json, ...).
	Path string `json:"-"`
}

// SchedulerConfig holds the poll granularity and per-task cadences.
// Cadences accept a Go duration ("30s") or a cron expression ("*/5 * * * *").
type SchedulerConfig struct {
	Granularity string `json:"granularity"`
	NowPlaying  string `json:"nowplaying"`
	Status      string `json:"status"`
	Lyric       string `json:"lyric"`
	Swear       string `json:"swear"`
}

type LoggingConfig struct {
	Level   string       `json:"level"`
	Console bool         `json:"console"`
	File    LoggingFile  `json:"file"`
	Slack   LoggingSlack `json:"slack"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// LoggingSlack relays warn+ log records to a channel, rate limited.
type LoggingSlack struct {
	Enabled    bool   `json:"enabled"`
	Channel    string `json:"channel"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

// StorageConfig controls the optional play-history store.
//
// Example:
//
//	storage: { driver: "file", path: "./teqbot_store" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// Default returns the built-in configuration. Cadences mirror the original
// station setup: song announcements twice a minute, a status sweep every five
// minutes, song-log driven tasks once a minute.
func Default() *Config {
	return &Config{
		Slack: SlackConfig{
			Username: "TEQ-BOT",
			Emoji:    ":robot_face:",
			Channels: ChannelsConfig{
				NowPlaying:  "nowplaying",
				Engineering: "engineering",
				Test:        "boondoggling",
			},
		},
		Stream: StreamConfig{
			Timeout:  "60s",
			Attempts: 5,
		},
		Genius: GeniusConfig{
			Timeout: "30s",
		},
		Scheduler: SchedulerConfig{
			Granularity: "1s",
			NowPlaying:  "30s",
			Status:      "5m",
			Lyric:       "1m",
			Swear:       "1m",
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			Slack: LoggingSlack{
				MinLevel:   "warn",
				RatePerSec: 1,
			},
		},
	}
}
