package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// SpecKind describes the normalized kind of a schedule string.
//
// We intentionally keep this small: either a cron expression (robfig/cron)
// or a fixed interval.
type SpecKind int

const (
	SpecInterval SpecKind = iota
	SpecCron
)

// cronParser accepts standard 5-field expressions plus descriptors
// ("@hourly", "@every 55m").
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Schedule is a parsed, immutable schedule.
type Schedule struct {
	Kind  SpecKind
	Every time.Duration // SpecInterval only
	Raw   string

	cronSched cron.Schedule // SpecCron only
}

// ParseSchedule parses a schedule string into either a cron schedule or a
// fixed interval.
//
// Supported forms:
//   - Interval duration: "30s", "5m", "2h30m"
//   - Cron (crontab.guru-style): "*/5 * * * *", "@hourly", "@every 55m"
//
// Optional prefixes:
//   - "cron:" forces cron parsing
//   - "interval:" or "every:" forces interval parsing
func ParseSchedule(raw string) (Schedule, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Schedule{}, fmt.Errorf("schedule required")
	}

	low := strings.ToLower(s)
	switch {
	case strings.HasPrefix(low, "cron:"):
		return parseCron(raw, strings.TrimSpace(s[len("cron:"):]))
	case strings.HasPrefix(low, "interval:"):
		return parseInterval(raw, strings.TrimSpace(s[len("interval:"):]))
	case strings.HasPrefix(low, "every:"):
		return parseInterval(raw, strings.TrimSpace(s[len("every:"):]))
	}

	// Heuristic: any whitespace or a leading '@' means cron.
	if strings.ContainsAny(s, " \t\n\r") || strings.HasPrefix(s, "@") {
		return parseCron(raw, s)
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return Schedule{}, fmt.Errorf(
			"invalid schedule %q (use a duration like '30s'/'5m' or cron like '*/5 * * * *')", raw)
	}
	if d <= 0 {
		return Schedule{}, fmt.Errorf("invalid schedule %q: interval must be > 0", raw)
	}
	return Schedule{Kind: SpecInterval, Every: d, Raw: raw}, nil
}

func parseCron(raw, expr string) (Schedule, error) {
	if expr == "" {
		return Schedule{}, fmt.Errorf("cron schedule required after 'cron:'")
	}
	cs, err := cronParser.Parse(expr)
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid cron schedule %q: %w", raw, err)
	}
	return Schedule{Kind: SpecCron, Raw: raw, cronSched: cs}, nil
}

func parseInterval(raw, v string) (Schedule, error) {
	if v == "" {
		return Schedule{}, fmt.Errorf("interval required")
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid interval %q (use a Go duration like '30s'/'2h30m')", raw)
	}
	if d <= 0 {
		return Schedule{}, fmt.Errorf("invalid schedule %q: interval must be > 0", raw)
	}
	return Schedule{Kind: SpecInterval, Every: d, Raw: raw}, nil
}

// Next reports the next fire time strictly after t.
func (s Schedule) Next(t time.Time) time.Time {
	if s.Kind == SpecCron && s.cronSched != nil {
		return s.cronSched.Next(t)
	}
	return t.Add(s.Every)
}

func (s Schedule) String() string { return s.Raw }
