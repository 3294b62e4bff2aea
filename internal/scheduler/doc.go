// Package scheduler dispatches teqbot's monitoring tasks on independent
// cadences from a single control loop.
//
// # Overview
//
// Tasks are registered under a stable, human-readable name (e.g. "status")
// together with a schedule and an action. Run() drives a cooperative polling
// loop: each tick it executes every due task sequentially, in registration
// order, then sleeps a fixed poll granularity. There is no worker pool and no
// overlap between tasks; a slow action delays the rest of its tick.
//
// # Schedule formats
//
// A schedule string is either a fixed interval or a cron expression:
//
//   - Interval durations: Go duration strings like "30s" or "5m".
//   - Cron expressions: 5-field (min hour dom mon dow), e.g. "*/5 * * * *".
//   - Cron descriptors: "@hourly", "@daily", "@every 55m".
//
// To force interpretation, callers may prefix the string with "cron:" or
// "interval:".
//
// # Lifecycle
//
// Stop() (idempotent, safe from any goroutine) raises the control flag that
// Run() observes at the top of each tick; the loop exits within one poll
// granularity. Tick() is exported so tests and other harnesses can drive the
// scheduler with a simulated clock instead of wall time.
package scheduler
