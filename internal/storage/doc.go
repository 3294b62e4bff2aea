package storage

// Package storage persists the station's play history and forwarded swear
// logs so they survive bot restarts.
//
// It currently supports:
//   - Play appends (one row per song change, with listener counts)
//   - Swear-log archive appends
