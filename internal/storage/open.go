package storage

import (
	"context"
	"errors"
	"strings"

	logx "github.com/kteq-fm/teqbot/pkg/logx"
)

// Store is the minimal persistence API used by the tasks.
type Store interface {
	AppendPlay(ctx context.Context, p Play) error
	RecentPlays(ctx context.Context, n int) ([]Play, error)
	AppendSwear(ctx context.Context, r SwearRecord) error
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
