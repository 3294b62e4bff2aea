package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	logx "github.com/kteq-fm/teqbot/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// Files:
//   - <prefix>.plays.jsonl  (append-only JSON Lines)
//   - <prefix>.swears.jsonl (append-only JSON Lines)
type fileStore struct {
	log logx.Logger

	mu sync.Mutex

	playPath  string
	playFile  *os.File
	swearFile *os.File
}

type playRecord struct {
	At      int64  `json:"at"` // unix milli
	Song    string `json:"song"`
	Artist  string `json:"artist,omitempty"`
	RawMeta string `json:"raw,omitempty"`
	Current int    `json:"current,omitempty"`
	Peak    int    `json:"peak,omitempty"`
}

type swearRecord struct {
	At     int64  `json:"at"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Song   string `json:"song"`
	Artist string `json:"artist"`
	Show   string `json:"show"`
	Report string `json:"report"`
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	prefix := filepath.Join(dir, base)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	playPath := prefix + ".plays.jsonl"
	swearPath := prefix + ".swears.jsonl"

	pf, err := os.OpenFile(playPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	sf, err := os.OpenFile(swearPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		_ = pf.Close()
		return nil, err
	}

	return &fileStore{
		log:       log,
		playPath:  playPath,
		playFile:  pf,
		swearFile: sf,
	}, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err1, err2 error
	if s.playFile != nil {
		err1 = s.playFile.Close()
		s.playFile = nil
	}
	if s.swearFile != nil {
		err2 = s.swearFile.Close()
		s.swearFile = nil
	}
	if err1 != nil {
		return err1
	}
	return err2
}

func (s *fileStore) AppendPlay(ctx context.Context, p Play) error {
	_ = ctx
	if p.At.IsZero() {
		p.At = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playFile == nil {
		return errors.New("play file closed")
	}
	return json.NewEncoder(s.playFile).Encode(playRecord{
		At:      p.At.UnixMilli(),
		Song:    p.Song,
		Artist:  p.Artist,
		RawMeta: p.RawMeta,
		Current: p.Current,
		Peak:    p.Peak,
	})
}

// RecentPlays reads the play log back and returns the last n entries, newest
// first. The log is small enough (one line per song) that a full scan is
// fine.
func (s *fileStore) RecentPlays(ctx context.Context, n int) ([]Play, error) {
	_ = ctx
	if n <= 0 {
		return nil, nil
	}
	s.mu.Lock()
	path := s.playPath
	s.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var tail []playRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r playRecord
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			continue
		}
		tail = append(tail, r)
		if len(tail) > n {
			tail = tail[1:]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	out := make([]Play, 0, len(tail))
	for i := len(tail) - 1; i >= 0; i-- {
		r := tail[i]
		out = append(out, Play{
			At:      time.UnixMilli(r.At),
			Song:    r.Song,
			Artist:  r.Artist,
			RawMeta: r.RawMeta,
			Current: r.Current,
			Peak:    r.Peak,
		})
	}
	return out, nil
}

func (s *fileStore) AppendSwear(ctx context.Context, r SwearRecord) error {
	_ = ctx
	if r.At.IsZero() {
		r.At = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.swearFile == nil {
		return errors.New("swear file closed")
	}
	return json.NewEncoder(s.swearFile).Encode(swearRecord{
		At:     r.At.UnixMilli(),
		Date:   r.Date,
		Time:   r.Time,
		Song:   r.Song,
		Artist: r.Artist,
		Show:   r.Show,
		Report: r.Report,
	})
}
