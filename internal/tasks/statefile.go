package tasks

import (
	"os"
	"path/filepath"
	"strings"
)

// State file names. Kept on disk rather than in memory so a one-shot `task`
// invocation sees the same state as a long-running scheduler.
const (
	SongStateFile  = ".teq.song"
	LyricStateFile = ".teq.lyric"
)

// StateFile remembers one small string across runs.
type StateFile struct {
	path string
}

func NewStateFile(dir, name string) *StateFile {
	return &StateFile{path: filepath.Join(dir, name)}
}

// Get returns the remembered value, or "" when none has been stored.
func (s *StateFile) Get() string {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// Set stores v atomically.
func (s *StateFile) Set(v string) error {
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(v), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
