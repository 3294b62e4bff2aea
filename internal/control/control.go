// Package control implements the cross-process control protocol: a small
// status file that a running scheduler maintains and that `teqbot kill`
// flips to request a stop. The file doubles as the stream-down latch used by
// the status task, so an operator (or another process) can always read the
// bot's state from disk.
package control

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	logx "github.com/kteq-fm/teqbot/pkg/logx"
)

// FileName is the status file kept inside the song-log exchange directory.
const FileName = ".teq.stat"

// State is the scheduler's externally visible state.
type State string

const (
	StateRunning    State = "running"
	StateStreamDown State = "stream down"
	StateDone       State = "done" // stop requested; the loop exits and clears the file
)

// File reads and writes the status file. All methods tolerate a missing
// file: a bot that is not running has no status file.
type File struct {
	path string
	log  logx.Logger
}

func NewFile(dir string, log logx.Logger) *File {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &File{path: filepath.Join(dir, FileName), log: log}
}

func (f *File) Path() string { return f.path }

// Set writes the state atomically (write temp, rename) so a concurrent
// reader never observes a partial write.
func (f *File) Set(st State) error {
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(st), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// Get returns the current state. ok is false when no status file exists.
func (f *File) Get() (st State, ok bool, err error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return State(strings.TrimSpace(string(b))), true, nil
}

// Is reports whether the current state equals st. Read errors count as a
// non-match; the per-tick poll will see the state eventually.
func (f *File) Is(st State) bool {
	cur, ok, err := f.Get()
	return err == nil && ok && cur == st
}

// Clear removes the status file. Missing file is not an error.
func (f *File) Clear() error {
	err := os.Remove(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Watch blocks until the status file reads "done" or ctx is canceled, then
// calls onDone (nil-safe). It watches the directory with fsnotify for prompt
// wakeup and falls back to a coarse poll when the watcher cannot be
// established, so a kill is never missed.
func (f *File) Watch(ctx context.Context, onDone func()) {
	defer func() {
		if onDone != nil && ctx.Err() == nil {
			onDone()
		}
	}()

	if f.Is(StateDone) {
		return
	}

	dir := filepath.Dir(f.path)
	base := filepath.Base(f.path)

	const pollEvery = 5 * time.Second

	for {
		if ctx.Err() != nil {
			return
		}

		w, err := fsnotify.NewWatcher()
		if err == nil {
			err = w.Add(dir)
			if err != nil {
				_ = w.Close()
			}
		}
		if err != nil {
			f.log.Warn("control watch unavailable, polling", logx.Err(err), logx.String("dir", dir))
			select {
			case <-ctx.Done():
				return
			case <-time.After(pollEvery):
			}
			if f.Is(StateDone) {
				return
			}
			continue
		}

		f.log.Debug("control watcher started", logx.String("path", f.path))
		broken := false
		for !broken {
			select {
			case <-ctx.Done():
				_ = w.Close()
				return
			case ev, ok := <-w.Events:
				if !ok {
					broken = true
					break
				}
				if strings.EqualFold(filepath.Base(ev.Name), base) && f.Is(StateDone) {
					_ = w.Close()
					return
				}
			case werr, ok := <-w.Errors:
				if !ok {
					broken = true
					break
				}
				if werr != nil {
					f.log.Warn("control watch error", logx.Err(werr))
				}
			case <-time.After(pollEvery):
				// Poll as a backstop; fsnotify can drop events on some platforms.
				if f.Is(StateDone) {
					_ = w.Close()
					return
				}
			}
		}
		_ = w.Close()
	}
}
