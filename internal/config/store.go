// Package config is the persistence collaborator: it loads and saves the
// action set and jiggler stats, and watches for external edits. The core
// only ever sees definitions this package has already validated.
package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Ardjun6/DeskPilot/internal/action"
	"github.com/Ardjun6/DeskPilot/internal/jiggler"
)

const (
	actionsFile = "actions.json"
	statsFile   = "jiggle_stats.json"
)

// actionsDoc is the on-disk shape of the action set.
type actionsDoc struct {
	ConfigVersion int                 `json:"config_version"`
	Actions       []action.Definition `json:"actions"`
}

// Store reads and writes configuration under one directory.
type Store struct {
	dir string
	log *zap.SugaredLogger
}

// NewStore builds a store rooted at dir.
func NewStore(dir string, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{dir: dir, log: log}
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

// LoadActions reads and validates the action set. A missing file yields an
// empty set; malformed content or violated invariants are rejected here so
// the core never sees them.
func (s *Store) LoadActions() ([]action.Definition, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, actionsFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read actions file")
	}

	var doc actionsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parse actions file")
	}
	if err := action.ValidateSet(doc.Actions); err != nil {
		return nil, errors.Wrap(err, "invalid actions file")
	}
	return doc.Actions, nil
}

// SaveActions validates and writes the action set atomically.
func (s *Store) SaveActions(defs []action.Definition) error {
	if err := action.ValidateSet(defs); err != nil {
		return err
	}
	doc := actionsDoc{ConfigVersion: 1, Actions: defs}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode actions")
	}
	return s.writeFile(actionsFile, data)
}

// LoadStats reads accumulated jiggler stats; a missing file yields zeros.
func (s *Store) LoadStats() (jiggler.Stats, error) {
	var st jiggler.Stats
	data, err := os.ReadFile(filepath.Join(s.dir, statsFile))
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, errors.Wrap(err, "read stats file")
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, errors.Wrap(err, "parse stats file")
	}
	return st, nil
}

// SaveStats persists accumulated jiggler stats.
func (s *Store) SaveStats(st jiggler.Stats) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode stats")
	}
	return s.writeFile(statsFile, data)
}

// writeFile writes via a temp file and rename so a crash never leaves a
// half-written config behind.
func (s *Store) writeFile(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(err, "create config dir")
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write config")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "replace config")
	}
	return nil
}

// Watch invokes onChange whenever the actions file is modified externally,
// debounced so editors that write in bursts trigger one reload. It returns
// after starting the watcher goroutine.
func (s *Store) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		watcher.Close()
		return errors.Wrap(err, "create config dir")
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return errors.Wrap(err, "watch config dir")
	}

	go func() {
		defer watcher.Close()
		var pending *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != actionsFile {
					continue
				}
				if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
					continue
				}
				if pending != nil {
					pending.Stop()
				}
				pending = time.AfterFunc(200*time.Millisecond, onChange)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warnw("config watcher error", "error", err)
			}
		}
	}()
	return nil
}
