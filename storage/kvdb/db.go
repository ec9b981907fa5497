// Package kvdb is the file-backed key-value store shared by every process of
// the same installation. Each key holds one whole collection as a JSON
// document; writes replace the document atomically (temp file + rename) and
// other processes are notified through filesystem events.
//
// Consistency model: last-write-wins at the granularity of a whole
// collection. Update re-reads the latest persisted value before applying a
// mutation so updates compose on top of the most recent write, and an
// external change replaces the cached value wholesale. Concurrent edits to
// different records of the same collection from two processes can still
// clobber each other between the read and the notification; true multi-writer
// merging is out of scope.
package kvdb

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/girgism/khedma/core"
)

type DB struct {
	dir string

	mu    sync.Mutex        // serializes read-modify-write cycles
	cache map[string][]byte // latest known bytes per key, ours or external

	wmu      sync.RWMutex
	watchers map[string][]func()

	watcher *fsnotify.Watcher
	rev     uint64
	done    chan struct{}
}

var _ core.KeyValueStore = (*DB)(nil)

func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	db := &DB{
		dir:      dir,
		cache:    make(map[string][]byte),
		watchers: make(map[string][]func()),
		watcher:  watcher,
		done:     make(chan struct{}),
	}
	go db.loop()
	return db, nil
}

func (db *DB) path(key string) string {
	return filepath.Join(db.dir, key+".json")
}

// Load decodes the document stored under key into v; a missing key leaves v
// untouched so the caller-provided value acts as the default.
func (db *DB) Load(key string, v interface{}) error {
	data, err := ioutil.ReadFile(db.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return core.NewStorageError(key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return core.NewStorageError(key, err)
	}
	return nil
}

func (db *DB) Save(key string, v interface{}) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.save(key, v)
}

// save writes the document atomically and records the written bytes so the
// resulting filesystem event can be told apart from an external write.
// Callers hold db.mu.
func (db *DB) save(key string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return core.NewStorageError(key, err)
	}

	path := db.path(key)
	tmp := path + ".tmp"
	if err := ioutil.WriteFile(tmp, data, 0o644); err != nil {
		return core.NewStorageError(key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return core.NewStorageError(key, err)
	}

	db.cache[key] = data
	atomic.AddUint64(&db.rev, 1)
	return nil
}

// Update re-reads the latest persisted value under key into v, applies the
// mutation, then persists. The re-read composes the mutation on top of the
// most recent write from any process instead of an in-memory snapshot. An
// apply error aborts the cycle with nothing written.
func (db *DB) Update(key string, v interface{}, apply func() error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	data, err := ioutil.ReadFile(db.path(key))
	switch {
	case os.IsNotExist(err):
		// no document yet, compose on the caller's default
	case err != nil:
		return core.NewStorageError(key, err)
	default:
		if err := json.Unmarshal(data, v); err != nil {
			return core.NewStorageError(key, err)
		}
	}

	if err := apply(); err != nil {
		return err
	}
	return db.save(key, v)
}

// Watch registers fn to run whenever another process writes key. Own writes
// do not fire.
func (db *DB) Watch(key string, fn func()) {
	db.wmu.Lock()
	db.watchers[key] = append(db.watchers[key], fn)
	db.wmu.Unlock()
}

// Revision increments on every write, own or external. Snapshots read at the
// same revision are identical, which is what projection memoization keys on.
func (db *DB) Revision() uint64 {
	return atomic.LoadUint64(&db.rev)
}

func (db *DB) Close() error {
	close(db.done)
	return db.watcher.Close()
}

func (db *DB) loop() {
	for {
		select {
		case <-db.done:
			return
		case ev, ok := <-db.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if !strings.HasSuffix(name, ".json") {
				continue
			}
			db.notifyIfExternal(strings.TrimSuffix(name, ".json"))
		case _, ok := <-db.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// notifyIfExternal replaces the cached value wholesale and fires watchers
// when the on-disk document no longer matches what this process last wrote.
func (db *DB) notifyIfExternal(key string) {
	db.mu.Lock()
	data, err := ioutil.ReadFile(db.path(key))
	if err != nil {
		db.mu.Unlock()
		return
	}
	if bytes.Equal(data, db.cache[key]) {
		db.mu.Unlock()
		return // our own write echoing back
	}
	db.cache[key] = data
	atomic.AddUint64(&db.rev, 1)
	db.mu.Unlock()

	db.wmu.RLock()
	fns := append([]func(){}, db.watchers[key]...)
	db.wmu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}
