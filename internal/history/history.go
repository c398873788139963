// Package history keeps a ledger of translation outcomes per run.
//
// Each run is a nested BoltDB bucket keyed by a sortable run ID; inside it every
// task is stored under its position in the task list, so reading a run back
// yields tasks in compilation-database order. The ledger is write-only from the
// point of view of a run: it is never consulted to skip a translation.
package history

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

const (
	// DefaultFileName is the history database name inside the error directory
	DefaultFileName = ".history.db"

	// bucketName is the BoltDB bucket holding one sub-bucket per run
	bucketName = "runs"

	runIDLayout = "20060102T150405.000000000Z"
)

// History manages the run ledger using BoltDB
type History struct {
	db   *bbolt.DB
	path string
}

// Open opens (creating if needed) the history database in dir
func Open(dir string) (*History, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create history directory")
	}

	path := filepath.Join(dir, DefaultFileName)
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open history database %q", path)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create history bucket")
	}

	return &History{
		db:   db,
		path: path,
	}, nil
}

// Close closes the history database
func (h *History) Close() error {
	if h.db != nil {
		return h.db.Close()
	}

	return nil
}

// Path returns the database file location
func (h *History) Path() string {
	return h.path
}

// NewRunID returns a run identifier that sorts chronologically
func NewRunID(t time.Time) string {
	return t.UTC().Format(runIDLayout)
}

// RecordRun stores all entries of a run in a single transaction
func (h *History) RecordRun(runID string, entries []Entry) error {
	err := h.db.Update(func(tx *bbolt.Tx) error {
		run, err := tx.Bucket([]byte(bucketName)).CreateBucketIfNotExists([]byte(runID))
		if err != nil {
			return err
		}

		for i, entry := range entries {
			data, err := json.Marshal(entry)
			if err != nil {
				return err
			}

			if err := run.Put(itob(i), data); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "failed to record run %s", runID)
	}

	return nil
}

// Latest returns the most recent run, or an empty ID when nothing was recorded
func (h *History) Latest() (string, []Entry, error) {
	var runID string
	var entries []Entry

	err := h.db.View(func(tx *bbolt.Tx) error {
		k, _ := tx.Bucket([]byte(bucketName)).Cursor().Last()
		if k == nil {
			return nil
		}

		runID = string(k)

		var err error
		entries, err = readRun(tx, k)
		return err
	})
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to read latest run")
	}

	return runID, entries, nil
}

// Run returns the entries recorded for runID
func (h *History) Run(runID string) ([]Entry, error) {
	var entries []Entry

	err := h.db.View(func(tx *bbolt.Tx) error {
		var err error
		entries, err = readRun(tx, []byte(runID))
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read run %s", runID)
	}

	return entries, nil
}

func readRun(tx *bbolt.Tx, runID []byte) ([]Entry, error) {
	run := tx.Bucket([]byte(bucketName)).Bucket(runID)
	if run == nil {
		return nil, errors.Errorf("no such run: %s", runID)
	}

	var entries []Entry
	err := run.ForEach(func(_, v []byte) error {
		var entry Entry
		if err := json.Unmarshal(v, &entry); err != nil {
			return err
		}

		entries = append(entries, entry)
		return nil
	})

	return entries, err
}

// Clear removes all recorded runs
func (h *History) Clear() error {
	return h.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return err
		}

		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
}

// Stats returns the number of recorded runs and task entries
func (h *History) Stats() (int, int, error) {
	var runs, tasks int

	err := h.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEachBucket(func(k []byte) error {
			runs++
			tasks += tx.Bucket([]byte(bucketName)).Bucket(k).Stats().KeyN
			return nil
		})
	})
	if err != nil {
		return 0, 0, err
	}

	return runs, tasks, nil
}

// itob encodes a task position as a big-endian key so cursor order matches task order
func itob(v int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}
