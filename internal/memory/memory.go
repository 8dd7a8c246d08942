// Package memory records the agent's tool calls per conversation thread.
//
// Records live in a bbolt database. Each Append and List opens the file,
// runs one transaction and closes it again, so a `serve` process and a
// `repl` session can share the same memory file; bbolt's file lock
// serializes them.
package memory

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/paths"
)

// DefaultOpenTimeout bounds how long a call waits for another process
// holding the database.
const DefaultOpenTimeout = 2 * time.Second

var recordsBucket = []byte("records")

// Record is one tool invocation.
type Record struct {
	Thread string          `json:"thread"`
	Tool   string          `json:"tool"`
	Input  json.RawMessage `json:"input,omitempty"`
	Output json.RawMessage `json:"output,omitempty"`
	Error  string          `json:"error,omitempty"`
	At     time.Time       `json:"at"`
}

// Store is an append-only record database.
type Store struct {
	path    string
	timeout time.Duration
	mu      sync.Mutex
}

// New returns a Store backed by the database at path.
func New(path string) *Store {
	return &Store{path: path, timeout: DefaultOpenTimeout}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// NewThread returns a fresh thread identifier.
func NewThread() string {
	return uuid.NewString()
}

// Append writes r after every existing record. A zero At is set to now.
func (s *Store) Append(r Record) error {
	if r.At.IsZero() {
		r.At = time.Now().UTC()
	}
	value, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "encoding memory record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := paths.EnsureDir(filepath.Dir(s.path), 0); err != nil {
		return errors.Wrap(err, "creating memory directory")
	}
	db, err := s.open(false)
	if err != nil {
		return err
	}
	defer db.Close()

	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(recordsBucket)
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(seqKey(seq), value)
	})
	return errors.Wrap(err, "writing memory record")
}

// List returns records in append order. An empty thread matches every
// thread. When limit is positive only the last limit matching records are
// returned. Values that do not decode are skipped.
func (s *Store) List(thread string, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil, nil
	}
	db, err := s.open(true)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var records []Record
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(recordsBucket)
		if b == nil {
			return nil
		}
		// walk backwards so a limit stops the scan early
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var r Record
			if json.Unmarshal(v, &r) != nil {
				continue
			}
			if thread != "" && r.Thread != thread {
				continue
			}
			records = append(records, r)
			if limit > 0 && len(records) == limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "reading memory")
	}
	slices.Reverse(records)
	return records, nil
}

func (s *Store) open(readOnly bool) (*bolt.DB, error) {
	db, err := bolt.Open(s.path, 0o600, &bolt.Options{Timeout: s.timeout, ReadOnly: readOnly})
	if err != nil {
		return nil, errors.Wrapf(err, "opening memory %s", s.path)
	}
	return db, nil
}

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
