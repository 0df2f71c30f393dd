// Package store persists HodlRecords to a single well-known JSON file,
// grounded on chantools' dataformat package habit of
// marshal/unmarshal-to-disk with a temp-file-then-rename write, generalized
// from chantools' channel-backup file format to a flat payment-hash-keyed
// map.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/lightninglabs/thunderswap/swap"
)

// DefaultFileName is the file name used under the home directory when the
// caller doesn't override the path.
const DefaultFileName = ".thunder-swap/hodl_store.json"

// Store is a file-backed, payment-hash-keyed table of HodlRecords. One
// process should own one Store; concurrent access within a process is
// guarded by a mutex, and every write is atomic (write-temp + rename).
type Store struct {
	path string
	mu   sync.Mutex
}

// DefaultPath returns ~/.thunder-swap/hodl_store.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", swap.Wrap(swap.KindInternalError, err,
			"resolving home directory")
	}
	return filepath.Join(home, DefaultFileName), nil
}

// Open returns a Store backed by the given file path, creating its parent
// directory if necessary. The file itself is created lazily on first
// write.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, swap.Wrap(swap.KindInternalError, err,
			"creating store directory %s", dir)
	}
	return &Store{path: path}, nil
}

func (s *Store) readAll() (map[string]swap.HodlRecord, error) {
	records := make(map[string]swap.HodlRecord)

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return records, nil
	}
	if err != nil {
		return nil, swap.Wrap(swap.KindInternalError, err,
			"reading hodl store %s", s.path)
	}
	if len(raw) == 0 {
		return records, nil
	}

	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, swap.Wrap(swap.KindInternalError, err,
			"decoding hodl store %s", s.path)
	}
	return records, nil
}

func (s *Store) writeAll(records map[string]swap.HodlRecord) error {
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return swap.Wrap(swap.KindInternalError, err,
			"encoding hodl store")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return swap.Wrap(swap.KindInternalError, err,
			"writing temp hodl store %s", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return swap.Wrap(swap.KindInternalError, err,
			"renaming temp hodl store into place")
	}
	return nil
}

// Put appends or replaces the record for its payment hash, atomically.
func (s *Store) Put(record swap.HodlRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return err
	}
	records[record.PaymentHash] = record
	return s.writeAll(records)
}

// Get fetches the record for a payment hash, or swap.KindInvalidInput if
// none exists.
func (s *Store) Get(paymentHash string) (*swap.HodlRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return nil, err
	}

	record, ok := records[paymentHash]
	if !ok {
		return nil, swap.New(swap.KindInvalidInput,
			"no hodl record for payment hash %s", paymentHash)
	}
	return &record, nil
}
