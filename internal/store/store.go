package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Store is the Badger-backed NodeStore.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// New opens (or creates) a Badger database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Badger's internal logging is too chatty for a CLI
	opts.SyncWrites = true       // Repair runs must survive a crash half way through
	opts.CompactL0OnClose = true // Faster startup next time

	return open(opts, logger)
}

// NewInMemory opens a throwaway in-memory database, used by tests.
func NewInMemory(logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts, logger)
}

func open(opts badger.Options, logger *slog.Logger) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("badger database opened", "path", opts.Dir, "in_memory", opts.InMemory)

	return &Store{db: db, logger: logger}, nil
}

// Close gracefully closes the database.
func (s *Store) Close() error {
	s.logger.Debug("closing badger database")
	return s.db.Close()
}

// getJSON reads and decodes one value inside a transaction.
func getJSON(txn *badger.Txn, key []byte, dest any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
}

// deleteIfPresent deletes a key, treating a missing key as success.
func deleteIfPresent(txn *badger.Txn, key []byte) error {
	if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}
	return nil
}

// scanSuffixes returns the key remainders after prefix, without loading values.
func (s *Store) scanSuffixes(prefix []byte) ([]string, error) {
	var suffixes []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			suffixes = append(suffixes, string(key[len(prefix):]))
		}
		return nil
	})
	return suffixes, err
}
