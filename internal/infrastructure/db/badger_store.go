package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/damon-houk/currency-widget/internal/domain/repository"
	"github.com/dgraph-io/badger/v3"
)

// BadgerStore implements repository.KeyValueStore on BadgerDB
type BadgerStore struct {
	db     *badger.DB
	prefix string
}

// NewBadgerStore creates a store whose keys are namespaced under "cache:"
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db, prefix: "cache:"}
}

// OpenBadger opens a BadgerDB at path, or an in-memory one when path is empty
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil // Disable Badger's default logger

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return db, nil
}

// Get retrieves the value stored under key
func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(s.prefix + key))
		if err != nil {
			return err
		}

		value, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, repository.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read key %s: %w", key, err)
	}

	return value, nil
}

// Set stores value under key, with a Badger TTL when ttl is positive
func (s *BadgerStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(s.prefix+key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})

	if err != nil {
		return fmt.Errorf("failed to store key %s: %w", key, err)
	}

	return nil
}

// Delete removes key
func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(s.prefix + key))
	})

	if err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}

	return nil
}
