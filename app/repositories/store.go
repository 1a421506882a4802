package repositories

import (
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// runner executes a closure against a badger transaction. The store-level
// runner opens a fresh transaction per call; the tx runner reuses one.
type runner interface {
	view(fn func(txn *badger.Txn) error) error
	update(fn func(txn *badger.Txn) error) error
	valueLimit() int
}

// inMemoryValueHeadroom keeps in-memory values clear of badger's value
// threshold, which also counts the key and entry metadata.
const inMemoryValueHeadroom = 4 << 10

// BadgerStore implements Store on top of a BadgerDB instance.
// Write transactions are serialized so read-modify-write sequences such as
// like increments and sequence allocation never conflict or lose updates.
type BadgerStore struct {
	db       *badger.DB
	mutex    sync.Mutex
	dbPath   string
	isTempDB bool
	// maxValue is the largest value one key may hold; 0 leaves it to badger.
	maxValue int
}

// Options configures OpenBadgerStore.
type Options struct {
	// Path is the data directory. Empty means an in-memory store.
	Path       string
	SyncWrites bool
	Logger     badger.Logger
}

// OpenBadgerStore opens (or creates) the database described by opts.
func OpenBadgerStore(opts Options) (*BadgerStore, error) {
	bopts := badger.DefaultOptions(opts.Path).
		WithLogger(opts.Logger).
		WithSyncWrites(opts.SyncWrites).
		WithNumVersionsToKeep(1)
	if opts.Path == "" {
		bopts = bopts.WithInMemory(true)
	} else if err := os.MkdirAll(opts.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	store := &BadgerStore{db: db, dbPath: opts.Path}
	if opts.Path == "" {
		// in-memory values must stay below the threshold
		store.maxValue = int(bopts.ValueThreshold) - inMemoryValueHeadroom
	}
	return store, nil
}

// OpenTempStore opens a store in a fresh temporary directory that is removed on Close.
func OpenTempStore() (*BadgerStore, error) {
	path, err := os.MkdirTemp("", "quill_test_db_")
	if err != nil {
		return nil, fmt.Errorf("error creating temp dir: %w", err)
	}
	store, err := OpenBadgerStore(Options{Path: path})
	if err != nil {
		os.RemoveAll(path)
		return nil, err
	}
	store.isTempDB = true
	return store, nil
}

// NewBadgerStore wraps an already opened database.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	store := &BadgerStore{db: db}
	if opts := db.Opts(); opts.InMemory {
		store.maxValue = int(opts.ValueThreshold) - inMemoryValueHeadroom
	}
	return store
}

// MaxValueSize is the largest value, in bytes, a single record may hold.
// Zero means only badger's own limits apply.
func (s *BadgerStore) MaxValueSize() int {
	return s.maxValue
}

func (s *BadgerStore) valueLimit() int {
	return s.maxValue
}

// DB exposes the underlying database for maintenance commands.
func (s *BadgerStore) DB() *badger.DB {
	return s.db
}

func (s *BadgerStore) view(fn func(txn *badger.Txn) error) error {
	return s.db.View(fn)
}

func (s *BadgerStore) update(fn func(txn *badger.Txn) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.db.Update(fn)
}

func (s *BadgerStore) Posts() PostRepository {
	return &BadgerPostRepository{run: s}
}

func (s *BadgerStore) Comments() CommentRepository {
	return &BadgerCommentRepository{run: s}
}

func (s *BadgerStore) Tags() TagRepository {
	return &BadgerTagRepository{run: s}
}

// Update runs fn inside one read-write transaction. Nothing fn wrote is
// committed when it returns an error.
func (s *BadgerStore) Update(fn func(tx Tx) error) error {
	return s.update(func(txn *badger.Txn) error {
		return fn(&badgerTx{txn: txn, limit: s.maxValue})
	})
}

// View runs fn against one consistent read-only snapshot.
func (s *BadgerStore) View(fn func(tx Tx) error) error {
	return s.view(func(txn *badger.Txn) error {
		return fn(&badgerTx{txn: txn, limit: s.maxValue})
	})
}

// Ping checks that the database still accepts reads.
func (s *BadgerStore) Ping() error {
	if s.db.IsClosed() {
		return badger.ErrDBClosed
	}
	return s.db.View(func(txn *badger.Txn) error { return nil })
}

// Clear drops every key. Intended for tests and the db clean command.
func (s *BadgerStore) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.db.DropAll()
}

func (s *BadgerStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.db.Close(); err != nil {
		return err
	}

	if s.isTempDB {
		if err := os.RemoveAll(s.dbPath); err != nil {
			return fmt.Errorf("failed to cleanup test database: %w", err)
		}
	}
	return nil
}

// badgerTx binds repositories to a single transaction.
type badgerTx struct {
	txn   *badger.Txn
	limit int
}

func (t *badgerTx) valueLimit() int {
	return t.limit
}

func (t *badgerTx) view(fn func(txn *badger.Txn) error) error {
	return fn(t.txn)
}

func (t *badgerTx) update(fn func(txn *badger.Txn) error) error {
	return fn(t.txn)
}

func (t *badgerTx) Posts() PostRepository {
	return &BadgerPostRepository{run: t}
}

func (t *badgerTx) Comments() CommentRepository {
	return &BadgerCommentRepository{run: t}
}

func (t *badgerTx) Tags() TagRepository {
	return &BadgerTagRepository{run: t}
}
