package repositories

import (
	"github.com/dgraph-io/badger/v4"
)

// BadgerTagRepository implements TagRepository using BadgerDB.
// Each tag is one key holding its raw text.
type BadgerTagRepository struct {
	run runner
}

// NewBadgerTagRepository creates a tag repository that opens its own transactions.
func NewBadgerTagRepository(store *BadgerStore) *BadgerTagRepository {
	return &BadgerTagRepository{run: store}
}

// Add appends tags to a post, keeping duplicates and input order
func (r *BadgerTagRepository) Add(postID int, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	return r.run.update(func(txn *badger.Txn) error {
		for _, tag := range tags {
			id, err := getNextID(txn, TagSeqKey)
			if err != nil {
				return err
			}
			if err := setValue(txn, tagKey(postID, id), []byte(tag), r.run.valueLimit()); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListByPost returns the tag texts of a post in insertion order
func (r *BadgerTagRepository) ListByPost(postID int) ([]string, error) {
	tags := []string{}
	err := r.run.view(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := tagPrefix(postID)
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			tags = append(tags, string(val))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// DeleteByPost removes all tags of a post; idempotent
func (r *BadgerTagRepository) DeleteByPost(postID int) error {
	return r.run.update(func(txn *badger.Txn) error {
		_, err := deletePrefix(txn, tagPrefix(postID))
		return err
	})
}
