package repositories

import (
	"fmt"

	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB
type BadgerCommentRepository struct {
	run runner
}

// NewBadgerCommentRepository creates a comment repository that opens its own transactions.
func NewBadgerCommentRepository(store *BadgerStore) *BadgerCommentRepository {
	return &BadgerCommentRepository{run: store}
}

// Create creates a new comment
func (r *BadgerCommentRepository) Create(comment *models.Comment) error {
	return r.run.update(func(txn *badger.Txn) error {
		id, err := getNextID(txn, CommentSeqKey)
		if err != nil {
			return err
		}
		comment.ID = id

		data, err := marshalEntity(comment)
		if err != nil {
			return err
		}
		// Save comment with post ID in key for efficient listing
		return setValue(txn, commentKey(comment.PostID, comment.ID), data, r.run.valueLimit())
	})
}

// Get retrieves a comment of a given post
func (r *BadgerCommentRepository) Get(postID, id int) (*models.Comment, error) {
	var comment models.Comment
	err := r.run.view(func(txn *badger.Txn) error {
		return getEntity(txn, commentKey(postID, id), &comment)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost retrieves all comments for a post in id order
func (r *BadgerCommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.run.view(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := commentPrefix(postID)
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var comment models.Comment
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &comment)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal comment: %w", err)
			}
			comments = append(comments, &comment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CountByPost counts comment keys of a post without decoding them
func (r *BadgerCommentRepository) CountByPost(postID int) (int, error) {
	var count int
	err := r.run.view(func(txn *badger.Txn) error {
		count = countPrefix(txn, commentPrefix(postID))
		return nil
	})
	return count, err
}

// Update updates an existing comment in place
func (r *BadgerCommentRepository) Update(comment *models.Comment) error {
	return r.run.update(func(txn *badger.Txn) error {
		key := commentKey(comment.PostID, comment.ID)
		ok, err := exists(txn, key)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}

		data, err := marshalEntity(comment)
		if err != nil {
			return err
		}
		return setValue(txn, key, data, r.run.valueLimit())
	})
}

// Delete deletes a comment by post and comment ID
func (r *BadgerCommentRepository) Delete(postID, id int) error {
	return r.run.update(func(txn *badger.Txn) error {
		key := commentKey(postID, id)
		ok, err := exists(txn, key)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		return txn.Delete(key)
	})
}

// DeleteByPost removes every comment of a post. It is a no-op when there are none.
func (r *BadgerCommentRepository) DeleteByPost(postID int) error {
	return r.run.update(func(txn *badger.Txn) error {
		_, err := deletePrefix(txn, commentPrefix(postID))
		return err
	})
}
