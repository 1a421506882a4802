package repositories

import (
	"fmt"

	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	run runner
}

// NewBadgerPostRepository creates a post repository that opens its own transactions.
func NewBadgerPostRepository(store *BadgerStore) *BadgerPostRepository {
	return &BadgerPostRepository{run: store}
}

// Create assigns the next id and saves a new post
func (r *BadgerPostRepository) Create(post *models.Post) error {
	return r.run.update(func(txn *badger.Txn) error {
		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id

		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		return setValue(txn, postKey(post.ID), data, r.run.valueLimit())
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id int) (*models.Post, error) {
	var post models.Post
	err := r.run.view(func(txn *badger.Txn) error {
		return getEntity(txn, postKey(id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Search scans all posts and keeps those matching term
func (r *BadgerPostRepository) Search(term string) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.run.view(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(PostKeyPrefix)
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var post models.Post
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal post: %w", err)
			}
			if post.Matches(term) {
				posts = append(posts, &post)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Update overwrites an existing post
func (r *BadgerPostRepository) Update(post *models.Post) error {
	return r.run.update(func(txn *badger.Txn) error {
		key := postKey(post.ID)
		ok, err := exists(txn, key)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}

		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		return setValue(txn, key, data, r.run.valueLimit())
	})
}

// Delete removes a post record and its image
func (r *BadgerPostRepository) Delete(id int) error {
	return r.run.update(func(txn *badger.Txn) error {
		key := postKey(id)
		ok, err := exists(txn, key)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		if err := txn.Delete(imageKey(id)); err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// IncrementLikes reads and rewrites the counter inside one write transaction
func (r *BadgerPostRepository) IncrementLikes(id int) (int, error) {
	var likes int
	err := r.run.update(func(txn *badger.Txn) error {
		var post models.Post
		if err := getEntity(txn, postKey(id), &post); err != nil {
			return err
		}
		post.LikeCount++
		post.Touch()

		data, err := marshalEntity(&post)
		if err != nil {
			return err
		}
		if err := setValue(txn, postKey(id), data, r.run.valueLimit()); err != nil {
			return err
		}
		likes = post.LikeCount
		return nil
	})
	if err != nil {
		return 0, err
	}
	return likes, nil
}

// SetImage stores raw image bytes for an existing post
func (r *BadgerPostRepository) SetImage(id int, data []byte) error {
	return r.run.update(func(txn *badger.Txn) error {
		var post models.Post
		if err := getEntity(txn, postKey(id), &post); err != nil {
			return err
		}
		post.Touch()
		encoded, err := marshalEntity(&post)
		if err != nil {
			return err
		}
		if err := setValue(txn, postKey(id), encoded, r.run.valueLimit()); err != nil {
			return err
		}
		return setValue(txn, imageKey(id), data, r.run.valueLimit())
	})
}

// GetImage returns a copy of the stored image bytes
func (r *BadgerPostRepository) GetImage(id int) ([]byte, error) {
	var data []byte
	err := r.run.view(func(txn *badger.Txn) error {
		item, err := txn.Get(imageKey(id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// DeleteImage removes the image of a post. Missing images are ignored.
func (r *BadgerPostRepository) DeleteImage(id int) error {
	return r.run.update(func(txn *badger.Txn) error {
		return txn.Delete(imageKey(id))
	})
}
