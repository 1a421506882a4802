package repositories

import (
	"errors"

	"quill/app/models"
)

// ErrNotFound reports an absent record. Every other error returned by a
// repository is a storage failure.
var ErrNotFound = errors.New("record not found")

// ErrValueTooLarge reports a record bigger than the store can hold under one key.
var ErrValueTooLarge = errors.New("value too large")

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id int) (*models.Post, error)
	// Search returns every post whose title or body contains term, ignoring case.
	Search(term string) ([]*models.Post, error)
	Update(post *models.Post) error
	Delete(id int) error
	// IncrementLikes adds one to the stored like counter and returns the new value.
	IncrementLikes(id int) (int, error)
	SetImage(id int, data []byte) error
	GetImage(id int) ([]byte, error)
	DeleteImage(id int) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error
	Get(postID, id int) (*models.Comment, error)
	ListByPost(postID int) ([]*models.Comment, error)
	CountByPost(postID int) (int, error)
	Update(comment *models.Comment) error
	Delete(postID, id int) error
	DeleteByPost(postID int) error
}

// TagRepository defines the interface for tag data access
type TagRepository interface {
	Add(postID int, tags []string) error
	ListByPost(postID int) ([]string, error)
	DeleteByPost(postID int) error
}

// Tx exposes the repositories bound to one storage transaction.
type Tx interface {
	Posts() PostRepository
	Comments() CommentRepository
	Tags() TagRepository
}

// Store is the storage port. Its own repositories run every call in a
// separate transaction; Update and View group several calls into one.
// fn must only use the Tx it is given.
type Store interface {
	Tx
	Update(fn func(tx Tx) error) error
	View(fn func(tx Tx) error) error
	Ping() error
	Close() error
}
