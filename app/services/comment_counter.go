package services

import "quill/app/repositories"

// CommentCounter derives comment counts from storage on every call.
type CommentCounter struct {
	store repositories.Store
	tx    repositories.Tx
}

func NewCommentCounter(store repositories.Store) *CommentCounter {
	return &CommentCounter{store: store}
}

func (c *CommentCounter) within(tx repositories.Tx) *CommentCounter {
	return &CommentCounter{store: c.store, tx: tx}
}

// CountFor returns the number of comments on a post, 0 when there are none.
func (c *CommentCounter) CountFor(postID int) (int, error) {
	repo := c.store.Comments()
	if c.tx != nil {
		repo = c.tx.Comments()
	}
	count, err := repo.CountByPost(postID)
	if err != nil {
		return 0, classify("count comments", err)
	}
	return count, nil
}
