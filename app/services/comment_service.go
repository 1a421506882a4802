package services

import (
	"errors"

	"quill/app/logger"
	"quill/app/models"
	"quill/app/repositories"
)

// CommentService handles business logic for comments. Every comment is
// addressed through the post that owns it.
type CommentService struct {
	store repositories.Store
}

// NewCommentService creates a new CommentService
func NewCommentService(store repositories.Store) *CommentService {
	return &CommentService{store: store}
}

// ListComments returns the comments of a post in creation order.
func (s *CommentService) ListComments(postID int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := s.store.View(func(tx repositories.Tx) error {
		// Verify post exists
		if err := postExists(tx, postID); err != nil {
			return err
		}
		var err error
		comments, err = tx.Comments().ListByPost(postID)
		return err
	})
	if err != nil {
		return nil, classify("list comments", err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}

// GetComment returns a comment of a post. found is false when either the
// post or the comment does not exist.
func (s *CommentService) GetComment(postID, commentID int) (*models.Comment, bool, error) {
	comment, err := s.store.Comments().Get(postID, commentID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, classify("get comment", err)
	}
	return comment, true, nil
}

// CreateComment validates the input and adds a comment to an existing post.
func (s *CommentService) CreateComment(postID int, text, author string) (*models.Comment, error) {
	// Validate comment
	input := models.CommentInput{Text: text, Author: author}
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, validationError(err)
	}

	comment := &models.Comment{PostID: postID, Text: input.Text, Author: input.Author}
	comment.BeforeCreate()

	err := s.store.Update(func(tx repositories.Tx) error {
		if err := postExists(tx, postID); err != nil {
			return err
		}
		return tx.Comments().Create(comment)
	})
	if err != nil {
		return nil, classify("create comment", err)
	}

	logger.Log.Infof("Created comment %d on post %d", comment.ID, postID)
	return comment, nil
}

// UpdateComment rewrites the text of a comment. An empty author keeps
// the current one.
func (s *CommentService) UpdateComment(postID, commentID int, text, author string) (*models.Comment, error) {
	// Validate comment
	input := models.CommentInput{Text: text, Author: author}
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, validationError(err)
	}

	var comment *models.Comment
	err := s.store.Update(func(tx repositories.Tx) error {
		// Verify comment exists and belongs to the post
		existing, err := tx.Comments().Get(postID, commentID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return notFound("comment", commentID)
			}
			return err
		}

		existing.Text = input.Text
		if input.Author != "" {
			existing.Author = input.Author
		}
		existing.Touch()
		comment = existing
		return tx.Comments().Update(existing)
	})
	if err != nil {
		return nil, classify("update comment", err)
	}

	logger.Log.Infof("Updated comment %d on post %d", commentID, postID)
	return comment, nil
}

// DeleteComment removes a single comment from a post.
func (s *CommentService) DeleteComment(postID, commentID int) error {
	err := s.store.Comments().Delete(postID, commentID)
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound("comment", commentID)
	}
	if err != nil {
		return classify("delete comment", err)
	}
	logger.Log.Infof("Deleted comment %d from post %d", commentID, postID)
	return nil
}

func postExists(tx repositories.Tx, postID int) error {
	if _, err := tx.Posts().GetByID(postID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("post", postID)
		}
		return err
	}
	return nil
}
