package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// notblank rejects strings made only of whitespace
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Post represents a persisted blog post. The image payload is stored
// separately and never travels with the post record.
type Post struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	LikeCount int       `json:"likeCount"`
	AuthorID  int       `json:"authorId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment represents a comment on a blog post.
type Comment struct {
	ID        int       `json:"id"`
	PostID    int       `json:"postId"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tag is a single free-form label attached to a post.
type Tag struct {
	ID     int    `json:"id"`
	PostID int    `json:"postId"`
	Text   string `json:"text"`
}

// PostInput carries caller-supplied post fields for create and update.
type PostInput struct {
	Title string   `validate:"notblank,max=200"`
	Body  string   `validate:"notblank"`
	Tags  []string `validate:"omitempty,dive,notblank,max=50"`
}

// CommentInput carries caller-supplied comment fields.
type CommentInput struct {
	Text   string `validate:"notblank,max=1000"`
	Author string `validate:"max=100"`
}
