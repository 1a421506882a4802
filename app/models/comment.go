package models

import (
	"strings"
	"time"
)

// DefaultAuthor labels comments created without an author.
const DefaultAuthor = "Anonymous"

// Normalize trims the author label.
func (in *CommentInput) Normalize() {
	in.Author = strings.TrimSpace(in.Author)
}

// Validate checks the input against the comment field rules.
func (in *CommentInput) Validate() error {
	return validate.Struct(in)
}

// BeforeCreate sets up any necessary fields before creation
func (c *Comment) BeforeCreate() {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = c.CreatedAt
	if c.Author == "" {
		c.Author = DefaultAuthor
	}
}

// Touch advances UpdatedAt to now, never moving it backwards.
func (c *Comment) Touch() {
	if now := time.Now(); now.After(c.UpdatedAt) {
		c.UpdatedAt = now
	}
}
