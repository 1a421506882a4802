package models

import (
	"strings"
	"time"
)

// Normalize trims the title and every tag. The body is kept verbatim.
func (in *PostInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	if len(in.Tags) == 0 {
		in.Tags = nil
		return
	}
	tags := make([]string, len(in.Tags))
	for i, tag := range in.Tags {
		tags[i] = strings.TrimSpace(tag)
	}
	in.Tags = tags
}

// Validate checks the input against the post field rules.
func (in *PostInput) Validate() error {
	return validate.Struct(in)
}

// BeforeCreate sets up timestamps and counters for a new post
func (p *Post) BeforeCreate() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = p.CreatedAt
	p.LikeCount = 0
}

// Touch advances UpdatedAt to now, never moving it backwards.
func (p *Post) Touch() {
	now := time.Now()
	if now.Before(p.CreatedAt) {
		now = p.CreatedAt
	}
	if now.After(p.UpdatedAt) {
		p.UpdatedAt = now
	}
}

// Matches reports whether term occurs in the title or body, ignoring case.
// An empty term matches every post.
func (p *Post) Matches(term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Body), term)
}
