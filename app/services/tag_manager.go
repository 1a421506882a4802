package services

import (
	"quill/app/logger"
	"quill/app/repositories"
)

// TagManager keeps the tag set of a post in step with the post.
// A manager bound to a transaction with within runs every call inside it.
type TagManager struct {
	store repositories.Store
	tx    repositories.Tx
}

// NewTagManager creates a new TagManager
func NewTagManager(store repositories.Store) *TagManager {
	return &TagManager{store: store}
}

func (m *TagManager) within(tx repositories.Tx) *TagManager {
	return &TagManager{store: m.store, tx: tx}
}

func (m *TagManager) repo() repositories.TagRepository {
	if m.tx != nil {
		return m.tx.Tags()
	}
	return m.store.Tags()
}

// Replace swaps the whole tag set of a post for tags inside one transaction,
// so readers see either the old or the new set. Duplicates are kept.
func (m *TagManager) Replace(postID int, tags []string) error {
	if m.tx != nil {
		return m.replace(m.tx, postID, tags)
	}
	err := m.store.Update(func(tx repositories.Tx) error {
		if _, err := tx.Posts().GetByID(postID); err != nil {
			return err
		}
		return m.replace(tx, postID, tags)
	})
	if err != nil {
		return classify("replace tags", err)
	}
	logger.Log.Debugf("Replaced tags of post %d with %d tags", postID, len(tags))
	return nil
}

func (m *TagManager) replace(tx repositories.Tx, postID int, tags []string) error {
	repo := tx.Tags()
	if err := repo.DeleteByPost(postID); err != nil {
		return err
	}
	return repo.Add(postID, tags)
}

// TagsFor returns the tags of a post in insertion order, never nil.
func (m *TagManager) TagsFor(postID int) ([]string, error) {
	tags, err := m.repo().ListByPost(postID)
	if err != nil {
		return nil, classify("list tags", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// DeleteFor removes all tags of a post. Deleting from a post without tags is a no-op.
func (m *TagManager) DeleteFor(postID int) error {
	return classify("delete tags", m.repo().DeleteByPost(postID))
}
