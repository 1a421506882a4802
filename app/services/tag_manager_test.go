package services

import (
	"sync"
	"testing"

	"quill/app/repositories/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagManager(t *testing.T) {
	store := setupBadger(t)
	posts := NewPostService(store)
	manager := NewTagManager(store)

	created, err := posts.CreatePost("Tagged", "Body", []string{"one", "two"})
	require.NoError(t, err)

	t.Run("tags come back in insertion order", func(t *testing.T) {
		tags, err := manager.TagsFor(created.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"one", "two"}, tags)
	})

	t.Run("replace overwrites the whole set", func(t *testing.T) {
		require.NoError(t, manager.Replace(created.ID, []string{"three", "three", "four"}))
		tags, err := manager.TagsFor(created.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"three", "three", "four"}, tags)
	})

	t.Run("replace on missing post", func(t *testing.T) {
		assert.ErrorIs(t, manager.Replace(created.ID+50, []string{"x"}), ErrNotFound)
		tags, err := manager.TagsFor(created.ID + 50)
		require.NoError(t, err)
		assert.Empty(t, tags)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, manager.DeleteFor(created.ID))
		require.NoError(t, manager.DeleteFor(created.ID))
		tags, err := manager.TagsFor(created.ID)
		require.NoError(t, err)
		assert.NotNil(t, tags)
		assert.Empty(t, tags)
	})
}

func TestTagManager_ReadersSeeWholeSets(t *testing.T) {
	store := setupBadger(t)
	posts := NewPostService(store)
	manager := NewTagManager(store)

	setA := []string{"a1", "a2", "a3"}
	setB := []string{"b1", "b2", "b3", "b4"}
	created, err := posts.CreatePost("Flip", "Body", setA)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			next := setA
			if i%2 == 0 {
				next = setB
			}
			assert.NoError(t, manager.Replace(created.ID, next))
		}
	}()

	for i := 0; i < 200; i++ {
		detail, found, err := posts.GetPost(created.ID)
		require.NoError(t, err)
		require.True(t, found)
		if len(detail.Tags) == len(setA) {
			assert.Equal(t, setA, detail.Tags)
		} else {
			assert.Equal(t, setB, detail.Tags)
		}
	}
	wg.Wait()
}

func TestTagManager_ReplaceRollsBack(t *testing.T) {
	store := mock.NewStore()
	posts := NewPostService(store)
	manager := NewTagManager(store)

	created, err := posts.CreatePost("Tagged", "Body", []string{"keep"})
	require.NoError(t, err)

	store.FailOn("tags.add", errDisk)
	assert.ErrorIs(t, manager.Replace(created.ID, []string{"lost"}), ErrStorage)
	store.FailOn("tags.add", nil)

	tags, err := manager.TagsFor(created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, tags)
}

func TestCommentCounter(t *testing.T) {
	store := mock.NewStore()
	posts := NewPostService(store)
	comments := NewCommentService(store)
	counter := NewCommentCounter(store)

	created, err := posts.CreatePost("Counted", "Body", nil)
	require.NoError(t, err)

	count, err := counter.CountFor(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	first, err := comments.CreateComment(created.ID, "one", "")
	require.NoError(t, err)
	_, err = comments.CreateComment(created.ID, "two", "")
	require.NoError(t, err)

	count, err = counter.CountFor(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, comments.DeleteComment(created.ID, first.ID))
	count, err = counter.CountFor(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	store.FailOn("comments.count", errDisk)
	_, err = counter.CountFor(created.ID)
	assert.ErrorIs(t, err, ErrStorage)
}
