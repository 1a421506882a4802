package mock

import (
	"sort"
	"sync"

	"quill/app/models"
	"quill/app/repositories"
)

// Store is an in-memory repositories.Store. Update runs against a copy of
// the data and only publishes it when fn succeeds, mirroring a transaction.
type Store struct {
	mutex    sync.RWMutex
	data     *dataset
	failures map[string]error
}

type tagRow struct {
	id   int
	text string
}

type dataset struct {
	posts     map[int]models.Post
	comments  map[int]models.Comment
	tags      map[int][]tagRow
	images    map[int][]byte
	postSeq   int
	commentID int
	tagSeq    int
}

func newDataset() *dataset {
	return &dataset{
		posts:    make(map[int]models.Post),
		comments: make(map[int]models.Comment),
		tags:     make(map[int][]tagRow),
		images:   make(map[int][]byte),
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.posts {
		c.posts[k] = v
	}
	for k, v := range d.comments {
		c.comments[k] = v
	}
	for k, v := range d.tags {
		c.tags[k] = append([]tagRow(nil), v...)
	}
	for k, v := range d.images {
		c.images[k] = v
	}
	c.postSeq, c.commentID, c.tagSeq = d.postSeq, d.commentID, d.tagSeq
	return c
}

func NewStore() *Store {
	return &Store{
		data:     newDataset(),
		failures: make(map[string]error),
	}
}

// FailOn makes every call of op (for example "tags.add") return err.
// A nil err clears the failure.
func (s *Store) FailOn(op string, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.data = newDataset()
}

func (s *Store) Update(fn func(tx repositories.Tx) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	work := s.data.clone()
	if err := fn(&tx{store: s, data: work}); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (s *Store) View(fn func(tx repositories.Tx) error) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return fn(&tx{store: s, data: s.data, readOnly: true})
}

func (s *Store) Ping() error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.failures["ping"]
}

func (s *Store) Close() error { return nil }

func (s *Store) Posts() repositories.PostRepository {
	return &PostRepository{auto: s}
}

func (s *Store) Comments() repositories.CommentRepository {
	return &CommentRepository{auto: s}
}

func (s *Store) Tags() repositories.TagRepository {
	return &TagRepository{auto: s}
}

// run executes one repository call in its own transaction.
func (s *Store) run(write bool, fn func(tx *tx) error) error {
	if write {
		return s.Update(func(t repositories.Tx) error { return fn(t.(*tx)) })
	}
	return s.View(func(t repositories.Tx) error { return fn(t.(*tx)) })
}

type tx struct {
	store    *Store
	data     *dataset
	readOnly bool
}

func (t *tx) fail(op string) error {
	return t.store.failures[op]
}

func (t *tx) Posts() repositories.PostRepository       { return &PostRepository{tx: t} }
func (t *tx) Comments() repositories.CommentRepository { return &CommentRepository{tx: t} }
func (t *tx) Tags() repositories.TagRepository         { return &TagRepository{tx: t} }

// binding resolves a repository call either to its transaction or to a
// fresh one on the owning store.
type binding struct {
	tx   *tx
	auto *Store
}

func (b binding) do(write bool, fn func(t *tx) error) error {
	if b.tx != nil {
		if write && b.tx.readOnly {
			return errReadOnly
		}
		return fn(b.tx)
	}
	return b.auto.run(write, fn)
}

type mockError string

func (e mockError) Error() string { return string(e) }

const errReadOnly = mockError("write in read-only transaction")

// PostRepository implementation
type PostRepository struct {
	tx   *tx
	auto *Store
}

func (m *PostRepository) bind() binding { return binding{tx: m.tx, auto: m.auto} }

func (m *PostRepository) Create(post *models.Post) error {
	return m.bind().do(true, func(t *tx) error {
		if err := t.fail("posts.create"); err != nil {
			return err
		}
		t.data.postSeq++
		post.ID = t.data.postSeq
		t.data.posts[post.ID] = *post
		return nil
	})
}

func (m *PostRepository) GetByID(id int) (*models.Post, error) {
	var out *models.Post
	err := m.bind().do(false, func(t *tx) error {
		if err := t.fail("posts.get"); err != nil {
			return err
		}
		post, exists := t.data.posts[id]
		if !exists {
			return repositories.ErrNotFound
		}
		out = &post
		return nil
	})
	return out, err
}

func (m *PostRepository) Search(term string) ([]*models.Post, error) {
	var posts []*models.Post
	err := m.bind().do(false, func(t *tx) error {
		if err := t.fail("posts.search"); err != nil {
			return err
		}
		for _, post := range t.data.posts {
			post := post
			if post.Matches(term) {
				posts = append(posts, &post)
			}
		}
		return nil
	})
	return posts, err
}

func (m *PostRepository) Update(post *models.Post) error {
	return m.bind().do(true, func(t *tx) error {
		if err := t.fail("posts.update"); err != nil {
			return err
		}
		if _, exists := t.data.posts[post.ID]; !exists {
			return repositories.ErrNotFound
		}
		t.data.posts[post.ID] = *post
		return nil
	})
}

func (m *PostRepository) Delete(id int) error {
	return m.bind().do(true, func(t *tx) error {
		if err := t.fail("posts.delete"); err != nil {
			return err
		}
		if _, exists := t.data.posts[id]; !exists {
			return repositories.ErrNotFound
		}
		delete(t.data.posts, id)
		delete(t.data.images, id)
		return nil
	})
}

func (m *PostRepository) IncrementLikes(id int) (int, error) {
	var likes int
	err := m.bind().do(true, func(t *tx) error {
		if err := t.fail("posts.like"); err != nil {
			return err
		}
		post, exists := t.data.posts[id]
		if !exists {
			return repositories.ErrNotFound
		}
		post.LikeCount++
		post.Touch()
		t.data.posts[id] = post
		likes = post.LikeCount
		return nil
	})
	return likes, err
}

func (m *PostRepository) SetImage(id int, data []byte) error {
	return m.bind().do(true, func(t *tx) error {
		if err := t.fail("posts.image"); err != nil {
			return err
		}
		post, exists := t.data.posts[id]
		if !exists {
			return repositories.ErrNotFound
		}
		post.Touch()
		t.data.posts[id] = post
		t.data.images[id] = append([]byte(nil), data...)
		return nil
	})
}

func (m *PostRepository) GetImage(id int) ([]byte, error) {
	var out []byte
	err := m.bind().do(false, func(t *tx) error {
		data, exists := t.data.images[id]
		if !exists {
			return repositories.ErrNotFound
		}
		out = append([]byte(nil), data...)
		return nil
	})
	return out, err
}

func (m *PostRepository) DeleteImage(id int) error {
	return m.bind().do(true, func(t *tx) error {
		delete(t.data.images, id)
		return nil
	})
}

// CommentRepository implementation
type CommentRepository struct {
	tx   *tx
	auto *Store
}

func (m *CommentRepository) bind() binding { return binding{tx: m.tx, auto: m.auto} }

func (m *CommentRepository) Create(comment *models.Comment) error {
	return m.bind().do(true, func(t *tx) error {
		if err := t.fail("comments.create"); err != nil {
			return err
		}
		t.data.commentID++
		comment.ID = t.data.commentID
		t.data.comments[comment.ID] = *comment
		return nil
	})
}

func (m *CommentRepository) Get(postID, id int) (*models.Comment, error) {
	var out *models.Comment
	err := m.bind().do(false, func(t *tx) error {
		comment, exists := t.data.comments[id]
		if !exists || comment.PostID != postID {
			return repositories.ErrNotFound
		}
		out = &comment
		return nil
	})
	return out, err
}

func (m *CommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := m.bind().do(false, func(t *tx) error {
		for _, comment := range t.data.comments {
			comment := comment
			if comment.PostID == postID {
				comments = append(comments, &comment)
			}
		}
		return nil
	})
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, err
}

func (m *CommentRepository) CountByPost(postID int) (int, error) {
	var count int
	err := m.bind().do(false, func(t *tx) error {
		if err := t.fail("comments.count"); err != nil {
			return err
		}
		for _, comment := range t.data.comments {
			if comment.PostID == postID {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (m *CommentRepository) Update(comment *models.Comment) error {
	return m.bind().do(true, func(t *tx) error {
		existing, exists := t.data.comments[comment.ID]
		if !exists || existing.PostID != comment.PostID {
			return repositories.ErrNotFound
		}
		t.data.comments[comment.ID] = *comment
		return nil
	})
}

func (m *CommentRepository) Delete(postID, id int) error {
	return m.bind().do(true, func(t *tx) error {
		existing, exists := t.data.comments[id]
		if !exists || existing.PostID != postID {
			return repositories.ErrNotFound
		}
		delete(t.data.comments, id)
		return nil
	})
}

func (m *CommentRepository) DeleteByPost(postID int) error {
	return m.bind().do(true, func(t *tx) error {
		if err := t.fail("comments.deleteByPost"); err != nil {
			return err
		}
		for id, comment := range t.data.comments {
			if comment.PostID == postID {
				delete(t.data.comments, id)
			}
		}
		return nil
	})
}

// TagRepository implementation
type TagRepository struct {
	tx   *tx
	auto *Store
}

func (m *TagRepository) bind() binding { return binding{tx: m.tx, auto: m.auto} }

func (m *TagRepository) Add(postID int, tags []string) error {
	return m.bind().do(true, func(t *tx) error {
		if err := t.fail("tags.add"); err != nil {
			return err
		}
		for _, text := range tags {
			t.data.tagSeq++
			t.data.tags[postID] = append(t.data.tags[postID], tagRow{id: t.data.tagSeq, text: text})
		}
		return nil
	})
}

func (m *TagRepository) ListByPost(postID int) ([]string, error) {
	tags := []string{}
	err := m.bind().do(false, func(t *tx) error {
		if err := t.fail("tags.list"); err != nil {
			return err
		}
		for _, row := range t.data.tags[postID] {
			tags = append(tags, row.text)
		}
		return nil
	})
	return tags, err
}

func (m *TagRepository) DeleteByPost(postID int) error {
	return m.bind().do(true, func(t *tx) error {
		if err := t.fail("tags.deleteByPost"); err != nil {
			return err
		}
		delete(t.data.tags, postID)
		return nil
	})
}
