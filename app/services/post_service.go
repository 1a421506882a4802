package services

import (
	"errors"

	"quill/app/logger"
	"quill/app/models"
	"quill/app/repositories"
)

// PostService handles business logic for blog posts and builds the
// list and detail views served to readers.
type PostService struct {
	store    repositories.Store
	tags     *TagManager
	comments *CommentCounter
}

// NewPostService creates a new PostService
func NewPostService(store repositories.Store) *PostService {
	return &PostService{
		store:    store,
		tags:     NewTagManager(store),
		comments: NewCommentCounter(store),
	}
}

// Tags returns the tag manager used by the service.
func (s *PostService) Tags() *TagManager {
	return s.tags
}

// ListPosts returns one page of posts matching search, newest first.
// The whole page is read from a single storage snapshot.
func (s *PostService) ListPosts(search string, pageNumber, pageSize int) (*models.Page, error) {
	logger.Log.Debugf("Listing posts: search=%q page=%d size=%d", search, pageNumber, pageSize)

	var page *models.Page
	err := s.store.View(func(tx repositories.Tx) error {
		// Filter
		posts, err := tx.Posts().Search(search)
		if err != nil {
			return err
		}

		// Sort and cut the page
		window, p := paginate(posts, pageNumber, pageSize)

		// Build list items
		tags, counter := s.tags.within(tx), s.comments.within(tx)
		for _, post := range window {
			item, err := listItem(post, tags, counter)
			if err != nil {
				return err
			}
			p.Items = append(p.Items, item)
		}
		page = p
		return nil
	})
	if err != nil {
		return nil, classify("list posts", err)
	}
	return page, nil
}

// GetPost returns the detail view of a post. A missing post is reported
// with found == false and a nil error.
func (s *PostService) GetPost(id int) (*models.PostDetail, bool, error) {
	var detail *models.PostDetail
	err := s.store.View(func(tx repositories.Tx) error {
		post, err := tx.Posts().GetByID(id)
		if err != nil {
			return err
		}
		detail, err = s.detail(tx, post)
		return err
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, classify("get post", err)
	}
	return detail, true, nil
}

// CreatePost validates the input and stores the post with its tags in
// one transaction.
func (s *PostService) CreatePost(title, body string, tags []string) (*models.PostDetail, error) {
	// Validate input
	input := models.PostInput{Title: title, Body: body, Tags: tags}
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, validationError(err)
	}

	post := &models.Post{Title: input.Title, Body: input.Body}
	post.BeforeCreate()

	var detail *models.PostDetail
	err := s.store.Update(func(tx repositories.Tx) error {
		if err := tx.Posts().Create(post); err != nil {
			return err
		}
		if err := tx.Tags().Add(post.ID, input.Tags); err != nil {
			return err
		}
		var err error
		detail, err = s.detail(tx, post)
		return err
	})
	if err != nil {
		return nil, classify("create post", err)
	}

	logger.Log.Infof("Created post %d with %d tags", post.ID, len(input.Tags))
	return detail, nil
}

// UpdatePost overwrites title and body and replaces the whole tag set.
// The like counter and creation time are preserved.
func (s *PostService) UpdatePost(id int, title, body string, tags []string) (*models.PostDetail, error) {
	// Validate input
	input := models.PostInput{Title: title, Body: body, Tags: tags}
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, validationError(err)
	}

	var detail *models.PostDetail
	err := s.store.Update(func(tx repositories.Tx) error {
		// Verify post exists
		post, err := tx.Posts().GetByID(id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return notFound("post", id)
			}
			return err
		}

		post.Title = input.Title
		post.Body = input.Body
		post.Touch()
		if err := tx.Posts().Update(post); err != nil {
			return err
		}

		// Replace tags
		if err := s.tags.within(tx).Replace(id, input.Tags); err != nil {
			return err
		}

		detail, err = s.detail(tx, post)
		return err
	})
	if err != nil {
		return nil, classify("update post", err)
	}

	logger.Log.Infof("Updated post %d", id)
	return detail, nil
}

// DeletePost removes a post together with its comments, tags and image.
func (s *PostService) DeletePost(id int) error {
	err := s.store.Update(func(tx repositories.Tx) error {
		// Verify post exists
		if err := postExists(tx, id); err != nil {
			return err
		}

		// Delete dependents before the post itself
		if err := tx.Comments().DeleteByPost(id); err != nil {
			return err
		}
		if err := tx.Tags().DeleteByPost(id); err != nil {
			return err
		}
		return tx.Posts().Delete(id)
	})
	if err != nil {
		return classify("delete post", err)
	}

	logger.Log.Infof("Deleted post %d", id)
	return nil
}

// IncrementLikes adds one like to a post and returns the new count.
func (s *PostService) IncrementLikes(id int) (int, error) {
	likes, err := s.store.Posts().IncrementLikes(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return 0, notFound("post", id)
	}
	if err != nil {
		return 0, classify("increment likes", err)
	}
	logger.Log.Debugf("Post %d now has %d likes", id, likes)
	return likes, nil
}

// AttachImage stores data as the image of a post, replacing any previous one.
func (s *PostService) AttachImage(id int, data []byte) error {
	if len(data) == 0 {
		return validationError(errors.New("image is empty"))
	}
	err := s.store.Posts().SetImage(id, data)
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound("post", id)
	}
	if err != nil {
		return classify("attach image", err)
	}
	logger.Log.Infof("Attached %d byte image to post %d", len(data), id)
	return nil
}

// GetImage returns the image of a post. found is false when the post or
// its image does not exist.
func (s *PostService) GetImage(id int) ([]byte, bool, error) {
	data, err := s.store.Posts().GetImage(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, classify("get image", err)
	}
	return data, true, nil
}

func (s *PostService) detail(tx repositories.Tx, post *models.Post) (*models.PostDetail, error) {
	tags, err := s.tags.within(tx).TagsFor(post.ID)
	if err != nil {
		return nil, err
	}
	count, err := s.comments.within(tx).CountFor(post.ID)
	if err != nil {
		return nil, err
	}
	return &models.PostDetail{
		ID:           post.ID,
		Title:        post.Title,
		Body:         post.Body,
		Tags:         tags,
		LikeCount:    post.LikeCount,
		CommentCount: count,
	}, nil
}

func listItem(post *models.Post, tags *TagManager, counter *CommentCounter) (models.PostListItem, error) {
	tagList, err := tags.TagsFor(post.ID)
	if err != nil {
		return models.PostListItem{}, err
	}
	count, err := counter.CountFor(post.ID)
	if err != nil {
		return models.PostListItem{}, err
	}
	return models.PostListItem{
		ID:           post.ID,
		Title:        post.Title,
		Body:         Truncate(post.Body, ListBodyLength),
		Tags:         tagList,
		LikeCount:    post.LikeCount,
		CommentCount: count,
	}, nil
}
