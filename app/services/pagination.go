package services

import (
	"sort"

	"quill/app/models"
)

const (
	// DefaultPageSize applies when a caller passes a page size below 1.
	DefaultPageSize = 10
	// ListBodyLength is the body length kept in list items.
	ListBodyLength = 128
)

// normalizePaging replaces out-of-range paging input with defaults.
func normalizePaging(pageNumber, pageSize int) (int, int) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return pageNumber, pageSize
}

// lastPage is ceil(total/pageSize), never less than 1.
func lastPage(total, pageSize int) int {
	last := (total + pageSize - 1) / pageSize
	if last < 1 {
		return 1
	}
	return last
}

func clampPage(pageNumber, last int) int {
	if pageNumber < 1 {
		return 1
	}
	if pageNumber > last {
		return last
	}
	return pageNumber
}

// pageBounds returns the slice window for a page of a total-length list.
func pageBounds(total, pageNumber, pageSize int) (int, int) {
	start := (pageNumber - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return start, end
}

// sortNewestFirst orders by creation time descending, ties by id descending.
func sortNewestFirst(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// paginate normalizes the request, sorts posts and cuts out the page.
// The returned page has navigation data filled in but no items.
func paginate(posts []*models.Post, pageNumber, pageSize int) ([]*models.Post, *models.Page) {
	pageNumber, pageSize = normalizePaging(pageNumber, pageSize)
	sortNewestFirst(posts)

	total := len(posts)
	last := lastPage(total, pageSize)
	pageNumber = clampPage(pageNumber, last)
	start, end := pageBounds(total, pageNumber, pageSize)

	return posts[start:end], &models.Page{
		Items:      []models.PostListItem{},
		PageNumber: pageNumber,
		PageSize:   pageSize,
		HasPrev:    pageNumber > 1,
		HasNext:    pageNumber < last,
		LastPage:   last,
		TotalCount: total,
	}
}
