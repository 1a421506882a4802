package models

// PostListItem is the list/search projection of a post.
type PostListItem struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Body         string   `json:"text"`
	Tags         []string `json:"tags"`
	LikeCount    int      `json:"likesCount"`
	CommentCount int      `json:"commentsCount"`
}

// PostDetail is the single-post projection with the full body.
type PostDetail struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Body         string   `json:"text"`
	Tags         []string `json:"tags"`
	LikeCount    int      `json:"likesCount"`
	CommentCount int      `json:"commentsCount"`
}

// Page is one page of list items plus its navigation data.
type Page struct {
	Items      []PostListItem `json:"posts"`
	PageNumber int            `json:"pageNumber"`
	PageSize   int            `json:"pageSize"`
	HasPrev    bool           `json:"hasPrev"`
	HasNext    bool           `json:"hasNext"`
	LastPage   int            `json:"lastPage"`
	TotalCount int            `json:"totalCount"`
}
