package dto

import "postsvc/model"

// PaginatedPosts is one page of enhanced posts. CurrentPage echoes the
// request; an out-of-range page yields an empty Data slice, not an error.
type PaginatedPosts struct {
	CurrentPage int                  `json:"currentPage"`
	PageSize    int                  `json:"pageSize"`
	Data        []model.EnhancedPost `json:"data"`
}

// ErrorResponse is the uniform error body for all handlers.
type ErrorResponse struct {
	Message string `json:"message"`
}
