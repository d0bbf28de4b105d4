package dto

// CreatePostDTO is the body of POST /posts. The author is never taken from
// the body; it comes from the verified session uid.
type CreatePostDTO struct {
	TextContent string `json:"textContent"`
	ReplyToID   string `json:"replyToId,omitempty"`
}
