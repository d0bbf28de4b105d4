package dto

// EditPostDTO is the body of PATCH /posts/:id.
type EditPostDTO struct {
	TextContent string `json:"textContent"`
}
