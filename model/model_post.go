package model

import (
	"time"
)

// Post is the single persisted record type, keyed by ID. ReplyToID is set
// only at creation; a post without one is a top-level post.
type Post struct {
	ID          string     `json:"id"                   bson:"_id"`
	AuthorID    string     `json:"authorId"             bson:"author_id"`
	TextContent string     `json:"textContent"          bson:"text_content"`
	ReplyToID   string     `json:"replyToId,omitempty"  bson:"reply_to_id,omitempty"`
	DatePosted  time.Time  `json:"datePosted"           bson:"date_posted"`
	DateEdited  *time.Time `json:"dateEdited,omitempty" bson:"date_edited,omitempty"`
}

// IsReply reports whether the post belongs to a thread.
func (p Post) IsReply() bool {
	return p.ReplyToID != ""
}

// PostStats carries derived, non-persisted counters. Likes are owned by an
// external collaborator and always read 0 here.
type PostStats struct {
	Replies int64 `json:"replies"`
	Likes   int64 `json:"likes"`
}

// EnhancedPost is a post merged with its derived stats, computed on read.
type EnhancedPost struct {
	Post
	Stats PostStats `json:"stats"`
}
