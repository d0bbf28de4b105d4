// Package socialgraph consumes the follow graph owned by the user service.
// The engine only ever reads it, in pages, over request/response calls.
package socialgraph

import "context"

// FollowRelation is one (source follows dest) pair, in opaque
// relation-creation order within its page.
type FollowRelation struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
}

// PaginatedRelations is one page of a user's following list.
type PaginatedRelations struct {
	CurrentPage int              `json:"currentPage"`
	PageSize    int              `json:"pageSize"`
	Data        []FollowRelation `json:"data"`
}

// FollowingStats are aggregate counters for a user's follow set.
type FollowingStats struct {
	Following int64 `json:"following"`
}

// Client is the capability the feed engine consumes; implementations live
// behind whatever transport the peer service speaks.
type Client interface {
	GetFollowing(ctx context.Context, userID string, page int) (*PaginatedRelations, error)
	GetFollowingStats(ctx context.Context, userID string) (*FollowingStats, error)
}
