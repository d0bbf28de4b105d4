package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"postsvc/model"
)

// MemoryPostRepo is an in-memory PostRepository used by tests and local runs.
// Ties on date_posted break toward the later-created post, matching the
// mongo implementation's id-descending tiebreak.
type MemoryPostRepo struct {
	mu    sync.RWMutex
	posts []model.Post
}

// NewMemoryPostRepo returns an empty in-memory store.
func NewMemoryPostRepo() *MemoryPostRepo {
	return &MemoryPostRepo{}
}

func (r *MemoryPostRepo) Create(ctx context.Context, post model.Post) (model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.ID == post.ID {
			return model.Post{}, ErrDuplicateID
		}
	}
	r.posts = append(r.posts, post)
	return post, nil
}

func (r *MemoryPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.posts {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryPostRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.posts {
		if p.ID == id {
			r.posts = append(r.posts[:i], r.posts[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *MemoryPostRepo) EditText(ctx context.Context, id string, newText string) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.posts {
		if r.posts[i].ID == id {
			now := time.Now()
			r.posts[i].TextContent = newText
			r.posts[i].DateEdited = &now
			cp := r.posts[i]
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryPostRepo) ListByAuthor(ctx context.Context, page, pageSize int, authorID string) ([]model.Post, error) {
	return r.list(func(p model.Post) bool {
		return p.AuthorID == authorID && !p.IsReply()
	}, page, pageSize), nil
}

func (r *MemoryPostRepo) ListLatest(ctx context.Context, page, pageSize int) ([]model.Post, error) {
	return r.list(func(p model.Post) bool {
		return !p.IsReply()
	}, page, pageSize), nil
}

func (r *MemoryPostRepo) ListReplies(ctx context.Context, page, pageSize int, parentID string) ([]model.Post, error) {
	return r.list(func(p model.Post) bool {
		return p.ReplyToID == parentID
	}, page, pageSize), nil
}

func (r *MemoryPostRepo) CountReplies(ctx context.Context, parentID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, p := range r.posts {
		if p.ReplyToID == parentID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryPostRepo) list(match func(model.Post) bool, page, pageSize int) []model.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// walk newest-inserted first so the stable sort breaks date ties that way
	matched := make([]model.Post, 0)
	for i := len(r.posts) - 1; i >= 0; i-- {
		if match(r.posts[i]) {
			matched = append(matched, r.posts[i])
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].DatePosted.After(matched[j].DatePosted)
	})

	start := page * pageSize
	if start >= len(matched) {
		return []model.Post{}
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end]
}
