package services

import (
	"container/heap"
	"context"
	"sync"

	"go.uber.org/zap"

	"postsvc/dto"
	"postsvc/internal/apperr"
	"postsvc/internal/config"
	"postsvc/internal/repository"
	"postsvc/internal/socialgraph"
	"postsvc/model"
)

// FeedService assembles a personalized reverse-chronological feed by
// fan-out-on-read: it pages through the user's following relations up to a
// bounded author window, pulls each author's top-level posts concurrently,
// k-way merges the pre-sorted streams by datePosted descending and slices
// the requested page window.
//
// Failure policy, fixed here: a failed social-graph call fails the whole
// request; a failed per-author fetch is skipped for the page (logged at
// warn), unless every author fetch failed.
//
// There is no snapshot isolation. The follow set and the authors' streams
// are read independently per request, so a follow or a post landing between
// two page requests may shift items across page boundaries.
type FeedService struct {
	posts      *PostService
	repo       repository.PostRepository
	graph      socialgraph.Client
	log        *zap.Logger
	pageSize   int
	maxAuthors int
}

// NewFeedService wires the feed engine with its collaborators.
func NewFeedService(posts *PostService, repo repository.PostRepository, graph socialgraph.Client, log *zap.Logger, cfg config.Config) *FeedService {
	return &FeedService{
		posts:      posts,
		repo:       repo,
		graph:      graph,
		log:        log,
		pageSize:   cfg.PageSize,
		maxAuthors: cfg.FeedMaxAuthors,
	}
}

// GetFeed computes one feed page for the user.
func (s *FeedService) GetFeed(ctx context.Context, userID string, page int) (*dto.PaginatedPosts, error) {
	if userID == "" {
		return nil, apperr.InvalidRequest("userId is required")
	}
	if page < 0 {
		return nil, apperr.InvalidRequest("page must not be negative")
	}

	authors, err := s.resolveAuthors(ctx, userID)
	if err != nil {
		return nil, err
	}

	empty := &dto.PaginatedPosts{
		CurrentPage: page,
		PageSize:    s.pageSize,
		Data:        []model.EnhancedPost{},
	}
	if len(authors) == 0 {
		return empty, nil
	}

	streams, fanOutErr := s.fanOut(ctx, authors, page)
	if len(streams) == 0 && fanOutErr != nil {
		return nil, apperr.Dependency("feed fan-out", fanOutErr)
	}

	merged := mergeByDateDesc(streams, (page+1)*s.pageSize)

	start := page * s.pageSize
	if start >= len(merged) {
		return empty, nil
	}
	end := start + s.pageSize
	if end > len(merged) {
		end = len(merged)
	}
	window := merged[start:end]

	eps := make([]model.EnhancedPost, 0, len(window))
	for _, p := range window {
		ep, err := s.posts.Enhance(ctx, p)
		if err != nil {
			return nil, err
		}
		eps = append(eps, ep)
	}

	return &dto.PaginatedPosts{
		CurrentPage: page,
		PageSize:    s.pageSize,
		Data:        eps,
	}, nil
}

// resolveAuthors pages through the following list until the author window is
// full or the relations are exhausted. The window bounds fan-out cost; it is
// not the entire follow graph.
func (s *FeedService) resolveAuthors(ctx context.Context, userID string) ([]string, error) {
	stats, err := s.graph.GetFollowingStats(ctx, userID)
	if err != nil {
		return nil, apperr.Dependency("get following stats", err)
	}
	if stats.Following == 0 {
		return nil, nil
	}

	seen := map[string]struct{}{}
	authors := make([]string, 0, s.maxAuthors)

	for gp := 0; len(authors) < s.maxAuthors; gp++ {
		rels, err := s.graph.GetFollowing(ctx, userID, gp)
		if err != nil {
			return nil, apperr.Dependency("get following", err)
		}
		if len(rels.Data) == 0 {
			break
		}
		for _, rel := range rels.Data {
			if _, dup := seen[rel.Dest]; dup {
				continue
			}
			seen[rel.Dest] = struct{}{}
			authors = append(authors, rel.Dest)
			if len(authors) == s.maxAuthors {
				break
			}
		}
		if int64(len(seen)) >= stats.Following {
			break
		}
	}
	return authors, nil
}

// fanOut pulls each author's stream concurrently. To serve merged page N it
// fetches the first (N+1)*pageSize top-level posts per author in one store
// page; the merge then has everything the window can need.
func (s *FeedService) fanOut(ctx context.Context, authors []string, page int) ([][]model.Post, error) {
	depth := (page + 1) * s.pageSize

	streams := make([][]model.Post, len(authors))
	errs := make([]error, len(authors))

	var wg sync.WaitGroup
	for i, author := range authors {
		wg.Add(1)
		go func(i int, author string) {
			defer wg.Done()
			posts, err := s.repo.ListByAuthor(ctx, 0, depth, author)
			if err != nil {
				errs[i] = err
				return
			}
			streams[i] = posts
		}(i, author)
	}
	wg.Wait()

	kept := streams[:0:0]
	var firstErr error
	for i := range streams {
		if errs[i] != nil {
			if firstErr == nil {
				firstErr = errs[i]
			}
			s.log.Warn("feed author fetch failed, skipping",
				zap.String("author_id", authors[i]), zap.Error(errs[i]))
			continue
		}
		kept = append(kept, streams[i])
	}
	return kept, firstErr
}

// mergeItem tracks the head of one per-author stream during the merge.
type mergeItem struct {
	post model.Post
	src  int
	next int
}

type mergeHeap []mergeItem

func (h mergeHeap) Len() int { return len(h) }
func (h mergeHeap) Less(i, j int) bool {
	if !h[i].post.DatePosted.Equal(h[j].post.DatePosted) {
		return h[i].post.DatePosted.After(h[j].post.DatePosted)
	}
	return h[i].post.ID > h[j].post.ID
}
func (h mergeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *mergeHeap) Push(x any)   { *h = append(*h, x.(mergeItem)) }
func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// mergeByDateDesc k-way merges per-author pages that are each already sorted
// by datePosted descending, stopping once limit posts are produced.
func mergeByDateDesc(streams [][]model.Post, limit int) []model.Post {
	h := make(mergeHeap, 0, len(streams))
	for src, stream := range streams {
		if len(stream) > 0 {
			h = append(h, mergeItem{post: stream[0], src: src, next: 1})
		}
	}
	heap.Init(&h)

	merged := make([]model.Post, 0, limit)
	for h.Len() > 0 && len(merged) < limit {
		item := heap.Pop(&h).(mergeItem)
		merged = append(merged, item.post)
		if stream := streams[item.src]; item.next < len(stream) {
			heap.Push(&h, mergeItem{post: stream[item.next], src: item.src, next: item.next + 1})
		}
	}
	return merged
}
