package services

import (
	"context"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"postsvc/dto"
	"postsvc/internal/apperr"
	"postsvc/internal/config"
	"postsvc/internal/idgen"
	"postsvc/internal/repository"
	"postsvc/model"
)

// PostService validates input, enforces ownership and orchestrates the
// content store. All collaborators are injected; there is no package state.
type PostService struct {
	repo     repository.PostRepository
	ids      idgen.Generator
	log      *zap.Logger
	textMin  int
	textMax  int
	pageSize int
}

// NewPostService wires a PostService with its store, id generator and limits.
func NewPostService(repo repository.PostRepository, ids idgen.Generator, log *zap.Logger, cfg config.Config) *PostService {
	return &PostService{
		repo:     repo,
		ids:      ids,
		log:      log,
		textMin:  cfg.TextMinLen,
		textMax:  cfg.TextMaxLen,
		pageSize: cfg.PageSize,
	}
}

func (s *PostService) validateText(text string) error {
	n := utf8.RuneCountInString(text)
	if n < s.textMin || n > s.textMax {
		return apperr.InvalidRequest("textContent length out of bounds")
	}
	return nil
}

// CreatePost persists a new post, checking the thread parent first when the
// post is a reply.
func (s *PostService) CreatePost(ctx context.Context, authorID string, in dto.CreatePostDTO) (*model.EnhancedPost, error) {
	if authorID == "" {
		return nil, apperr.InvalidRequest("authorId is required")
	}
	if err := s.validateText(in.TextContent); err != nil {
		return nil, err
	}

	if in.ReplyToID != "" {
		parent, err := s.repo.FindByID(ctx, in.ReplyToID)
		if err != nil {
			return nil, apperr.Dependency("find thread parent", err)
		}
		if parent == nil {
			return nil, apperr.NotFound("replyToId does not reference an existing post")
		}
	}

	post := model.Post{
		ID:          s.ids.NewID(),
		AuthorID:    authorID,
		TextContent: in.TextContent,
		ReplyToID:   in.ReplyToID,
		DatePosted:  time.Now(),
	}

	created, err := s.repo.Create(ctx, post)
	if err != nil {
		return nil, apperr.Dependency("create post", err)
	}

	s.log.Info("post created",
		zap.String("post_id", created.ID),
		zap.String("author_id", created.AuthorID),
		zap.Bool("reply", created.IsReply()))

	return &model.EnhancedPost{Post: created}, nil
}

// GetPostByID returns the raw post, or nil when absent; absence is not an
// error here.
func (s *PostService) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Dependency("find post", err)
	}
	return post, nil
}

// GetEnhancedPost returns the post merged with its derived stats.
func (s *PostService) GetEnhancedPost(ctx context.Context, id string) (*model.EnhancedPost, error) {
	post, err := s.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperr.NotFound("post does not exist")
	}
	ep, err := s.Enhance(ctx, *post)
	if err != nil {
		return nil, err
	}
	return &ep, nil
}

// DeletePost removes an owned, reply-free post. Existence and ownership are
// checked strictly before the write. Deleting a post that has replies stays
// blocked: removing it would orphan the thread and there is no re-parenting
// policy.
func (s *PostService) DeletePost(ctx context.Context, id, authorID string) error {
	post, err := s.GetPostByID(ctx, id)
	if err != nil {
		return err
	}
	if post == nil {
		return apperr.NotFound("post does not exist")
	}
	if post.AuthorID != authorID {
		return apperr.AccessDenied("post does not belong to this user")
	}

	replies, err := s.repo.CountReplies(ctx, id)
	if err != nil {
		return apperr.Dependency("count replies", err)
	}
	if replies > 0 {
		return apperr.Unimplemented("cannot delete a post that has replies")
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return apperr.Dependency("delete post", err)
	}

	s.log.Info("post deleted", zap.String("post_id", id), zap.String("author_id", authorID))
	return nil
}

// EditPost replaces the text content of an owned post. Two concurrent edits
// are last-writer-wins; the store holds no optimistic-concurrency token.
func (s *PostService) EditPost(ctx context.Context, id, authorID string, in dto.EditPostDTO) (*model.EnhancedPost, error) {
	post, err := s.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperr.NotFound("post does not exist")
	}
	if post.AuthorID != authorID {
		return nil, apperr.AccessDenied("post does not belong to this user")
	}
	if err := s.validateText(in.TextContent); err != nil {
		return nil, err
	}

	updated, err := s.repo.EditText(ctx, id, in.TextContent)
	if err != nil {
		return nil, apperr.Dependency("edit post", err)
	}

	ep, err := s.Enhance(ctx, *updated)
	if err != nil {
		return nil, err
	}
	return &ep, nil
}

// ListPosts pages an author's top-level posts, newest first.
func (s *PostService) ListPosts(ctx context.Context, authorID string, page int) (*dto.PaginatedPosts, error) {
	if authorID == "" {
		return nil, apperr.InvalidRequest("authorId is required")
	}
	if page < 0 {
		return nil, apperr.InvalidRequest("page must not be negative")
	}
	posts, err := s.repo.ListByAuthor(ctx, page, s.pageSize, authorID)
	if err != nil {
		return nil, apperr.Dependency("list posts", err)
	}
	return s.enhancePage(ctx, posts, page)
}

// ListLatest pages the global top-level stream, newest first.
func (s *PostService) ListLatest(ctx context.Context, page int) (*dto.PaginatedPosts, error) {
	if page < 0 {
		return nil, apperr.InvalidRequest("page must not be negative")
	}
	posts, err := s.repo.ListLatest(ctx, page, s.pageSize)
	if err != nil {
		return nil, apperr.Dependency("list latest posts", err)
	}
	return s.enhancePage(ctx, posts, page)
}

// ListReplies pages the direct replies to one post, newest first.
func (s *PostService) ListReplies(ctx context.Context, postID string, page int) (*dto.PaginatedPosts, error) {
	if postID == "" {
		return nil, apperr.InvalidRequest("postId is required")
	}
	if page < 0 {
		return nil, apperr.InvalidRequest("page must not be negative")
	}
	posts, err := s.repo.ListReplies(ctx, page, s.pageSize, postID)
	if err != nil {
		return nil, apperr.Dependency("list replies", err)
	}
	return s.enhancePage(ctx, posts, page)
}

// Enhance merges a post with its reply count. The count is recomputed on
// every read; one count query per post returned.
func (s *PostService) Enhance(ctx context.Context, p model.Post) (model.EnhancedPost, error) {
	replies, err := s.repo.CountReplies(ctx, p.ID)
	if err != nil {
		return model.EnhancedPost{}, apperr.Dependency("count replies", err)
	}
	return model.EnhancedPost{
		Post:  p,
		Stats: model.PostStats{Replies: replies, Likes: 0},
	}, nil
}

func (s *PostService) enhancePage(ctx context.Context, posts []model.Post, page int) (*dto.PaginatedPosts, error) {
	eps := make([]model.EnhancedPost, 0, len(posts))
	for _, p := range posts {
		ep, err := s.Enhance(ctx, p)
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
