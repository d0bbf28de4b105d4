package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"postsvc/model"
)

func seedPost(t *testing.T, repo *MemoryPostRepo, id, author, replyTo string, posted time.Time) model.Post {
	t.Helper()
	post, err := repo.Create(context.Background(), model.Post{
		ID:          id,
		AuthorID:    author,
		TextContent: "text " + id,
		ReplyToID:   replyTo,
		DatePosted:  posted,
	})
	if err != nil {
		t.Fatalf("Create(%s) error: %v", id, err)
	}
	return post
}

func TestMemoryRepoCreateAndFind(t *testing.T) {
	repo := NewMemoryPostRepo()
	ctx := context.Background()

	seedPost(t, repo, "p1", "alice", "", time.Now())

	got, err := repo.FindByID(ctx, "p1")
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if got == nil || got.ID != "p1" || got.AuthorID != "alice" {
		t.Errorf("unexpected post: %+v", got)
	}

	missing, err := repo.FindByID(ctx, "nope")
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing id, got %+v", missing)
	}

	if _, err := repo.Create(ctx, model.Post{ID: "p1", AuthorID: "bob"}); err != ErrDuplicateID {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
}

func TestMemoryRepoDelete(t *testing.T) {
	repo := NewMemoryPostRepo()
	ctx := context.Background()

	seedPost(t, repo, "p1", "alice", "", time.Now())
	if err := repo.DeleteByID(ctx, "p1"); err != nil {
		t.Fatalf("DeleteByID error: %v", err)
	}

	got, _ := repo.FindByID(ctx, "p1")
	if got != nil {
		t.Errorf("expected post gone, got %+v", got)
	}
}

func TestMemoryRepoEditText(t *testing.T) {
	repo := NewMemoryPostRepo()
	ctx := context.Background()

	seedPost(t, repo, "p1", "alice", "", time.Now())

	updated, err := repo.EditText(ctx, "p1", "new text")
	if err != nil {
		t.Fatalf("EditText error: %v", err)
	}
	if updated.TextContent != "new text" {
		t.Errorf("expected 'new text', got %q", updated.TextContent)
	}
	if updated.DateEdited == nil {
		t.Error("expected DateEdited to be set")
	}

	if _, err := repo.EditText(ctx, "nope", "x"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepoListByAuthorPagination(t *testing.T) {
	repo := NewMemoryPostRepo()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		seedPost(t, repo, fmt.Sprintf("p%02d", i), "alice", "", base.Add(time.Duration(i)*time.Minute))
	}
	// replies and other authors must not appear
	seedPost(t, repo, "r1", "alice", "p00", base.Add(time.Hour))
	seedPost(t, repo, "q1", "bob", "", base.Add(time.Hour))

	page0, err := repo.ListByAuthor(ctx, 0, 10, "alice")
	if err != nil {
		t.Fatalf("ListByAuthor error: %v", err)
	}
	if len(page0) != 10 {
		t.Fatalf("expected 10 posts, got %d", len(page0))
	}
	if page0[0].ID != "p14" {
		t.Errorf("expected newest post p14 first, got %s", page0[0].ID)
	}
	for i := 1; i < len(page0); i++ {
		if page0[i].DatePosted.After(page0[i-1].DatePosted) {
			t.Errorf("posts not in descending order at %d", i)
		}
	}

	page1, err := repo.ListByAuthor(ctx, 1, 10, "alice")
	if err != nil {
		t.Fatalf("ListByAuthor error: %v", err)
	}
	if len(page1) != 5 {
		t.Errorf("expected 5 posts on page 1, got %d", len(page1))
	}

	page2, err := repo.ListByAuthor(ctx, 2, 10, "alice")
	if err != nil {
		t.Fatalf("ListByAuthor error: %v", err)
	}
	if len(page2) != 0 {
		t.Errorf("expected empty page 2, got %d posts", len(page2))
	}
}

func TestMemoryRepoListLatestSpansAuthors(t *testing.T) {
	repo := NewMemoryPostRepo()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	seedPost(t, repo, "a1", "alice", "", base)
	seedPost(t, repo, "b1", "bob", "", base.Add(time.Minute))
	seedPost(t, repo, "r1", "bob", "a1", base.Add(2*time.Minute))

	latest, err := repo.ListLatest(ctx, 0, 10)
	if err != nil {
		t.Fatalf("ListLatest error: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("expected 2 top-level posts, got %d", len(latest))
	}
	if latest[0].ID != "b1" || latest[1].ID != "a1" {
		t.Errorf("unexpected order: %s, %s", latest[0].ID, latest[1].ID)
	}
}

func TestMemoryRepoRepliesAndCount(t *testing.T) {
	repo := NewMemoryPostRepo()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	seedPost(t, repo, "p1", "alice", "", base)
	seedPost(t, repo, "r1", "bob", "p1", base.Add(time.Minute))
	seedPost(t, repo, "r2", "carol", "p1", base.Add(2*time.Minute))
	seedPost(t, repo, "other", "bob", "", base.Add(3*time.Minute))

	replies, err := repo.ListReplies(ctx, 0, 10, "p1")
	if err != nil {
		t.Fatalf("ListReplies error: %v", err)
	}
	if len(replies) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(replies))
	}
	for _, r := range replies {
		if r.ReplyToID != "p1" {
			t.Errorf("reply %s has wrong parent %q", r.ID, r.ReplyToID)
		}
	}

	n, err := repo.CountReplies(ctx, "p1")
	if err != nil {
		t.Fatalf("CountReplies error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 replies counted, got %d", n)
	}
}
