package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"postsvc/dto"
	"postsvc/internal/config"
	"postsvc/internal/idgen"
	"postsvc/internal/repository"
	"postsvc/internal/routes"
	"postsvc/internal/services"
	"postsvc/internal/socialgraph"
	"postsvc/model"
)

type staticGraph struct {
	following map[string][]string
}

func (g *staticGraph) GetFollowing(ctx context.Context, userID string, page int) (*socialgraph.PaginatedRelations, error) {
	rels := []socialgraph.FollowRelation{}
	if page == 0 {
		for _, dest := range g.following[userID] {
			rels = append(rels, socialgraph.FollowRelation{Source: userID, Dest: dest})
		}
	}
	return &socialgraph.PaginatedRelations{CurrentPage: page, PageSize: 10, Data: rels}, nil
}

func (g *staticGraph) GetFollowingStats(ctx context.Context, userID string) (*socialgraph.FollowingStats, error) {
	return &socialgraph.FollowingStats{Following: int64(len(g.following[userID]))}, nil
}

type testEnv struct {
	posts *services.PostService
	feed  *services.FeedService
}

func newTestEnv() *testEnv {
	cfg := config.Config{TextMinLen: 1, TextMaxLen: 280, PageSize: 10, FeedMaxAuthors: 50}
	repo := repository.NewMemoryPostRepo()
	posts := services.NewPostService(repo, idgen.New(), zap.NewNop(), cfg)
	graph := &staticGraph{following: map[string][]string{"carol": {"alice"}}}
	feed := services.NewFeedService(posts, repo, graph, zap.NewNop(), cfg)
	return &testEnv{posts: posts, feed: feed}
}

// appAs mounts the routes behind a middleware that plays the session of uid.
func (e *testEnv) appAs(uid string) *fiber.App {
	app := fiber.New()
	if uid != "" {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("user_id", uid)
			return c.Next()
		})
	}
	routes.Register(app, routes.Deps{Posts: e.posts, Feed: e.feed})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestCreatePostRoute(t *testing.T) {
	env := newTestEnv()
	app := env.appAs("alice")

	resp := doJSON(t, app, "POST", "/posts", dto.CreatePostDTO{TextContent: "hello world"})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	post := decode[model.EnhancedPost](t, resp)
	if post.ID == "" || post.AuthorID != "alice" {
		t.Errorf("unexpected post: %+v", post)
	}
	if post.Stats.Replies != 0 {
		t.Errorf("expected 0 replies, got %d", post.Stats.Replies)
	}
}

func TestCreatePostRouteRejections(t *testing.T) {
	env := newTestEnv()

	resp := doJSON(t, env.appAs(""), "POST", "/posts", dto.CreatePostDTO{TextContent: "hi"})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401 without session, got %d", resp.StatusCode)
	}

	resp = doJSON(t, env.appAs("alice"), "POST", "/posts", dto.CreatePostDTO{TextContent: ""})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400 for empty text, got %d", resp.StatusCode)
	}

	resp = doJSON(t, env.appAs("alice"), "POST", "/posts", dto.CreatePostDTO{TextContent: "re", ReplyToID: "missing"})
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404 for missing parent, got %d", resp.StatusCode)
	}
}

func TestGetPostRoute(t *testing.T) {
	env := newTestEnv()
	app := env.appAs("alice")

	created := decode[model.EnhancedPost](t, doJSON(t, app, "POST", "/posts", dto.CreatePostDTO{TextContent: "hello"}))

	resp := doJSON(t, app, "GET", "/posts/"+created.ID, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	got := decode[model.EnhancedPost](t, resp)
	if got.ID != created.ID {
		t.Errorf("expected %s, got %s", created.ID, got.ID)
	}

	resp = doJSON(t, app, "GET", "/posts/does-not-exist", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestDeletePostRoute(t *testing.T) {
	env := newTestEnv()
	alice := env.appAs("alice")
	bob := env.appAs("bob")

	created := decode[model.EnhancedPost](t, doJSON(t, alice, "POST", "/posts", dto.CreatePostDTO{TextContent: "hello"}))

	resp := doJSON(t, bob, "DELETE", "/posts/"+created.ID, nil)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("expected 403 for non-owner, got %d", resp.StatusCode)
	}

	// a reply blocks deletion
	doJSON(t, bob, "POST", "/posts", dto.CreatePostDTO{TextContent: "reply", ReplyToID: created.ID})
	resp = doJSON(t, alice, "DELETE", "/posts/"+created.ID, nil)
	if resp.StatusCode != fiber.StatusNotImplemented {
		t.Errorf("expected 501 for post with replies, got %d", resp.StatusCode)
	}

	fresh := decode[model.EnhancedPost](t, doJSON(t, alice, "POST", "/posts", dto.CreatePostDTO{TextContent: "bye"}))
	resp = doJSON(t, alice, "DELETE", "/posts/"+fresh.ID, nil)
	if resp.StatusCode != fiber.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}
}

func TestEditPostRoute(t *testing.T) {
	env := newTestEnv()
	alice := env.appAs("alice")

	created := decode[model.EnhancedPost](t, doJSON(t, alice, "POST", "/posts", dto.CreatePostDTO{TextContent: "hello"}))

	resp := doJSON(t, alice, "PATCH", "/posts/"+created.ID, dto.EditPostDTO{TextContent: "edited"})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	got := decode[model.EnhancedPost](t, resp)
	if got.TextContent != "edited" || got.DateEdited == nil {
		t.Errorf("unexpected post after edit: %+v", got)
	}

	resp = doJSON(t, env.appAs("bob"), "PATCH", "/posts/"+created.ID, dto.EditPostDTO{TextContent: "hijack"})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("expected 403 for non-owner edit, got %d", resp.StatusCode)
	}
}

func TestListRoutes(t *testing.T) {
	env := newTestEnv()
	alice := env.appAs("alice")

	for i := 0; i < 3; i++ {
		doJSON(t, alice, "POST", "/posts", dto.CreatePostDTO{TextContent: fmt.Sprintf("post %d", i)})
	}

	resp := doJSON(t, alice, "GET", "/posts/user/@me/0", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	page := decode[dto.PaginatedPosts](t, resp)
	if len(page.Data) != 3 {
		t.Errorf("expected 3 posts via @me, got %d", len(page.Data))
	}

	resp = doJSON(t, alice, "GET", "/posts/user/alice/0", nil)
	page = decode[dto.PaginatedPosts](t, resp)
	if len(page.Data) != 3 {
		t.Errorf("expected 3 posts via explicit author, got %d", len(page.Data))
	}

	resp = doJSON(t, alice, "GET", "/posts/latest/0", nil)
	page = decode[dto.PaginatedPosts](t, resp)
	if len(page.Data) != 3 {
		t.Errorf("expected 3 latest posts, got %d", len(page.Data))
	}

	resp = doJSON(t, alice, "GET", "/posts/latest/notanumber", nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400 for bad page, got %d", resp.StatusCode)
	}
}

func TestFeedRoute(t *testing.T) {
	env := newTestEnv()
	alice := env.appAs("alice")
	carol := env.appAs("carol")

	doJSON(t, alice, "POST", "/posts", dto.CreatePostDTO{TextContent: "from alice"})

	resp := doJSON(t, carol, "GET", "/feed/0", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	page := decode[dto.PaginatedPosts](t, resp)
	if len(page.Data) != 1 || page.Data[0].AuthorID != "alice" {
		t.Errorf("unexpected feed: %+v", page)
	}

	resp = doJSON(t, env.appAs(""), "GET", "/feed/0", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401 without session, got %d", resp.StatusCode)
	}
}
