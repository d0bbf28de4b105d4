package routes

import (
	"github.com/gofiber/fiber/v2"

	"postsvc/internal/handlers"
	"postsvc/internal/services"
)

// Deps carries everything route registration needs.
type Deps struct {
	Posts *services.PostService
	Feed  *services.FeedService
}

// Register mounts all routes on the app.
func Register(app *fiber.App, deps Deps) {
	PostRoutes(app, deps.Posts)
	FeedRoutes(app, deps.Feed)
}

func PostRoutes(app *fiber.App, svc *services.PostService) {
	posts := app.Group("/posts")

	posts.Post("/", handlers.CreatePostHandler(svc))
	posts.Get("/latest/:page", handlers.ListLatestHandler(svc))
	posts.Get("/replies/:id/:page", handlers.ListRepliesHandler(svc))
	posts.Get("/user/:user/:page", handlers.ListPostsHandler(svc))
	posts.Get("/:id", handlers.GetPostHandler(svc))
	posts.Delete("/:id", handlers.DeletePostHandler(svc))
	posts.Patch("/:id", handlers.EditPostHandler(svc))
}

func FeedRoutes(app *fiber.App, svc *services.FeedService) {
	app.Get("/feed/:page", handlers.GetFeedHandler(svc))
}
