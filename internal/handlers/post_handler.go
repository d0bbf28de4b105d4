package handlers

import (
	"github.com/gofiber/fiber/v2"

	"postsvc/dto"
	mid "postsvc/internal/middleware"
	"postsvc/internal/services"
)

// CreatePostHandler godoc
// @Summary      Create a post or reply
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        data  body      dto.CreatePostDTO  true  "Post payload"
// @Success      201   {object}  model.EnhancedPost
// @Router       /posts [post]
func CreatePostHandler(svc *services.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := mid.UIDFromLocals(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "missing session"})
		}

		var body dto.CreatePostDTO
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "invalid body"})
		}

		post, err := svc.CreatePost(c.Context(), userID, body)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(post)
	}
}

// GetPostHandler godoc
// @Summary      Get a post with derived stats
// @Tags         posts
// @Produce      json
// @Param        id  path  string  true  "Post ID"
// @Success      200  {object}  model.EnhancedPost
// @Router       /posts/{id} [get]
func GetPostHandler(svc *services.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		post, err := svc.GetEnhancedPost(c.Context(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(post)
	}
}

// DeletePostHandler godoc
// @Summary      Delete an owned post
// @Tags         posts
// @Security     BearerAuth
// @Param        id  path  string  true  "Post ID"
// @Success      204
// @Router       /posts/{id} [delete]
func DeletePostHandler(svc *services.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := mid.UIDFromLocals(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "missing session"})
		}

		if err := svc.DeletePost(c.Context(), c.Params("id"), userID); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// EditPostHandler godoc
// @Summary      Edit an owned post's text
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string           true  "Post ID"
// @Param        data  body  dto.EditPostDTO  true  "New text"
// @Success      200   {object}  model.EnhancedPost
// @Router       /posts/{id} [patch]
func EditPostHandler(svc *services.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := mid.UIDFromLocals(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "missing session"})
		}

		var body dto.EditPostDTO
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "invalid body"})
		}

		post, err := svc.EditPost(c.Context(), c.Params("id"), userID, body)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(post)
	}
}

// ListPostsHandler godoc
// @Summary      Page an author's top-level posts
// @Tags         posts
// @Produce      json
// @Param        user  path  string  true  "Author ID, or @me for the session user"
// @Param        page  path  int     true  "Page index"
// @Success      200   {object}  dto.PaginatedPosts
// @Router       /posts/user/{user}/{page} [get]
func ListPostsHandler(svc *services.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		targetID := c.Params("user")
		if targetID == "@me" {
			uid, ok := mid.UIDFromLocals(c)
			if !ok {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "missing session"})
			}
			targetID = uid
		}

		page, err := pageParam(c)
		if err != nil {
			return respondError(c, err)
		}

		posts, err := svc.ListPosts(c.Context(), targetID, page)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(posts)
	}
}

// ListLatestHandler godoc
// @Summary      Page the global top-level stream
// @Tags         posts
// @Produce      json
// @Param        page  path  int  true  "Page index"
// @Success      200   {object}  dto.PaginatedPosts
// @Router       /posts/latest/{page} [get]
func ListLatestHandler(svc *services.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := pageParam(c)
		if err != nil {
			return respondError(c, err)
		}

		posts, err := svc.ListLatest(c.Context(), page)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(posts)
	}
}

// ListRepliesHandler godoc
// @Summary      Page the direct replies to a post
// @Tags         posts
// @Produce      json
// @Param        id    path  string  true  "Parent post ID"
// @Param        page  path  int     true  "Page index"
// @Success      200   {object}  dto.PaginatedPosts
// @Router       /posts/replies/{id}/{page} [get]
func ListRepliesHandler(svc *services.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := pageParam(c)
		if err != nil {
			return respondError(c, err)
		}

		posts, err := svc.ListReplies(c.Context(), c.Params("id"), page)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(posts)
	}
}
