package handlers

import (
	"github.com/gofiber/fiber/v2"

	"postsvc/dto"
	mid "postsvc/internal/middleware"
	"postsvc/internal/services"
)

// GetFeedHandler godoc
// @Summary      Page the session user's personalized feed
// @Tags         feed
// @Produce      json
// @Security     BearerAuth
// @Param        page  path  int  true  "Page index"
// @Success      200   {object}  dto.PaginatedPosts
// @Router       /feed/{page} [get]
func GetFeedHandler(svc *services.FeedService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := mid.UIDFromLocals(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "missing session"})
		}

		page, err := pageParam(c)
		if err != nil {
			return respondError(c, err)
		}

		feed, err := svc.GetFeed(c.Context(), userID, page)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(feed)
	}
}
