package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"kurssite/internal/service"
	"kurssite/internal/view"
)

// blogPageSize is the number of posts per blog index page.
const blogPageSize = 10

// StartPage serves the landing page.
func StartPage() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return renderHTML(c, fiber.StatusOK, view.Page("", view.StartPage()))
	}
}

// HeaderPartial serves the header fragment alone, for embedding and previews.
func HeaderPartial() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return renderHTML(c, fiber.StatusOK, view.Header())
	}
}

// BlogIndex serves the paginated post list. ?page is 1-based.
func BlogIndex(blog service.BlogService, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := 1
		if raw := c.Query("page"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return fiber.NewError(fiber.StatusBadRequest, "invalid page")
			}
			page = n
		}

		res, err := blog.List(c.UserContext(), blogPageSize, (page-1)*blogPageSize)
		if err != nil {
			return err
		}
		pagination := view.NewPagination(page, blogPageSize, res.Total)
		if page > pagination.TotalPages {
			return fiber.ErrNotFound
		}

		return renderHTML(c, fiber.StatusOK, view.Page("Blog", view.BlogIndex(res.Items, pagination, loc)))
	}
}

// BlogPost serves a single article by slug.
func BlogPost(blog service.BlogService, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		post, err := blog.Get(c.UserContext(), c.Params("slug"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrSlugRequired) {
				return fiber.ErrNotFound
			}
			return err
		}
		return renderHTML(c, fiber.StatusOK, view.Page(post.Title, view.BlogPost(*post, blog.CoverURL(*post), loc)))
	}
}

// Media streams an uploaded object. Keys carry a UUID, so responses are immutable.
func Media(blog service.BlogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc, info, err := blog.OpenMedia(c.UserContext(), service.MediaPrefix+c.Params("name"))
		if err != nil {
			if errors.Is(err, service.ErrMediaNotFound) {
				return fiber.ErrNotFound
			}
			return err
		}

		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		if info.ETag != "" {
			c.Set(fiber.HeaderETag, `"`+info.ETag+`"`)
		}
		c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
		c.Set(fiber.HeaderContentSecurityPolicy, "default-src 'none'; sandbox")
		return c.SendStream(rc, int(info.Size))
	}
}
