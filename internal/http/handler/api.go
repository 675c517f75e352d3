package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"kurssite/internal/service"
)

// PublishPost creates a post from a JSON body.
//
// @Summary Publish a post
// @Description The slug is derived from the title when empty. The body is sanitized before it is stored.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param post body service.PublishInput true "Post"
// @Success 201 {object} model.Post
// @Failure 400 {object} handler.errorPayload
// @Failure 401 {object} handler.errorPayload
// @Failure 409 {object} handler.errorPayload
// @Failure 422 {object} handler.errorPayload
// @Failure 500 {object} handler.errorPayload
// @Router /api/posts [post]
func PublishPost(blog service.BlogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.PublishInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		post, err := blog.Publish(c.UserContext(), in)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidPost):
				return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_POST", err.Error())
			case errors.Is(err, service.ErrSlugTaken):
				return writeError(c, fiber.StatusConflict, "SLUG_TAKEN", "slug already exists")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		c.Location("/blog/" + post.Slug)
		return c.Status(fiber.StatusCreated).JSON(post)
	}
}

// DeletePost removes a post by slug.
//
// @Summary Delete a post
// @Description Removes the cover image first, then the post.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Post slug"
// @Success 204
// @Failure 401 {object} handler.errorPayload
// @Failure 404 {object} handler.errorPayload
// @Failure 500 {object} handler.errorPayload
// @Router /api/posts/{slug} [delete]
func DeletePost(blog service.BlogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := blog.Delete(c.UserContext(), c.Params("slug")); err != nil {
			if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrSlugRequired) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "post not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UploadMedia stores an image (multipart/form-data, field name: file).
//
// @Summary Upload an image
// @Description Accepts PNG, JPEG, GIF and WebP. The stored type is detected from the content.
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image file"
// @Success 201 {object} model.Media
// @Failure 400 {object} handler.errorPayload
// @Failure 401 {object} handler.errorPayload
// @Failure 413 {object} handler.errorPayload
// @Failure 415 {object} handler.errorPayload
// @Failure 500 {object} handler.errorPayload
// @Router /api/media [post]
func UploadMedia(blog service.BlogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		media, err := blog.UploadMedia(c.UserContext(), f, fh.Filename, ct, fh.Size)
		if err != nil {
			if errors.Is(err, service.ErrUnsupportedMedia) {
				return writeError(c, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA", "only images are accepted")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(media)
	}
}
