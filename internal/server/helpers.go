package server

import (
	"fmt"
	"io"
	"mime/multipart"

	"postfeed/internal/middleware"
	"postfeed/internal/models"
	"postfeed/internal/storage"
	"postfeed/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// imageField is the multipart field carrying an uploaded image.
const imageField = "image"

// parsePage reads the 1-based ?page query parameter. Missing, malformed and
// non-positive values mean the first page.
func parsePage(c *fiber.Ctx) int {
	page := c.QueryInt("page", 1)
	if page < 1 {
		return 1
	}
	return page
}

// parsePostID extracts the :id route parameter. An id that cannot name a
// post is reported the same way as a post that does not exist.
func parsePostID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, models.NewNotFoundError(models.MsgPostNotFound)
	}
	return uint(id), nil
}

// currentUserID returns the id stored by the auth middleware.
func currentUserID(c *fiber.Ctx) (uint, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return 0, models.NewUnauthorizedError("Not authenticated.")
	}
	return userID, nil
}

// parsePostInput binds title, content and image from a multipart form or a
// JSON body.
func parsePostInput(c *fiber.Ctx) (validation.PostInput, error) {
	var in validation.PostInput
	if len(c.Body()) == 0 {
		return in, nil
	}
	if err := c.BodyParser(&in); err != nil {
		return in, models.NewValidationError(validation.MsgInvalidInput)
	}
	return in, nil
}

// readUpload returns the image file of a multipart request, or nil when the
// request carried none.
func readUpload(c *fiber.Ctx) (*storage.Upload, error) {
	fh, err := c.FormFile(imageField)
	if err != nil {
		// Not multipart, or no file part.
		return nil, nil
	}
	return openUpload(fh)
}

func openUpload(fh *multipart.FileHeader) (*storage.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("open upload: %w", err))
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("read upload: %w", err))
	}

	return &storage.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}, nil
}
