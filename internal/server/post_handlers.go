package server

import (
	"postfeed/internal/models"
	"postfeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Response messages of the post endpoints.
const (
	msgPostCreated = "Post created successfully!"
	msgPostFetched = "Post fetched."
	msgPostUpdated = "Post updated!"
	msgPostDeleted = "Deleted post."
)

// GetPosts godoc
// @Summary List posts
// @Description Returns one page of posts, newest first, with the total post count.
// @Tags posts
// @Produce json
// @Param page query int false "1-based page number"
// @Success 200 {object} service.ListPostsResult
// @Failure 500 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	res, err := s.postService.ListPosts(c.UserContext(), parsePage(c))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// CreatePost godoc
// @Summary Create a post
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title (at least 5 characters)"
// @Param content formData string true "Content (at least 5 characters)"
// @Param image formData file true "Post image"
// @Success 201 {object} CreatePostResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	input, err := parsePostInput(c)
	if err != nil {
		return err
	}
	upload, err := readUpload(c)
	if err != nil {
		return err
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID: userID,
		Input:  input,
		Image:  upload,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(CreatePostResponse{
		Message: msgPostCreated,
		Post:    post,
		Creator: post.Creator.Summary(),
	})
}

// GetPost godoc
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} PostResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(PostResponse{Message: msgPostFetched, Post: post})
}

// UpdatePost godoc
// @Summary Update a post
// @Description Replaces title and content. A new image file replaces the
// @Description stored one; otherwise the image field must carry the current path.
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param title formData string true "Title"
// @Param content formData string true "Content"
// @Param image formData file false "New image, or the existing image path as text"
// @Success 200 {object} PostResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := parsePostID(c)
	if err != nil {
		return err
	}

	input, err := parsePostInput(c)
	if err != nil {
		return err
	}
	upload, err := readUpload(c)
	if err != nil {
		return err
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID: userID,
		PostID: id,
		Input:  input,
		Image:  upload,
	})
	if err != nil {
		return err
	}

	return c.JSON(PostResponse{Message: msgPostUpdated, Post: post})
}

// DeletePost godoc
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := parsePostID(c)
	if err != nil {
		return err
	}

	if err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		UserID: userID,
		PostID: id,
	}); err != nil {
		return err
	}

	return c.JSON(MessageResponse{Message: msgPostDeleted})
}

// MessageResponse is a bare confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// PostResponse wraps a single post.
type PostResponse struct {
	Message string       `json:"message"`
	Post    *models.Post `json:"post"`
}

// CreatePostResponse is returned by POST /posts.
type CreatePostResponse struct {
	Message string                `json:"message"`
	Post    *models.Post          `json:"post"`
	Creator models.CreatorSummary `json:"creator"`
}
