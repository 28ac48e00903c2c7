package server

import (
	"postfeed/internal/models"
	"postfeed/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const msgUserCreated = "User created!"

// SignupResponse is returned once an account has been stored.
type SignupResponse struct {
	Message string `json:"message"`
	UserID  uint   `json:"userId"`
}

// Signup handles PUT /auth/signup
// @Summary User signup
// @Description Register a new user account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body validation.SignupInput true "Signup request"
// @Success 201 {object} SignupResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /auth/signup [put]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req validation.SignupInput
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError(validation.MsgInvalidInput)
	}

	user, err := s.userService.Signup(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(SignupResponse{
		Message: msgUserCreated,
		UserID:  user.ID,
	})
}
