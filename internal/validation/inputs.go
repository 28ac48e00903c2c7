package validation

import "strings"

// PostInput is the editable part of a post, bound from multipart or JSON.
type PostInput struct {
	Title   string `json:"title" form:"title" validate:"required,min=5"`
	Content string `json:"content" form:"content" validate:"required,min=5"`
	// Image is the existing image path sent on update when no file is uploaded.
	Image string `json:"image" form:"image" validate:"-"`
}

// Normalize trims surrounding whitespace.
func (in *PostInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Image = strings.TrimSpace(in.Image)
}

// SignupInput is the body of PUT /auth/signup.
type SignupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=5"`
	Name     string `json:"name" validate:"required"`
}

// Normalize trims every field and lower-cases the email.
func (in *SignupInput) Normalize() {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Password = strings.TrimSpace(in.Password)
	in.Name = strings.TrimSpace(in.Name)
}
