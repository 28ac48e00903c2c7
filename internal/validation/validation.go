// Package validation checks and normalises request input with struct tags.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"postfeed/internal/models"

	"github.com/go-playground/validator/v10"
)

// MsgInvalidInput is returned with every validation failure.
const MsgInvalidInput = "Validation failed, entered data is incorrect."

// FieldError describes one rejected field.
type FieldError struct {
	Location string `json:"location"`
	Param    string `json:"param"`
	Value    any    `json:"value,omitempty"`
	Msg      string `json:"msg"`
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates v and converts failures into a 422 AppError whose Data is
// a []FieldError.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.NewInternalError(err)
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, toFieldError(fe))
	}
	return models.NewValidationError(MsgInvalidInput, fields)
}

// Fields returns the rejected fields carried by err, if any.
func Fields(err error) []FieldError {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		if fields, ok := appErr.Data.([]FieldError); ok {
			return fields
		}
	}
	return nil
}

func toFieldError(fe validator.FieldError) FieldError {
	out := FieldError{Location: "body", Param: fe.Field(), Msg: "Invalid value"}
	if fe.Field() != "password" {
		out.Value = fe.Value()
	}
	switch fe.Tag() {
	case "email":
		out.Msg = "Please enter a valid email."
	case "min":
		out.Msg = "Must be at least " + fe.Param() + " characters long."
	case "required":
		out.Msg = "Must not be empty."
	}
	return out
}
