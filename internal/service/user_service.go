package service

import (
	"context"
	"errors"

	"postfeed/internal/models"
	"postfeed/internal/repository"
	"postfeed/internal/validation"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const MsgEmailExists = "E-Mail address already exists!"

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Signup validates in, rejects taken emails and stores the user with a
// bcrypt password hash.
func (s *UserService) Signup(ctx context.Context, in validation.SignupInput) (*models.User, error) {
	in.Normalize()
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	switch {
	case err == nil && existing != nil:
		return nil, emailTaken(in.Email)
	case err != nil && !models.IsNotFound(err):
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hashedPassword),
		Status:   models.DefaultUserStatus,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, emailTaken(in.Email)
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

func emailTaken(email string) error {
	return models.NewValidationError(validation.MsgInvalidInput, []validation.FieldError{{
		Location: "body",
		Param:    "email",
		Value:    email,
		Msg:      MsgEmailExists,
	}})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
