package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"ideaboard/internal/dao"
	"ideaboard/internal/models"
	"ideaboard/internal/utils"
)

const minPasswordLength = 6

type AccountService struct {
	users UserRepository
}

func NewAccountService(users UserRepository) *AccountService {
	return &AccountService{users: users}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Image    string `json:"image"`
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" {
		return nil, ErrValidation("Name and email are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrValidation("Invalid email address")
	}
	if len(in.Password) < minPasswordLength {
		return nil, ErrValidation("Password must be at least 6 characters")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, ErrInternal("Failed to register", err)
	}

	image := strings.TrimSpace(in.Image)
	if image == "" {
		image = utils.RandomAvatar()
	}
	user := &models.User{
		Name:     name,
		Email:    email,
		Image:    image,
		Password: hash,
	}
	err = s.users.Create(ctx, user)
	if errors.Is(err, dao.ErrDuplicate) {
		return nil, ErrConflict("Email already registered", err)
	}
	if err != nil {
		return nil, ErrInternal("Failed to register", err)
	}
	return user, nil
}

// Authenticate returns the user whose email and password match. Unknown
// emails and wrong passwords fail the same way.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, dao.ErrNotFound) {
		return nil, &Error{Kind: KindUnauthorized, Message: "Invalid email or password"}
	}
	if err != nil {
		return nil, ErrInternal("Failed to log in", err)
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, &Error{Kind: KindUnauthorized, Message: "Invalid email or password"}
	}
	return user, nil
}

// FindByID resolves the session user. A missing user is KindNotFound.
func (s *AccountService) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, dao.ErrNotFound) {
		return nil, ErrNotFound("User not found")
	}
	if err != nil {
		return nil, ErrInternal("Failed to fetch user", err)
	}
	return user, nil
}
