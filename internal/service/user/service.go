package user

import (
	"context"
	"errors"
	"fmt"

	"grantboard/internal/model"
	"grantboard/internal/repository"
	"grantboard/internal/util"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service struct {
	userRepo  *repository.UserRepository
	jwtSecret string
}

func NewService(userRepo *repository.UserRepository, jwtSecret string) *Service {
	return &Service{userRepo: userRepo, jwtSecret: jwtSecret}
}

// Register creates a dashboard user. New users always start with the "user"
// role; admin is granted out of band.
func (s *Service) Register(ctx context.Context, name, email, password string) (int, error) {
	if email == "" || password == "" {
		return 0, fmt.Errorf("email and password are required")
	}
	if len(password) < 8 {
		return 0, fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return 0, err
	}

	return s.userRepo.Insert(ctx, &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         "user",
	})
}

// Login verifies credentials and returns a signed session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	u, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(u.ID, u.Role, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}
