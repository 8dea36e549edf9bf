package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"notely.app/notelyserver/internal/dto"
	"notely.app/notelyserver/internal/model"
	"notely.app/notelyserver/internal/repository"
	"notely.app/notelyserver/pkg/apperror"
)

type UserService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req dto.LoginRequest) (string, error)
	Search(ctx context.Context, query string) ([]dto.UserSearchResponse, error)
}

type userService struct {
	users     repository.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewUserService(users repository.UserRepository, jwtSecret string, tokenTTL time.Duration) UserService {
	return &userService{
		users:     users,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

func (s *userService) Register(ctx context.Context, req dto.RegisterRequest) (*model.User, error) {
	_, err := s.users.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, fmt.Errorf("%w: email already registered", apperror.ErrConflict)
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Nickname:        req.Nickname,
		Email:           req.Email,
		PasswordHash:    string(hash),
		Friends:         model.UUIDSet{},
		PendingOutgoing: model.UUIDSet{},
		Blocked:         model.UUIDSet{},
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) Login(ctx context.Context, req dto.LoginRequest) (string, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.ErrUnauthorized
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", apperror.ErrUnauthorized
	}

	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *userService) Search(ctx context.Context, query string) ([]dto.UserSearchResponse, error) {
	users, err := s.users.SearchByNicknameOrEmail(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]dto.UserSearchResponse, 0, len(users))
	for _, u := range users {
		results = append(results, dto.UserSearchResponse{
			ID:        u.ID,
			Nickname:  u.Nickname,
			Email:     u.Email,
			AvatarURL: u.AvatarURL,
		})
	}

	return results, nil
}
