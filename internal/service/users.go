package service

import (
	"context"
	"errors"
	"fmt"

	"neighborlift/internal/model"
	"neighborlift/internal/repository"

	"github.com/google/uuid"
)

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *UserService) LinkTelegramChat(ctx context.Context, userID uuid.UUID, chatID *int64) error {
	err := s.repo.SetTelegramChatID(ctx, userID, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to link telegram chat: %w", err)
	}
	return nil
}
