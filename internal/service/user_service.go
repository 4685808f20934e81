package service

import (
	"context"
	"errors"
	"strings"

	"user-service/internal/domain"
	"user-service/internal/repository"
)

var (
	// ErrUserNotFound indicates that no user matches the given id or username.
	ErrUserNotFound = errors.New("user was not found")
	// ErrPasswordMismatch indicates that a password sample does not match the stored one.
	ErrPasswordMismatch = errors.New("password confirmation failed")
	// ErrOldPasswordIncorrect is returned by UpdatePassword when the old password does not match.
	ErrOldPasswordIncorrect = errors.New("old password is incorrect")
	// ErrUserVanished is returned when the user disappeared between the read and the write of UpdatePassword.
	ErrUserVanished = errors.New("user no longer exists")
	// ErrUsernameRequired is returned by Create for a blank username.
	ErrUsernameRequired = errors.New("username is required")
	// ErrPasswordRequired is returned for an empty password on create or an empty new password on update.
	ErrPasswordRequired = errors.New("password is required")
)

// UserService describes user account operations.
type UserService interface {
	Create(ctx context.Context, username domain.Username, password domain.Password) (*domain.User, error)
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByUsername(ctx context.Context, username domain.Username) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	ConfirmPassword(ctx context.Context, id domain.UserID, sample domain.Password) error
	UpdatePassword(ctx context.Context, id domain.UserID, oldPassword, newPassword domain.Password) error
	Delete(ctx context.Context, id domain.UserID) error
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Create(ctx context.Context, username domain.Username, password domain.Password) (*domain.User, error) {
	if strings.TrimSpace(string(username)) == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	return s.users.Create(ctx, username, password)
}

func (s *userService) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func (s *userService) GetByUsername(ctx context.Context, username domain.Username) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *userService) ConfirmPassword(ctx context.Context, id domain.UserID, sample domain.Password) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !user.Password.Matches(sample) {
		return ErrPasswordMismatch
	}
	return nil
}

// UpdatePassword reads the user, checks oldPassword and then writes newPassword.
// The three steps are not isolated from concurrent writers.
func (s *userService) UpdatePassword(ctx context.Context, id domain.UserID, oldPassword, newPassword domain.Password) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !user.Password.Matches(oldPassword) {
		return ErrOldPasswordIncorrect
	}
	if newPassword == "" {
		return ErrPasswordRequired
	}

	affected, err := s.users.UpdatePassword(ctx, id, newPassword)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserVanished
	}
	return nil
}

func (s *userService) Delete(ctx context.Context, id domain.UserID) error {
	affected, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
