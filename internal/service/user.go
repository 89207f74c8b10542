package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"studybuddy/internal/core/events"
	"studybuddy/internal/core/lock"
	"studybuddy/internal/domain"
)

type UserService struct{ base }

func emailKey(email string) string { return "email:" + strings.ToLower(email) }

var errEmailTaken = domain.Fail(domain.CodeEmailConflict, "user with this email already exists")

func (s *UserService) List(ctx context.Context, f domain.UserFilter) ([]domain.User, error) {
	out, err := s.d.Users.FindAll(ctx, f)
	if err != nil {
		return nil, s.observe("user.list", fmt.Errorf("list users: %w", err))
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.find(ctx, id)
	return u, s.observe("user.get", err)
}

func (s *UserService) find(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.d.Users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, domain.Fail(domain.CodeUserNotFound, "user not found")
	}
	return u, nil
}

func (s *UserService) Create(ctx context.Context, in domain.UserInput) (out *domain.User, err error) {
	defer func() { err = s.observe("user.create", err) }()

	now := s.now()
	u := domain.User{
		FullName:   in.FullName,
		Email:      in.Email,
		Role:       in.Role,
		School:     in.School,
		SchoolYear: in.SchoolYear,
		Major:      in.Major,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.rules.User(u); err != nil {
		return nil, err
	}
	err = lock.Do(ctx, s.d.Locker, emailKey(u.Email), func() error {
		existing, err := s.d.Users.FindByEmail(ctx, u.Email)
		if err != nil {
			return fmt.Errorf("find user by email: %w", err)
		}
		if existing != nil {
			return errEmailTaken
		}
		if err := s.d.Users.Insert(ctx, &u); err != nil {
			if errors.Is(err, domain.ErrDuplicateKey) {
				return errEmailTaken
			}
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.UserCreated, u.ID, nil))
	return &u, nil
}

// Update 邮箱变更时重新检查与其他用户的唯一性
func (s *UserService) Update(ctx context.Context, id string, p domain.UserPatch) (out *domain.User, err error) {
	defer func() { err = s.observe("user.update", err) }()

	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := p.Apply(*existing)
	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	merged.UpdatedAt = s.now()
	if err := s.rules.User(merged); err != nil {
		return nil, err
	}

	changed := merged.Email != existing.Email
	key := ""
	if changed {
		key = emailKey(merged.Email)
	}
	err = lock.DoAll(ctx, s.d.Locker, []string{key}, func() error {
		if changed {
			other, err := s.d.Users.FindByEmail(ctx, merged.Email)
			if err != nil {
				return fmt.Errorf("find user by email: %w", err)
			}
			if other != nil && other.ID != id {
				return errEmailTaken
			}
		}
		updated, err := s.d.Users.UpdateByID(ctx, id, merged)
		if err != nil {
			if errors.Is(err, domain.ErrDuplicateKey) {
				return errEmailTaken
			}
			return fmt.Errorf("update user: %w", err)
		}
		if updated == nil {
			return domain.Fail(domain.CodeUserNotFound, "user not found")
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.UserUpdated, id, nil))
	return out, nil
}

func (s *UserService) Delete(ctx context.Context, id string) (err error) {
	defer func() { err = s.observe("user.delete", err) }()

	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	ok, err := s.d.Users.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if !ok {
		return domain.Fail(domain.CodeUserNotFound, "user not found")
	}
	s.publish(ctx, events.New(events.UserDeleted, id, nil))
	return nil
}
