package service

import (
	"context"
	"errors"

	"changehub/backend/internal/model"
	"changehub/backend/internal/repository"
)

// userRefCache memoizes organiser lookups within a single request so that
// list assembly does not refetch the same user per entity.
type userRefCache struct {
	users repository.UserRepository
	refs  map[string]model.UserRef
}

func newUserRefCache(users repository.UserRepository) *userRefCache {
	return &userRefCache{users: users, refs: make(map[string]model.UserRef)}
}

func (c *userRefCache) resolve(ctx context.Context, userID string) (model.UserRef, error) {
	if ref, ok := c.refs[userID]; ok {
		return ref, nil
	}
	user, err := c.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		// Organiser records are never hard-deleted, but a dangling ref
		// should not fail the whole read.
		ref := model.UserRef{ID: userID}
		c.refs[userID] = ref
		return ref, nil
	}
	if err != nil {
		return model.UserRef{}, err
	}
	ref := model.UserRef{ID: user.ID, Username: user.Username}
	c.refs[userID] = ref
	return ref, nil
}
