package users

import (
	"context"

	"github.com/spotcheck/spotfeed/internal/models"
	"github.com/spotcheck/spotfeed/internal/store"
)

// Service supplies hydrated user objects by id, backed by the users
// collection of the document store.
type Service struct {
	store store.Store
}

// New creates a user service.
func New(st store.Store) *Service {
	return &Service{store: st}
}

// UserByID returns the user with the given id. Returns store.ErrNotFound
// when no such user exists.
func (s *Service) UserByID(ctx context.Context, id string) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}
