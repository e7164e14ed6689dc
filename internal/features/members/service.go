// Package members — service.go is the business layer over the registry.
package members

import (
	"context"
	"fmt"
	"strings"
)

// Service manages the member registry.
type Service struct {
	repo *Repository
}

// NewService creates a member service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// EnsureMember records or refreshes a user. Called on every message the bot
// sees, so names stay current.
func (s *Service) EnsureMember(ctx context.Context, userID int64, username, firstName, lastName string) error {
	return s.repo.Upsert(ctx, &Member{
		UserID:    userID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
	})
}

// ResolveUsername maps "@name" or "name" to a user id.
func (s *Service) ResolveUsername(ctx context.Context, username string) (int64, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return 0, fmt.Errorf("empty username")
	}
	m, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	return m.UserID, nil
}

// DisplayName returns the best-known name for a user id, falling back to
// "User <id>" for users the registry has never seen.
func (s *Service) DisplayName(ctx context.Context, userID int64) string {
	m, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Sprintf("User %d", userID)
	}
	if name := m.DisplayName(); name != "" {
		return name
	}
	return fmt.Sprintf("User %d", userID)
}
