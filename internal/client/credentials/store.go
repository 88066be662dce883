// Package credentials persists the bearer token and the signed-in user
// profile between runs.
//
// The store is best-effort: repository failures are logged and swallowed,
// so a broken database degrades to "nothing stored" instead of breaking
// navigation. The two entries are always written together and erased
// together.
package credentials

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/vmsclient/internal/client/models"
	"github.com/dmitrijs2005/vmsclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/vmsclient/internal/logging"
)

const (
	TokenKey = "authToken"
	UserKey  = "currentUser"
)

type Store struct {
	repo metadata.Repository
	log  logging.Logger
}

func NewStore(repo metadata.Repository, log logging.Logger) *Store {
	return &Store{repo: repo, log: log.With("component", "credentials")}
}

func (s *Store) SaveToken(ctx context.Context, token string) {
	if err := s.repo.Set(ctx, TokenKey, []byte(token)); err != nil {
		s.log.Error(ctx, "failed to save token", "error", err)
	}
}

// GetToken returns the stored token, or "" when none is stored or the
// store is unreadable.
func (s *Store) GetToken(ctx context.Context) string {
	b, err := s.repo.Get(ctx, TokenKey)
	if err != nil {
		s.log.Error(ctx, "failed to read token", "error", err)
		return ""
	}
	return string(b)
}

func (s *Store) SaveUser(ctx context.Context, u *models.UserProfile) {
	b, err := json.Marshal(u)
	if err != nil {
		s.log.Error(ctx, "failed to encode user", "error", err)
		return
	}
	if err := s.repo.Set(ctx, UserKey, b); err != nil {
		s.log.Error(ctx, "failed to save user", "error", err)
	}
}

// GetUser returns the stored profile. A record that does not decode or
// lacks an id or a roles list is corrupted: the store is cleared and nil
// returned.
func (s *Store) GetUser(ctx context.Context) *models.UserProfile {
	b, err := s.repo.Get(ctx, UserKey)
	if err != nil {
		s.log.Error(ctx, "failed to read user", "error", err)
		return nil
	}
	if b == nil {
		return nil
	}

	var u models.UserProfile
	if err := json.Unmarshal(b, &u); err != nil {
		s.log.Warn(ctx, "stored user is not valid JSON, clearing", "error", err)
		s.Clear(ctx)
		return nil
	}
	if err := u.Validate(); err != nil {
		s.log.Warn(ctx, "stored user is malformed, clearing", "error", err)
		s.Clear(ctx)
		return nil
	}
	return &u
}

// Save writes the token and the profile in one transaction. It reports
// whether the write went through.
func (s *Store) Save(ctx context.Context, token string, u *models.UserProfile) bool {
	b, err := json.Marshal(u)
	if err != nil {
		s.log.Error(ctx, "failed to encode user", "error", err)
		return false
	}
	if err := s.repo.SetMany(ctx, map[string][]byte{TokenKey: []byte(token), UserKey: b}); err != nil {
		s.log.Error(ctx, "failed to save credentials", "error", err)
		return false
	}
	return true
}

// Clear erases both entries at once.
func (s *Store) Clear(ctx context.Context) {
	if err := s.repo.Delete(ctx, TokenKey, UserKey); err != nil {
		s.log.Error(ctx, "failed to clear credentials", "error", err)
	}
}
