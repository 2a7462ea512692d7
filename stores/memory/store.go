package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/Darshanscodehub/CodeCollab/core"
)

// memStore keeps users and snippets in per-instance maps, so tests can
// construct isolated stores.
type memStore struct {
	mu       sync.RWMutex
	users    map[string]core.User // keyed by ID
	emails   map[string]string    // lowercased email -> ID
	snippets map[string]core.Snippet
}

// NewStore creates a new in-memory store.
func NewStore() *memStore {
	return &memStore{
		users:    make(map[string]core.User),
		emails:   make(map[string]string),
		snippets: make(map[string]core.Snippet),
	}
}

func (s *memStore) CreateUser(ctx context.Context, user *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, taken := s.emails[email]; taken {
		return fmt.Errorf("email %s already exists", user.Email)
	}

	s.users[user.ID] = *user
	s.emails[email] = user.ID
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email}).Info("User created successfully")
	return nil
}

func (s *memStore) FindUserByEmail(ctx context.Context, email string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("user with email %s not found", email)
	}
	user := s.users[id]
	return &user, nil
}

func (s *memStore) FindUserByID(ctx context.Context, id string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user with id %s not found", id)
	}
	return &user, nil
}

func (s *memStore) CreateSnippet(ctx context.Context, snippet *core.Snippet) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ulid.Make().String()
	now := time.Now()
	stored := *snippet
	stored.ID = id
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.snippets[id] = stored

	logrus.WithFields(logrus.Fields{
		"snippet_id": id,
		"user_id":    snippet.UserID,
		"folder":     snippet.Folder,
	}).Info("Snippet created successfully")
	return id, nil
}

func (s *memStore) GetSnippet(ctx context.Context, id string) (*core.Snippet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snippet, ok := s.snippets[id]
	if !ok {
		logrus.WithField("snippet_id", id).Warn("Snippet with specified ID not found")
		return nil, fmt.Errorf("snippet with id %s not found", id)
	}
	return &snippet, nil
}

func (s *memStore) ListSnippets(ctx context.Context, userID, folder string) ([]*core.Snippet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snippets := make([]*core.Snippet, 0)
	for _, snippet := range s.snippets {
		if snippet.UserID != userID {
			continue
		}
		if folder != "" && snippet.Folder != folder {
			continue
		}
		stored := snippet
		snippets = append(snippets, &stored)
	}

	sort.Slice(snippets, func(i, j int) bool {
		if snippets[i].CreatedAt.Equal(snippets[j].CreatedAt) {
			return snippets[i].ID > snippets[j].ID
		}
		return snippets[i].CreatedAt.After(snippets[j].CreatedAt)
	})
	return snippets, nil
}

func (s *memStore) UpdateSnippet(ctx context.Context, snippet *core.Snippet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.snippets[snippet.ID]
	if !ok {
		return fmt.Errorf("snippet with id %s not found", snippet.ID)
	}

	stored := *snippet
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now()
	s.snippets[snippet.ID] = stored
	return nil
}

func (s *memStore) DeleteSnippet(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snippets[id]; !ok {
		return fmt.Errorf("snippet with id %s not found", id)
	}
	delete(s.snippets, id)
	logrus.WithField("snippet_id", id).Info("Snippet deleted successfully")
	return nil
}
