package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/Darshanscodehub/CodeCollab/core"
)

type fsStore struct {
	basePath string
}

// userRecord mirrors core.User with the password hash included, since the
// core type deliberately refuses to serialize it.
type userRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

type snippetRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Language  string    `json:"language"`
	Folder    string    `json:"folder"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewStore creates a new filesystem-based store rooted at basePath.
func NewStore(basePath string) *fsStore {
	for _, dir := range []string{basePath, filepath.Join(basePath, "users"), filepath.Join(basePath, "snippets")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("failed to create storage directory: %v", err)
		}
	}
	return &fsStore{basePath: basePath}
}

func (s *fsStore) userPath(id string) string {
	return filepath.Join(s.basePath, "users", id+".json")
}

func (s *fsStore) snippetPath(id string) string {
	return filepath.Join(s.basePath, "snippets", id+".json")
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// UserStore implementation

func (s *fsStore) CreateUser(ctx context.Context, user *core.User) error {
	log := logrus.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email})

	if existing, _ := s.FindUserByEmail(ctx, user.Email); existing != nil {
		return fmt.Errorf("email %s already exists", user.Email)
	}

	record := userRecord{
		ID:           user.ID,
		Name:         user.Name,
		Email:        strings.ToLower(user.Email),
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	if err := writeJSON(s.userPath(user.ID), record); err != nil {
		log.WithError(err).Error("Failed to create user")
		return err
	}
	log.Info("User created successfully")
	return nil
}

func (s *fsStore) FindUserByEmail(ctx context.Context, email string) (*core.User, error) {
	entries, err := os.ReadDir(filepath.Join(s.basePath, "users"))
	if err != nil {
		return nil, err
	}

	want := strings.ToLower(email)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		record, err := s.readUser(filepath.Join(s.basePath, "users", entry.Name()))
		if err != nil {
			logrus.WithField("file", entry.Name()).WithError(err).Warn("Skipping unreadable user file")
			continue
		}
		if record.Email == want {
			return recordToUser(record), nil
		}
	}
	return nil, fmt.Errorf("user with email %s not found", email)
}

func (s *fsStore) FindUserByID(ctx context.Context, id string) (*core.User, error) {
	record, err := s.readUser(s.userPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("user with id %s not found", id)
		}
		return nil, err
	}
	return recordToUser(record), nil
}

func (s *fsStore) readUser(path string) (*userRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var record userRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func recordToUser(record *userRecord) *core.User {
	return &core.User{
		ID:           record.ID,
		Name:         record.Name,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		CreatedAt:    record.CreatedAt,
	}
}

// SnippetStore implementation

func (s *fsStore) CreateSnippet(ctx context.Context, snippet *core.Snippet) (string, error) {
	id := ulid.Make().String()
	now := time.Now()
	record := snippetRecord{
		ID:        id,
		UserID:    snippet.UserID,
		Title:     snippet.Title,
		Language:  snippet.Language,
		Folder:    snippet.Folder,
		Code:      snippet.Code,
		CreatedAt: now,
		UpdatedAt: now,
	}

	log := logrus.WithFields(logrus.Fields{"snippet_id": id, "user_id": snippet.UserID})
	if err := writeJSON(s.snippetPath(id), record); err != nil {
		log.WithError(err).Error("Failed to create snippet")
		return "", err
	}
	log.Info("Snippet created successfully")
	return id, nil
}

func (s *fsStore) GetSnippet(ctx context.Context, id string) (*core.Snippet, error) {
	record, err := s.readSnippet(s.snippetPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			logrus.WithField("snippet_id", id).Warn("Snippet with specified ID not found")
			return nil, fmt.Errorf("snippet with id %s not found", id)
		}
		return nil, err
	}
	return recordToSnippet(record), nil
}

func (s *fsStore) ListSnippets(ctx context.Context, userID, folder string) ([]*core.Snippet, error) {
	entries, err := os.ReadDir(filepath.Join(s.basePath, "snippets"))
	if err != nil {
		return nil, err
	}

	snippets := make([]*core.Snippet, 0)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		record, err := s.readSnippet(filepath.Join(s.basePath, "snippets", entry.Name()))
		if err != nil {
			logrus.WithField("file", entry.Name()).WithError(err).Warn("Skipping unreadable snippet file")
			continue
		}
		if record.UserID != userID {
			continue
		}
		if folder != "" && record.Folder != folder {
			continue
		}
		snippets = append(snippets, recordToSnippet(record))
	}

	sort.Slice(snippets, func(i, j int) bool {
		if snippets[i].CreatedAt.Equal(snippets[j].CreatedAt) {
			return snippets[i].ID > snippets[j].ID
		}
		return snippets[i].CreatedAt.After(snippets[j].CreatedAt)
	})
	return snippets, nil
}

func (s *fsStore) UpdateSnippet(ctx context.Context, snippet *core.Snippet) error {
	existing, err := s.readSnippet(s.snippetPath(snippet.ID))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("snippet with id %s not found", snippet.ID)
		}
		return err
	}

	record := snippetRecord{
		ID:        snippet.ID,
		UserID:    snippet.UserID,
		Title:     snippet.Title,
		Language:  snippet.Language,
		Folder:    snippet.Folder,
		Code:      snippet.Code,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: time.Now(),
	}
	return writeJSON(s.snippetPath(snippet.ID), record)
}

func (s *fsStore) DeleteSnippet(ctx context.Context, id string) error {
	err := os.Remove(s.snippetPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("snippet with id %s not found", id)
		}
		return err
	}
	logrus.WithField("snippet_id", id).Info("Snippet deleted successfully")
	return nil
}

func (s *fsStore) readSnippet(path string) (*snippetRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var record snippetRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func recordToSnippet(record *snippetRecord) *core.Snippet {
	return &core.Snippet{
		ID:        record.ID,
		UserID:    record.UserID,
		Title:     record.Title,
		Language:  record.Language,
		Folder:    record.Folder,
		Code:      record.Code,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
