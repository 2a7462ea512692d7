package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/Darshanscodehub/CodeCollab/core"
)

type sqliteStore struct {
	db *sql.DB
}

// NewStore creates a new SQLite-based store.
func NewStore(dataSourceName string) *sqliteStore {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		log.Fatalf("failed to open sqlite database: %v", err)
	}

	userTableStmt := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at DATETIME
	);`
	if _, err = db.Exec(userTableStmt); err != nil {
		log.Fatalf("failed to create users table: %v", err)
	}

	snippetTableStmt := `
	CREATE TABLE IF NOT EXISTS snippets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		language TEXT NOT NULL,
		folder TEXT,
		code TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`
	if _, err = db.Exec(snippetTableStmt); err != nil {
		log.Fatalf("failed to create snippets table: %v", err)
	}

	return &sqliteStore{db}
}

// UserStore implementation

func (s *sqliteStore) CreateUser(ctx context.Context, user *core.User) error {
	log := logrus.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email})

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)",
		user.ID, user.Name, strings.ToLower(user.Email), user.PasswordHash, user.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return fmt.Errorf("email %s already exists", user.Email)
		}
		log.WithError(err).Error("Failed to create user")
		return err
	}
	log.Info("User created successfully")
	return nil
}

func (s *sqliteStore) FindUserByEmail(ctx context.Context, email string) (*core.User, error) {
	var user core.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?",
		strings.ToLower(email)).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user with email %s not found", email)
		}
		logrus.WithError(err).Error("Failed to retrieve user by email")
		return nil, err
	}
	return &user, nil
}

func (s *sqliteStore) FindUserByID(ctx context.Context, id string) (*core.User, error) {
	var user core.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?",
		id).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user with id %s not found", id)
		}
		logrus.WithError(err).Error("Failed to retrieve user by id")
		return nil, err
	}
	return &user, nil
}

// SnippetStore implementation

func (s *sqliteStore) CreateSnippet(ctx context.Context, snippet *core.Snippet) (string, error) {
	id := ulid.Make().String()
	now := time.Now()
	log := logrus.WithFields(logrus.Fields{
		"snippet_id": id,
		"user_id":    snippet.UserID,
	})

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO snippets (id, user_id, title, language, folder, code, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		id, snippet.UserID, snippet.Title, snippet.Language, snippet.Folder, snippet.Code, now, now)
	if err != nil {
		log.WithError(err).Error("Failed to create snippet")
		return "", err
	}
	log.Info("Snippet created successfully")
	return id, nil
}

func (s *sqliteStore) GetSnippet(ctx context.Context, id string) (*core.Snippet, error) {
	log := logrus.WithField("snippet_id", id)

	var snippet core.Snippet
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, title, language, folder, code, created_at, updated_at FROM snippets WHERE id = ?",
		id).Scan(&snippet.ID, &snippet.UserID, &snippet.Title, &snippet.Language, &snippet.Folder, &snippet.Code, &snippet.CreatedAt, &snippet.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Warn("Snippet with specified ID not found")
			return nil, fmt.Errorf("snippet with id %s not found", id)
		}
		log.WithError(err).Error("Failed to retrieve snippet")
		return nil, err
	}
	return &snippet, nil
}

func (s *sqliteStore) ListSnippets(ctx context.Context, userID, folder string) ([]*core.Snippet, error) {
	log := logrus.WithFields(logrus.Fields{"user_id": userID, "folder": folder})

	query := "SELECT id, user_id, title, language, folder, code, created_at, updated_at FROM snippets WHERE user_id = ?"
	args := []any{userID}
	if folder != "" {
		query += " AND folder = ?"
		args = append(args, folder)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.WithError(err).Error("Failed to list snippets")
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.WithError(cerr).Warn("Failed to close snippet rows")
		}
	}()

	snippets := make([]*core.Snippet, 0)
	for rows.Next() {
		var snippet core.Snippet
		if err := rows.Scan(&snippet.ID, &snippet.UserID, &snippet.Title, &snippet.Language, &snippet.Folder, &snippet.Code, &snippet.CreatedAt, &snippet.UpdatedAt); err != nil {
			log.WithError(err).Error("Failed to scan snippet")
			continue
		}
		snippets = append(snippets, &snippet)
	}
	return snippets, rows.Err()
}

func (s *sqliteStore) UpdateSnippet(ctx context.Context, snippet *core.Snippet) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE snippets SET title = ?, language = ?, folder = ?, code = ?, updated_at = ? WHERE id = ?",
		snippet.Title, snippet.Language, snippet.Folder, snippet.Code, time.Now(), snippet.ID)
	if err != nil {
		logrus.WithField("snippet_id", snippet.ID).WithError(err).Error("Failed to update snippet")
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("snippet with id %s not found", snippet.ID)
	}
	return nil
}

func (s *sqliteStore) DeleteSnippet(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM snippets WHERE id = ?", id)
	if err != nil {
		logrus.WithField("snippet_id", id).WithError(err).Error("Failed to delete snippet")
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("snippet with id %s not found", id)
	}
	logrus.WithField("snippet_id", id).Info("Snippet deleted successfully")
	return nil
}
