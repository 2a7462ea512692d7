package aws

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/Darshanscodehub/CodeCollab/core"
)

type s3Store struct {
	s3Client *s3.Client
	bucket   string
}

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

// NewStore creates a new S3-based store.
func NewStore(bucketName string) *s3Store {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	return &s3Store{
		s3Client: s3.NewFromConfig(cfg),
		bucket:   bucketName,
	}
}

func userKey(id string) string    { return path.Join("users", id+".json") }
func snippetKey(id string) string { return path.Join("snippets", id+".json") }

func (s *s3Store) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	return err
}

func (s *s3Store) getJSON(ctx context.Context, key string, v any) error {
	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func isNotFound(err error) bool {
	var noSuchKey *s3types.NoSuchKey
	return errors.As(err, &noSuchKey)
}

// UserStore implementation

func (s *s3Store) CreateUser(ctx context.Context, user *core.User) error {
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
	if err := s.putJSON(ctx, userKey(user.ID), record); err != nil {
		return fmt.Errorf("failed to store user %s: %v", user.ID, err)
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email}).Info("User created successfully")
	return nil
}

func (s *s3Store) FindUserByEmail(ctx context.Context, email string) (*core.User, error) {
	want := strings.ToLower(email)

	paginator := s3.NewListObjectsV2Paginator(s.s3Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String("users/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %v", err)
		}
		for _, object := range page.Contents {
			var record userRecord
			if err := s.getJSON(ctx, *object.Key, &record); err != nil {
				logrus.WithField("key", *object.Key).WithError(err).Warn("Skipping unreadable user object")
				continue
			}
			if record.Email == want {
				return recordToUser(&record), nil
			}
		}
	}
	return nil, fmt.Errorf("user with email %s not found", email)
}

func (s *s3Store) FindUserByID(ctx context.Context, id string) (*core.User, error) {
	var record userRecord
	if err := s.getJSON(ctx, userKey(id), &record); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("user with id %s not found", id)
		}
		return nil, err
	}
	return recordToUser(&record), nil
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

func (s *s3Store) CreateSnippet(ctx context.Context, snippet *core.Snippet) (string, error) {
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
	if err := s.putJSON(ctx, snippetKey(id), record); err != nil {
		return "", fmt.Errorf("failed to store snippet: %v", err)
	}
	logrus.WithFields(logrus.Fields{"snippet_id": id, "user_id": snippet.UserID}).Info("Snippet created successfully")
	return id, nil
}

func (s *s3Store) GetSnippet(ctx context.Context, id string) (*core.Snippet, error) {
	var record snippetRecord
	if err := s.getJSON(ctx, snippetKey(id), &record); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("snippet with id %s not found", id)
		}
		return nil, err
	}
	return recordToSnippet(&record), nil
}

func (s *s3Store) ListSnippets(ctx context.Context, userID, folder string) ([]*core.Snippet, error) {
	snippets := make([]*core.Snippet, 0)

	paginator := s3.NewListObjectsV2Paginator(s.s3Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String("snippets/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list snippets: %v", err)
		}
		for _, object := range page.Contents {
			var record snippetRecord
			if err := s.getJSON(ctx, *object.Key, &record); err != nil {
				logrus.WithField("key", *object.Key).WithError(err).Warn("Skipping unreadable snippet object")
				continue
			}
			if record.UserID != userID {
				continue
			}
			if folder != "" && record.Folder != folder {
				continue
			}
			snippets = append(snippets, recordToSnippet(&record))
		}
	}

	sort.Slice(snippets, func(i, j int) bool {
		if snippets[i].CreatedAt.Equal(snippets[j].CreatedAt) {
			return snippets[i].ID > snippets[j].ID
		}
		return snippets[i].CreatedAt.After(snippets[j].CreatedAt)
	})
	return snippets, nil
}

func (s *s3Store) UpdateSnippet(ctx context.Context, snippet *core.Snippet) error {
	var existing snippetRecord
	if err := s.getJSON(ctx, snippetKey(snippet.ID), &existing); err != nil {
		if isNotFound(err) {
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
	return s.putJSON(ctx, snippetKey(snippet.ID), record)
}

func (s *s3Store) DeleteSnippet(ctx context.Context, id string) error {
	if _, err := s.GetSnippet(ctx, id); err != nil {
		return err
	}
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(snippetKey(id)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete snippet %s: %v", id, err)
	}
	logrus.WithField("snippet_id", id).Info("Snippet deleted successfully")
	return nil
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
