package core

import (
	"context"
	"time"
)

type (
	// Snippet is a user-saved piece of code, grouped into a folder.
	Snippet struct {
		ID        string    `json:"id"`
		UserID    string    `json:"-"` // owner, resolved from the JWT, never echoed back
		Title     string    `json:"title"`
		Language  string    `json:"language"`
		Folder    string    `json:"folder"`
		Code      string    `json:"code,omitempty"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// SnippetStore defines the persistence layer for snippets. Ownership
	// checks live in the handlers so they can distinguish a missing snippet
	// from a forbidden one.
	SnippetStore interface {
		// CreateSnippet stores a new snippet and returns its assigned ID.
		CreateSnippet(ctx context.Context, snippet *Snippet) (string, error)

		// GetSnippet returns a snippet by ID, regardless of owner.
		GetSnippet(ctx context.Context, id string) (*Snippet, error)

		// ListSnippets returns a user's snippets, newest first. An empty
		// folder matches all folders.
		ListSnippets(ctx context.Context, userID, folder string) ([]*Snippet, error)

		// UpdateSnippet rewrites a stored snippet in place.
		UpdateSnippet(ctx context.Context, snippet *Snippet) error

		// DeleteSnippet removes a snippet by ID.
		DeleteSnippet(ctx context.Context, id string) error
	}
)
