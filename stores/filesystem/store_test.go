package filesystem

import (
	"context"
	"testing"

	"github.com/Darshanscodehub/CodeCollab/core"
)

func TestUserRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()

	user := &core.User{ID: "u1", Name: "Ada", Email: "Ada@Example.com", PasswordHash: "secret-hash"}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}

	// The hash must survive the trip to disk even though core.User never
	// serializes it.
	found, err := store.FindUserByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("FindUserByEmail() failed: %v", err)
	}
	if found.PasswordHash != "secret-hash" {
		t.Errorf("PasswordHash = %q, want stored hash", found.PasswordHash)
	}

	if err := store.CreateUser(ctx, &core.User{ID: "u2", Email: "ada@example.com"}); err == nil {
		t.Error("CreateUser() should reject a duplicate email")
	}

	byID, err := store.FindUserByID(ctx, "u1")
	if err != nil {
		t.Fatalf("FindUserByID() failed: %v", err)
	}
	if byID.Name != "Ada" {
		t.Errorf("FindUserByID() name = %q, want %q", byID.Name, "Ada")
	}

	if _, err := store.FindUserByID(ctx, "missing"); err == nil {
		t.Error("FindUserByID() should fail for an unknown ID")
	}
}

func TestSnippetRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()

	id, err := store.CreateSnippet(ctx, &core.Snippet{
		UserID:   "u1",
		Title:    "hello",
		Language: "javascript",
		Folder:   "root",
		Code:     "console.log('hi')",
	})
	if err != nil {
		t.Fatalf("CreateSnippet() failed: %v", err)
	}

	snippet, err := store.GetSnippet(ctx, id)
	if err != nil {
		t.Fatalf("GetSnippet() failed: %v", err)
	}
	if snippet.Code != "console.log('hi')" || snippet.UserID != "u1" {
		t.Errorf("GetSnippet() = %+v, want stored fields", snippet)
	}

	snippet.Folder = "demos"
	if err := store.UpdateSnippet(ctx, snippet); err != nil {
		t.Fatalf("UpdateSnippet() failed: %v", err)
	}

	listed, err := store.ListSnippets(ctx, "u1", "demos")
	if err != nil {
		t.Fatalf("ListSnippets() failed: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != id {
		t.Errorf("ListSnippets(folder=demos) = %v, want the moved snippet", listed)
	}

	if err := store.DeleteSnippet(ctx, id); err != nil {
		t.Fatalf("DeleteSnippet() failed: %v", err)
	}
	if _, err := store.GetSnippet(ctx, id); err == nil {
		t.Error("GetSnippet() should fail after delete")
	}
	if err := store.DeleteSnippet(ctx, id); err == nil {
		t.Error("DeleteSnippet() should fail for an unknown ID")
	}
}
