package snippets

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"github.com/Darshanscodehub/CodeCollab/core"
	"github.com/Darshanscodehub/CodeCollab/handlers/auth"
	"github.com/Darshanscodehub/CodeCollab/middleware"
)

type (
	// CreateSnippetRequest accepts legacy field aliases so older clients
	// keep working.
	CreateSnippetRequest struct {
		Title    string `json:"title"`
		Name     string `json:"name"`
		Code     string `json:"code"`
		Content  string `json:"content"`
		Language string `json:"language"`
		Lang     string `json:"lang"`
		Folder   string `json:"folder"`
	}

	UpdateSnippetRequest struct {
		Title  string `json:"title"`
		Folder string `json:"folder"`
	}

	CreateFolderRequest struct {
		FolderName string `json:"folderName"`
	}

	// FileEntry is the per-snippet line in the folder listing.
	FileEntry struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Language string `json:"language"`
	}

	FolderGroup struct {
		Folder string      `json:"folder"`
		Files  []FileEntry `json:"files"`
	}
)

func claimsFrom(r *http.Request) (*auth.AppClaims, bool) {
	claims, ok := r.Context().Value(middleware.ClaimsContextKey).(*auth.AppClaims)
	return claims, ok
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, map[string]string{"message": "User claims not found"})
}

// HandleCreate saves a new snippet owned by the caller.
func HandleCreate(store core.SnippetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			unauthorized(w, r)
			return
		}

		var req CreateSnippetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"message": "Invalid request body"})
			return
		}

		title := firstNonEmpty(req.Title, req.Name)
		code := firstNonEmpty(req.Code, req.Content)
		language := firstNonEmpty(req.Language, req.Lang)
		folder := req.Folder
		if folder == "" {
			folder = "root"
		}

		if title == "" || code == "" || language == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"message": "All fields are required: title, code, language"})
			return
		}

		id, err := store.CreateSnippet(r.Context(), &core.Snippet{
			UserID:   claims.Subject,
			Title:    title,
			Language: language,
			Folder:   folder,
			Code:     code,
		})
		if err != nil {
			logrus.WithError(err).WithField("user_id", claims.Subject).Error("Failed to save snippet")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"message": "Error saving snippet: " + err.Error()})
			return
		}

		render.JSON(w, r, map[string]string{
			"message":   "Snippet saved successfully!",
			"snippetId": id,
		})
	}
}

// HandleGet returns one snippet; only the owner may read it.
func HandleGet(store core.SnippetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			unauthorized(w, r)
			return
		}

		snippet, err := store.GetSnippet(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"message": "Snippet not found"})
			return
		}

		if snippet.UserID != claims.Subject {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, map[string]string{"message": "Forbidden"})
			return
		}

		render.JSON(w, r, snippet)
	}
}

// HandleList returns the caller's snippets, optionally filtered by the
// folder query parameter, newest first.
func HandleList(store core.SnippetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			unauthorized(w, r)
			return
		}

		snippets, err := store.ListSnippets(r.Context(), claims.Subject, r.URL.Query().Get("folder"))
		if err != nil {
			logrus.WithError(err).WithField("user_id", claims.Subject).Error("Failed to list snippets")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"message": "Failed to list snippets"})
			return
		}
		if snippets == nil {
			snippets = []*core.Snippet{}
		}
		render.JSON(w, r, snippets)
	}
}

// HandleListFiles groups the caller's snippets by folder for the file
// explorer view.
func HandleListFiles(store core.SnippetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			unauthorized(w, r)
			return
		}

		snippets, err := store.ListSnippets(r.Context(), claims.Subject, "")
		if err != nil {
			logrus.WithError(err).WithField("user_id", claims.Subject).Error("Failed to list files")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"message": "Error fetching files"})
			return
		}

		grouped := make(map[string][]FileEntry)
		order := make([]string, 0)
		for _, snippet := range snippets {
			folder := snippet.Folder
			if folder == "" {
				folder = "Default"
			}
			if _, seen := grouped[folder]; !seen {
				order = append(order, folder)
			}
			grouped[folder] = append(grouped[folder], FileEntry{
				ID:       snippet.ID,
				Title:    snippet.Title,
				Language: snippet.Language,
			})
		}

		folders := make([]FolderGroup, 0, len(order))
		for _, folder := range order {
			folders = append(folders, FolderGroup{Folder: folder, Files: grouped[folder]})
		}
		render.JSON(w, r, folders)
	}
}

// HandleUpdate renames a snippet or moves it to another folder.
func HandleUpdate(store core.SnippetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			unauthorized(w, r)
			return
		}

		var req UpdateSnippetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"message": "Invalid request body"})
			return
		}
		if req.Title == "" && req.Folder == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"message": "No fields to update provided."})
			return
		}

		snippet, err := store.GetSnippet(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"message": "Snippet not found."})
			return
		}
		if snippet.UserID != claims.Subject {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, map[string]string{"message": "Forbidden: You do not have permission to modify this snippet."})
			return
		}

		if req.Title != "" {
			snippet.Title = req.Title
		}
		if req.Folder != "" {
			snippet.Folder = req.Folder
		}
		if err := store.UpdateSnippet(r.Context(), snippet); err != nil {
			logrus.WithError(err).WithField("snippet_id", snippet.ID).Error("Failed to update snippet")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"message": "Error updating snippet: " + err.Error()})
			return
		}

		render.JSON(w, r, map[string]any{
			"message": "Snippet updated successfully.",
			"snippet": snippet,
		})
	}
}

// HandleDelete removes a snippet; only the owner may delete it.
func HandleDelete(store core.SnippetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			unauthorized(w, r)
			return
		}

		snippet, err := store.GetSnippet(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"message": "Snippet not found."})
			return
		}
		if snippet.UserID != claims.Subject {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, map[string]string{"message": "Forbidden: You do not have permission to delete this snippet."})
			return
		}

		if err := store.DeleteSnippet(r.Context(), snippet.ID); err != nil {
			logrus.WithError(err).WithField("snippet_id", snippet.ID).Error("Failed to delete snippet")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"message": "Error deleting snippet: " + err.Error()})
			return
		}

		render.JSON(w, r, map[string]string{"message": "Snippet deleted successfully."})
	}
}

// HandleCreateFolder materializes a folder by dropping a placeholder snippet
// into it; folders have no standalone representation.
func HandleCreateFolder(store core.SnippetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			unauthorized(w, r)
			return
		}

		var req CreateFolderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FolderName == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"message": "Folder name is required."})
			return
		}

		_, err := store.CreateSnippet(r.Context(), &core.Snippet{
			UserID:   claims.Subject,
			Title:    "Untitled",
			Language: "javascript",
			Folder:   req.FolderName,
			Code:     "// Start coding here...",
		})
		if err != nil {
			logrus.WithError(err).WithField("user_id", claims.Subject).Error("Failed to create folder")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"message": "Error creating folder: " + err.Error()})
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]string{
			"message":    "Folder created successfully!",
			"folderName": req.FolderName,
		})
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
