package execute

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"github.com/Darshanscodehub/CodeCollab/runner"
)

// CodeRunner executes user code and returns its combined output.
type CodeRunner interface {
	Run(ctx context.Context, code, language string) (string, error)
}

type runRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// HandleRun executes submitted code and returns whatever it printed.
// Errors the user can act on (empty code, unknown language) come back as
// output text so the editor console shows them inline.
func HandleRun(cr CodeRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req runRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"output": "Invalid request body."})
			return
		}
		if req.Code == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"output": "No code provided."})
			return
		}

		output, err := cr.Run(r.Context(), req.Code, req.Language)
		if err != nil {
			if errors.Is(err, runner.ErrUnsupportedLanguage) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, map[string]string{"output": "Unsupported language"})
				return
			}
			logrus.WithError(err).WithField("language", req.Language).Error("Code execution failed")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"output": "Internal error while running code."})
			return
		}

		render.JSON(w, r, map[string]string{"output": output})
	}
}
