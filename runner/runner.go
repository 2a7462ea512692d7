// Package runner executes untrusted user code in short-lived child
// processes with a hard timeout.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// ErrUnsupportedLanguage is returned when no toolchain is configured for
// the requested language.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// TimeoutMessage is sent back to the client verbatim when execution
// exceeds the configured deadline.
const TimeoutMessage = "Execution timed out. Your code took too long to run."

type step struct {
	name string
	args []string
}

// Runner writes submitted code to a scratch directory and runs it with
// the language's toolchain. Each run gets ULID-scoped filenames so
// concurrent runs never collide.
type Runner struct {
	tempDir string
	timeout time.Duration
}

func New(tempDir string, timeout time.Duration) *Runner {
	return &Runner{tempDir: tempDir, timeout: timeout}
}

// buildSteps returns the source filename and the commands to run for a
// language. Compiled languages get a compile step followed by the binary.
func buildSteps(language, base, dir string) (string, []step, error) {
	srcPath := func(ext string) string { return filepath.Join(dir, base+ext) }
	switch language {
	case "javascript":
		src := srcPath(".js")
		return src, []step{{name: "node", args: []string{src}}}, nil
	case "python":
		src := srcPath(".py")
		return src, []step{{name: "python3", args: []string{src}}}, nil
	case "c":
		src := srcPath(".c")
		out := filepath.Join(dir, base+".out")
		return src, []step{
			{name: "gcc", args: []string{src, "-o", out}},
			{name: out},
		}, nil
	case "cpp":
		src := srcPath(".cpp")
		out := filepath.Join(dir, base+".out")
		return src, []step{
			{name: "g++", args: []string{src, "-o", out}},
			{name: out},
		}, nil
	}
	return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, language)
}

// Run executes code and returns its combined stdout/stderr. Compile
// failures and runtime crashes are reported through the output string,
// not the error: the client shows whatever the toolchain printed.
func (r *Runner) Run(ctx context.Context, code, language string) (string, error) {
	base := ulid.Make().String()
	src, steps, err := buildSteps(language, base, r.tempDir)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(src, []byte(code), 0o600); err != nil {
		return "", fmt.Errorf("write source: %w", err)
	}
	defer r.cleanup(base)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var output []byte
	for _, s := range steps {
		cmd := exec.CommandContext(ctx, s.name, s.args...)
		cmd.Dir = r.tempDir
		out, err := cmd.CombinedOutput()
		output = out
		if ctx.Err() == context.DeadlineExceeded {
			return TimeoutMessage, nil
		}
		if err != nil {
			// Toolchain diagnostics go to the user as ordinary output.
			return string(output), nil
		}
	}
	return string(output), nil
}

func (r *Runner) cleanup(base string) {
	matches, err := filepath.Glob(filepath.Join(r.tempDir, base+".*"))
	if err != nil {
		return
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil {
			logrus.WithError(err).WithField("path", path).Debug("Failed to remove scratch file")
		}
	}
}
