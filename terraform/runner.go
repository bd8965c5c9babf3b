// Package terraform drives the terraform CLI: rendering configuration,
// importing live resources into state, and applying plans under retry.
package terraform

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Runner executes one terraform command and returns its combined output.
// Tests script it; production uses CLIRunner.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// DefaultCommandTimeout bounds any single terraform invocation. Apply of
// a full free-tier fleet stays well under this in practice.
const DefaultCommandTimeout = 30 * time.Minute

// CLIRunner shells out to the terraform binary in a fixed working
// directory.
type CLIRunner struct {
	dir     string
	binary  string
	timeout time.Duration
}

// NewCLIRunner creates a runner rooted at dir.
func NewCLIRunner(dir string, timeout time.Duration) *CLIRunner {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &CLIRunner{dir: dir, binary: "terraform", timeout: timeout}
}

// Run executes terraform with the given arguments. A command that
// overruns the timeout is killed and reported as timed out, which the
// transient classifiers recognize.
func (r *CLIRunner) Run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	log.Debug().Strs("args", args).Str("dir", r.dir).Msg("running terraform")

	cmd := exec.CommandContext(ctx, r.binary, args...) // #nosec G204 -- args are engine-built
	cmd.Dir = r.dir
	out, err := cmd.CombinedOutput()
	output := string(out)

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return output, fmt.Errorf("terraform %s timed out after %s", args[0], r.timeout)
		}
		return output, fmt.Errorf("terraform %s: %w: %s", args[0], err, tail(output, 2000))
	}
	return output, nil
}

// tail keeps the last n bytes of command output. Terraform puts the
// actual error at the end.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
