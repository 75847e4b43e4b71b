package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"spellaudit/internal/core"
)

// SpellChecker invokes the external checker binary. The binary is called as
// `checker <input-file> <wordlist>` and prints misspelled tokens to stdout,
// one per line.
type SpellChecker struct {
	bin      string
	wordlist string
	timeout  time.Duration
}

func NewSpellChecker(bin, wordlist string, timeout time.Duration) *SpellChecker {
	return &SpellChecker{bin: bin, wordlist: wordlist, timeout: timeout}
}

// Check stages text into a uniquely named temp file, runs the checker against
// it under the configured timeout, and returns the misspelled tokens. The
// staging file is removed on every exit path. Non-zero exit, an unreachable
// binary, or a timeout all come back wrapping core.ErrGateway.
func (c *SpellChecker) Check(ctx context.Context, text string) ([]string, error) {
	staging := filepath.Join(os.TempDir(), "spellaudit-input-"+uuid.NewString())
	if err := os.WriteFile(staging, []byte(text), 0o600); err != nil {
		return nil, fmt.Errorf("%w: stage input: %v", core.ErrGateway, err)
	}
	defer os.Remove(staging)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.bin, staging, c.wordlist)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: timed out after %s", core.ErrGateway, c.timeout)
		}
		return nil, fmt.Errorf("%w: %v", core.ErrGateway, err)
	}

	var tokens []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			tokens = append(tokens, line)
		}
	}
	return tokens, nil
}

// NormalizeResult joins checker tokens into the display form stored on the
// query record: comma-separated, no leading or trailing delimiter.
func NormalizeResult(tokens []string) string {
	return strings.Join(tokens, ", ")
}
