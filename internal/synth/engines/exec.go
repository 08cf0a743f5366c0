package engines

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrEmptyOutput is returned when a synthesis command succeeds without
// producing audio.
var ErrEmptyOutput = errors.New("command produced no output")

// maxOutputSize bounds subprocess output.
const maxOutputSize = 50 * 1024 * 1024

// run executes name with stdin pre-filled, bounded by timeout. On timeout
// the process is interrupted first and killed if it lingers.
func run(ctx context.Context, timeout time.Duration, stdin io.Reader, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = 100 * time.Millisecond

	if stdin == nil {
		stdin = strings.NewReader("")
	}
	cmd.Stdin = stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s timed out after %s: %w", name, timeout, ctx.Err())
		}
		return nil, fmt.Errorf("%s failed: %w, stderr: %s", name, err, strings.TrimSpace(stderr.String()))
	}

	out := stdout.Bytes()
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w, stderr: %s", name, ErrEmptyOutput, strings.TrimSpace(stderr.String()))
	}
	if len(out) > maxOutputSize {
		return nil, fmt.Errorf("%s output too large: %d bytes (max %d)", name, len(out), maxOutputSize)
	}
	return out, nil
}

// validateText applies the limits shared by all engines.
func validateText(text string) error {
	const maxTextSize = 5000
	if strings.TrimSpace(text) == "" {
		return errors.New("text cannot be empty")
	}
	if len(text) > maxTextSize {
		return fmt.Errorf("text too long: %d characters (max %d)", len(text), maxTextSize)
	}
	return nil
}
