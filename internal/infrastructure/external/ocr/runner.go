package ocr

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Runner lets tests stub external commands
type Runner interface {
	Run(ctx context.Context, stdin io.Reader, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	Logger *zap.Logger
}

// Run implements Runner
func (r ExecRunner) Run(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdin = stdin
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	if r.Logger != nil {
		if err != nil {
			r.Logger.Error("exec failed",
				zap.String("cmd", name),
				zap.String("args", strings.Join(args, " ")),
				zap.Duration("duration", time.Since(start)),
				zap.String("stderr", truncate(errb.String(), 8<<10)),
				zap.Error(err))
		} else {
			r.Logger.Debug("exec ok",
				zap.String("cmd", name),
				zap.Duration("duration", time.Since(start)),
				zap.Int("stdout_bytes", out.Len()))
		}
	}

	return out.Bytes(), errb.Bytes(), err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
