package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/KeremKalyoncu/vidlink/internal/types"
)

// Extractor resolves a page URL into media information.
// Implementations must not retry; a failure is reported once.
type Extractor interface {
	Extract(ctx context.Context, url string, opts Options) (*types.ExtractionResult, error)
}

// YtDlp wraps the yt-dlp binary
type YtDlp struct {
	binaryPath string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewYtDlp creates a new yt-dlp wrapper. timeout bounds the whole process run.
func NewYtDlp(binaryPath string, timeout time.Duration, logger *zap.Logger) *YtDlp {
	return &YtDlp{
		binaryPath: binaryPath,
		timeout:    timeout,
		logger:     logger,
	}
}

// ExecError is a failed yt-dlp run
type ExecError struct {
	Err    error
	Stderr string
}

// Error returns the last "ERROR:" line yt-dlp printed, without its prefix
func (e *ExecError) Error() string {
	lines := strings.Split(strings.TrimSpace(e.Stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "ERROR:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
		}
	}
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		return msg
	}
	return e.Err.Error()
}

// Unwrap exposes the process error
func (e *ExecError) Unwrap() error {
	return e.Err
}

// Available reports whether the yt-dlp binary can be resolved
func (y *YtDlp) Available() error {
	_, err := exec.LookPath(y.binaryPath)
	return err
}

// Extract runs yt-dlp in metadata mode and decodes its JSON dump
func (y *YtDlp) Extract(ctx context.Context, url string, opts Options) (*types.ExtractionResult, error) {
	args := buildArgs(url, opts)

	y.logger.Debug("Running yt-dlp",
		zap.String("url", url),
		zap.String("format", opts.Format),
		zap.Bool("cookies", opts.CookieFile != ""),
	)

	started := time.Now()
	output, err := y.execute(ctx, args)
	if err != nil {
		y.logger.Warn("yt-dlp failed",
			zap.String("url", url),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return nil, err
	}

	result, err := decodeResult(output)
	if err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}

	y.logger.Debug("yt-dlp finished",
		zap.String("url", url),
		zap.Int("formats", len(result.Formats)),
		zap.Duration("elapsed", time.Since(started)),
	)

	return result, nil
}

// buildArgs constructs yt-dlp command arguments
func buildArgs(url string, opts Options) []string {
	args := []string{
		"--dump-single-json",
		"--no-playlist",
		"--no-warnings",
		"--no-progress",
	}

	if opts.Format != "" {
		args = append(args, "-f", opts.Format)
	}

	if opts.SocketTimeout > 0 {
		args = append(args, "--socket-timeout", strconv.Itoa(int(opts.SocketTimeout.Seconds())))
	}

	for _, h := range opts.Headers {
		args = append(args, "--add-header", h.Name+":"+h.Value)
	}

	if opts.CookieFile != "" {
		args = append(args, "--cookies", opts.CookieFile)
	}

	if opts.ExtractorArgs != "" {
		args = append(args, "--extractor-args", opts.ExtractorArgs)
	}

	// Terminate options so a URL starting with "-" is never parsed as a flag
	return append(args, "--", url)
}

// execute runs yt-dlp and returns stdout
func (y *YtDlp) execute(ctx context.Context, args []string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, y.binaryPath, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Child processes may hold the pipes open after yt-dlp is killed
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("yt-dlp timed out after %s: %w", y.timeout, ctxErr)
		}
		return nil, &ExecError{Err: err, Stderr: stderr.String()}
	}

	return stdout.Bytes(), nil
}

// decodeResult finds the JSON object in yt-dlp output. yt-dlp may print
// non-JSON lines before it, so the last object-looking line is used.
func decodeResult(output []byte) (*types.ExtractionResult, error) {
	lines := bytes.Split(output, []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		line := bytes.TrimSpace(lines[i])
		if len(line) == 0 {
			continue
		}
		if bytes.HasPrefix(line, []byte("{")) && bytes.HasSuffix(line, []byte("}")) {
			var result types.ExtractionResult
			if err := json.Unmarshal(line, &result); err == nil {
				return &result, nil
			}
		}
	}
	return nil, fmt.Errorf("no JSON object found in yt-dlp output")
}
