package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/KeremKalyoncu/vidlink/internal/extractor"
)

// CookieSweeper periodically removes cookie jars left behind in the temp
// dir. Jars are deleted at the end of every request, so leftovers only
// appear when the process died mid-extraction.
type CookieSweeper struct {
	tempDir   string
	maxAge    time.Duration
	interval  time.Duration
	logger    *zap.Logger
	closeCh   chan struct{}
	stoppedCh chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
}

// Used when the configured interval is not positive
const defaultSweepInterval = 10 * time.Minute

// NewCookieSweeper creates a sweeper.
// maxAge: jars older than this are deleted
// interval: how often to sweep
func NewCookieSweeper(tempDir string, maxAge, interval time.Duration, logger *zap.Logger) *CookieSweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &CookieSweeper{
		tempDir:   tempDir,
		maxAge:    maxAge,
		interval:  interval,
		logger:    logger,
		closeCh:   make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Start begins the sweep goroutine. Later calls are no-ops.
func (s *CookieSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	go s.run(ctx)
}

// Stop stops the sweep goroutine and waits for it to exit.
// It is a no-op when the sweeper never started or already stopped.
func (s *CookieSweeper) Stop() {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.closeCh)
	<-s.stoppedCh
}

func (s *CookieSweeper) run(ctx context.Context) {
	defer close(s.stoppedCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run once at startup
	s.Sweep()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.closeCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Sweep deletes stale jars once and returns how many were removed.
// Only top-level files carrying the jar prefix are considered.
func (s *CookieSweeper) Sweep() int {
	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		s.logger.Warn("Cookie sweep failed", zap.String("dir", s.tempDir), zap.Error(err))
		return 0
	}

	cutoff := time.Now().Add(-s.maxAge)
	deleted := 0

	for _, entry := range entries {
		if entry.IsDir() || !isCookieJar(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(s.tempDir, entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("Failed to delete stale cookies file",
				zap.String("file", path),
				zap.Error(err),
			)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		s.logger.Info("Stale cookie jars removed",
			zap.String("dir", s.tempDir),
			zap.Int("deleted", deleted),
		)
	}

	return deleted
}

func isCookieJar(name string) bool {
	return strings.HasPrefix(name, extractor.CookieFilePrefix) && strings.HasSuffix(name, ".txt")
}
