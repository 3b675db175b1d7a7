// Package worker runs background maintenance for the server.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ExpiredTokenDeleter removes revoked tokens whose expiry has passed.
type ExpiredTokenDeleter interface {
	DeleteExpiredRevokedTokens(ctx context.Context, now time.Time) (int64, error)
}

// TokenCleanup periodically purges expired revoked tokens.
type TokenCleanup struct {
	tokens   ExpiredTokenDeleter
	interval time.Duration
	now      func() time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	ticker   *time.Ticker
}

// NewTokenCleanup creates a worker that runs every interval once started.
func NewTokenCleanup(tokens ExpiredTokenDeleter, interval time.Duration) *TokenCleanup {
	return &TokenCleanup{
		tokens:   tokens,
		interval: interval,
		now:      time.Now,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs one cleanup immediately, then one per interval on its own goroutine.
func (w *TokenCleanup) Start() {
	if w == nil {
		return
	}
	w.ticker = time.NewTicker(w.interval)
	go w.loop()
}

// Stop ends the loop and waits for an in-flight cleanup to finish.
func (w *TokenCleanup) Stop() {
	if w == nil {
		return
	}
	w.stopOnce.Do(func() {
		close(w.stopChan)
		if w.ticker != nil {
			w.ticker.Stop()
			<-w.done
		}
	})
}

func (w *TokenCleanup) loop() {
	defer close(w.done)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-w.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	w.RunOnce(ctx)
	for {
		select {
		case <-w.ticker.C:
			w.RunOnce(ctx)
		case <-w.stopChan:
			return
		}
	}
}

// RunOnce deletes the tokens that have expired by now.
func (w *TokenCleanup) RunOnce(ctx context.Context) {
	removed, err := w.tokens.DeleteExpiredRevokedTokens(ctx, w.now())
	if err != nil {
		slog.Error("Token cleanup failed", "error", err)
		return
	}
	if removed > 0 {
		slog.Info("Expired revoked tokens removed", "count", removed)
	} else {
		slog.Debug("Token cleanup found nothing to remove")
	}
}
