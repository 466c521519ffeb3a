package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrEmptyEmbedding is returned by EmbedAll when a provider produced no vector for a text.
var ErrEmptyEmbedding = errors.New("provider returned an empty embedding")

// BatchOptions controls how EmbedAll drives an Embedder.
type BatchOptions struct {
	// RequestsPerSecond caps outbound calls; 0 means unlimited.
	RequestsPerSecond float64
	// Concurrency is the number of texts embedded at once (default 4).
	Concurrency int
	// MaxRetries is the number of extra attempts per text after a failure.
	MaxRetries int
	// RetryDelay is the base delay for exponential backoff (default 500ms).
	RetryDelay time.Duration
	// Logger receives retry warnings; nil discards them.
	Logger *slog.Logger
}

// DefaultBatchOptions returns options suitable for a local provider.
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{
		Concurrency: 4,
		MaxRetries:  2,
		RetryDelay:  500 * time.Millisecond,
	}
}

// EmbedAll embeds every text and returns the vectors in input order. Texts are trimmed;
// a blank text or an empty result is an error, since every input must map to a vector.
// The first failure (after retries) cancels the remaining work.
func EmbedAll(ctx context.Context, embedder Embedder, texts []string, opts BatchOptions) ([][]float32, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultBatchOptions().Concurrency
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultBatchOptions().RetryDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	limiter := rate.NewLimiter(limit, 1)

	trimmed := make([]string, len(texts))
	for i, text := range texts {
		trimmed[i] = strings.TrimSpace(text)
		if trimmed[i] == "" {
			return nil, fmt.Errorf("text %d is empty", i)
		}
	}

	vectors := make([][]float32, len(texts))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(opts.Concurrency)

	for i, text := range trimmed {
		group.Go(func() error {
			vector, err := embedWithRetry(groupCtx, embedder, limiter, text, opts, logger)
			if err != nil {
				return fmt.Errorf("embed text %d: %w", i, err)
			}
			vectors[i] = vector
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

func embedWithRetry(ctx context.Context, embedder Embedder, limiter *rate.Limiter, text string, opts BatchOptions, logger *slog.Logger) ([]float32, error) {
	var lastErr error

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := CalculateBackoff(opts.RetryDelay, attempt)
			logger.Warn("retrying embedding request", "attempt", attempt+1, "delay", delay, "error", lastErr)

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		vector, err := embedder.Embed(ctx, text)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		if len(vector) == 0 {
			lastErr = ErrEmptyEmbedding
			continue
		}
		return vector, nil
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", opts.MaxRetries+1, lastErr)
}

// CalculateBackoff returns exponential backoff with jitter.
// The base delay is doubled each attempt and capped at 30 seconds, with jitter of ±25%.
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 || baseDelay <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > 30*time.Second || backoff <= 0 {
		backoff = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}
