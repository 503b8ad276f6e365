package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/bookbot/internal/core/domain"
	"github.com/custodia-labs/bookbot/internal/core/ports/driven"
)

// Ensure the wrappers implement the interfaces.
var (
	_ driven.LLMService       = (*RateLimitedLLM)(nil)
	_ driven.EmbeddingService = (*RateLimitedEmbedding)(nil)
)

// DefaultBackoff is how long calls pause after the provider reports 429.
const DefaultBackoff = 10 * time.Second

// RateLimiter paces provider calls with a token bucket and pauses after a
// rate-limit error.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	backoff time.Duration
}

// NewRateLimiter allows rps calls per second with a burst of at least one.
// rps <= 0 returns nil, which disables limiting.
func NewRateLimiter(rps float64) *RateLimiter {
	if rps <= 0 {
		return nil
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		backoff: DefaultBackoff,
	}
}

// Wait blocks until a call may proceed. A nil limiter never blocks.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", domain.ErrRateLimited, ctx.Err())
		case <-time.After(wait):
		}
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	}
	return nil
}

// observe starts a backoff when err reports a provider rate limit.
func (r *RateLimiter) observe(err error) {
	if r == nil || err == nil || !errors.Is(err, domain.ErrRateLimited) {
		return
	}
	r.mu.Lock()
	r.retryAt = time.Now().Add(r.backoff)
	r.mu.Unlock()
}

// RateLimitedLLM paces calls to an LLMService.
type RateLimitedLLM struct {
	driven.LLMService
	limiter *RateLimiter
}

// WrapLLM returns svc unchanged when limiter is nil.
func WrapLLM(svc driven.LLMService, limiter *RateLimiter) driven.LLMService {
	if limiter == nil {
		return svc
	}
	return &RateLimitedLLM{LLMService: svc, limiter: limiter}
}

// Chat waits for the limiter, then delegates.
func (l *RateLimitedLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	reply, err := l.LLMService.Chat(ctx, messages, opts)
	l.limiter.observe(err)
	return reply, err
}

// RateLimitedEmbedding paces calls to an EmbeddingService.
type RateLimitedEmbedding struct {
	driven.EmbeddingService
	limiter *RateLimiter
}

// WrapEmbedding returns svc unchanged when limiter is nil.
func WrapEmbedding(svc driven.EmbeddingService, limiter *RateLimiter) driven.EmbeddingService {
	if limiter == nil {
		return svc
	}
	return &RateLimitedEmbedding{EmbeddingService: svc, limiter: limiter}
}

// Embed waits for the limiter, then delegates.
func (e *RateLimitedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	v, err := e.EmbeddingService.Embed(ctx, text)
	e.limiter.observe(err)
	return v, err
}

// EmbedBatch waits for the limiter once per batch, then delegates.
func (e *RateLimitedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	vectors, err := e.EmbeddingService.EmbedBatch(ctx, texts)
	e.limiter.observe(err)
	return vectors, err
}
