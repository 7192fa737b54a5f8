package review

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"
)

// Backend is one vendor client the dispatcher can query. Implementations
// perform a single request attempt; retry policy belongs to the
// dispatcher.
type Backend interface {
	// Name returns the provider key this backend serves (e.g. "gemini").
	Name() string
	// Generate sends one prompt to the given model and returns the raw
	// response text.
	Generate(ctx context.Context, model string, prompt string) (string, error)
}

// Backends maps provider keys to backend clients.
type Backends map[string]Backend

const (
	retryBaseDelay = time.Second
	retryMaxDelay  = 30 * time.Second
)

// Dispatch queries every configured model concurrently and returns one
// ModelResponse per model, in configuration order. Each goroutine owns
// its own slot of the result slice, so no locking is needed around the
// shared storage. A model that times out, errors or returns an empty
// body yields a failed ModelResponse; it never blocks the other models.
func Dispatch(ctx context.Context, cfg RunConfiguration, prompt string, backends Backends) []ModelResponse {
	maxParallel := cfg.MaxParallel
	if maxParallel <= 0 {
		maxParallel = len(cfg.Models)
	}
	sem := make(chan struct{}, maxParallel)

	responses := make([]ModelResponse, len(cfg.Models))
	var wg sync.WaitGroup
	for i, mc := range cfg.Models {
		wg.Add(1)
		go func(slot int, mc ModelConfig) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				responses[slot] = ModelResponse{
					Model:  mc.Identity,
					Status: StatusTransportError,
					Err:    ctx.Err().Error(),
				}
				return
			}

			responses[slot] = queryModel(ctx, mc, prompt, backends[mc.Identity.Provider])
		}(i, mc)
	}
	wg.Wait()

	return responses
}

// queryModel performs up to 1+MaxRetries attempts against one model.
// Only timeout and transport-class failures are retried; an empty body
// or a non-retryable error is terminal. Each attempt gets its own
// per-model timeout so a slow vendor cancels only its own request.
func queryModel(ctx context.Context, mc ModelConfig, prompt string, backend Backend) ModelResponse {
	resp := ModelResponse{Model: mc.Identity}

	if backend == nil {
		resp.Status = StatusTransportError
		resp.Err = fmt.Sprintf("no backend registered for provider %q", mc.Identity.Provider)
		return resp
	}

	var lastErr error
	for attempt := 0; attempt <= mc.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt)
			log.Printf("model %s: retry attempt %d/%d after %v", mc.Identity.ID, attempt, mc.MaxRetries, delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				resp.Status = classifyError(ctx.Err())
				resp.Err = ctx.Err().Error()
				return resp
			}
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if mc.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, mc.Timeout)
		}
		raw, err := backend.Generate(attemptCtx, mc.Identity.Model, prompt)
		if cancel != nil {
			cancel()
		}

		if err == nil {
			if strings.TrimSpace(raw) == "" {
				resp.Status = StatusEmpty
				resp.Err = "model returned an empty body"
				return resp
			}
			resp.Raw = raw
			resp.Status = StatusSuccess
			return resp
		}

		lastErr = err
		status := classifyError(err)
		if status != StatusTimeout && !isRetryableTransport(err) {
			resp.Status = status
			resp.Err = err.Error()
			return resp
		}
		if ctx.Err() != nil {
			// Parent cancelled; no point retrying.
			break
		}
		log.Printf("model %s: retryable error on attempt %d: %v", mc.Identity.ID, attempt+1, err)
	}

	resp.Status = classifyError(lastErr)
	resp.Err = fmt.Sprintf("max retries (%d) exceeded: %v", mc.MaxRetries, lastErr)
	return resp
}

// backoffDelay is exponential with a cap and ±12.5% jitter.
func backoffDelay(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	jitter := time.Duration(float64(delay) * 0.25)
	return delay - jitter/2 + time.Duration(float64(jitter)*0.5)
}

// classifyError maps a query error onto a terminal response status.
func classifyError(err error) ResponseStatus {
	if err == nil {
		return StatusTransportError
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return StatusTimeout
	}
	msg := err.Error()
	if strings.Contains(msg, "context deadline exceeded") || strings.Contains(msg, "timeout") {
		return StatusTimeout
	}
	return StatusTransportError
}

// isRetryableTransport reports whether the error looks like a transient
// network/vendor failure worth another attempt.
func isRetryableTransport(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	msg := err.Error()
	if strings.Contains(msg, "context canceled") {
		return false
	}
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"temporary failure",
		"rate limit",
		"429",
		"500", "502", "503", "504",
		"EOF",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
