package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RateLimiter is a token bucket limiter covering both request rate (RPM)
// and token spend (TPH).
type RateLimiter struct {
	requestsPerMinute int
	tokensPerHour     int

	requestTokens    int
	requestCapacity  int
	requestMu        sync.Mutex
	requestLastCheck time.Time

	tokenBudget    int
	tokenCapacity  int
	tokenMu        sync.Mutex
	tokenLastCheck time.Time
}

func NewRateLimiter(requestsPerMinute, tokensPerHour int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	if tokensPerHour <= 0 {
		tokensPerHour = 90000 // GPT-4 tier 1
	}

	now := time.Now()
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		tokensPerHour:     tokensPerHour,
		requestTokens:     requestsPerMinute,
		requestCapacity:   requestsPerMinute,
		requestLastCheck:  now,
		tokenBudget:       tokensPerHour,
		tokenCapacity:     tokensPerHour,
		tokenLastCheck:    now,
	}
}

func (rl *RateLimiter) refillRequestTokens() {
	now := time.Now()
	elapsed := now.Sub(rl.requestLastCheck)

	rl.requestTokens += int(elapsed.Minutes() * float64(rl.requestsPerMinute))
	if rl.requestTokens > rl.requestCapacity {
		rl.requestTokens = rl.requestCapacity
	}

	rl.requestLastCheck = now
}

func (rl *RateLimiter) refillTokenBudget() {
	now := time.Now()
	elapsed := now.Sub(rl.tokenLastCheck)

	rl.tokenBudget += int(elapsed.Hours() * float64(rl.tokensPerHour))
	if rl.tokenBudget > rl.tokenCapacity {
		rl.tokenBudget = rl.tokenCapacity
	}

	rl.tokenLastCheck = now
}

// AllowRequest reserves one request slot.
func (rl *RateLimiter) AllowRequest(ctx context.Context) error {
	rl.requestMu.Lock()
	defer rl.requestMu.Unlock()

	rl.refillRequestTokens()

	if rl.requestTokens <= 0 {
		waitTime := time.Minute / time.Duration(rl.requestsPerMinute)
		return fmt.Errorf("request limit exceeded (%d RPM), retry in %v", rl.requestsPerMinute, waitTime)
	}

	rl.requestTokens--
	return nil
}

// AllowTokens reserves the given token count from the hourly budget.
func (rl *RateLimiter) AllowTokens(ctx context.Context, tokens int) error {
	rl.tokenMu.Lock()
	defer rl.tokenMu.Unlock()

	rl.refillTokenBudget()

	if rl.tokenBudget < tokens {
		return fmt.Errorf("token limit exceeded (%d TPH): %d requested, %d available",
			rl.tokensPerHour, tokens, rl.tokenBudget)
	}

	rl.tokenBudget -= tokens
	return nil
}

// ConsumeTokens settles the difference once real usage is known.
func (rl *RateLimiter) ConsumeTokens(tokens int) {
	rl.tokenMu.Lock()
	defer rl.tokenMu.Unlock()

	rl.tokenBudget -= tokens
	if rl.tokenBudget < 0 {
		rl.tokenBudget = 0
	}
}

// GetStats reports the currently available request and token budgets.
func (rl *RateLimiter) GetStats() (requestsAvailable int, tokensAvailable int) {
	rl.requestMu.Lock()
	rl.refillRequestTokens()
	requestsAvailable = rl.requestTokens
	rl.requestMu.Unlock()

	rl.tokenMu.Lock()
	rl.refillTokenBudget()
	tokensAvailable = rl.tokenBudget
	rl.tokenMu.Unlock()

	return
}
