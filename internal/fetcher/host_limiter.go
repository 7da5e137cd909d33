package fetcher

import (
	"context"
	"sync"
)

// HostLimiter caps the number of in-flight requests per host. It only bounds
// concurrency; it never delays a request once a slot is free.
type HostLimiter struct {
	maxConcurrent int
	hosts         map[string]chan struct{}
	mu            sync.Mutex
}

func NewHostLimiter(maxConcurrent int) *HostLimiter {
	return &HostLimiter{
		maxConcurrent: maxConcurrent,
		hosts:         make(map[string]chan struct{}),
	}
}

// Acquire blocks until a slot for host is free and returns its release func.
// With a cap of zero every call succeeds immediately.
func (hl *HostLimiter) Acquire(ctx context.Context, host string) (func(), error) {
	if hl.maxConcurrent <= 0 {
		return func() {}, nil
	}

	hl.mu.Lock()
	sem, exists := hl.hosts[host]
	if !exists {
		sem = make(chan struct{}, hl.maxConcurrent)
		hl.hosts[host] = sem
	}
	hl.mu.Unlock()

	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() { once.Do(func() { <-sem }) }, nil
}
