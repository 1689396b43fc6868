package config

import (
	"os"
	"strings"
	"time"
)

// Get returns the environment value for key, or fallback when unset/blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// RetryPolicy bounds retries around external HTTP calls.
type RetryPolicy struct {
	MaxAttempts   int
	BaseDelay     time.Duration
	BackoffFactor float64
}

// DefaultRetryPolicy matches the latency profile of the public OSM services:
// a few quick retries, then give up and let the caller degrade.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   4,
		BaseDelay:     200 * time.Millisecond,
		BackoffFactor: 2,
	}
}

// Delay returns the backoff before the given 1-based attempt's retry.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d = time.Duration(float64(d) * p.BackoffFactor)
	}
	return d
}
