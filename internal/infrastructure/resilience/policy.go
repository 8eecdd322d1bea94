package resilience

import "time"

// Policy bounds retries and configures the per-operation circuit breaker.
type Policy struct {
	RetryAttempts  int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	RetryFactor    float64

	BreakerEnabled      bool
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration
	BreakerHalfOpenMax  uint32
}

func DefaultPolicy() Policy {
	return Policy{
		RetryAttempts:  2,
		RetryBaseDelay: 150 * time.Millisecond,
		RetryMaxDelay:  600 * time.Millisecond,
		RetryFactor:    2.0,

		BreakerEnabled:      true,
		BreakerMinRequests:  8,
		BreakerFailureRatio: 0.6,
		BreakerOpenTimeout:  30 * time.Second,
		BreakerHalfOpenMax:  2,
	}
}

func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	out := p

	if out.RetryAttempts <= 0 {
		out.RetryAttempts = def.RetryAttempts
	}
	if out.RetryBaseDelay <= 0 {
		out.RetryBaseDelay = def.RetryBaseDelay
	}
	if out.RetryMaxDelay < out.RetryBaseDelay {
		out.RetryMaxDelay = out.RetryBaseDelay
	}
	if out.RetryFactor < 1.0 {
		out.RetryFactor = def.RetryFactor
	}
	if out.BreakerMinRequests == 0 {
		out.BreakerMinRequests = def.BreakerMinRequests
	}
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = def.BreakerFailureRatio
	}
	if out.BreakerOpenTimeout <= 0 {
		out.BreakerOpenTimeout = def.BreakerOpenTimeout
	}
	if out.BreakerHalfOpenMax == 0 {
		out.BreakerHalfOpenMax = def.BreakerHalfOpenMax
	}
	return out
}
