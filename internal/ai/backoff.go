package ai

import "time"

// maxBackoff caps the inter-attempt delay.
const maxBackoff = 5 * time.Minute

// backoff returns the delay before the attempt following attempt n (1-based).
// The delay doubles per attempt; rate-limit failures wait an extra multiple of
// the base delay since the provider told us to slow down.
func backoff(base time.Duration, attempt int, rateLimited bool, rateLimitMultiple int) time.Duration {
	if base <= 0 {
		return 0
	}
	d := base << (attempt - 1)
	if rateLimited {
		d *= time.Duration(rateLimitMultiple)
	}
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}
