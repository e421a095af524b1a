package retry

import (
	"math"
	"math/rand"
	"time"
)

// Delay computes the backoff delay before the next attempt. Attempt
// numbering starts at 1, so the delay after the first attempt equals
// InitialDelay. With jitter enabled the delay is scaled by a uniform
// factor in [0.5, 1.0) to desynchronize concurrent retry storms.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}

	if p.Jitter {
		delay *= 0.5 + 0.5*rand.Float64()
	}

	return time.Duration(delay)
}
