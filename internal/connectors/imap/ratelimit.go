package imap

import (
	"context"

	"golang.org/x/time/rate"
)

const (
	// ProactiveRate is the default command pacing (commands per second).
	// Mail providers throttle chatty IMAP clients; pacing keeps an
	// interactive session under the radar.
	ProactiveRate = 10

	// ProactiveBurst allows short command bursts, e.g. a select
	// followed by a search and a fetch.
	ProactiveBurst = 5
)

// Pacer throttles outgoing commands with a token bucket.
type Pacer struct {
	bucket *rate.Limiter
}

// NewPacer creates a pacer with the default rate.
func NewPacer() *Pacer {
	return NewPacerWithRate(ProactiveRate, ProactiveBurst)
}

// NewPacerWithRate creates a pacer with a custom rate and burst.
func NewPacerWithRate(perSecond float64, burst int) *Pacer {
	return &Pacer{bucket: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until the next command may be sent.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.bucket.Wait(ctx)
}
