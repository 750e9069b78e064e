package auth

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"time"
)

// TimingConfig holds configuration for timing attack prevention
type TimingConfig struct {
	BaseDelay   time.Duration
	RandomDelay time.Duration // upper bound of the jitter added to BaseDelay
}

// DefaultTimingConfig slows every rejected admin request by 200-300ms.
func DefaultTimingConfig() TimingConfig {
	return TimingConfig{
		BaseDelay:   200 * time.Millisecond,
		RandomDelay: 100 * time.Millisecond,
	}
}

// TimingDelay pads authentication failures so a wrong secret costs the same
// wall time whichever comparison path rejected it.
type TimingDelay struct {
	config TimingConfig
	sleep  func(ctx context.Context, d time.Duration)
}

func NewTimingDelay(config TimingConfig) *TimingDelay {
	return &TimingDelay{config: config, sleep: sleepCtx}
}

// cryptoRandDuration returns a random duration in [0, max) from crypto/rand.
func cryptoRandDuration(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0
	}
	return time.Duration(binary.BigEndian.Uint64(b[:]) % uint64(max))
}

// WaitFrom sleeps until at least BaseDelay plus jitter has passed since start.
// Successful requests are never delayed. It returns early when ctx is done.
func (td *TimingDelay) WaitFrom(ctx context.Context, start time.Time, success bool) {
	if success {
		return
	}

	target := td.config.BaseDelay + cryptoRandDuration(td.config.RandomDelay)
	if elapsed := time.Since(start); elapsed < target {
		td.sleep(ctx, target-elapsed)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
