package revocation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"newsdesk/pkg/platform/circuit"
)

// List is the revocation surface the failover wraps.
type List interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Failover guards the Redis revocation list with a circuit breaker and an
// in-memory shadow copy. Revocations are written to both sides, so during a
// Redis outage the shadow keeps logout working on this instance; reads served
// from the shadow alone can miss revocations issued by other instances, which
// is the accepted degraded mode.
type Failover struct {
	primary  List
	shadow   *InMemory
	breaker  *circuit.Breaker
	logger   *slog.Logger
	retryGap time.Duration

	mu        sync.Mutex
	lastProbe time.Time
}

// NewFailover wraps the Redis list. While the breaker is open the primary is
// probed at most once per retry interval.
func NewFailover(primary List, logger *slog.Logger) *Failover {
	return &Failover{
		primary:  primary,
		shadow:   NewInMemory(),
		breaker:  circuit.New("token-revocation", circuit.WithFailureThreshold(3)),
		logger:   logger,
		retryGap: 10 * time.Second,
	}
}

// Revoke writes to both sides. A primary failure is tolerated as long as the
// shadow accepted the entry.
func (f *Failover) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := f.shadow.Revoke(ctx, jti, ttl); err != nil {
		return err
	}
	if err := f.primary.Revoke(ctx, jti, ttl); err != nil {
		f.recordFailure(ctx, err)
		return nil
	}
	f.recordSuccess(ctx)
	return nil
}

// IsRevoked consults the primary while the circuit is closed and falls back
// to the shadow when it is open or erroring.
func (f *Failover) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if f.breaker.IsOpen() && !f.shouldProbe() {
		return f.shadow.IsRevoked(ctx, jti)
	}

	revoked, err := f.primary.IsRevoked(ctx, jti)
	if err != nil {
		f.recordFailure(ctx, err)
		return f.shadow.IsRevoked(ctx, jti)
	}
	f.recordSuccess(ctx)
	return revoked, nil
}

func (f *Failover) shouldProbe() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if time.Since(f.lastProbe) < f.retryGap {
		return false
	}
	f.lastProbe = time.Now()
	return true
}

func (f *Failover) recordFailure(ctx context.Context, err error) {
	if _, change := f.breaker.RecordFailure(); change.Opened {
		f.mu.Lock()
		f.lastProbe = time.Now()
		f.mu.Unlock()
		f.logger.WarnContext(ctx, "revocation store circuit opened, serving from local shadow",
			"breaker", f.breaker.Name(),
			"error", err)
	}
}

func (f *Failover) recordSuccess(ctx context.Context) {
	if _, change := f.breaker.RecordSuccess(); change.Closed {
		f.logger.InfoContext(ctx, "revocation store circuit closed",
			"breaker", f.breaker.Name())
	}
}
