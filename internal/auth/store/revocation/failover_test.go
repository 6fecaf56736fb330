package revocation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// flakyList simulates a revocation list whose backend can be taken down.
type flakyList struct {
	inner *InMemory
	down  bool
}

func (f *flakyList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if f.down {
		return errors.New("connection refused")
	}
	return f.inner.Revoke(ctx, jti, ttl)
}

func (f *flakyList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if f.down {
		return false, errors.New("connection refused")
	}
	return f.inner.IsRevoked(ctx, jti)
}

type FailoverSuite struct {
	suite.Suite
	primary  *flakyList
	failover *Failover
	ctx      context.Context
}

func TestFailoverSuite(t *testing.T) {
	suite.Run(t, new(FailoverSuite))
}

func (s *FailoverSuite) SetupTest() {
	s.primary = &flakyList{inner: NewInMemory()}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.failover = NewFailover(s.primary, logger)
	s.ctx = context.Background()
}

func (s *FailoverSuite) TestServesPrimaryWhenHealthy() {
	jti := uuid.NewString()
	require.NoError(s.T(), s.failover.Revoke(s.ctx, jti, time.Minute))

	revoked, err := s.failover.IsRevoked(s.ctx, jti)
	s.Require().NoError(err)
	s.True(revoked)

	revoked, err = s.failover.IsRevoked(s.ctx, uuid.NewString())
	s.Require().NoError(err)
	s.False(revoked)
}

func (s *FailoverSuite) TestShadowCoversOutage() {
	jti := uuid.NewString()
	s.primary.down = true

	// Logout during the outage still lands on the shadow.
	require.NoError(s.T(), s.failover.Revoke(s.ctx, jti, time.Minute))

	revoked, err := s.failover.IsRevoked(s.ctx, jti)
	s.Require().NoError(err)
	s.True(revoked)
}

func (s *FailoverSuite) TestOpenCircuitSkipsPrimary() {
	s.primary.down = true

	// Three failures trip the breaker.
	for range 3 {
		_, err := s.failover.IsRevoked(s.ctx, uuid.NewString())
		s.Require().NoError(err)
	}
	s.True(s.failover.breaker.IsOpen())

	// With the circuit open and the probe window not yet elapsed, the
	// primary is left alone even after it recovers.
	s.primary.down = false
	jti := uuid.NewString()
	require.NoError(s.T(), s.primary.inner.Revoke(s.ctx, jti, time.Minute))

	revoked, err := s.failover.IsRevoked(s.ctx, jti)
	s.Require().NoError(err)
	s.False(revoked)
}

func (s *FailoverSuite) TestProbeClosesCircuit() {
	s.primary.down = true
	for range 3 {
		_, err := s.failover.IsRevoked(s.ctx, uuid.NewString())
		s.Require().NoError(err)
	}
	s.True(s.failover.breaker.IsOpen())

	s.primary.down = false
	s.failover.retryGap = 0

	// Every call now probes; two successes close the circuit.
	for range 2 {
		_, err := s.failover.IsRevoked(s.ctx, uuid.NewString())
		s.Require().NoError(err)
	}
	s.False(s.failover.breaker.IsOpen())
}
