package trading

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Serializer admits at most one in-flight ledger-mutating submission per
// signer. Quotes are priced against snapshots, so two concurrent
// submissions from the same signer would multiply staleness risk and void
// the validator's safety margins. Waiters run strictly in arrival order;
// each starts only after the previous settles. One Serializer is owned by
// one signer session; there is no cross-signer sharing.
type Serializer struct {
	signer string
	logger *zap.Logger

	mu    sync.Mutex
	busy  bool
	queue []chan struct{}
}

// NewSerializer builds the admission queue for one signer.
func NewSerializer(signer string, logger *zap.Logger) *Serializer {
	return &Serializer{
		signer: signer,
		logger: logger.Named("serializer"),
	}
}

// Do runs fn once the queue reaches it. Cancelling ctx before fn starts
// discards the request with no side effects; once fn is running it cannot
// be aborted, since a broadcast transaction cannot be recalled.
func (s *Serializer) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()
	return fn(ctx)
}

func (s *Serializer) acquire(ctx context.Context) error {
	s.mu.Lock()
	if !s.busy {
		s.busy = true
		s.mu.Unlock()
		return nil
	}
	turn := make(chan struct{})
	s.queue = append(s.queue, turn)
	depth := len(s.queue)
	s.mu.Unlock()

	s.logger.Debug("submission queued behind in-flight trade",
		zap.String("signer", s.signer),
		zap.Int("queue_depth", depth))

	select {
	case <-turn:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		for i, w := range s.queue {
			if w == turn {
				s.queue = append(s.queue[:i], s.queue[i+1:]...)
				s.mu.Unlock()
				return ctx.Err()
			}
		}
		// The slot was granted while we were cancelling; pass it on.
		s.grantNextLocked()
		s.mu.Unlock()
		return ctx.Err()
	}
}

func (s *Serializer) release() {
	s.mu.Lock()
	s.grantNextLocked()
	s.mu.Unlock()
}

func (s *Serializer) grantNextLocked() {
	if len(s.queue) == 0 {
		s.busy = false
		return
	}
	next := s.queue[0]
	s.queue = s.queue[1:]
	close(next)
}
