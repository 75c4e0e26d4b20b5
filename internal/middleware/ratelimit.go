// Package middleware holds gRPC interceptors shared by the server.
package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/PaulBabatuyi/furgo/internal/normalize"
	"github.com/PaulBabatuyi/furgo/internal/session"
)

// LimiterStore keeps one token bucket per key and drops buckets that have
// been idle for longer than idleAfter.
type LimiterStore struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idleAfter time.Duration
	clients   map[string]*clientEntry
	stopCh    chan struct{}
	stopOnce  sync.Once
	now       func() time.Time
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiterStore allows limitPerMinute events per key with the given
// burst. Idle keys are swept every cleanupInterval.
func NewLimiterStore(limitPerMinute, burst int, cleanupInterval time.Duration) *LimiterStore {
	if limitPerMinute <= 0 {
		limitPerMinute = 60
	}
	if burst <= 0 {
		burst = 1
	}
	s := &LimiterStore{
		limit:     rate.Every(time.Minute / time.Duration(limitPerMinute)),
		burst:     burst,
		idleAfter: 10 * time.Minute,
		clients:   map[string]*clientEntry{},
		stopCh:    make(chan struct{}),
		now:       time.Now,
	}
	go s.cleanupLoop(cleanupInterval)
	return s
}

func (s *LimiterStore) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *LimiterStore) sweep() {
	cutoff := s.now().Add(-s.idleAfter)
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.clients {
		if v.lastSeen.Before(cutoff) {
			delete(s.clients, k)
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (s *LimiterStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *LimiterStore) limiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if e, ok := s.clients[key]; ok {
		e.lastSeen = now
		return e.limiter
	}
	l := rate.NewLimiter(s.limit, s.burst)
	s.clients[key] = &clientEntry{limiter: l, lastSeen: now}
	return l
}

// Allow reports whether one more event for key is permitted now.
func (s *LimiterStore) Allow(key string) bool {
	return s.limiter(key).AllowN(s.now(), 1)
}

type emailGetter interface{ GetEmail() string }

// Key picks the bucket for a call: the authenticated user when there is a
// session, else the email in the request, else the peer address.
func Key(ctx context.Context, req any) string {
	if sess, ok := session.FromContext(ctx); ok {
		return "user:" + sess.UserID
	}
	if eg, ok := req.(emailGetter); ok {
		if e := normalize.Email(eg.GetEmail()); e != "" {
			return "email:" + e
		}
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return "addr:" + p.Addr.String()
	}
	return "unknown"
}

// RateLimitUnaryInterceptor limits the listed methods per Key. It must run
// after authentication so that sessions are keyed by user.
func RateLimitUnaryInterceptor(store *LimiterStore, limitedMethods map[string]bool, logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !limitedMethods[info.FullMethod] {
			return handler(ctx, req)
		}
		key := Key(ctx, req)
		if !store.Allow(key) {
			logger.Warn("rate limit exceeded", "method", info.FullMethod, "key", key)
			return nil, status.Errorf(codes.ResourceExhausted, "rate limit exceeded")
		}
		return handler(ctx, req)
	}
}
