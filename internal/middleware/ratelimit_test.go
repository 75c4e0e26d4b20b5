package middleware

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/PaulBabatuyi/furgo/internal/session"
)

type dummy struct{ email string }

func (d dummy) GetEmail() string { return d.email }

func TestLimiterStore_AllowBurstThenBlock(t *testing.T) {
	s := NewLimiterStore(5, 5, time.Hour)
	defer s.Stop()

	key := "email:test@example.com"
	for i := 0; i < 5; i++ {
		if !s.Allow(key) {
			t.Fatalf("expected allow at iteration %d", i)
		}
	}
	if s.Allow(key) {
		t.Fatalf("expected limiter to block after burst consumed")
	}
	if !s.Allow("email:other@example.com") {
		t.Fatalf("keys must not share a bucket")
	}
}

func TestLimiterStore_SweepDropsIdleKeys(t *testing.T) {
	s := NewLimiterStore(5, 1, time.Hour)
	defer s.Stop()
	clock := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	require.True(t, s.Allow("a"))
	clock = clock.Add(5 * time.Minute)
	require.True(t, s.Allow("b"))
	clock = clock.Add(6 * time.Minute)
	s.sweep()

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.NotContains(t, s.clients, "a")
	assert.Contains(t, s.clients, "b")
}

func TestLimiterStore_StopTwice(t *testing.T) {
	s := NewLimiterStore(5, 1, time.Hour)
	s.Stop()
	s.Stop()
}

func TestKey(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", Key(ctx, nil))

	withPeer := peer.NewContext(ctx, &peer.Peer{Addr: &net.TCPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 4000}})
	assert.Equal(t, "addr:10.0.0.1:4000", Key(withPeer, nil))
	assert.Equal(t, "email:ana@example.com", Key(withPeer, dummy{email: " Ana@Example.com "}))

	withSession := session.NewContext(withPeer, &session.Session{UserID: "12345678-5"})
	assert.Equal(t, "user:12345678-5", Key(withSession, dummy{email: "ana@example.com"}))
}

func TestRateLimitUnaryInterceptor(t *testing.T) {
	s := NewLimiterStore(60, 1, time.Hour)
	defer s.Stop()
	limited := map[string]bool{"/furgo.v1.Furgo/Login": true}
	icpt := RateLimitUnaryInterceptor(s, limited, slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler := func(ctx context.Context, req any) (any, error) { return "ok", nil }

	login := &grpc.UnaryServerInfo{FullMethod: "/furgo.v1.Furgo/Login"}
	_, err := icpt(context.Background(), dummy{email: "a@example.com"}, login, handler)
	require.NoError(t, err)
	_, err = icpt(context.Background(), dummy{email: "a@example.com"}, login, handler)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	other := &grpc.UnaryServerInfo{FullMethod: "/furgo.v1.Furgo/ListVans"}
	for range 3 {
		_, err = icpt(context.Background(), dummy{email: "a@example.com"}, other, handler)
		require.NoError(t, err)
	}
}
