package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(5, 100, time.Second)

	for i := 0; i < 5; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "request %d should be allowed", i)
	}
}

func TestRateLimiter_BansOnSecondLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(2, 100, time.Minute)
	ip := "5.6.7.8"

	assert.True(t, rl.Allow(ip))
	assert.True(t, rl.Allow(ip))
	// 3rd request in the same second exceeds the limit and triggers a ban
	assert.False(t, rl.Allow(ip))
	assert.True(t, rl.IsBanned(ip))

	// Other IPs are unaffected
	assert.True(t, rl.Allow("9.9.9.9"))
}

func TestRateLimiter_BanExpires(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 100, 50*time.Millisecond)
	ip := "8.8.8.8"

	assert.True(t, rl.Allow(ip))
	assert.False(t, rl.Allow(ip))
	assert.True(t, rl.IsBanned(ip))

	time.Sleep(1100 * time.Millisecond)
	assert.False(t, rl.IsBanned(ip))
	assert.True(t, rl.Allow(ip))
}

func TestOriginChecker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"wildcard allows everything", []string{"*"}, "https://evil.com", true},
		{"listed origin allowed", []string{"https://example.com"}, "https://example.com", true},
		{"case insensitive", []string{"https://Example.com"}, "https://example.com", true},
		{"unlisted origin rejected", []string{"https://example.com"}, "https://evil.com", false},
		{"empty origin allowed", []string{"https://example.com"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			oc := NewOriginChecker(tt.allowed)
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, oc.Check(r))
		})
	}
}

func TestMessageRateLimiter(t *testing.T) {
	t.Parallel()

	ml := NewMessageRateLimiter(4)
	clientID := "c1"

	// Under the warning threshold: no warnings
	allowed, warning := ml.AllowMessage(clientID)
	assert.True(t, allowed)
	assert.False(t, warning)

	allowed, warning = ml.AllowMessage(clientID)
	assert.True(t, allowed)
	assert.False(t, warning)

	// Above threshold but under limit: allowed with warning
	allowed, warning = ml.AllowMessage(clientID)
	assert.True(t, allowed)
	assert.True(t, warning)

	allowed, _ = ml.AllowMessage(clientID)
	assert.True(t, allowed)

	// Over the limit: rejected, warning counted
	allowed, _ = ml.AllowMessage(clientID)
	assert.False(t, allowed)
	assert.Equal(t, 1, ml.GetWarningCount(clientID))

	ml.RemoveClient(clientID)
	assert.Zero(t, ml.GetWarningCount(clientID))
}

func TestChatRateLimiter_CooldownPeriod(t *testing.T) {
	t.Parallel()

	// 2/sec, 5/min, 1s cooldown
	cl := NewChatRateLimiter(2, 5, time.Second)
	clientID := "chatter1"

	allowed, reason := cl.AllowChat(clientID)
	assert.True(t, allowed)
	assert.Empty(t, reason)

	allowed, _ = cl.AllowChat(clientID)
	assert.True(t, allowed)

	// 3rd message within the second triggers cooldown
	allowed, reason = cl.AllowChat(clientID)
	assert.False(t, allowed)
	assert.NotEmpty(t, reason)

	// During cooldown everything is rejected
	allowed, _ = cl.AllowChat(clientID)
	assert.False(t, allowed)

	// After the cooldown messages flow again
	time.Sleep(1100 * time.Millisecond)
	allowed, _ = cl.AllowChat(clientID)
	assert.True(t, allowed)
}

func TestChatRateLimiter_MinuteLimit(t *testing.T) {
	t.Parallel()

	// generous per-second limit, 3/min
	cl := NewChatRateLimiter(10, 3, time.Second)
	clientID := "spammer"

	for i := 0; i < 3; i++ {
		allowed, _ := cl.AllowChat(clientID)
		assert.True(t, allowed, "message %d should be allowed", i)
	}

	allowed, reason := cl.AllowChat(clientID)
	assert.False(t, allowed)
	assert.NotEmpty(t, reason)
}

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "from remote addr",
			remoteAddr: "10.0.0.1:54321",
			want:       "10.0.0.1",
		},
		{
			name:       "x-forwarded-for takes first entry",
			remoteAddr: "10.0.0.1:54321",
			headers:    map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"},
			want:       "1.2.3.4",
		},
		{
			name:       "x-real-ip fallback",
			remoteAddr: "10.0.0.1:54321",
			headers:    map[string]string{"X-Real-IP": "4.3.2.1"},
			want:       "4.3.2.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetClientIP(r))
		})
	}
}
