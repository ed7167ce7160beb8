package auth

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"botlint/internal/config"
)

func init() {
	bcryptCost = bcrypt.MinCost
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTokenGeneration(t *testing.T) {
	token, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if !IsValidTokenFormat(token) {
		t.Errorf("Generated token has invalid format: %s", token)
	}

	hash, err := HashToken(token)
	if err != nil {
		t.Fatalf("HashToken() error = %v", err)
	}
	if !VerifyToken(token, hash) {
		t.Error("VerifyToken() returned false for correct token")
	}
	if VerifyToken("blt_wrong", hash) {
		t.Error("VerifyToken() returned true for wrong token")
	}

	other, _ := GenerateToken()
	if other == token {
		t.Error("tokens should be unique")
	}
}

func TestHashEmptyToken(t *testing.T) {
	for _, tok := range []string{"", TokenPrefix} {
		if _, err := HashToken(tok); err == nil {
			t.Errorf("HashToken(%q) should fail", tok)
		}
	}
}

func TestIsValidTokenFormat(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"blt_" + strings.Repeat("ab", TokenLength), true},
		{"blt_" + strings.Repeat("zz", TokenLength), false},
		{"blt_abcd", false},
		{strings.Repeat("ab", TokenLength), false},
	}
	for _, tt := range tests {
		if got := IsValidTokenFormat(tt.token); got != tt.want {
			t.Errorf("IsValidTokenFormat(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected string
	}{
		{"empty", "", "****"},
		{"short", "abc", "****"},
		{"too short for prefix", "blt_", "****"},
		{"valid token", "blt_a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2", "blt_a1b2c3d4****...****"},
		{"minimum valid", "blt_12345678", "blt_12345678****...****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskToken(tt.token); got != tt.expected {
				t.Errorf("MaskToken(%q) = %q, want %q", tt.token, got, tt.expected)
			}
		})
	}
}

func TestVerifier(t *testing.T) {
	token, _ := GenerateToken()
	hash, err := HashToken(token)
	if err != nil {
		t.Fatalf("HashToken: %v", err)
	}

	v := NewVerifier(hash)
	if !v.Enabled() {
		t.Fatal("verifier with a hash should be enabled")
	}
	for i := 0; i < 2; i++ {
		if !v.Verify(token) {
			t.Errorf("attempt %d: valid token rejected", i+1)
		}
	}
	if v.Verify("") || v.Verify("blt_nope") {
		t.Error("invalid token accepted")
	}
}

func TestVerifierDisabled(t *testing.T) {
	var nilVerifier *Verifier
	for _, v := range []*Verifier{nilVerifier, NewVerifier("  ")} {
		if v.Enabled() {
			t.Error("verifier without hash should be disabled")
		}
		if !v.Verify("") {
			t.Error("disabled verifier should accept anything")
		}
	}
}

func newTestLimiter(perMinute, burst int) (*RateLimiter, *time.Time) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRateLimiter(config.RateLimitConfig{Enabled: true, PerMinute: perMinute, Burst: burst}, testLogger())
	r.now = func() time.Time { return now }
	return r, &now
}

func TestRateLimiter(t *testing.T) {
	limiter, now := newTestLimiter(60, 5)
	key := "127.0.0.1"

	for i := 0; i < 5; i++ {
		if allowed, _ := limiter.Allow(key); !allowed {
			t.Errorf("Request %d should be allowed (burst)", i+1)
		}
	}

	allowed, retryAfter := limiter.Allow(key)
	if allowed {
		t.Error("Request after burst should be rate limited")
	}
	if retryAfter <= 0 {
		t.Errorf("RetryAfter should be positive, got %d", retryAfter)
	}
	if remaining := limiter.Remaining(key); remaining != 0 {
		t.Errorf("Remaining() = %d, want 0", remaining)
	}

	*now = now.Add(2 * time.Second)
	if remaining := limiter.Remaining(key); remaining != 2 {
		t.Errorf("Remaining() after 2s = %d, want 2", remaining)
	}

	if allowed, _ := limiter.Allow("other"); !allowed {
		t.Error("other clients have their own bucket")
	}

	limiter.Reset(key)
	if remaining := limiter.Remaining(key); remaining != 5 {
		t.Errorf("Remaining() after Reset() = %d, want 5", remaining)
	}
}

func TestRateLimiterRefillCap(t *testing.T) {
	limiter, now := newTestLimiter(60, 3)
	limiter.Allow("k")
	*now = now.Add(time.Hour)
	if remaining := limiter.Remaining("k"); remaining != 3 {
		t.Errorf("refill should cap at burst, got %d", remaining)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	limiter := NewRateLimiter(config.RateLimitConfig{Enabled: false}, testLogger())

	for i := 0; i < 100; i++ {
		if allowed, _ := limiter.Allow("any-key"); !allowed {
			t.Fatal("Disabled rate limiter should always allow")
		}
	}
	if remaining := limiter.Remaining("any-key"); remaining != -1 {
		t.Errorf("Remaining() = %d, want -1 (unlimited)", remaining)
	}
}

func TestRateLimiterDefaults(t *testing.T) {
	limiter := NewRateLimiter(config.RateLimitConfig{Enabled: true}, testLogger())
	if limiter.config.PerMinute != 60 || limiter.config.Burst != 10 {
		t.Errorf("defaults not applied: %+v", limiter.config)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	limiter, now := newTestLimiter(60, 5)
	limiter.Allow("old")
	*now = now.Add(bucketIdleTTL + time.Minute)
	limiter.Allow("fresh")

	if removed := limiter.cleanup(); removed != 1 {
		t.Errorf("cleanup removed %d buckets, want 1", removed)
	}
	if _, ok := limiter.buckets["fresh"]; !ok {
		t.Error("fresh bucket should survive cleanup")
	}
}
