package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	userBucketTTL = 2 * time.Minute
	ipBucketTTL   = 30 * time.Second
)

// RateLimitResult is the outcome of one token-bucket draw.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// tokenBucketScript refills and draws from a bucket atomically.
// Time is in milliseconds so sub-second refill rates stay exact.
//
//	KEYS[1]  bucket key
//	ARGV[1]  refill rate, tokens per millisecond
//	ARGV[2]  capacity
//	ARGV[3]  now, unix milliseconds
//	ARGV[4]  key ttl, milliseconds
//
// Returns {allowed, retry_after_ms, remaining}.
var tokenBucketScript = redis.NewScript(`
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(state[1]) or capacity
local ts = tonumber(state[2]) or now

if now > ts then
  tokens = math.min(capacity, tokens + (now - ts) * rate)
end

local allowed = 0
local wait = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
else
  wait = math.ceil((1 - tokens) / rate)
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', now)
redis.call('PEXPIRE', KEYS[1], ttl)

return {allowed, wait, math.floor(tokens)}
`)

// CheckUserRateLimit draws from the bucket of an authenticated identity.
// A non-positive rate disables the limit without touching Redis.
func (c *Cache) CheckUserRateLimit(ctx context.Context, userID string, ratePerMinute, burst int) (*RateLimitResult, error) {
	if ratePerMinute <= 0 {
		return unlimited(burst, time.Minute), nil
	}
	return c.draw(ctx, c.key("ratelimit", "user", userID), float64(ratePerMinute)/60, burst, userBucketTTL)
}

// CheckIPRateLimit draws from the bucket of a client address. Addresses are
// hashed before they reach Redis.
func (c *Cache) CheckIPRateLimit(ctx context.Context, ip string, ratePerSecond, burst int) (*RateLimitResult, error) {
	if ratePerSecond <= 0 {
		return unlimited(burst, time.Second), nil
	}
	return c.draw(ctx, c.key("ratelimit", "ip", hashIP(ip)), float64(ratePerSecond), burst, ipBucketTTL)
}

// draw runs the bucket script. Callers decide whether an error fails open.
func (c *Cache) draw(ctx context.Context, key string, perSecond float64, burst int, ttl time.Duration) (*RateLimitResult, error) {
	now := time.Now()
	perMilli := perSecond / 1000

	res, err := tokenBucketScript.Run(ctx, c.client, []string{key},
		perMilli, burst, now.UnixMilli(), ttl.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("token bucket %s: %w", key, err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("token bucket %s: unexpected reply %v", key, res)
	}

	retryAfter := time.Duration(res[1]) * time.Millisecond
	return &RateLimitResult{
		Allowed:    res[0] == 1,
		Remaining:  res[2],
		ResetAt:    now.Add(time.Duration(float64(time.Second) / perSecond)),
		RetryAfter: roundUpToSecond(retryAfter),
	}, nil
}

func unlimited(burst int, window time.Duration) *RateLimitResult {
	return &RateLimitResult{
		Allowed:   true,
		Remaining: int64(burst),
		ResetAt:   time.Now().Add(window),
	}
}

// roundUpToSecond keeps Retry-After from advertising zero while a wait remains.
func roundUpToSecond(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return ((d + time.Second - 1) / time.Second) * time.Second
}

// hashIP returns the first 8 bytes of the SHA-256 of ip as hex.
func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:8])
}
