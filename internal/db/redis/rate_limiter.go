package redis

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"norelock.dev/moodmix/backend/internal/utils"
)

const (
	// RateLimitKeyPrefix is the prefix for rate limit keys
	RateLimitKeyPrefix = "ratelimit"
)

// slidingWindowScript trims the window, counts it and records the request only
// when it fits, all in one round trip so concurrent callers cannot overshoot.
// Replies {count before this request, score of the oldest entry or ""}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')

if count < limit then
	redis.call('ZADD', key, now, ARGV[4])
	redis.call('PEXPIRE', key, tonumber(ARGV[5]))
end

if oldest[2] then
	return {count, oldest[2]}
end
return {count, ''}
`)

// RateLimiter is a sliding-window limiter shared across instances through a
// Redis sorted set per key. Scores are request timestamps in milliseconds.
type RateLimiter struct {
	client *Client
	logger *utils.Logger
	scope  string
	limit  int
	window time.Duration
	now    func() time.Time
	seq    atomic.Uint64
}

// NewRateLimiter creates a limiter allowing limit requests per window for
// each key under scope.
func NewRateLimiter(client *Client, scope string, limit int, window time.Duration) *RateLimiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		client: client,
		logger: client.Logger().Named("rate_limiter"),
		scope:  scope,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow checks if a request identified by key fits in the current window and
// records it when it does.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (utils.LimitResult, error) {
	rateLimitKey := formatRateLimitKey(rl.scope, key)
	now := rl.now()

	reply, err := slidingWindowScript.Run(ctx, rl.client.Client(), []string{rateLimitKey},
		now.UnixMilli(),
		rl.window.Milliseconds(),
		rl.limit,
		strconv.FormatInt(now.UnixNano(), 10)+"-"+strconv.FormatUint(rl.seq.Add(1), 10),
		(rl.window * 2).Milliseconds(),
	).Result()
	if err != nil {
		rl.logger.Error("Failed to run rate limit script", err, "key", rateLimitKey)
		return utils.LimitResult{}, err
	}

	count, oldest, err := parseWindowReply(reply)
	if err != nil {
		rl.logger.Error("Unexpected rate limit script reply", err, "key", rateLimitKey)
		return utils.LimitResult{}, err
	}

	return evaluateWindow(count, oldest, now, rl.window, rl.limit), nil
}

// parseWindowReply decodes the {count, oldestScore} script reply.
func parseWindowReply(reply any) (int64, []redis.Z, error) {
	values, ok := reply.([]any)
	if !ok || len(values) != 2 {
		return 0, nil, fmt.Errorf("malformed reply %v", reply)
	}

	count, ok := values[0].(int64)
	if !ok {
		return 0, nil, fmt.Errorf("malformed count %v", values[0])
	}

	raw, _ := values[1].(string)
	if raw == "" {
		return count, nil, nil
	}
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("malformed oldest score %q: %w", raw, err)
	}
	return count, []redis.Z{{Score: score}}, nil
}

// evaluateWindow decides a request given the entries already in the window.
// count excludes the request being evaluated.
func evaluateWindow(count int64, oldest []redis.Z, now time.Time, window time.Duration, limit int) utils.LimitResult {
	result := utils.LimitResult{Limit: limit}

	if count < int64(limit) {
		result.Allowed = true
		result.Remaining = limit - int(count) - 1
		return result
	}

	result.RetryAfter = window
	if len(oldest) > 0 {
		oldestTime := time.UnixMilli(int64(oldest[0].Score))
		if wait := oldestTime.Add(window).Sub(now); wait > 0 && wait < window {
			result.RetryAfter = wait
		}
	}
	return result
}

// formatRateLimitKey formats a key for rate limiting
func formatRateLimitKey(scope, identifier string) string {
	return FormatKey(KeyNamespace, FormatKey(RateLimitKeyPrefix, scope+":"+identifier))
}
