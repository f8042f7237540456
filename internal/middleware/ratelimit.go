package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/afroman-media/storefront-backend/internal/auth"
	"github.com/afroman-media/storefront-backend/internal/cache"
)

const (
	RateLimit       = 60              // requests per window
	RateLimitWindow = 1 * time.Minute // window duration
)

func RateLimiter(redisClient *cache.Redis) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Keyed by session token when present, IP otherwise
			identifier := auth.TokenFromRequest(r)
			if identifier == "" {
				identifier = r.RemoteAddr
			}

			key := fmt.Sprintf("ratelimit:%s", identifier)

			// Increment request count
			count, err := redisClient.Incr(r.Context(), key)
			if err != nil {
				// If Redis fails, allow the request
				next.ServeHTTP(w, r)
				return
			}

			// Set expiry on first request
			if count == 1 {
				redisClient.Expire(r.Context(), key, RateLimitWindow)
			}

			// Check if over limit
			if count > RateLimit {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", RateLimit))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"Rate limit exceeded. Try again later."}`))
				return
			}

			// Add rate limit headers
			remaining := RateLimit - int(count)
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", RateLimit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

			next.ServeHTTP(w, r)
		})
	}
}
