package osm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// Service names for rate limiting
	ServiceNominatim = "nominatim"
	ServiceOverpass  = "overpass"
	ServiceOSRM      = "osrm"
	ServiceTiles     = "tiles"
)

// RateLimiter manages per-service rate limiting for the public
// OpenStreetMap API instances according to their usage policies.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
}

// NewRateLimiter returns a rate limiter with the default per-service
// limits:
//
//   - Nominatim: 1 request per second
//     https://operations.osmfoundation.org/policies/nominatim/
//   - Overpass: bursts of 2, refilling every 30 seconds
//     https://wiki.openstreetmap.org/wiki/Overpass_API#Public_Overpass_API_instances
//   - OSRM: bursts of 5, refilling every 600ms
//   - Tile servers: 2 requests per second with bursts of 4
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		limiters: map[string]*rate.Limiter{
			ServiceNominatim: rate.NewLimiter(rate.Every(1*time.Second), 1),
			ServiceOverpass:  rate.NewLimiter(rate.Every(30*time.Second), 2),
			ServiceOSRM:      rate.NewLimiter(rate.Every(600*time.Millisecond), 5),
			ServiceTiles:     rate.NewLimiter(rate.Every(500*time.Millisecond), 4),
		},
	}
}

// SetLimit replaces the limiter for the given service.
func (rl *RateLimiter) SetLimit(service string, limit rate.Limit, burst int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.limiters[service] = rate.NewLimiter(limit, burst)
}

// Wait blocks until the rate limit for the specified service allows an
// event or the context is canceled.
func (rl *RateLimiter) Wait(ctx context.Context, service string) error {
	rl.mu.RLock()
	limiter, exists := rl.limiters[service]
	rl.mu.RUnlock()

	if !exists {
		return fmt.Errorf("no rate limiter defined for service: %s", service)
	}

	return limiter.Wait(ctx)
}
