package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"lastmile/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

const DefaultGeocodeTTL = 7 * 24 * time.Hour

// GeocodeCache decorates a ports.Geocoder. Only valid answers are cached;
// cache failures fall through to the wrapped geocoder.
type GeocodeCache struct {
	next   ports.Geocoder
	client goredis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

func NewGeocodeCache(next ports.Geocoder, client goredis.UniversalClient, ttl time.Duration, logger *slog.Logger) *GeocodeCache {
	if ttl <= 0 {
		ttl = DefaultGeocodeTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeocodeCache{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "geocode-cache"),
	}
}

// normalize collapses whitespace and case so equivalent inputs share a key.
func normalize(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}

func geocodeKey(address string) string {
	return "lastmile:geocode:" + normalize(address)
}

func (c *GeocodeCache) Resolve(ctx context.Context, address string) (ports.GeocodeResult, error) {
	key := geocodeKey(address)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached ports.GeocodeResult
		if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
			return cached, nil
		}
		c.logger.WarnContext(ctx, "dropping undecodable cache entry", "key", key)
	case !errors.Is(err, goredis.Nil):
		c.logger.WarnContext(ctx, "geocode cache read failed", "error", err)
	}

	result, err := c.next.Resolve(ctx, address)
	if err != nil || !result.Valid {
		return result, err
	}

	if data, err = json.Marshal(result); err == nil {
		if setErr := c.client.Set(ctx, key, data, c.ttl).Err(); setErr != nil {
			c.logger.WarnContext(ctx, "geocode cache write failed", "error", setErr)
		}
	}
	return result, nil
}
