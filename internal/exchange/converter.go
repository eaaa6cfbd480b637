package exchange

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	fetchAttempts  = 3
	retryBaseDelay = time.Second

	// CacheTTL bounds how long a fetched rate may serve conversions.
	CacheTTL = 5 * time.Minute
)

// ErrRateUnavailable is returned once every fetch attempt has failed.
// Callers must treat the request as retryable; a stale or fabricated
// rate is never substituted for donation-amount conversion.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// Converter normalizes submitted amounts into the canonical currency,
// serving rates from the cache and falling back to the external source.
type Converter struct {
	source Source
	cache  *Cache
	logger zerolog.Logger
	sleep  func(time.Duration)
}

// NewConverter wires a converter around a rate source and cache.
func NewConverter(source Source, cache *Cache, logger zerolog.Logger) *Converter {
	return &Converter{
		source: source,
		cache:  cache,
		logger: logger,
		sleep:  time.Sleep,
	}
}

// GetRate returns the rate for the pair, retrying the source up to three
// times with a growing delay before giving up with ErrRateUnavailable.
func (c *Converter) GetRate(ctx context.Context, base, target string) (float64, error) {
	if base == target {
		return 1, nil
	}

	if rate, ok := c.cache.Get(base, target); ok {
		return rate, nil
	}

	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		rate, err := c.source.FetchRate(ctx, base, target)
		if err == nil {
			c.cache.Put(base, target, rate)
			return rate, nil
		}

		c.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Str("pair", pairKey(base, target)).
			Msg("exchange rate fetch failed")

		if attempt < fetchAttempts {
			c.sleep(time.Duration(attempt) * retryBaseDelay)
		}
	}

	return 0, ErrRateUnavailable
}

// Convert returns amount expressed in the target currency, rounded
// half-up to two decimal places.
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return amount.Round(2), nil
	}

	rate, err := c.GetRate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}

	return amount.Mul(decimal.NewFromFloat(rate)).Round(2), nil
}
