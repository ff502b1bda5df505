package oracle

import (
	"math/big"
	"sync"
	"time"

	"frizo/collateral_engine/internal/fixedpoint"
)

// RoundData is a single price observation as reported by a feed, in the
// feed's own decimal precision.
type RoundData struct {
	Price     *big.Int
	UpdatedAt time.Time
}

// PriceFeed is the external price source for one asset.
type PriceFeed interface {
	// LatestRound returns the most recent observation.
	LatestRound() (RoundData, error)
	// Decimals reports the feed's quoting precision.
	Decimals() uint8
}

// StaticFeed is an in-memory PriceFeed whose price and timestamp can be
// set directly. It backs tests and the demo binary.
type StaticFeed struct {
	mu        sync.RWMutex
	price     *big.Int
	decimals  uint8
	updatedAt time.Time
}

// NewStaticFeed creates a feed reporting the given price at the given
// decimal precision, timestamped now.
func NewStaticFeed(price *big.Int, decimals uint8) *StaticFeed {
	return &StaticFeed{
		price:     fixedpoint.Clone(price),
		decimals:  decimals,
		updatedAt: time.Now(),
	}
}

// SetPrice updates the reported price and refreshes the timestamp.
func (f *StaticFeed) SetPrice(price *big.Int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.price = fixedpoint.Clone(price)
	f.updatedAt = time.Now()
}

// SetUpdatedAt overrides the observation timestamp.
func (f *StaticFeed) SetUpdatedAt(ts time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updatedAt = ts
}

func (f *StaticFeed) LatestRound() (RoundData, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return RoundData{
		Price:     fixedpoint.Clone(f.price),
		UpdatedAt: f.updatedAt,
	}, nil
}

func (f *StaticFeed) Decimals() uint8 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.decimals
}
