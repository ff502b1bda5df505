package oracle

import (
	"errors"
	"math/big"
	"time"

	"frizo/collateral_engine/common"
	"frizo/collateral_engine/internal/fixedpoint"
)

var (
	ErrInvalidPrice = errors.New("oracle: price must be positive")
	ErrStalePrice   = errors.New("oracle: price observation is stale")
)

// DefaultFreshnessTimeout is how old a price observation may be before
// it is rejected as stale.
const DefaultFreshnessTimeout = 3 * time.Hour

// FeedSource resolves the price feed registered for an asset.
type FeedSource interface {
	FeedOf(asset common.AssetID) (PriceFeed, error)
}

// Gateway fetches prices from external feeds, enforces freshness, and
// converts between asset quantities and 18-decimal USD values. A stale
// or invalid feed makes every valuation of that asset fail, which is the
// point: the engine freezes rather than valuing collateral on bad data.
type Gateway struct {
	feeds   FeedSource
	timeout time.Duration
	now     func() time.Time
}

// NewGateway constructs a gateway over the given feed source with the
// default freshness timeout and wall clock.
func NewGateway(feeds FeedSource) *Gateway {
	return &Gateway{
		feeds:   feeds,
		timeout: DefaultFreshnessTimeout,
		now:     time.Now,
	}
}

// SetTimeout overrides the freshness timeout.
func (g *Gateway) SetTimeout(timeout time.Duration) {
	if g == nil || timeout <= 0 {
		return
	}
	g.timeout = timeout
}

// SetClock overrides the clock used for staleness checks. Tests use this
// to pin "now".
func (g *Gateway) SetClock(now func() time.Time) {
	if g == nil || now == nil {
		return
	}
	g.now = now
}

// Timeout returns the configured freshness timeout.
func (g *Gateway) Timeout() time.Duration { return g.timeout }

// LatestPrice returns the feed's most recent price and its timestamp.
// Fails with ErrInvalidPrice when the reported price is not positive.
func (g *Gateway) LatestPrice(feed PriceFeed) (*big.Int, time.Time, error) {
	round, err := feed.LatestRound()
	if err != nil {
		return nil, time.Time{}, err
	}
	if !fixedpoint.IsPositive(round.Price) {
		return nil, time.Time{}, ErrInvalidPrice
	}
	return round.Price, round.UpdatedAt, nil
}

// AssertFresh fails with ErrStalePrice when the observation is older
// than the freshness timeout.
func (g *Gateway) AssertFresh(updatedAt, now time.Time) error {
	if now.Sub(updatedAt) > g.timeout {
		return ErrStalePrice
	}
	return nil
}

// UsdValue converts a quantity of the asset into an 18-decimal USD
// value: price * qty / assetPrecision, truncating. Rounds down, in the
// protocol's favor.
func (g *Gateway) UsdValue(asset common.AssetID, qty *big.Int) (*big.Int, error) {
	priceWad, err := g.priceWad(asset)
	if err != nil {
		return nil, err
	}
	return fixedpoint.MulDiv(priceWad, fixedpoint.Clone(qty), fixedpoint.Wad), nil
}

// TokenAmountFromUsd converts an 18-decimal USD value into a quantity of
// the asset, truncating. Rounds down, in the liquidator's favor when
// sizing seized collateral.
func (g *Gateway) TokenAmountFromUsd(asset common.AssetID, usdValue *big.Int) (*big.Int, error) {
	priceWad, err := g.priceWad(asset)
	if err != nil {
		return nil, err
	}
	return fixedpoint.MulDiv(fixedpoint.Clone(usdValue), fixedpoint.Wad, priceWad), nil
}

// priceWad resolves the asset's fresh price normalized to 18-decimal
// fixed point.
func (g *Gateway) priceWad(asset common.AssetID) (*big.Int, error) {
	feed, err := g.feeds.FeedOf(asset)
	if err != nil {
		return nil, err
	}
	price, updatedAt, err := g.LatestPrice(feed)
	if err != nil {
		return nil, err
	}
	if err := g.AssertFresh(updatedAt, g.now()); err != nil {
		return nil, err
	}
	return new(big.Int).Mul(price, fixedpoint.FeedScale(feed.Decimals())), nil
}
