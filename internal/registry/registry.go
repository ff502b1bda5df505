package registry

import (
	"errors"

	"frizo/collateral_engine/common"
	"frizo/collateral_engine/internal/oracle"
)

var (
	ErrLengthMismatch   = errors.New("registry: asset and feed lists differ in length")
	ErrUnsupportedAsset = errors.New("registry: asset not supported")
)

// Registry is the fixed mapping from supported collateral assets to
// their price feeds. Built once at initialization, never mutated.
//
// A duplicate asset id in the input silently overwrites the feed mapping
// and appears twice in the asset list, double-counting that asset during
// valuation. Known quirk, kept until a product decision says otherwise.
type Registry struct {
	feeds  map[common.AssetID]oracle.PriceFeed
	assets []common.AssetID
}

// New pairs each asset with its feed. Fails with ErrLengthMismatch when
// the two lists differ in length.
func New(assets []common.AssetID, feeds []oracle.PriceFeed) (*Registry, error) {
	if len(assets) != len(feeds) {
		return nil, ErrLengthMismatch
	}

	r := &Registry{
		feeds:  make(map[common.AssetID]oracle.PriceFeed, len(assets)),
		assets: make([]common.AssetID, 0, len(assets)),
	}
	for i, asset := range assets {
		r.feeds[asset] = feeds[i]
		r.assets = append(r.assets, asset)
	}
	return r, nil
}

// FeedOf returns the price feed registered for the asset. Fails with
// ErrUnsupportedAsset when the asset was never registered (nil feed is
// the unregistered sentinel).
func (r *Registry) FeedOf(asset common.AssetID) (oracle.PriceFeed, error) {
	feed, ok := r.feeds[asset]
	if !ok || feed == nil {
		return nil, ErrUnsupportedAsset
	}
	return feed, nil
}

// Supported reports whether the asset has a registered feed.
func (r *Registry) Supported(asset common.AssetID) bool {
	feed, ok := r.feeds[asset]
	return ok && feed != nil
}

// Assets returns the supported assets in registration order.
func (r *Registry) Assets() []common.AssetID {
	out := make([]common.AssetID, len(r.assets))
	copy(out, r.assets)
	return out
}
