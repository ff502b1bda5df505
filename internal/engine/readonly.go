package engine

import (
	"math/big"

	"github.com/shopspring/decimal"

	"frizo/collateral_engine/common"
	"frizo/collateral_engine/internal/fixedpoint"
	"frizo/collateral_engine/internal/oracle"
)

// Read-only surface. None of these mutate state; with fresh feeds and
// well-formed inputs they never fail, and calling any of them twice
// with no intervening mutation yields identical results.

// HealthFactorOf returns the account's current health factor.
func (e *Engine) HealthFactorOf(account common.Account) (*big.Int, error) {
	return e.HealthFactor(account)
}

// AccountInfo returns the account's minted debt and total collateral
// value in USD.
func (e *Engine) AccountInfo(account common.Account) (debtMinted, collateralValueUsd *big.Int, err error) {
	value, err := e.AccountValue(account)
	if err != nil {
		return nil, nil, err
	}
	return e.store.DebtOf(account), value, nil
}

// CollateralValueOf returns the USD value of the account's collateral.
func (e *Engine) CollateralValueOf(account common.Account) (*big.Int, error) {
	return e.AccountValue(account)
}

// UsdValue converts an asset quantity into an 18-decimal USD value.
func (e *Engine) UsdValue(asset common.AssetID, qty *big.Int) (*big.Int, error) {
	return e.gateway.UsdValue(asset, qty)
}

// TokenAmountFromUsd converts an 18-decimal USD value into an asset
// quantity.
func (e *Engine) TokenAmountFromUsd(asset common.AssetID, usdValue *big.Int) (*big.Int, error) {
	return e.gateway.TokenAmountFromUsd(asset, usdValue)
}

// ListSupportedAssets returns the supported assets in registration
// order.
func (e *Engine) ListSupportedAssets() []common.AssetID {
	return e.registry.Assets()
}

// CollateralBalance returns the account's deposited quantity of asset.
func (e *Engine) CollateralBalance(account common.Account, asset common.AssetID) *big.Int {
	return e.store.CollateralBalance(account, asset)
}

// PriceFeedOf returns the price feed registered for the asset.
func (e *Engine) PriceFeedOf(asset common.AssetID) (oracle.PriceFeed, error) {
	return e.registry.FeedOf(asset)
}

// LiquidationBonusPct returns the liquidation bonus in percent.
func (e *Engine) LiquidationBonusPct() int64 {
	return fixedpoint.LiquidationBonus.Int64()
}

// ValuationPrecision returns the engine's working precision, 1e18.
func (e *Engine) ValuationPrecision() *big.Int {
	return fixedpoint.Clone(fixedpoint.Wad)
}

// AccountSummary renders the account's position for humans.
func (e *Engine) AccountSummary(account common.Account) (map[string]interface{}, error) {
	info := e.store.PositionOf(account).DisplayInfo()

	value, err := e.AccountValue(account)
	if err != nil {
		return nil, err
	}
	info["collateral_value_usd"] = decimal.NewFromBigInt(value, -fixedpoint.WadDecimals).String()

	hf, err := e.HealthFactor(account)
	if err != nil {
		return nil, err
	}
	if hf.Cmp(fixedpoint.MaxHealthFactor) == 0 {
		info["health_factor"] = "max"
	} else {
		info["health_factor"] = decimal.NewFromBigInt(hf, -fixedpoint.WadDecimals).String()
	}
	return info, nil
}
