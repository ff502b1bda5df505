package engine

import (
	"math/big"

	"frizo/collateral_engine/common"
	"frizo/collateral_engine/internal/fixedpoint"
)

// AccountValue sums the USD value of everything the account has
// deposited, in 18-decimal fixed point. A stale or invalid feed for any
// held asset fails the whole valuation: one bad feed freezes solvency
// computation for every account holding that asset.
func (e *Engine) AccountValue(account common.Account) (*big.Int, error) {
	total := big.NewInt(0)
	for _, asset := range e.registry.Assets() {
		qty := e.store.CollateralBalance(account, asset)
		if qty.Sign() == 0 {
			continue
		}
		usd, err := e.gateway.UsdValue(asset, qty)
		if err != nil {
			return nil, err
		}
		total.Add(total, usd)
	}
	return total, nil
}

// HealthFactor is the account's solvency ratio in 18-decimal fixed
// point: threshold-adjusted collateral value over minted debt. Zero-debt
// accounts report the maximum representable value.
func (e *Engine) HealthFactor(account common.Account) (*big.Int, error) {
	debt := e.store.DebtOf(account)
	if debt.Sign() == 0 {
		return fixedpoint.Clone(fixedpoint.MaxHealthFactor), nil
	}

	value, err := e.AccountValue(account)
	if err != nil {
		return nil, err
	}
	adjusted := fixedpoint.MulDiv(value, fixedpoint.LiquidationThreshold, fixedpoint.LiquidationPrecision)
	if adjusted.Sign() == 0 {
		return big.NewInt(0), nil
	}
	return fixedpoint.MulDiv(adjusted, fixedpoint.Wad, debt), nil
}

// assertHealthy is the single solvency gate, invoked after every mint
// and every self-initiated withdrawal. Strictly above the minimum, not
// at it.
func (e *Engine) assertHealthy(account common.Account) error {
	hf, err := e.HealthFactor(account)
	if err != nil {
		return err
	}
	if hf.Cmp(fixedpoint.MinHealthFactor) <= 0 {
		return ErrHealthFactorBelowMinimum
	}
	return nil
}
