package engine

import (
	"math/big"

	"frizo/collateral_engine/common"
	"frizo/collateral_engine/internal/fixedpoint"
	"frizo/collateral_engine/internal/position"
)

// Liquidate lets caller repay debtToCover of an unsafe target's debt in
// exchange for the equivalent collateral plus the liquidation bonus.
// The target must start below the minimum health factor and must end
// strictly better than it started; any failure along the way rewinds
// every effect of the call.
//
// Once system-wide collateralization falls to 100% or below, seizing
// the base amount plus bonus can exceed what remains and liquidation
// can no longer be relied on. Accepted design limitation.
func (e *Engine) Liquidate(caller common.Account, asset common.AssetID, target common.Account, debtToCover *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !fixedpoint.IsPositive(debtToCover) {
		return position.ErrInvalidQuantity
	}

	startHealth, err := e.HealthFactor(target)
	if err != nil {
		return err
	}
	if startHealth.Cmp(fixedpoint.MinHealthFactor) >= 0 {
		return ErrHealthFactorOK
	}

	baseQty, err := e.gateway.TokenAmountFromUsd(asset, debtToCover)
	if err != nil {
		return err
	}
	bonusQty := fixedpoint.MulDiv(baseQty, fixedpoint.LiquidationBonus, fixedpoint.LiquidationPrecision)
	totalSeized := new(big.Int).Add(baseQty, bonusQty)

	t := e.begin()

	// Seize to the caller, bypassing the target's self-health gate.
	if err := e.store.Withdraw(target, asset, totalSeized, caller); err != nil {
		return err
	}
	t.push(func() { _ = e.vault.TransferIn(caller, asset, totalSeized) })

	if err := e.burnSteps(t, target, caller, debtToCover); err != nil {
		t.abort()
		e.log.Warn("liquidation rolled back", "target", target.String(), "error", err)
		return err
	}

	endHealth, err := e.HealthFactor(target)
	if err != nil {
		t.abort()
		e.log.Warn("liquidation rolled back", "target", target.String(), "error", err)
		return err
	}
	if endHealth.Cmp(startHealth) <= 0 {
		t.abort()
		e.log.Warn("liquidation rolled back", "target", target.String(), "error", ErrHealthFactorNotImproved)
		return ErrHealthFactorNotImproved
	}

	e.log.Info("liquidation",
		"caller", caller.String(),
		"target", target.String(),
		"asset", asset.String(),
		"debt_covered", debtToCover.String(),
		"collateral_seized", totalSeized.String(),
	)
	return nil
}
