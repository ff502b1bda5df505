package position

import (
	"math/big"

	"github.com/shopspring/decimal"

	"frizo/collateral_engine/common"
	"frizo/collateral_engine/internal/fixedpoint"
)

// Position is one account's collateral-and-debt record: deposited
// quantity per asset in the asset's native decimal scale, plus the
// stable-unit debt minted against it in 18-decimal fixed point. Created
// implicitly on first deposit and never destroyed; a fully unwound
// position stays in the ledger at all-zero.
type Position struct {
	Account    common.Account
	Collateral map[common.AssetID]*big.Int
	DebtMinted *big.Int
}

// NewPosition creates an empty position for the account.
func NewPosition(account common.Account) *Position {
	return &Position{
		Account:    account,
		Collateral: make(map[common.AssetID]*big.Int),
		DebtMinted: big.NewInt(0),
	}
}

// CollateralOf returns the deposited quantity of the asset, zero when
// none was ever deposited.
func (p *Position) CollateralOf(asset common.AssetID) *big.Int {
	if qty, ok := p.Collateral[asset]; ok && qty != nil {
		return fixedpoint.Clone(qty)
	}
	return big.NewInt(0)
}

// Clone returns a deep copy.
func (p *Position) Clone() *Position {
	clone := NewPosition(p.Account)
	for asset, qty := range p.Collateral {
		clone.Collateral[asset] = fixedpoint.Clone(qty)
	}
	clone.DebtMinted = fixedpoint.Clone(p.DebtMinted)
	return clone
}

// DisplayInfo renders the position for humans, with wad amounts shown
// as decimals.
func (p *Position) DisplayInfo() map[string]interface{} {
	collateral := make(map[string]string, len(p.Collateral))
	for asset, qty := range p.Collateral {
		collateral[asset.String()] = decimal.NewFromBigInt(qty, -fixedpoint.WadDecimals).String()
	}
	return map[string]interface{}{
		"account":     p.Account.String(),
		"collateral":  collateral,
		"debt_minted": decimal.NewFromBigInt(p.DebtMinted, -fixedpoint.WadDecimals).String(),
	}
}
