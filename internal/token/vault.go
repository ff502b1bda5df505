package token

import (
	"math/big"
	"sync"

	"frizo/collateral_engine/common"
	"frizo/collateral_engine/internal/fixedpoint"
)

// Vault holds the underlying collateral assets. Deposits move units from
// the depositor into system custody; withdrawals move them back out. One
// custodian account owns everything the engine holds.
type Vault struct {
	mu        sync.RWMutex
	custodian common.Account
	balances  map[common.AssetID]map[common.Account]*big.Int
}

// NewVault creates an empty vault whose custody account is custodian.
func NewVault(custodian common.Account) *Vault {
	return &Vault{
		custodian: custodian,
		balances:  make(map[common.AssetID]map[common.Account]*big.Int),
	}
}

// Fund credits an account with units of an asset. Test and bootstrap
// helper; real deployments seed balances from the outside.
func (v *Vault) Fund(account common.Account, asset common.AssetID, qty *big.Int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.credit(account, asset, fixedpoint.Clone(qty))
}

// TransferIn moves qty of asset from the account into system custody.
func (v *Vault) TransferIn(from common.Account, asset common.AssetID, qty *big.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.move(from, v.custodian, asset, qty)
}

// TransferOut moves qty of asset from system custody to the recipient.
func (v *Vault) TransferOut(to common.Account, asset common.AssetID, qty *big.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.move(v.custodian, to, asset, qty)
}

// BalanceOf returns the account's holding of the asset.
func (v *Vault) BalanceOf(account common.Account, asset common.AssetID) *big.Int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return fixedpoint.Clone(v.balance(account, asset))
}

// CustodyOf returns how much of the asset the system currently holds.
func (v *Vault) CustodyOf(asset common.AssetID) *big.Int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return fixedpoint.Clone(v.balance(v.custodian, asset))
}

func (v *Vault) move(from, to common.Account, asset common.AssetID, qty *big.Int) error {
	if from.IsZero() || to.IsZero() {
		return ErrZeroAccount
	}
	if !fixedpoint.IsPositive(qty) {
		return ErrInvalidAmount
	}
	balance := v.balance(from, asset)
	if balance.Cmp(qty) < 0 {
		return ErrInsufficientBalance
	}

	v.balances[asset][from] = new(big.Int).Sub(balance, qty)
	v.credit(to, asset, qty)
	return nil
}

func (v *Vault) balance(account common.Account, asset common.AssetID) *big.Int {
	if byAsset, ok := v.balances[asset]; ok {
		if balance, ok := byAsset[account]; ok && balance != nil {
			return balance
		}
	}
	return big.NewInt(0)
}

func (v *Vault) credit(account common.Account, asset common.AssetID, qty *big.Int) {
	if v.balances[asset] == nil {
		v.balances[asset] = make(map[common.Account]*big.Int)
	}
	v.balances[asset][account] = new(big.Int).Add(v.balance(account, asset), qty)
}
