package token

import (
	"errors"
	"math/big"
	"sync"

	"frizo/collateral_engine/common"
	"frizo/collateral_engine/internal/fixedpoint"
)

var (
	ErrInvalidAmount         = errors.New("token: amount must be positive")
	ErrZeroAccount           = errors.New("token: zero account")
	ErrInsufficientBalance   = errors.New("token: insufficient balance")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
)

// StableToken is the stable-unit ledger. Mint and burn are restricted to
// the single authority account fixed at construction; transfer, approve
// and balance reads are open. Amounts are 18-decimal fixed point.
type StableToken struct {
	mu         sync.RWMutex
	authority  common.Account
	balances   map[common.Account]*big.Int
	allowances map[common.Account]map[common.Account]*big.Int
	supply     *big.Int
}

// NewStableToken creates an empty ledger whose mint/burn capability is
// held by authority.
func NewStableToken(authority common.Account) *StableToken {
	return &StableToken{
		authority:  authority,
		balances:   make(map[common.Account]*big.Int),
		allowances: make(map[common.Account]map[common.Account]*big.Int),
		supply:     big.NewInt(0),
	}
}

// Mint credits amount to the recipient. Reports false when the caller is
// not the authority or the request is malformed; callers treat false as
// a hard failure.
func (t *StableToken) Mint(caller, to common.Account, amount *big.Int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if caller != t.authority || to.IsZero() || !fixedpoint.IsPositive(amount) {
		return false
	}

	t.balances[to] = new(big.Int).Add(t.balanceLocked(to), amount)
	t.supply = new(big.Int).Add(t.supply, amount)
	return true
}

// Burn destroys amount from the caller's own balance. Restricted to the
// authority.
func (t *StableToken) Burn(caller common.Account, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if caller != t.authority {
		return errors.New("token: burn restricted to authority")
	}
	if !fixedpoint.IsPositive(amount) {
		return ErrInvalidAmount
	}
	balance := t.balanceLocked(caller)
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}

	t.balances[caller] = new(big.Int).Sub(balance, amount)
	t.supply = new(big.Int).Sub(t.supply, amount)
	return nil
}

// Transfer moves amount from one account to another.
func (t *StableToken) Transfer(from, to common.Account, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.transferLocked(from, to, amount)
}

// Approve lets spender move up to amount of owner's balance.
func (t *StableToken) Approve(owner, spender common.Account, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if owner.IsZero() || spender.IsZero() {
		return ErrZeroAccount
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if t.allowances[owner] == nil {
		t.allowances[owner] = make(map[common.Account]*big.Int)
	}
	t.allowances[owner][spender] = fixedpoint.Clone(amount)
	return nil
}

// TransferFrom moves amount from owner to recipient on the spender's
// authority, consuming allowance.
func (t *StableToken) TransferFrom(spender, owner, to common.Account, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !fixedpoint.IsPositive(amount) {
		return ErrInvalidAmount
	}
	allowance := t.allowanceLocked(owner, spender)
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := t.transferLocked(owner, to, amount); err != nil {
		return err
	}
	t.allowances[owner][spender] = new(big.Int).Sub(allowance, amount)
	return nil
}

// BalanceOf returns the account's balance.
func (t *StableToken) BalanceOf(account common.Account) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return fixedpoint.Clone(t.balanceLocked(account))
}

// Allowance returns what spender may still move from owner.
func (t *StableToken) Allowance(owner, spender common.Account) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return fixedpoint.Clone(t.allowanceLocked(owner, spender))
}

// TotalSupply returns the outstanding stable-unit supply.
func (t *StableToken) TotalSupply() *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return fixedpoint.Clone(t.supply)
}

func (t *StableToken) transferLocked(from, to common.Account, amount *big.Int) error {
	if from.IsZero() || to.IsZero() {
		return ErrZeroAccount
	}
	if !fixedpoint.IsPositive(amount) {
		return ErrInvalidAmount
	}
	balance := t.balanceLocked(from)
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}

	t.balances[from] = new(big.Int).Sub(balance, amount)
	t.balances[to] = new(big.Int).Add(t.balanceLocked(to), amount)
	return nil
}

func (t *StableToken) balanceLocked(account common.Account) *big.Int {
	if balance, ok := t.balances[account]; ok && balance != nil {
		return balance
	}
	return big.NewInt(0)
}

func (t *StableToken) allowanceLocked(owner, spender common.Account) *big.Int {
	if byOwner, ok := t.allowances[owner]; ok {
		if allowance, ok := byOwner[spender]; ok && allowance != nil {
			return allowance
		}
	}
	return big.NewInt(0)
}
