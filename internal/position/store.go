package position

import (
	"errors"
	"math/big"
	"sync"

	"frizo/collateral_engine/common"
	intcommon "frizo/collateral_engine/internal/common"
	"frizo/collateral_engine/internal/fixedpoint"
	"frizo/collateral_engine/internal/logger"
)

var (
	ErrInvalidQuantity        = errors.New("position: quantity must be positive")
	ErrUnsupportedAsset       = errors.New("position: asset not supported")
	ErrInsufficientCollateral = errors.New("position: insufficient collateral")
	ErrTransferFailed         = errors.New("position: asset transfer failed")
)

// AssetSet answers whether an asset is supported for deposit.
type AssetSet interface {
	Supported(asset common.AssetID) bool
}

// Vault moves the underlying collateral between user accounts and
// system custody. The store calls it on every deposit and withdrawal
// and rolls its own bookkeeping back when a transfer fails.
type Vault interface {
	TransferIn(from common.Account, asset common.AssetID, qty *big.Int) error
	TransferOut(to common.Account, asset common.AssetID, qty *big.Int) error
}

// Store is the per-account collateral-and-debt ledger. All mutation
// goes through its four operations so the bookkeeping invariants stay
// enforceable in one place. Solvency is not the store's concern;
// callers gate on the health factor after mutating.
type Store struct {
	mu       sync.RWMutex
	assets   AssetSet
	vault    Vault
	accounts map[common.Account]*Position
	events   []Event
	log      *logger.Logger
}

// NewStore creates an empty ledger over the given asset set and vault.
func NewStore(assets AssetSet, vault Vault) *Store {
	return &Store{
		assets:   assets,
		vault:    vault,
		accounts: make(map[common.Account]*Position),
		log:      logger.Default(),
	}
}

// SetLogger overrides the store's logger.
func (s *Store) SetLogger(log *logger.Logger) {
	if s == nil || log == nil {
		return
	}
	s.log = log
}

// Deposit credits qty of asset to the account's position and pulls the
// underlying units into system custody. If the transfer fails the
// credit is rolled back and no event is recorded.
func (s *Store) Deposit(account common.Account, asset common.AssetID, qty *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !fixedpoint.IsPositive(qty) {
		return ErrInvalidQuantity
	}
	if !s.assets.Supported(asset) {
		return ErrUnsupportedAsset
	}

	pos := s.ensure(account)
	prev := pos.CollateralOf(asset)
	pos.Collateral[asset] = new(big.Int).Add(prev, qty)

	if err := s.vault.TransferIn(account, asset, qty); err != nil {
		pos.Collateral[asset] = prev
		return errors.Join(ErrTransferFailed, err)
	}

	s.events = append(s.events, CollateralDeposited{
		ID:      intcommon.GenerateEventID(),
		Account: account,
		Asset:   asset,
		Qty:     fixedpoint.Clone(qty),
	})
	s.log.Debug("collateral deposited", "account", account.String(), "asset", asset.String(), "qty", qty.String())
	return nil
}

// Withdraw debits qty of asset from the account's position and releases
// the underlying units to the recipient. The resulting health factor is
// not checked here; callers invoke the solvency gate when the position
// owner is reducing their own collateral.
func (s *Store) Withdraw(account common.Account, asset common.AssetID, qty *big.Int, to common.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !fixedpoint.IsPositive(qty) {
		return ErrInvalidQuantity
	}
	pos := s.ensure(account)
	prev := pos.CollateralOf(asset)
	if prev.Cmp(qty) < 0 {
		return ErrInsufficientCollateral
	}
	pos.Collateral[asset] = new(big.Int).Sub(prev, qty)

	if err := s.vault.TransferOut(to, asset, qty); err != nil {
		pos.Collateral[asset] = prev
		return errors.Join(ErrTransferFailed, err)
	}

	s.events = append(s.events, CollateralRedeemed{
		ID:    intcommon.GenerateEventID(),
		From:  account,
		To:    to,
		Asset: asset,
		Qty:   fixedpoint.Clone(qty),
	})
	s.log.Debug("collateral redeemed", "from", account.String(), "to", to.String(), "asset", asset.String(), "qty", qty.String())
	return nil
}

// MintDebt increments the account's minted debt. The caller is
// responsible for the stable-unit mint and the post-condition health
// check.
func (s *Store) MintDebt(account common.Account, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !fixedpoint.IsPositive(amount) {
		return ErrInvalidQuantity
	}
	pos := s.ensure(account)
	pos.DebtMinted = new(big.Int).Add(pos.DebtMinted, amount)
	return nil
}

// BurnDebt decrements the account's minted debt, funded by payer (the
// caller handles the stable-unit transfer and burn). Requesting more
// than is minted is a programming error, not a recoverable condition.
func (s *Store) BurnDebt(account common.Account, amount *big.Int, payer common.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !fixedpoint.IsPositive(amount) {
		return ErrInvalidQuantity
	}
	pos := s.ensure(account)
	if pos.DebtMinted.Cmp(amount) < 0 {
		panic("position: burn exceeds minted debt")
	}
	pos.DebtMinted = new(big.Int).Sub(pos.DebtMinted, amount)
	s.log.Debug("debt burned", "account", account.String(), "payer", payer.String(), "amount", amount.String())
	return nil
}

// CollateralBalance returns the account's deposited quantity of asset.
func (s *Store) CollateralBalance(account common.Account, asset common.AssetID) *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if pos, ok := s.accounts[account]; ok {
		return pos.CollateralOf(asset)
	}
	return big.NewInt(0)
}

// DebtOf returns the account's outstanding minted debt.
func (s *Store) DebtOf(account common.Account) *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if pos, ok := s.accounts[account]; ok {
		return fixedpoint.Clone(pos.DebtMinted)
	}
	return big.NewInt(0)
}

// PositionOf returns a copy of the account's position, empty when the
// account never deposited.
func (s *Store) PositionOf(account common.Account) *Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if pos, ok := s.accounts[account]; ok {
		return pos.Clone()
	}
	return NewPosition(account)
}

// Events returns the recorded events in order.
func (s *Store) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Snapshot captures the full ledger state, event log included, so a
// multi-step operation can be undone as if it never happened.
type Snapshot struct {
	accounts map[common.Account]*Position
	events   int
}

// Snapshot returns a deep copy of the current ledger state.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make(map[common.Account]*Position, len(s.accounts))
	for account, pos := range s.accounts {
		accounts[account] = pos.Clone()
	}
	return &Snapshot{accounts: accounts, events: len(s.events)}
}

// Restore rewinds the ledger to the snapshot, dropping any events
// recorded since.
func (s *Store) Restore(snap *Snapshot) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := make(map[common.Account]*Position, len(snap.accounts))
	for account, pos := range snap.accounts {
		accounts[account] = pos.Clone()
	}
	s.accounts = accounts
	if snap.events <= len(s.events) {
		s.events = s.events[:snap.events]
	}
}

func (s *Store) ensure(account common.Account) *Position {
	if pos, ok := s.accounts[account]; ok {
		return pos
	}
	pos := NewPosition(account)
	s.accounts[account] = pos
	return pos
}
