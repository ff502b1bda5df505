package engine

import (
	"errors"
	"math/big"
	"sync"

	"frizo/collateral_engine/common"
	"frizo/collateral_engine/internal/fixedpoint"
	"frizo/collateral_engine/internal/logger"
	"frizo/collateral_engine/internal/oracle"
	"frizo/collateral_engine/internal/position"
	"frizo/collateral_engine/internal/registry"
)

// IssuanceAuthority is the stable-unit token. Mint and Burn honor a
// single authorized caller identity; the engine passes its own account
// as the capability.
type IssuanceAuthority interface {
	Mint(caller, to common.Account, amount *big.Int) bool
	Burn(caller common.Account, amount *big.Int) error
	Transfer(from, to common.Account, amount *big.Int) error
	TransferFrom(spender, owner, to common.Account, amount *big.Int) error
}

// Engine owns the global ledger and orchestrates every state-changing
// operation: deposits, mints, redemptions, burns, liquidations. Each
// public mutation runs under one lock from entry to exit, so no external
// collaborator can observe or re-enter the ledger mid-update, and each
// is transactional: any failure rewinds the ledger and compensates
// external transfers as if the call never happened.
type Engine struct {
	self     common.Account
	registry *registry.Registry
	gateway  *oracle.Gateway
	store    *position.Store
	stable   IssuanceAuthority
	vault    position.Vault
	log      *logger.Logger
	mu       sync.Mutex
}

// New wires the engine. self is the engine's own account identity, used
// as the mint/burn capability and as the stable-unit custody account.
func New(self common.Account, reg *registry.Registry, gateway *oracle.Gateway, store *position.Store, stable IssuanceAuthority, vault position.Vault) *Engine {
	return &Engine{
		self:     self,
		registry: reg,
		gateway:  gateway,
		store:    store,
		stable:   stable,
		vault:    vault,
		log:      logger.Default(),
	}
}

// SetLogger overrides the engine's logger.
func (e *Engine) SetLogger(log *logger.Logger) {
	if e == nil || log == nil {
		return
	}
	e.log = log
}

// Self returns the engine's own account identity.
func (e *Engine) Self() common.Account { return e.self }

// DepositCollateral locks qty of asset into the account's position.
func (e *Engine) DepositCollateral(account common.Account, asset common.AssetID, qty *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.Deposit(account, asset, qty); err != nil {
		return err
	}
	e.log.Info("collateral deposited", "account", account.String(), "asset", asset.String(), "qty", qty.String())
	return nil
}

// DepositAndMint deposits collateral and mints stable units in one
// transactional call.
func (e *Engine) DepositAndMint(account common.Account, asset common.AssetID, qty, mintAmount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.begin()
	if err := e.store.Deposit(account, asset, qty); err != nil {
		return err
	}
	t.push(func() { _ = e.vault.TransferOut(account, asset, qty) })

	if err := e.mintSteps(t, account, mintAmount); err != nil {
		t.abort()
		e.log.Warn("deposit and mint rolled back", "account", account.String(), "error", err)
		return err
	}
	e.log.Info("deposit and mint", "account", account.String(), "asset", asset.String(), "qty", qty.String(), "minted", mintAmount.String())
	return nil
}

// MintStableUnit mints stable units against the account's collateral.
// Fails, with full rollback, when the resulting health factor is not
// strictly above the minimum.
func (e *Engine) MintStableUnit(account common.Account, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.begin()
	if err := e.mintSteps(t, account, amount); err != nil {
		t.abort()
		e.log.Warn("mint rolled back", "account", account.String(), "error", err)
		return err
	}
	e.log.Info("stable unit minted", "account", account.String(), "amount", amount.String())
	return nil
}

// RedeemCollateral releases qty of asset back to the account. The
// account must remain healthy afterwards.
func (e *Engine) RedeemCollateral(account common.Account, asset common.AssetID, qty *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.begin()
	if err := e.redeemSteps(t, account, asset, qty); err != nil {
		t.abort()
		e.log.Warn("redeem rolled back", "account", account.String(), "error", err)
		return err
	}
	e.log.Info("collateral redeemed", "account", account.String(), "asset", asset.String(), "qty", qty.String())
	return nil
}

// BurnStableUnit repays amount of the account's debt from its own
// stable-unit balance.
func (e *Engine) BurnStableUnit(account common.Account, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.begin()
	if err := e.burnSteps(t, account, account, amount); err != nil {
		t.abort()
		e.log.Warn("burn rolled back", "account", account.String(), "error", err)
		return err
	}
	e.log.Info("stable unit burned", "account", account.String(), "amount", amount.String())
	return nil
}

// RedeemForStableUnit burns stable units and then releases collateral,
// as one transactional call.
func (e *Engine) RedeemForStableUnit(account common.Account, asset common.AssetID, qty, burnAmount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.begin()
	if err := e.burnSteps(t, account, account, burnAmount); err != nil {
		t.abort()
		e.log.Warn("redeem for stable unit rolled back", "account", account.String(), "error", err)
		return err
	}
	if err := e.redeemSteps(t, account, asset, qty); err != nil {
		t.abort()
		e.log.Warn("redeem for stable unit rolled back", "account", account.String(), "error", err)
		return err
	}
	e.log.Info("redeem for stable unit", "account", account.String(), "asset", asset.String(), "qty", qty.String(), "burned", burnAmount.String())
	return nil
}

// mintSteps increments debt, gates on the health factor, then calls the
// issuance authority. The authority call comes last so a reported mint
// failure leaves nothing external to compensate.
func (e *Engine) mintSteps(t *tx, account common.Account, amount *big.Int) error {
	if err := e.store.MintDebt(account, amount); err != nil {
		return err
	}
	if err := e.assertHealthy(account); err != nil {
		return err
	}
	if ok := e.stable.Mint(e.self, account, amount); !ok {
		return ErrMintFailed
	}
	return nil
}

// redeemSteps withdraws collateral to the account itself and gates on
// the resulting health factor.
func (e *Engine) redeemSteps(t *tx, account common.Account, asset common.AssetID, qty *big.Int) error {
	if err := e.store.Withdraw(account, asset, qty, account); err != nil {
		return err
	}
	t.push(func() { _ = e.vault.TransferIn(account, asset, qty) })

	return e.assertHealthy(account)
}

// burnSteps reduces the account's debt by amount, funded by payer: the
// stable units move from the payer into engine custody and are burned.
func (e *Engine) burnSteps(t *tx, account, payer common.Account, amount *big.Int) error {
	if !fixedpoint.IsPositive(amount) {
		return position.ErrInvalidQuantity
	}
	if e.store.DebtOf(account).Cmp(amount) < 0 {
		return ErrBurnExceedsDebt
	}
	if err := e.store.BurnDebt(account, amount, payer); err != nil {
		return err
	}
	if err := e.stable.TransferFrom(e.self, payer, e.self, amount); err != nil {
		return errors.Join(ErrStableTransferFailed, err)
	}
	if err := e.stable.Burn(e.self, amount); err != nil {
		_ = e.stable.Transfer(e.self, payer, amount)
		return err
	}
	t.push(func() { _ = e.stable.Mint(e.self, payer, amount) })
	return nil
}

// tx rewinds one in-flight operation: the ledger goes back to its entry
// snapshot and external transfers are compensated in reverse order.
type tx struct {
	store *position.Store
	snap  *position.Snapshot
	undos []func()
}

func (e *Engine) begin() *tx {
	return &tx{store: e.store, snap: e.store.Snapshot()}
}

func (t *tx) push(undo func()) {
	t.undos = append(t.undos, undo)
}

func (t *tx) abort() {
	t.store.Restore(t.snap)
	for i := len(t.undos) - 1; i >= 0; i-- {
		t.undos[i]()
	}
}
