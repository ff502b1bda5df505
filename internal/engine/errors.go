package engine

import "errors"

var (
	// ErrHealthFactorBelowMinimum gates every mint and self-initiated
	// withdrawal: the resulting health factor must stay strictly above
	// the minimum.
	ErrHealthFactorBelowMinimum = errors.New("engine: health factor below minimum")

	// ErrMintFailed surfaces a stable-unit mint the issuance authority
	// reported as unsuccessful.
	ErrMintFailed = errors.New("engine: stable unit mint failed")

	// ErrHealthFactorOK rejects liquidation of an account that is still
	// healthy.
	ErrHealthFactorOK = errors.New("engine: target health factor is ok")

	// ErrHealthFactorNotImproved rejects a liquidation that failed to
	// strictly improve the target's health factor.
	ErrHealthFactorNotImproved = errors.New("engine: liquidation did not improve health factor")

	// ErrBurnExceedsDebt rejects burning more stable units than the
	// account has minted.
	ErrBurnExceedsDebt = errors.New("engine: burn amount exceeds minted debt")

	// ErrStableTransferFailed surfaces a failed stable-unit transfer
	// from the payer into system custody.
	ErrStableTransferFailed = errors.New("engine: stable unit transfer failed")
)
