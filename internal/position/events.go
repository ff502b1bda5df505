package position

import (
	"math/big"

	"frizo/collateral_engine/common"
)

// Event is an observable side effect recorded by the store. Events from
// rolled-back operations are discarded with the rollback and never
// observed.
type Event interface {
	EventID() string
}

// CollateralDeposited records a deposit of qty units of asset into the
// account's position.
type CollateralDeposited struct {
	ID      string
	Account common.Account
	Asset   common.AssetID
	Qty     *big.Int
}

func (e CollateralDeposited) EventID() string { return e.ID }

// CollateralRedeemed records qty units of asset leaving the from
// account's position toward the recipient. On liquidations the
// recipient is the liquidator, not the position owner.
type CollateralRedeemed struct {
	ID    string
	From  common.Account
	To    common.Account
	Asset common.AssetID
	Qty   *big.Int
}

func (e CollateralRedeemed) EventID() string { return e.ID }
