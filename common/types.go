package common

// Account identifies a participant. Opaque address-like key, assigned by
// whatever system fronts the engine.
type Account string

// AssetID identifies a collateral asset supported by the engine.
type AssetID string

// ZeroAccount is the empty sentinel account.
const ZeroAccount Account = ""

func (a Account) String() string { return string(a) }

// IsZero reports whether the account is the empty sentinel.
func (a Account) IsZero() bool { return a == ZeroAccount }

func (id AssetID) String() string { return string(id) }
