package fixedpoint

import "math/big"

// The engine keeps every monetary quantity as an integer: collateral in
// the asset's native decimal scale, debt and USD values in 18-decimal
// fixed point. All division truncates toward zero. The truncation
// direction matters: rounding down understates collateral value and
// understates the collateral bought per unit of repaid debt, which keeps
// the protocol on the safe side of every conversion.

// WadDecimals is the engine's working precision.
const WadDecimals = 18

var (
	// Wad is one unit in 18-decimal fixed point.
	Wad = big.NewInt(1_000_000_000_000_000_000)

	// LiquidationThreshold scales collateral value down to the debt it
	// can safely support. 50 out of 100 means 200% overcollateralization.
	LiquidationThreshold = big.NewInt(50)

	// LiquidationPrecision is the denominator for threshold and bonus
	// percentages.
	LiquidationPrecision = big.NewInt(100)

	// LiquidationBonus is the extra collateral share awarded to a
	// liquidator, in percent.
	LiquidationBonus = big.NewInt(10)

	// MinHealthFactor is the solvency floor. Accounts must stay strictly
	// above it.
	MinHealthFactor = new(big.Int).Set(Wad)

	// MaxHealthFactor stands in for "infinitely healthy" on zero-debt
	// accounts: the largest value an unsigned 256-bit word can hold.
	MaxHealthFactor = maxUint256()
)

func maxUint256() *big.Int {
	max := new(big.Int).Lsh(big.NewInt(1), 256)
	return max.Sub(max, big.NewInt(1))
}

// MulDiv computes a*b/den with truncating division. Returns zero when
// any operand is nil or den is zero.
func MulDiv(a, b, den *big.Int) *big.Int {
	if a == nil || b == nil || den == nil || den.Sign() == 0 {
		return big.NewInt(0)
	}
	out := new(big.Int).Mul(a, b)
	return out.Quo(out, den)
}

// Pow10 returns 10^n as a big integer.
func Pow10(n uint) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// FeedScale returns the factor that lifts a price quoted with the given
// decimal precision up to 18-decimal fixed point. Feeds quoting more
// than 18 decimals are not supported and scale by one.
func FeedScale(decimals uint8) *big.Int {
	if decimals >= WadDecimals {
		return big.NewInt(1)
	}
	return Pow10(uint(WadDecimals - decimals))
}

// Clone returns a defensive copy, treating nil as zero.
func Clone(x *big.Int) *big.Int {
	if x == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(x)
}

// IsPositive reports whether x is non-nil and strictly greater than zero.
func IsPositive(x *big.Int) bool {
	return x != nil && x.Sign() > 0
}
