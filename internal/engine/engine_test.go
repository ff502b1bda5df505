package engine

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frizo/collateral_engine/common"
	"frizo/collateral_engine/internal/fixedpoint"
	"frizo/collateral_engine/internal/oracle"
	"frizo/collateral_engine/internal/position"
	"frizo/collateral_engine/internal/registry"
	"frizo/collateral_engine/internal/token"
)

const (
	self  = common.Account("engine")
	alice = common.Account("alice")
	bob   = common.Account("bob")
	weth  = common.AssetID("WETH")
	wbtc  = common.AssetID("WBTC")
)

type fixture struct {
	engine   *Engine
	store    *position.Store
	vault    *token.Vault
	stable   *token.StableToken
	wethFeed *oracle.StaticFeed
	wbtcFeed *oracle.StaticFeed
}

func wad(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), fixedpoint.Wad)
}

// feedPrice quotes n dollars on an 8-decimal feed.
func feedPrice(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(100_000_000))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	wethFeed := oracle.NewStaticFeed(feedPrice(2000), 8)
	wbtcFeed := oracle.NewStaticFeed(feedPrice(30000), 8)

	reg, err := registry.New(
		[]common.AssetID{weth, wbtc},
		[]oracle.PriceFeed{wethFeed, wbtcFeed},
	)
	require.NoError(t, err)

	vault := token.NewVault(self)
	stable := token.NewStableToken(self)
	store := position.NewStore(reg, vault)
	eng := New(self, reg, oracle.NewGateway(reg), store, stable, vault)

	return &fixture{
		engine:   eng,
		store:    store,
		vault:    vault,
		stable:   stable,
		wethFeed: wethFeed,
		wbtcFeed: wbtcFeed,
	}
}

// depositTenWeth funds and deposits 10 WETH for the account.
func (f *fixture) depositTenWeth(t *testing.T, account common.Account) {
	t.Helper()

	f.vault.Fund(account, weth, wad(10))
	require.NoError(t, f.engine.DepositCollateral(account, weth, wad(10)))
}

func TestDepositCollateral(t *testing.T) {
	t.Run("ValuesTenUnitsAtTwoThousand", func(t *testing.T) {
		f := newFixture(t)
		f.depositTenWeth(t, alice)

		value, err := f.engine.CollateralValueOf(alice)
		require.NoError(t, err)
		assert.Equal(t, wad(20000).String(), value.String())

		qty, err := f.engine.TokenAmountFromUsd(weth, value)
		require.NoError(t, err)
		assert.Equal(t, wad(10).String(), qty.String())
	})

	t.Run("MovesUnitsIntoCustody", func(t *testing.T) {
		f := newFixture(t)
		f.depositTenWeth(t, alice)

		assert.Equal(t, 0, f.vault.BalanceOf(alice, weth).Sign())
		assert.Equal(t, wad(10).String(), f.vault.CustodyOf(weth).String())
	})

	t.Run("RejectsUnsupportedAsset", func(t *testing.T) {
		f := newFixture(t)
		err := f.engine.DepositCollateral(alice, "DOGE", wad(1))
		assert.ErrorIs(t, err, position.ErrUnsupportedAsset)
	})

	t.Run("RejectsZeroQuantity", func(t *testing.T) {
		f := newFixture(t)
		err := f.engine.DepositCollateral(alice, weth, big.NewInt(0))
		assert.ErrorIs(t, err, position.ErrInvalidQuantity)
	})
}

func TestMintStableUnit(t *testing.T) {
	t.Run("FortyPercentLoanGivesHealthFactorOf1Point25", func(t *testing.T) {
		f := newFixture(t)
		f.depositTenWeth(t, alice)

		require.NoError(t, f.engine.MintStableUnit(alice, wad(8000)))

		hf, err := f.engine.HealthFactorOf(alice)
		require.NoError(t, err)
		// adjusted 10000e18, debt 8000e18 -> 1.25e18
		expected := new(big.Int).Div(new(big.Int).Mul(wad(10000), fixedpoint.Wad), wad(8000))
		assert.Equal(t, expected.String(), hf.String())
		assert.Equal(t, "1250000000000000000", hf.String())

		assert.Equal(t, wad(8000).String(), f.stable.BalanceOf(alice).String())
		assert.Equal(t, wad(8000).String(), f.stable.TotalSupply().String())
	})

	t.Run("MintBeyondAdjustedCollateralFails", func(t *testing.T) {
		f := newFixture(t)
		f.depositTenWeth(t, alice)

		err := f.engine.MintStableUnit(alice, wad(20001))
		assert.ErrorIs(t, err, ErrHealthFactorBelowMinimum)

		// Fully rolled back: no debt, no stable units.
		assert.Equal(t, 0, f.store.DebtOf(alice).Sign())
		assert.Equal(t, 0, f.stable.TotalSupply().Sign())
	})

	t.Run("MintAtExactThresholdFails", func(t *testing.T) {
		f := newFixture(t)
		f.depositTenWeth(t, alice)

		// Adjusted collateral is exactly 10000e18; the gate is strict.
		err := f.engine.MintStableUnit(alice, wad(10000))
		assert.ErrorIs(t, err, ErrHealthFactorBelowMinimum)
	})

	t.Run("MintWithoutCollateralFails", func(t *testing.T) {
		f := newFixture(t)
		err := f.engine.MintStableUnit(alice, wad(1))
		assert.ErrorIs(t, err, ErrHealthFactorBelowMinimum)
	})
}

func TestHealthFactor(t *testing.T) {
	t.Run("ZeroDebtIsMaximallyHealthy", func(t *testing.T) {
		f := newFixture(t)

		hf, err := f.engine.HealthFactorOf(alice)
		require.NoError(t, err)
		assert.Equal(t, 0, hf.Cmp(fixedpoint.MaxHealthFactor))

		// Still maximal with collateral deposited.
		f.depositTenWeth(t, alice)
		hf, err = f.engine.HealthFactorOf(alice)
		require.NoError(t, err)
		assert.Equal(t, 0, hf.Cmp(fixedpoint.MaxHealthFactor))
	})

	t.Run("ReadsAreIdempotent", func(t *testing.T) {
		f := newFixture(t)
		f.depositTenWeth(t, alice)
		require.NoError(t, f.engine.MintStableUnit(alice, wad(8000)))

		first, err := f.engine.HealthFactorOf(alice)
		require.NoError(t, err)
		second, err := f.engine.HealthFactorOf(alice)
		require.NoError(t, err)
		assert.Equal(t, first.String(), second.String())

		v1, err := f.engine.CollateralValueOf(alice)
		require.NoError(t, err)
		v2, err := f.engine.CollateralValueOf(alice)
		require.NoError(t, err)
		assert.Equal(t, v1.String(), v2.String())
	})

	t.Run("MultiAssetValuation", func(t *testing.T) {
		f := newFixture(t)
		f.depositTenWeth(t, alice)
		f.vault.Fund(alice, wbtc, wad(1))
		require.NoError(t, f.engine.DepositCollateral(alice, wbtc, wad(1)))

		value, err := f.engine.CollateralValueOf(alice)
		require.NoError(t, err)
		assert.Equal(t, wad(50000).String(), value.String())
	})
}

func TestStalenessFreezesAsset(t *testing.T) {
	f := newFixture(t)
	f.depositTenWeth(t, alice)
	f.vault.Fund(bob, wbtc, wad(1))
	require.NoError(t, f.engine.DepositCollateral(bob, wbtc, wad(1)))
	require.NoError(t, f.engine.MintStableUnit(alice, wad(100)))
	require.NoError(t, f.engine.MintStableUnit(bob, wad(100)))

	// A stale WETH observation freezes every WETH holder.
	f.wethFeed.SetUpdatedAt(time.Now().Add(-2 * oracle.DefaultFreshnessTimeout))

	_, err := f.engine.CollateralValueOf(alice)
	assert.ErrorIs(t, err, oracle.ErrStalePrice)
	_, err = f.engine.HealthFactorOf(alice)
	assert.ErrorIs(t, err, oracle.ErrStalePrice)
	err = f.engine.MintStableUnit(alice, wad(1))
	assert.ErrorIs(t, err, oracle.ErrStalePrice)

	// Accounts holding only fresh-priced assets are unaffected.
	_, err = f.engine.HealthFactorOf(bob)
	assert.NoError(t, err)
	require.NoError(t, f.engine.MintStableUnit(bob, wad(100)))
}

func TestDepositAndMint(t *testing.T) {
	t.Run("SingleCall", func(t *testing.T) {
		f := newFixture(t)
		f.vault.Fund(alice, weth, wad(10))

		require.NoError(t, f.engine.DepositAndMint(alice, weth, wad(10), wad(8000)))
		assert.Equal(t, wad(10).String(), f.engine.CollateralBalance(alice, weth).String())
		assert.Equal(t, wad(8000).String(), f.stable.BalanceOf(alice).String())
	})

	t.Run("MintFailureUnwindsDeposit", func(t *testing.T) {
		f := newFixture(t)
		f.vault.Fund(alice, weth, wad(10))

		err := f.engine.DepositAndMint(alice, weth, wad(10), wad(20001))
		assert.ErrorIs(t, err, ErrHealthFactorBelowMinimum)

		// The deposit leg is unwound and the collateral refunded.
		assert.Equal(t, 0, f.engine.CollateralBalance(alice, weth).Sign())
		assert.Equal(t, wad(10).String(), f.vault.BalanceOf(alice, weth).String())
		assert.Equal(t, 0, f.vault.CustodyOf(weth).Sign())
		assert.Empty(t, f.store.Events())
	})

	t.Run("AuthorityFailureUnwindsEverything", func(t *testing.T) {
		f := newFixture(t)
		f.vault.Fund(alice, weth, wad(10))

		eng := New(self, mustRegistry(t, f), oracle.NewGateway(mustRegistry(t, f)), f.store, failingAuthority{f.stable}, f.vault)
		err := eng.DepositAndMint(alice, weth, wad(10), wad(100))
		assert.ErrorIs(t, err, ErrMintFailed)
		assert.Equal(t, 0, f.store.DebtOf(alice).Sign())
		assert.Equal(t, wad(10).String(), f.vault.BalanceOf(alice, weth).String())
	})
}

// failingAuthority reports every mint as unsuccessful.
type failingAuthority struct {
	*token.StableToken
}

func (failingAuthority) Mint(caller, to common.Account, amount *big.Int) bool { return false }

func mustRegistry(t *testing.T, f *fixture) *registry.Registry {
	t.Helper()

	reg, err := registry.New(
		[]common.AssetID{weth, wbtc},
		[]oracle.PriceFeed{f.wethFeed, f.wbtcFeed},
	)
	require.NoError(t, err)
	return reg
}

func TestRedeemCollateral(t *testing.T) {
	t.Run("DebtorKeepsHealthyBuffer", func(t *testing.T) {
		f := newFixture(t)
		f.depositTenWeth(t, alice)
		require.NoError(t, f.engine.MintStableUnit(alice, wad(8000)))

		// 9 WETH left values 18000, adjusted 9000 > 8000 debt.
		require.NoError(t, f.engine.RedeemCollateral(alice, weth, wad(1)))
		assert.Equal(t, wad(9).String(), f.engine.CollateralBalance(alice, weth).String())
		assert.Equal(t, wad(1).String(), f.vault.BalanceOf(alice, weth).String())
	})

	t.Run("RedeemBreakingSolvencyFails", func(t *testing.T) {
		f := newFixture(t)
		f.depositTenWeth(t, alice)
		require.NoError(t, f.engine.MintStableUnit(alice, wad(8000)))

		// 7 WETH left values 14000, adjusted 7000 < 8000 debt.
		err := f.engine.RedeemCollateral(alice, weth, wad(3))
		assert.ErrorIs(t, err, ErrHealthFactorBelowMinimum)

		assert.Equal(t, wad(10).String(), f.engine.CollateralBalance(alice, weth).String())
		assert.Equal(t, 0, f.vault.BalanceOf(alice, weth).Sign())
	})

	t.Run("NoDebtRedeemsFreely", func(t *testing.T) {
		f := newFixture(t)
		f.depositTenWeth(t, alice)

		require.NoError(t, f.engine.RedeemCollateral(alice, weth, wad(10)))
		assert.Equal(t, wad(10).String(), f.vault.BalanceOf(alice, weth).String())
	})
}

func TestBurnStableUnit(t *testing.T) {
	setup := func(t *testing.T) *fixture {
		f := newFixture(t)
		f.depositTenWeth(t, alice)
		require.NoError(t, f.engine.MintStableUnit(alice, wad(8000)))
		require.NoError(t, f.stable.Approve(alice, self, wad(8000)))
		return f
	}

	t.Run("ReducesDebtAndSupply", func(t *testing.T) {
		f := setup(t)

		require.NoError(t, f.engine.BurnStableUnit(alice, wad(4000)))
		assert.Equal(t, wad(4000).String(), f.store.DebtOf(alice).String())
		assert.Equal(t, wad(4000).String(), f.stable.TotalSupply().String())
		assert.Equal(t, wad(4000).String(), f.stable.BalanceOf(alice).String())
	})

	t.Run("ExceedingDebtFails", func(t *testing.T) {
		f := setup(t)

		err := f.engine.BurnStableUnit(alice, wad(8001))
		assert.ErrorIs(t, err, ErrBurnExceedsDebt)
		assert.Equal(t, wad(8000).String(), f.store.DebtOf(alice).String())
	})

	t.Run("MissingAllowanceRollsBack", func(t *testing.T) {
		f := newFixture(t)
		f.depositTenWeth(t, alice)
		require.NoError(t, f.engine.MintStableUnit(alice, wad(8000)))

		err := f.engine.BurnStableUnit(alice, wad(1000))
		assert.ErrorIs(t, err, ErrStableTransferFailed)
		assert.Equal(t, wad(8000).String(), f.store.DebtOf(alice).String())
		assert.Equal(t, wad(8000).String(), f.stable.BalanceOf(alice).String())
	})
}

func TestRedeemForStableUnit(t *testing.T) {
	t.Run("FullExit", func(t *testing.T) {
		f := newFixture(t)
		f.depositTenWeth(t, alice)
		require.NoError(t, f.engine.MintStableUnit(alice, wad(8000)))
		require.NoError(t, f.stable.Approve(alice, self, wad(8000)))

		require.NoError(t, f.engine.RedeemForStableUnit(alice, weth, wad(10), wad(8000)))
		assert.Equal(t, 0, f.store.DebtOf(alice).Sign())
		assert.Equal(t, wad(10).String(), f.vault.BalanceOf(alice, weth).String())
		assert.Equal(t, 0, f.stable.TotalSupply().Sign())
	})

	t.Run("RedeemLegFailureUnwindsBurn", func(t *testing.T) {
		f := newFixture(t)
		f.depositTenWeth(t, alice)
		require.NoError(t, f.engine.MintStableUnit(alice, wad(8000)))
		require.NoError(t, f.stable.Approve(alice, self, wad(8000)))

		// Burning 4000 still leaves debt; withdrawing everything would
		// zero the health factor.
		err := f.engine.RedeemForStableUnit(alice, weth, wad(10), wad(4000))
		assert.ErrorIs(t, err, ErrHealthFactorBelowMinimum)

		// Burn leg fully unwound: debt and stable balance restored.
		assert.Equal(t, wad(8000).String(), f.store.DebtOf(alice).String())
		assert.Equal(t, wad(8000).String(), f.stable.BalanceOf(alice).String())
		assert.Equal(t, wad(8000).String(), f.stable.TotalSupply().String())
		assert.Equal(t, wad(10).String(), f.engine.CollateralBalance(alice, weth).String())
	})
}

func TestReadOnlySurface(t *testing.T) {
	f := newFixture(t)
	f.depositTenWeth(t, alice)
	require.NoError(t, f.engine.MintStableUnit(alice, wad(8000)))

	t.Run("AccountInfo", func(t *testing.T) {
		debt, value, err := f.engine.AccountInfo(alice)
		require.NoError(t, err)
		assert.Equal(t, wad(8000).String(), debt.String())
		assert.Equal(t, wad(20000).String(), value.String())
	})

	t.Run("ListSupportedAssets", func(t *testing.T) {
		assert.Equal(t, []common.AssetID{weth, wbtc}, f.engine.ListSupportedAssets())
	})

	t.Run("PriceFeedOf", func(t *testing.T) {
		feed, err := f.engine.PriceFeedOf(weth)
		require.NoError(t, err)
		assert.Same(t, oracle.PriceFeed(f.wethFeed), feed)

		_, err = f.engine.PriceFeedOf("DOGE")
		assert.ErrorIs(t, err, registry.ErrUnsupportedAsset)
	})

	t.Run("Parameters", func(t *testing.T) {
		assert.Equal(t, int64(10), f.engine.LiquidationBonusPct())
		assert.Equal(t, fixedpoint.Wad.String(), f.engine.ValuationPrecision().String())
	})

	t.Run("AccountSummary", func(t *testing.T) {
		summary, err := f.engine.AccountSummary(alice)
		require.NoError(t, err)
		assert.Equal(t, "20000", summary["collateral_value_usd"])
		assert.Equal(t, "1.25", summary["health_factor"])
		assert.Equal(t, "8000", summary["debt_minted"])
	})
}

// The system-wide solvency property: collateral custody value covers
// the outstanding stable-unit supply.
func TestSystemCollateralizationCoversSupply(t *testing.T) {
	f := newFixture(t)
	f.depositTenWeth(t, alice)
	require.NoError(t, f.engine.MintStableUnit(alice, wad(8000)))
	f.vault.Fund(bob, wbtc, wad(2))
	require.NoError(t, f.engine.DepositAndMint(bob, wbtc, wad(2), wad(25000)))

	custodyValue := big.NewInt(0)
	for _, asset := range f.engine.ListSupportedAssets() {
		value, err := f.engine.UsdValue(asset, f.vault.CustodyOf(asset))
		require.NoError(t, err)
		custodyValue.Add(custodyValue, value)
	}
	assert.True(t, custodyValue.Cmp(f.stable.TotalSupply()) >= 0,
		"collateral %s must cover supply %s", custodyValue, f.stable.TotalSupply())
}
