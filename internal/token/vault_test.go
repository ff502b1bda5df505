package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frizo/collateral_engine/common"
)

const weth = common.AssetID("WETH")

func TestVaultTransferIn(t *testing.T) {
	t.Run("MovesIntoCustody", func(t *testing.T) {
		vault := NewVault(authority)
		vault.Fund(alice, weth, big.NewInt(100))

		require.NoError(t, vault.TransferIn(alice, weth, big.NewInt(60)))
		assert.Equal(t, int64(40), vault.BalanceOf(alice, weth).Int64())
		assert.Equal(t, int64(60), vault.CustodyOf(weth).Int64())
	})

	t.Run("InsufficientBalance", func(t *testing.T) {
		vault := NewVault(authority)

		err := vault.TransferIn(alice, weth, big.NewInt(1))
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		vault := NewVault(authority)
		vault.Fund(alice, weth, big.NewInt(100))

		assert.ErrorIs(t, vault.TransferIn(alice, weth, big.NewInt(0)), ErrInvalidAmount)
		assert.ErrorIs(t, vault.TransferIn(alice, weth, nil), ErrInvalidAmount)
	})
}

func TestVaultTransferOut(t *testing.T) {
	t.Run("ReleasesFromCustody", func(t *testing.T) {
		vault := NewVault(authority)
		vault.Fund(alice, weth, big.NewInt(100))
		require.NoError(t, vault.TransferIn(alice, weth, big.NewInt(100)))

		require.NoError(t, vault.TransferOut(bob, weth, big.NewInt(25)))
		assert.Equal(t, int64(25), vault.BalanceOf(bob, weth).Int64())
		assert.Equal(t, int64(75), vault.CustodyOf(weth).Int64())
	})

	t.Run("CustodyShortfall", func(t *testing.T) {
		vault := NewVault(authority)

		err := vault.TransferOut(bob, weth, big.NewInt(1))
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})
}

func TestVaultIsolatesAssets(t *testing.T) {
	wbtc := common.AssetID("WBTC")
	vault := NewVault(authority)
	vault.Fund(alice, weth, big.NewInt(10))
	vault.Fund(alice, wbtc, big.NewInt(5))

	require.NoError(t, vault.TransferIn(alice, weth, big.NewInt(10)))

	assert.Equal(t, int64(0), vault.BalanceOf(alice, weth).Int64())
	assert.Equal(t, int64(5), vault.BalanceOf(alice, wbtc).Int64())
	assert.Equal(t, int64(0), vault.CustodyOf(wbtc).Int64())
}
