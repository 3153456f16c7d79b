package host_test

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/token-ledger/access"
	"github.com/nspcc-dev/token-ledger/host"
	"github.com/nspcc-dev/token-ledger/ledger"
	"github.com/nspcc-dev/token-ledger/notify"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	owner = util.Uint160{0x01}
	alice = util.Uint160{0x02}
	bob   = util.Uint160{0x03}
)

var testToken = ledger.Config{
	Name:     "Emorya Finance",
	Symbol:   "EMR",
	Decimals: 9,
}

func newHost(t *testing.T) (*host.Host, *notify.Recorder) {
	rec := new(notify.Recorder)

	h, err := host.New(host.Prm{
		Logger: zaptest.NewLogger(t),
		Token:  testToken,
		Store:  storage.NewMemoryStore(),
		Events: rec,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	return h, rec
}

func deployedHost(t *testing.T) (*host.Host, *notify.Recorder) {
	h, rec := newHost(t)
	require.NoError(t, h.Deploy(owner))
	rec.Reset()
	return h, rec
}

func requireBalance(t *testing.T, h *host.Host, acc util.Uint160, exp uint64) {
	b, err := h.BalanceOf(acc)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(exp), b)
}

func requireSupply(t *testing.T, h *host.Host, exp uint64) {
	s, err := h.TotalSupply()
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(exp), s)
}

func TestNew(t *testing.T) {
	_, err := host.New(host.Prm{})
	require.Error(t, err)
}

func TestNotDeployed(t *testing.T) {
	h, rec := newHost(t)

	_, err := h.BalanceOf(alice)
	require.ErrorIs(t, err, access.ErrNotDeployed)

	require.ErrorIs(t, h.Mint(owner, alice, uint256.NewInt(1)), access.ErrNotDeployed)
	require.Empty(t, rec.Events())
}

func TestDeploy(t *testing.T) {
	h, rec := newHost(t)

	require.NoError(t, h.Deploy(owner))
	require.ErrorIs(t, h.Deploy(alice), access.ErrAlreadyDeployed)

	require.Equal(t, []any{
		access.OwnershipTransferred{Previous: ledger.ZeroAddress, New: owner},
	}, rec.Events())

	info, err := h.Info()
	require.NoError(t, err)
	require.Equal(t, host.Info{
		Name:        "Emorya Finance",
		Symbol:      "EMR",
		Decimals:    9,
		Owner:       owner,
		TotalSupply: new(uint256.Int),
	}, info)
}

func TestScenario(t *testing.T) {
	h, rec := deployedHost(t)

	require.NoError(t, h.Mint(owner, alice, uint256.NewInt(100)))
	requireBalance(t, h, alice, 100)
	requireSupply(t, h, 100)

	ok, err := h.Transfer(alice, bob, uint256.NewInt(30))
	require.NoError(t, err)
	require.True(t, ok)
	requireBalance(t, h, alice, 70)
	requireBalance(t, h, bob, 30)

	require.Equal(t, []ledger.Transfer{
		{From: ledger.ZeroAddress, To: alice, Amount: uint256.NewInt(100)},
		{From: alice, To: bob, Amount: uint256.NewInt(30)},
	}, rec.Transfers())

	require.NoError(t, h.Verify())
}

func TestFailedCallLeavesNoTrace(t *testing.T) {
	h, rec := deployedHost(t)

	require.NoError(t, h.Mint(owner, alice, uint256.NewInt(10)))
	rec.Reset()

	dump := func() map[string]string {
		res := make(map[string]string)
		require.NoError(t, h.IterateStorage(func(k, v []byte) error {
			res[string(k)] = string(v)
			return nil
		}))
		return res
	}

	before := dump()

	_, err := h.Transfer(alice, bob, uint256.NewInt(11))
	require.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	require.ErrorIs(t, h.Mint(alice, alice, uint256.NewInt(1)), access.ErrUnauthorized)
	require.ErrorIs(t, h.Burn(alice, uint256.NewInt(1)), access.ErrUnauthorized)
	require.ErrorIs(t, h.TransferOwnership(alice, alice), access.ErrUnauthorized)
	require.ErrorIs(t, h.Mint(owner, bob, new(uint256.Int).SetAllOne()), ledger.ErrOverflow)

	require.Equal(t, before, dump())
	require.Empty(t, rec.Events())
}

func TestOwnershipHandover(t *testing.T) {
	h, _ := deployedHost(t)

	require.NoError(t, h.TransferOwnership(owner, alice))

	o, err := h.Owner()
	require.NoError(t, err)
	require.Equal(t, alice, o)

	require.ErrorIs(t, h.Mint(owner, owner, uint256.NewInt(1)), access.ErrUnauthorized)
	require.NoError(t, h.Mint(alice, alice, uint256.NewInt(5)))
	require.NoError(t, h.Burn(alice, uint256.NewInt(2)))
	requireSupply(t, h, 3)
}

func TestHolders(t *testing.T) {
	h, _ := deployedHost(t)

	require.NoError(t, h.Mint(owner, alice, uint256.NewInt(1)))
	require.NoError(t, h.Mint(owner, bob, uint256.NewInt(2)))

	res := make(map[util.Uint160]uint64)
	require.NoError(t, h.IterateHolders(func(acc util.Uint160, b *uint256.Int) bool {
		res[acc] = b.Uint64()
		return true
	}))
	require.Equal(t, map[util.Uint160]uint64{alice: 1, bob: 2}, res)
}

func TestRestore(t *testing.T) {
	src, _ := deployedHost(t)

	require.NoError(t, src.Mint(owner, alice, uint256.NewInt(100)))
	_, err := src.Transfer(alice, bob, uint256.NewInt(40))
	require.NoError(t, err)

	dst, _ := newHost(t)
	require.NoError(t, dst.Restore(src.IterateStorage, func(info host.Info) error {
		require.Equal(t, owner, info.Owner)
		require.Equal(t, uint256.NewInt(100), info.TotalSupply)
		return nil
	}))

	requireBalance(t, dst, alice, 60)
	requireBalance(t, dst, bob, 40)
	requireSupply(t, dst, 100)
	require.NoError(t, dst.Verify())

	o, err := dst.Owner()
	require.NoError(t, err)
	require.Equal(t, owner, o)

	require.ErrorIs(t, dst.Restore(src.IterateStorage, nil), host.ErrNotEmpty)
}

func TestRestoreRejects(t *testing.T) {
	errTest := errors.New("test")

	items := func(kvs ...[2][]byte) func(func(k, v []byte) error) error {
		return func(f func(k, v []byte) error) error {
			for _, kv := range kvs {
				if err := f(kv[0], kv[1]); err != nil {
					return err
				}
			}
			return nil
		}
	}

	var (
		l          = access.DefaultLayout()
		ownerItem  = [2][]byte{l.Key(access.OwnerRegion), owner.BytesBE()}
		supplyItem = [2][]byte{l.Key(ledger.SupplyRegion), {10}}
	)

	for _, tc := range []struct {
		name    string
		iterate func(func(k, v []byte) error) error
		check   func(host.Info) error
		err     error
	}{
		{
			name:    "foreign key",
			iterate: items(ownerItem, [2][]byte{[]byte("zzz"), {1}}),
		},
		{
			name:    "no owner",
			iterate: items(supplyItem),
			err:     access.ErrNotDeployed,
		},
		{
			name:    "supply mismatch",
			iterate: items(ownerItem, supplyItem, [2][]byte{l.Key(ledger.BalancesRegion, alice), {9}}),
			err:     ledger.ErrCorrupted,
		},
		{
			name:    "zero owner",
			iterate: items([2][]byte{l.Key(access.OwnerRegion), ledger.ZeroAddress.BytesBE()}),
			err:     ledger.ErrCorrupted,
		},
		{
			name:    "check failure",
			iterate: items(ownerItem, supplyItem, [2][]byte{l.Key(ledger.BalancesRegion, alice), {10}}),
			check: func(info host.Info) error {
				if info.Owner.Equals(alice) {
					return nil
				}
				return errTest
			},
			err: errTest,
		},
		{
			name: "source failure",
			iterate: func(func(k, v []byte) error) error {
				return errTest
			},
			err: errTest,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h, _ := newHost(t)

			err := h.Restore(tc.iterate, tc.check)
			require.Error(t, err)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
			}

			require.NoError(t, h.IterateStorage(func(k, v []byte) error {
				return errors.New("storage must stay empty")
			}))
		})
	}
}
