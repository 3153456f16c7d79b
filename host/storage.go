package host

import (
	"bytes"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/token-ledger/access"
	"github.com/nspcc-dev/token-ledger/layout"
	"github.com/nspcc-dev/token-ledger/ledger"
)

// IterateStorage passes all raw storage items of the token into f.
// IterateStorage breaks on any f's error and returns it.
func (h *Host) IterateStorage(f func(key, value []byte) error) error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	var err error

	h.layout.Seek(storage.NewMemCachedStore(h.store), func(k, v []byte) bool {
		err = f(bytes.Clone(k), bytes.Clone(v))
		return err == nil
	})

	return err
}

// IterateHolders passes every account with non-zero balance into f until it
// returns false.
func (h *Host) IterateHolders(f func(account util.Uint160, balance *uint256.Int) bool) error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	return seekBalances(storage.NewMemCachedStore(h.store), h.layout, f)
}

func seekBalances(st *storage.MemCachedStore, l layout.Layout, f func(util.Uint160, *uint256.Int) bool) error {
	r, _ := l.Region(ledger.BalancesRegion)

	var err error

	st.Seek(storage.SeekRange{Prefix: r.Prefix}, func(k, v []byte) bool {
		if len(k) == r.KeyLen() {
			k = k[len(r.Prefix):]
		}

		var (
			acc     util.Uint160
			balance *uint256.Int
		)

		acc, err = util.Uint160DecodeBytesBE(k)
		if err != nil {
			err = fmt.Errorf("%w: balance key %x: %w", ledger.ErrCorrupted, k, err)
			return false
		}

		balance, err = ledger.DecodeAmount(v)
		if err != nil {
			return false
		}

		return f(acc, balance)
	})

	return err
}

// Verify checks that the sum of all balances equals the total supply and
// that the token has an owner.
func (h *Host) Verify() error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	return h.verify(storage.NewMemCachedStore(h.store))
}

func (h *Host) verify(st *storage.MemCachedStore) error {
	c, err := access.Open(h.prm(st, nil))
	if err != nil {
		return err
	}

	supply, err := c.TotalSupply()
	if err != nil {
		return err
	}

	var (
		sum      = new(uint256.Int)
		overflow bool
	)

	err = seekBalances(st, h.layout, func(_ util.Uint160, balance *uint256.Int) bool {
		_, overflow = sum.AddOverflow(sum, balance)
		return !overflow
	})
	if err != nil {
		return err
	}

	if overflow || !sum.Eq(supply) {
		return fmt.Errorf("%w: sum of balances differs from total supply %s", ledger.ErrCorrupted, supply.ToBig())
	}

	return nil
}

// Restore loads raw storage items produced by IterateStorage into the empty
// storage. Every item must belong to the token storage layout, and the
// resulting state must pass Verify and optional check. Nothing is written on
// failure.
func (h *Host) Restore(iterate func(f func(key, value []byte) error) error, check func(Info) error) error {
	return h.call("restore", ledger.ZeroAddress, func(st *storage.MemCachedStore, _ ledger.Sink) error {
		empty := true
		h.layout.Seek(st, func(_, _ []byte) bool {
			empty = false
			return false
		})
		if !empty {
			return ErrNotEmpty
		}

		err := iterate(func(key, value []byte) error {
			if _, ok := h.layout.Locate(key); !ok {
				return fmt.Errorf("storage item %x is out of the token layout", key)
			}

			st.Put(bytes.Clone(key), bytes.Clone(value))

			return nil
		})
		if err != nil {
			return err
		}

		if err = h.verify(st); err != nil {
			return err
		}

		if check == nil {
			return nil
		}

		c, err := access.Open(h.prm(st, nil))
		if err != nil {
			return err
		}

		info, err := infoOf(c)
		if err != nil {
			return err
		}

		return check(info)
	})
}
