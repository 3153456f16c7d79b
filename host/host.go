/*
Package host provides execution environment for the token.

Host dispatches calls to access.Controller on behalf of the given caller.
Every call works on its own cached view of the durable storage: changes are
flushed to the storage and events are passed to the sink only when the call
succeeds, a failed call leaves no trace. Calls are executed one at a time.
*/
package host

import (
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/token-ledger/access"
	"github.com/nspcc-dev/token-ledger/layout"
	"github.com/nspcc-dev/token-ledger/ledger"
	"github.com/nspcc-dev/token-ledger/notify"
	"go.uber.org/zap"
)

// ErrNotEmpty is returned by Restore when the storage already has data.
var ErrNotEmpty = errors.New("storage is not empty")

// Prm groups Host parameters.
type Prm struct {
	// Optional, defaults to no-op logger.
	Logger *zap.Logger

	Token ledger.Config

	// Durable storage, closed by Host.Close.
	Store storage.Store

	// Optional, receives events of successful calls.
	Events ledger.Sink
}

// Host is a token execution environment. Host instances must be constructed
// using New.
type Host struct {
	mtx sync.Mutex

	log    *zap.Logger
	token  ledger.Config
	layout layout.Layout
	store  storage.Store
	events ledger.Sink
}

// Info groups public token state.
type Info struct {
	Name        string
	Symbol      string
	Decimals    uint8
	Owner       util.Uint160
	TotalSupply *uint256.Int
}

// New returns Host working on the given storage.
func New(prm Prm) (*Host, error) {
	if prm.Store == nil {
		return nil, errors.New("missing storage")
	}

	h := &Host{
		log:    prm.Logger,
		token:  prm.Token,
		layout: access.DefaultLayout(),
		store:  prm.Store,
		events: prm.Events,
	}

	if h.log == nil {
		h.log = zap.NewNop()
	}

	if h.events == nil {
		h.events = notify.Multi{}
	}

	return h, nil
}

// Close releases the underlying storage.
func (h *Host) Close() error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	return h.store.Close()
}

func (h *Host) prm(st *storage.MemCachedStore, events ledger.Sink) ledger.Prm {
	return ledger.Prm{
		Config:  h.token,
		Storage: st,
		Layout:  h.layout,
		Events:  events,
	}
}

// call runs f over a private storage view and commits its changes on success.
func (h *Host) call(method string, caller util.Uint160, f func(st *storage.MemCachedStore, events ledger.Sink) error) error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	log := h.log.With(
		zap.String("method", method),
		zap.String("caller", address.Uint160ToString(caller)),
	)

	var (
		st  = storage.NewMemCachedStore(h.store)
		rec = new(notify.Recorder)
	)

	if err := f(st, rec); err != nil {
		log.Warn("call rejected", zap.Error(err))
		return err
	}

	n, err := st.PersistSync()
	if err != nil {
		log.Error("failed to persist call results", zap.Error(err))
		return fmt.Errorf("persist changes: %w", err)
	}

	log.Debug("call committed", zap.Int("items", n), zap.Int("events", len(rec.Events())))

	rec.Flush(h.events)

	return nil
}

// view runs f over a private storage view and drops it afterwards.
func (h *Host) view(f func(c *access.Controller) error) error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	c, err := access.Open(h.prm(storage.NewMemCachedStore(h.store), nil))
	if err != nil {
		return err
	}

	return f(c)
}

// Deploy initializes the token and makes creator its owner.
func (h *Host) Deploy(creator util.Uint160) error {
	err := h.call("deploy", creator, func(st *storage.MemCachedStore, events ledger.Sink) error {
		_, err := access.Deploy(h.prm(st, events), creator)
		return err
	})
	if err == nil {
		h.log.Info("token deployed",
			zap.String("name", h.token.Name),
			zap.String("owner", address.Uint160ToString(creator)))
	}
	return err
}

// Transfer moves amount of the caller's tokens to another account.
func (h *Host) Transfer(caller, to util.Uint160, amount *uint256.Int) (bool, error) {
	var ok bool

	err := h.call("transfer", caller, func(st *storage.MemCachedStore, events ledger.Sink) error {
		c, err := access.Open(h.prm(st, events))
		if err != nil {
			return err
		}

		ok, err = c.Transfer(caller, to, amount)
		return err
	})

	return ok, err
}

// Mint creates tokens on the account, caller must be the owner.
func (h *Host) Mint(caller, to util.Uint160, amount *uint256.Int) error {
	return h.call("mint", caller, func(st *storage.MemCachedStore, events ledger.Sink) error {
		c, err := access.Open(h.prm(st, events))
		if err != nil {
			return err
		}

		return c.Mint(caller, to, amount)
	})
}

// Burn destroys the caller's tokens, caller must be the owner.
func (h *Host) Burn(caller util.Uint160, amount *uint256.Int) error {
	return h.call("burn", caller, func(st *storage.MemCachedStore, events ledger.Sink) error {
		c, err := access.Open(h.prm(st, events))
		if err != nil {
			return err
		}

		return c.Burn(caller, amount)
	})
}

// TransferOwnership changes the owner, caller must be the current owner.
func (h *Host) TransferOwnership(caller, newOwner util.Uint160) error {
	return h.call("transferOwnership", caller, func(st *storage.MemCachedStore, events ledger.Sink) error {
		c, err := access.Open(h.prm(st, events))
		if err != nil {
			return err
		}

		return c.TransferOwnership(caller, newOwner)
	})
}

// BalanceOf returns the balance of the account.
func (h *Host) BalanceOf(account util.Uint160) (*uint256.Int, error) {
	var res *uint256.Int

	err := h.view(func(c *access.Controller) error {
		var err error
		res, err = c.BalanceOf(account)
		return err
	})

	return res, err
}

// TotalSupply returns the amount of tokens in circulation.
func (h *Host) TotalSupply() (*uint256.Int, error) {
	var res *uint256.Int

	err := h.view(func(c *access.Controller) error {
		var err error
		res, err = c.TotalSupply()
		return err
	})

	return res, err
}

// Owner returns the current owner.
func (h *Host) Owner() (util.Uint160, error) {
	var res util.Uint160

	err := h.view(func(c *access.Controller) error {
		res = c.Owner()
		return nil
	})

	return res, err
}

// Info returns public token state.
func (h *Host) Info() (Info, error) {
	var res Info

	err := h.view(func(c *access.Controller) error {
		var err error
		res, err = infoOf(c)
		return err
	})

	return res, err
}

func infoOf(c *access.Controller) (Info, error) {
	supply, err := c.TotalSupply()
	if err != nil {
		return Info{}, err
	}

	return Info{
		Name:        c.Name(),
		Symbol:      c.Symbol(),
		Decimals:    c.Decimals(),
		Owner:       c.Owner(),
		TotalSupply: supply,
	}, nil
}
