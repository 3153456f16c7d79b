package ledger

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/token-ledger/layout"
)

// Names of the storage regions used by Ledger.
const (
	BalancesRegion   = "balances"
	AllowancesRegion = "allowances"
	SupplyRegion     = "totalSupply"
)

var (
	// ErrInsufficientBalance is returned when a debit exceeds the available
	// balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrOverflow is returned when a balance or the total supply would exceed
	// the 256-bit range.
	ErrOverflow = errors.New("amount overflow")
	// ErrCorrupted is returned when stored state can't be decoded or breaks
	// ledger invariants.
	ErrCorrupted = errors.New("corrupted ledger state")
)

// ZeroAddress is used as a source of minted and a destination of burnt
// tokens in Transfer events.
var ZeroAddress util.Uint160

// Config holds immutable token info.
type Config struct {
	// Human-readable token name.
	Name string
	// Ticker symbol.
	Symbol string
	// Amount of decimals.
	Decimals uint8
}

// Storage is a durable key-value mapping the Ledger works on. Get returns
// storage.ErrKeyNotFound for missing keys. *storage.MemCachedStore
// implements it.
type Storage interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte)
	Delete(key []byte)
}

// Sink accepts events produced by successful operations.
type Sink interface {
	Notify(event any)
}

// Transfer is an event of balance movement.
type Transfer struct {
	From   util.Uint160
	To     util.Uint160
	Amount *uint256.Int
}

// RegisterRegions adds storage regions used by Ledger to b.
func RegisterRegions(b *layout.Builder) *layout.Builder {
	return b.
		Mapping(BalancesRegion, []byte{'b'}).
		NestedMapping(AllowancesRegion, []byte{'l'}).
		Slot(SupplyRegion, []byte{'s'})
}

// Prm groups Ledger parameters.
type Prm struct {
	Config Config

	Storage Storage

	// Must contain regions registered by RegisterRegions.
	Layout layout.Layout

	// Optional, events are dropped if not set.
	Events Sink
}

// Ledger is an account balance store. Ledger instances must be constructed
// using New.
type Ledger struct {
	cfg    Config
	st     Storage
	layout layout.Layout
	events Sink
}

type nopSink struct{}

func (nopSink) Notify(any) {}

// New returns Ledger working on the given storage.
func New(prm Prm) (*Ledger, error) {
	if prm.Storage == nil {
		return nil, errors.New("missing storage")
	}

	for _, r := range []struct {
		name string
		kind layout.Kind
	}{
		{BalancesRegion, layout.KindMapping},
		{AllowancesRegion, layout.KindNestedMapping},
		{SupplyRegion, layout.KindSlot},
	} {
		if err := prm.Layout.Require(r.name, r.kind); err != nil {
			return nil, err
		}
	}

	events := prm.Events
	if events == nil {
		events = nopSink{}
	}

	return &Ledger{
		cfg:    prm.Config,
		st:     prm.Storage,
		layout: prm.Layout,
		events: events,
	}, nil
}

// Name returns human-readable name of the token.
func (l *Ledger) Name() string {
	return l.cfg.Name
}

// Symbol returns ticker symbol of the token.
func (l *Ledger) Symbol() string {
	return l.cfg.Symbol
}

// Decimals returns precision of token amounts.
func (l *Ledger) Decimals() uint8 {
	return l.cfg.Decimals
}

// TotalSupply returns the amount of tokens in circulation.
func (l *Ledger) TotalSupply() (*uint256.Int, error) {
	return l.get(l.layout.Key(SupplyRegion))
}

// BalanceOf returns the balance of the account, it's zero for accounts that
// never received tokens.
func (l *Ledger) BalanceOf(account util.Uint160) (*uint256.Int, error) {
	return l.get(l.layout.Key(BalancesRegion, account))
}

// Transfer moves amount from one account to another and returns true on
// success. A zero transfer and a transfer to itself always succeed when the
// balance allows them and don't change any balance.
func (l *Ledger) Transfer(from, to util.Uint160, amount *uint256.Int) (bool, error) {
	amount = orZero(amount)

	fromKey := l.layout.Key(BalancesRegion, from)

	fromBalance, err := l.get(fromKey)
	if err != nil {
		return false, err
	}

	if fromBalance.Lt(amount) {
		return false, fmt.Errorf("%w: %s has %s, requested %s", ErrInsufficientBalance, from.StringLE(), fromBalance.ToBig(), amount.ToBig())
	}

	if !amount.IsZero() && !from.Equals(to) {
		toKey := l.layout.Key(BalancesRegion, to)

		toBalance, err := l.get(toKey)
		if err != nil {
			return false, err
		}

		newTo, overflow := new(uint256.Int).AddOverflow(toBalance, amount)
		if overflow {
			return false, fmt.Errorf("%w: balance of %s", ErrOverflow, to.StringLE())
		}

		l.put(fromKey, new(uint256.Int).Sub(fromBalance, amount))
		l.put(toKey, newTo)
	}

	l.events.Notify(Transfer{From: from, To: to, Amount: amount.Clone()})

	return true, nil
}

// Mint credits the account and increases the total supply.
func (l *Ledger) Mint(to util.Uint160, amount *uint256.Int) error {
	amount = orZero(amount)

	var (
		toKey     = l.layout.Key(BalancesRegion, to)
		supplyKey = l.layout.Key(SupplyRegion)
	)

	balance, err := l.get(toKey)
	if err != nil {
		return err
	}

	supply, err := l.get(supplyKey)
	if err != nil {
		return err
	}

	newBalance, overflow := new(uint256.Int).AddOverflow(balance, amount)
	if overflow {
		return fmt.Errorf("%w: balance of %s", ErrOverflow, to.StringLE())
	}

	newSupply, overflow := new(uint256.Int).AddOverflow(supply, amount)
	if overflow {
		return fmt.Errorf("%w: total supply", ErrOverflow)
	}

	l.put(toKey, newBalance)
	l.put(supplyKey, newSupply)

	l.events.Notify(Transfer{From: ZeroAddress, To: to, Amount: amount.Clone()})

	return nil
}

// Burn debits the account and decreases the total supply.
func (l *Ledger) Burn(from util.Uint160, amount *uint256.Int) error {
	amount = orZero(amount)

	var (
		fromKey   = l.layout.Key(BalancesRegion, from)
		supplyKey = l.layout.Key(SupplyRegion)
	)

	balance, err := l.get(fromKey)
	if err != nil {
		return err
	}

	if balance.Lt(amount) {
		return fmt.Errorf("%w: %s has %s, requested %s", ErrInsufficientBalance, from.StringLE(), balance.ToBig(), amount.ToBig())
	}

	supply, err := l.get(supplyKey)
	if err != nil {
		return err
	}

	if supply.Lt(amount) {
		return fmt.Errorf("%w: negative supply after burn", ErrCorrupted)
	}

	l.put(fromKey, new(uint256.Int).Sub(balance, amount))
	l.put(supplyKey, new(uint256.Int).Sub(supply, amount))

	l.events.Notify(Transfer{From: from, To: ZeroAddress, Amount: amount.Clone()})

	return nil
}

func (l *Ledger) get(key []byte) (*uint256.Int, error) {
	v, err := l.st.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return new(uint256.Int), nil
		}
		return nil, fmt.Errorf("read storage item: %w", err)
	}

	return DecodeAmount(v)
}

func (l *Ledger) put(key []byte, v *uint256.Int) {
	if v.IsZero() {
		l.st.Delete(key)
		return
	}

	l.st.Put(key, EncodeAmount(v))
}

// EncodeAmount returns minimal big-endian representation of v.
func EncodeAmount(v *uint256.Int) []byte {
	return v.Bytes()
}

// DecodeAmount decodes amount encoded with EncodeAmount.
func DecodeAmount(b []byte) (*uint256.Int, error) {
	if len(b) > 32 {
		return nil, fmt.Errorf("%w: %d-byte amount", ErrCorrupted, len(b))
	}

	return new(uint256.Int).SetBytes(b), nil
}

func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}
