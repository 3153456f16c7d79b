/*
Package access implements single-owner access control over the token ledger.

Controller owns a ledger.Ledger and a single owner address. Minting, burning
and ownership transfer can be performed by the owner only, everything else
is forwarded to the Ledger as is.

# Events

OwnershipTransferred event is produced on deployment (from the zero address)
and on every owner change.

	OwnershipTransferred:
	  - name: previousOwner
	    type: Hash160
	  - name: newOwner
	    type: Hash160
*/
package access

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/token-ledger/layout"
	"github.com/nspcc-dev/token-ledger/ledger"
)

// OwnerRegion is a name of the storage slot with the owner address.
const OwnerRegion = "owner"

var (
	// ErrUnauthorized is returned when a privileged operation is requested
	// by anyone except the owner.
	ErrUnauthorized = errors.New("caller is not the owner")
	// ErrZeroOwner is returned on attempt to make the zero address an owner.
	ErrZeroOwner = errors.New("zero address can't be an owner")
	// ErrAlreadyDeployed is returned by Deploy when the storage already has
	// an owner.
	ErrAlreadyDeployed = errors.New("token is already deployed")
	// ErrNotDeployed is returned by Open when the storage has no owner.
	ErrNotDeployed = errors.New("token is not deployed")
)

// OwnershipTransferred is an event of owner change.
type OwnershipTransferred struct {
	Previous util.Uint160
	New      util.Uint160
}

// DefaultLayout returns the storage layout with all regions used by
// Controller and its Ledger.
func DefaultLayout() layout.Layout {
	l, err := RegisterRegions(ledger.RegisterRegions(layout.NewBuilder())).Build()
	if err != nil {
		panic(fmt.Sprintf("default storage layout: %v", err))
	}
	return l
}

// RegisterRegions adds storage regions used by Controller itself to b.
func RegisterRegions(b *layout.Builder) *layout.Builder {
	return b.Slot(OwnerRegion, []byte{'o'})
}

// Controller gates privileged ledger operations. Controller instances must be
// constructed using Deploy or Open.
type Controller struct {
	ledger *ledger.Ledger

	st       ledger.Storage
	ownerKey []byte
	events   ledger.Sink

	owner util.Uint160
}

type nopSink struct{}

func (nopSink) Notify(any) {}

// Deploy initializes a new token in the storage and makes creator its owner.
func Deploy(prm ledger.Prm, creator util.Uint160) (*Controller, error) {
	c, found, err := newController(prm)
	if err != nil {
		return nil, err
	}

	if found {
		return nil, ErrAlreadyDeployed
	}

	if creator.Equals(ledger.ZeroAddress) {
		return nil, ErrZeroOwner
	}

	c.setOwner(creator)

	return c, nil
}

// Open attaches Controller to the token deployed in the storage earlier.
func Open(prm ledger.Prm) (*Controller, error) {
	c, found, err := newController(prm)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, ErrNotDeployed
	}

	return c, nil
}

func newController(prm ledger.Prm) (*Controller, bool, error) {
	if err := prm.Layout.Require(OwnerRegion, layout.KindSlot); err != nil {
		return nil, false, err
	}

	l, err := ledger.New(prm)
	if err != nil {
		return nil, false, fmt.Errorf("init ledger: %w", err)
	}

	c := &Controller{
		ledger:   l,
		st:       prm.Storage,
		ownerKey: prm.Layout.Key(OwnerRegion),
		events:   prm.Events,
	}

	if c.events == nil {
		c.events = nopSink{}
	}

	v, err := c.st.Get(c.ownerKey)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return c, false, nil
		}
		return nil, false, fmt.Errorf("read owner: %w", err)
	}

	c.owner, err = util.Uint160DecodeBytesBE(v)
	if err != nil {
		return nil, false, fmt.Errorf("%w: decode owner: %w", ledger.ErrCorrupted, err)
	}

	if c.owner.Equals(ledger.ZeroAddress) {
		return nil, false, fmt.Errorf("%w: zero owner", ledger.ErrCorrupted)
	}

	return c, true, nil
}

func (c *Controller) setOwner(owner util.Uint160) {
	prev := c.owner

	c.st.Put(c.ownerKey, owner.BytesBE())
	c.owner = owner

	c.events.Notify(OwnershipTransferred{Previous: prev, New: owner})
}

func (c *Controller) checkOwner(caller util.Uint160) error {
	if !caller.Equals(c.owner) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, caller.StringLE())
	}
	return nil
}

// Owner returns the current owner.
func (c *Controller) Owner() util.Uint160 {
	return c.owner
}

// TransferOwnership makes newOwner the owner. It can be invoked only by the
// current owner.
func (c *Controller) TransferOwnership(caller, newOwner util.Uint160) error {
	if err := c.checkOwner(caller); err != nil {
		return err
	}

	if newOwner.Equals(ledger.ZeroAddress) {
		return ErrZeroOwner
	}

	c.setOwner(newOwner)

	return nil
}

// Mint creates amount of tokens on the account. It can be invoked only by the
// owner.
func (c *Controller) Mint(caller, to util.Uint160, amount *uint256.Int) error {
	if err := c.checkOwner(caller); err != nil {
		return err
	}

	return c.ledger.Mint(to, amount)
}

// Burn destroys amount of the owner's own tokens. It can be invoked only by
// the owner.
func (c *Controller) Burn(caller util.Uint160, amount *uint256.Int) error {
	if err := c.checkOwner(caller); err != nil {
		return err
	}

	return c.ledger.Burn(caller, amount)
}

// Transfer forwards to ledger.Ledger.Transfer on behalf of the caller.
func (c *Controller) Transfer(caller, to util.Uint160, amount *uint256.Int) (bool, error) {
	return c.ledger.Transfer(caller, to, amount)
}

// BalanceOf forwards to ledger.Ledger.BalanceOf.
func (c *Controller) BalanceOf(account util.Uint160) (*uint256.Int, error) {
	return c.ledger.BalanceOf(account)
}

// TotalSupply forwards to ledger.Ledger.TotalSupply.
func (c *Controller) TotalSupply() (*uint256.Int, error) {
	return c.ledger.TotalSupply()
}

// Name forwards to ledger.Ledger.Name.
func (c *Controller) Name() string {
	return c.ledger.Name()
}

// Symbol forwards to ledger.Ledger.Symbol.
func (c *Controller) Symbol() string {
	return c.ledger.Symbol()
}

// Decimals forwards to ledger.Ledger.Decimals.
func (c *Controller) Decimals() uint8 {
	return c.ledger.Decimals()
}
