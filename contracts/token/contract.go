package token

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/token-ledger/common"
)

const (
	symbol   = "EMR"
	decimals = 9

	// Key prefixes match the Go ledger layout. Values differ: amounts are
	// stored here as NeoVM integers, not big-endian uint256, so contract
	// storage can't be restored into the Go host as is.
	balancePrefix = 'b'
	supplyKey     = 's'
	ownerKey      = 'o'
)

// nolint:unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		return
	}

	ctx := storage.GetContext()

	var owner interop.Hash160
	if data != nil {
		args := data.([]any)
		if len(args) > 0 && args[0] != nil {
			owner = args[0].(interop.Hash160)
		}
	}

	if owner == nil {
		tx := runtime.GetScriptContainer()
		owner = tx.Sender
	}

	common.CheckAddress(owner)
	if common.IsZero(owner) {
		panic(common.ErrZeroOwner)
	}

	storage.Put(ctx, ownerKey, owner)
	runtime.Notify("OwnershipTransferred", interop.Hash160(nil), owner)

	runtime.Log("token contract initialized")
}

// Symbol is a NEP-17 standard method that returns EMR token symbol.
func Symbol() string {
	return symbol
}

// Decimals is a NEP-17 standard method that returns precision of the token.
func Decimals() int {
	return decimals
}

// TotalSupply is a NEP-17 standard method that returns amount of tokens in
// circulation.
func TotalSupply() int {
	ctx := storage.GetReadOnlyContext()
	return getSupply(ctx)
}

// BalanceOf is a NEP-17 standard method that returns token balance of the
// specified account.
func BalanceOf(account interop.Hash160) int {
	common.CheckAddress(account)

	ctx := storage.GetReadOnlyContext()
	return balanceOf(ctx, account)
}

// Transfer is a NEP-17 standard method that transfers tokens from one account
// to another. It can be invoked only by the sender account. Receiver contract
// is called with onNEP17Payment method.
//
// It produces Transfer notification.
func Transfer(from, to interop.Hash160, amount int, data any) bool {
	common.CheckAddress(from)
	common.CheckAddress(to)

	if amount < 0 {
		panic(common.ErrNegativeAmount)
	}

	if !runtime.CheckWitness(from) {
		runtime.Log("sender witness check failed")
		return false
	}

	ctx := storage.GetContext()

	fromBalance := balanceOf(ctx, from)
	if fromBalance < amount {
		runtime.Log(common.ErrInsufficientBalance)
		return false
	}

	if amount != 0 && !from.Equals(to) {
		setBalance(ctx, from, fromBalance-amount)
		setBalance(ctx, to, balanceOf(ctx, to)+amount)
	}

	runtime.Notify("Transfer", from, to, amount)

	if management.GetContract(to) != nil {
		contract.Call(to, "onNEP17Payment", contract.All, from, amount, data)
	}

	return true
}

// Owner returns the current token owner.
func Owner() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return getOwner(ctx)
}

// TransferOwnership hands the token over to the new owner. It can be invoked
// only by the current owner.
//
// It produces OwnershipTransferred notification.
func TransferOwnership(newOwner interop.Hash160) {
	common.CheckAddress(newOwner)

	ctx := storage.GetContext()

	owner := getOwner(ctx)
	common.CheckOwnerWitness(owner)

	if common.IsZero(newOwner) {
		panic(common.ErrZeroOwner)
	}

	storage.Put(ctx, ownerKey, newOwner)
	runtime.Notify("OwnershipTransferred", owner, newOwner)
}

// Mint creates new tokens on the account. It can be invoked only by the owner.
//
// It produces Transfer notification with null sender.
func Mint(to interop.Hash160, amount int) {
	common.CheckAddress(to)

	if amount < 0 {
		panic(common.ErrNegativeAmount)
	}

	ctx := storage.GetContext()

	common.CheckOwnerWitness(getOwner(ctx))

	if amount != 0 {
		setBalance(ctx, to, balanceOf(ctx, to)+amount)
		storage.Put(ctx, supplyKey, getSupply(ctx)+amount)
	}

	runtime.Notify("Transfer", interop.Hash160(nil), to, amount)
}

// Burn destroys owner's tokens. It can be invoked only by the owner.
//
// It produces Transfer notification with null receiver.
func Burn(amount int) {
	if amount < 0 {
		panic(common.ErrNegativeAmount)
	}

	ctx := storage.GetContext()

	owner := getOwner(ctx)
	common.CheckOwnerWitness(owner)

	balance := balanceOf(ctx, owner)
	if balance < amount {
		panic(common.ErrInsufficientBalance)
	}

	if amount != 0 {
		setBalance(ctx, owner, balance-amount)
		storage.Put(ctx, supplyKey, getSupply(ctx)-amount)
	}

	runtime.Notify("Transfer", owner, interop.Hash160(nil), amount)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

func getOwner(ctx storage.Context) interop.Hash160 {
	owner := storage.Get(ctx, ownerKey)
	if owner == nil {
		panic(common.ErrNotDeployed)
	}
	return owner.(interop.Hash160)
}

func getSupply(ctx storage.Context) int {
	supply := storage.Get(ctx, supplyKey)
	if supply != nil {
		return supply.(int)
	}
	return 0
}

func balanceKey(account interop.Hash160) []byte {
	return append([]byte{balancePrefix}, account...)
}

func balanceOf(ctx storage.Context, account interop.Hash160) int {
	balance := storage.Get(ctx, balanceKey(account))
	if balance != nil {
		return balance.(int)
	}
	return 0
}

func setBalance(ctx storage.Context, account interop.Hash160, balance int) {
	if balance == 0 {
		storage.Delete(ctx, balanceKey(account))
		return
	}
	storage.Put(ctx, balanceKey(account), balance)
}
