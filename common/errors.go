package common

import "github.com/nspcc-dev/neo-go/pkg/interop"

// Panic messages of the token contract.
const (
	// ErrInvalidAddress appears when a method argument is not a 20-byte
	// script hash.
	ErrInvalidAddress = "invalid address"
	// ErrZeroOwner appears when the token is handed over to the zero address.
	ErrZeroOwner = "new owner is the zero address"
	// ErrNegativeAmount appears when a method gets negative amount.
	ErrNegativeAmount = "negative amount"
	// ErrInsufficientBalance appears when an account has less tokens than
	// requested.
	ErrInsufficientBalance = "insufficient balance"
	// ErrNotDeployed appears when the token has no owner.
	ErrNotDeployed = "token is not deployed"
)

// CheckAddress panics with ErrInvalidAddress message if addr is not a valid
// script hash.
func CheckAddress(addr interop.Hash160) {
	if len(addr) != interop.Hash160Len {
		panic(ErrInvalidAddress)
	}
}

// IsZero checks whether addr consists of zero bytes only.
func IsZero(addr interop.Hash160) bool {
	for i := range addr {
		if addr[i] != 0 {
			return false
		}
	}
	return true
}
