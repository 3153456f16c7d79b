/*
Package ledger implements accounting of a fungible token.

Ledger stores balances of all accounts and the total supply of the token and
implements transfer, mint and burn rules over them. Ledger doesn't check who
requests an operation, this is a job of the access package.

All amounts are unsigned 256-bit integers. Every operation checks all its
preconditions before the first storage write, so a failed operation leaves
the storage untouched and emits nothing.

# Events

Every successful balance change produces a Transfer event. Minting is
reported as a transfer from the zero address, burning as a transfer to the
zero address.

	Transfer:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer
*/
package ledger

/*
Storage model.

# Summary
Key-value storage format:
  - 's' -> big-endian uint256
    total supply of the token
  - 'b'<util.Uint160> -> big-endian uint256
    balance sheet of all accounts, zero balances are not stored
  - 'l'<util.Uint160><util.Uint160> -> big-endian uint256
    reserved for allowances, never written
*/
