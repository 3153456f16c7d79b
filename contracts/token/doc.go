/*
Token contract is a NEP-17 fungible token with supply controlled by a single
owner. The owner is set on deployment and can be handed over later. Only the
owner can mint new tokens and burn its own tokens.

# Contract notifications

Transfer notification. This notification is produced on every balance change,
mint has null sender and burn has null receiver.

	Transfer:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer

OwnershipTransferred notification. This notification is produced when the
token gets the owner, including deployment with null previous owner.

	OwnershipTransferred:
	  - name: previousOwner
	    type: Hash160
	  - name: newOwner
	    type: Hash160
*/
package token
