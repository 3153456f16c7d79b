package tests

import (
	"math/big"
	"path"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/token-ledger/common"
)

const tokenPath = "../contracts/token"

func newTokenInvoker(t *testing.T, deployData any) *neotest.ContractInvoker {
	e := newExecutor(t)
	ctr := neotest.CompileFile(t, e.CommitteeHash, tokenPath, path.Join(tokenPath, "config.yml"))
	e.DeployContract(t, ctr, deployData)
	return e.CommitteeInvoker(ctr.Hash)
}

func transferEvent(contract, from, to util.Uint160, amount int64) state.NotificationEvent {
	return state.NotificationEvent{
		ScriptHash: contract,
		Name:       "Transfer",
		Item: stackitem.NewArray([]stackitem.Item{
			hashItem(from),
			hashItem(to),
			stackitem.NewBigInteger(big.NewInt(amount)),
		}),
	}
}

func ownershipEvent(contract, previous, newOwner util.Uint160) state.NotificationEvent {
	return state.NotificationEvent{
		ScriptHash: contract,
		Name:       "OwnershipTransferred",
		Item: stackitem.NewArray([]stackitem.Item{
			hashItem(previous),
			hashItem(newOwner),
		}),
	}
}

func hashItem(h util.Uint160) stackitem.Item {
	if h.Equals(util.Uint160{}) {
		return stackitem.Null{}
	}
	return stackitem.NewByteArray(h.BytesBE())
}

func TestTokenInfo(t *testing.T) {
	c := newTokenInvoker(t, nil)

	c.Invoke(t, "EMR", "symbol")
	c.Invoke(t, 9, "decimals")
	c.Invoke(t, 0, "totalSupply")
	c.Invoke(t, stackitem.NewBuffer(c.CommitteeHash.BytesBE()), "owner")
	c.Invoke(t, common.Version, "version")
	c.InvokeFail(t, common.ErrInvalidAddress, "balanceOf", []byte{1, 2, 3})
}

func TestTokenDeployOwner(t *testing.T) {
	e := newExecutor(t)
	acc := e.NewAccount(t)

	ctr := neotest.CompileFile(t, e.CommitteeHash, tokenPath, path.Join(tokenPath, "config.yml"))
	e.DeployContract(t, ctr, []any{acc.ScriptHash()})

	c := e.CommitteeInvoker(ctr.Hash)
	c.Invoke(t, stackitem.NewBuffer(acc.ScriptHash().BytesBE()), "owner")
	c.InvokeFail(t, common.ErrOwnerWitnessFailed, "mint", acc.ScriptHash(), 1)

	c.WithSigners(acc).Invoke(t, stackitem.Null{}, "mint", acc.ScriptHash(), 1)
}

func TestTokenMint(t *testing.T) {
	c := newTokenInvoker(t, nil)

	acc := c.NewAccount(t)
	cAcc := c.WithSigners(acc)

	cAcc.InvokeFail(t, common.ErrOwnerWitnessFailed, "mint", acc.ScriptHash(), 1)
	c.InvokeFail(t, common.ErrNegativeAmount, "mint", acc.ScriptHash(), -1)

	h := c.Invoke(t, stackitem.Null{}, "mint", acc.ScriptHash(), 100)
	c.CheckTxNotificationEvent(t, h, 0, transferEvent(c.Hash, util.Uint160{}, acc.ScriptHash(), 100))

	c.Invoke(t, 100, "balanceOf", acc.ScriptHash())
	c.Invoke(t, 100, "totalSupply")
}

func TestTokenTransfer(t *testing.T) {
	c := newTokenInvoker(t, nil)

	var (
		alice  = c.NewAccount(t)
		bob    = c.NewAccount(t)
		cAlice = c.WithSigners(alice)
	)

	c.Invoke(t, stackitem.Null{}, "mint", alice.ScriptHash(), 50)

	cAlice.Invoke(t, false, "transfer", bob.ScriptHash(), alice.ScriptHash(), 1, nil)
	cAlice.Invoke(t, false, "transfer", alice.ScriptHash(), bob.ScriptHash(), 51, nil)
	cAlice.InvokeFail(t, common.ErrNegativeAmount, "transfer", alice.ScriptHash(), bob.ScriptHash(), -1, nil)

	h := cAlice.Invoke(t, true, "transfer", alice.ScriptHash(), bob.ScriptHash(), 20, nil)
	c.CheckTxNotificationEvent(t, h, 0, transferEvent(c.Hash, alice.ScriptHash(), bob.ScriptHash(), 20))

	c.Invoke(t, 30, "balanceOf", alice.ScriptHash())
	c.Invoke(t, 20, "balanceOf", bob.ScriptHash())
	c.Invoke(t, 50, "totalSupply")

	cAlice.Invoke(t, true, "transfer", alice.ScriptHash(), alice.ScriptHash(), 30, nil)
	cAlice.Invoke(t, true, "transfer", alice.ScriptHash(), bob.ScriptHash(), 0, nil)
	c.Invoke(t, 30, "balanceOf", alice.ScriptHash())
}

func TestTokenBurn(t *testing.T) {
	c := newTokenInvoker(t, nil)

	acc := c.NewAccount(t)
	cAcc := c.WithSigners(acc)

	c.Invoke(t, stackitem.Null{}, "mint", c.CommitteeHash, 10)
	c.Invoke(t, stackitem.Null{}, "mint", acc.ScriptHash(), 10)

	cAcc.InvokeFail(t, common.ErrOwnerWitnessFailed, "burn", 1)
	c.InvokeFail(t, common.ErrInsufficientBalance, "burn", 11)

	h := c.Invoke(t, stackitem.Null{}, "burn", 4)
	c.CheckTxNotificationEvent(t, h, 0, transferEvent(c.Hash, c.CommitteeHash, util.Uint160{}, 4))

	c.Invoke(t, 6, "balanceOf", c.CommitteeHash)
	c.Invoke(t, 10, "balanceOf", acc.ScriptHash())
	c.Invoke(t, 16, "totalSupply")

	c.Invoke(t, stackitem.Null{}, "burn", 6)
	c.Invoke(t, 0, "balanceOf", c.CommitteeHash)
	c.Invoke(t, 10, "totalSupply")
}

func TestTokenTransferOwnership(t *testing.T) {
	c := newTokenInvoker(t, nil)

	acc := c.NewAccount(t)
	cAcc := c.WithSigners(acc)

	cAcc.InvokeFail(t, common.ErrOwnerWitnessFailed, "transferOwnership", acc.ScriptHash())
	c.InvokeFail(t, common.ErrZeroOwner, "transferOwnership", util.Uint160{})

	h := c.Invoke(t, stackitem.Null{}, "transferOwnership", acc.ScriptHash())
	c.CheckTxNotificationEvent(t, h, 0, ownershipEvent(c.Hash, c.CommitteeHash, acc.ScriptHash()))

	c.Invoke(t, stackitem.NewBuffer(acc.ScriptHash().BytesBE()), "owner")
	c.InvokeFail(t, common.ErrOwnerWitnessFailed, "mint", acc.ScriptHash(), 1)
	cAcc.Invoke(t, stackitem.Null{}, "mint", acc.ScriptHash(), 1)
	cAcc.Invoke(t, stackitem.Null{}, "burn", 1)
	c.Invoke(t, 0, "totalSupply")
}

func TestTokenTransferToContract(t *testing.T) {
	const recvPath = "../internal/testcontracts/nep17recv"

	c := newTokenInvoker(t, nil)

	recv := neotest.CompileFile(t, c.CommitteeHash, recvPath, path.Join(recvPath, "config.yml"))
	c.DeployContract(t, recv, nil)
	cRecv := c.CommitteeInvoker(recv.Hash)

	c.Invoke(t, stackitem.Null{}, "mint", c.CommitteeHash, 10)

	c.InvokeFail(t, "payment rejected", "transfer", c.CommitteeHash, recv.Hash, 3, "reject")
	c.Invoke(t, 0, "balanceOf", recv.Hash)

	c.Invoke(t, true, "transfer", c.CommitteeHash, recv.Hash, 3, "hello")
	c.Invoke(t, 3, "balanceOf", recv.Hash)
	c.Invoke(t, 7, "balanceOf", c.CommitteeHash)

	cRecv.Invoke(t, stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray(c.CommitteeHash.BytesBE()),
		stackitem.NewBigInteger(big.NewInt(3)),
		stackitem.NewByteArray([]byte("hello")),
	}), "get")
}
