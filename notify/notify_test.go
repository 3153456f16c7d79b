package notify_test

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/token-ledger/access"
	"github.com/nspcc-dev/token-ledger/ledger"
	"github.com/nspcc-dev/token-ledger/notify"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var (
	alice = util.Uint160{0xa1}
	bob   = util.Uint160{0xb0}

	mint = ledger.Transfer{From: ledger.ZeroAddress, To: alice, Amount: uint256.NewInt(10)}
	move = ledger.Transfer{From: alice, To: bob, Amount: uint256.NewInt(3)}
	own  = access.OwnershipTransferred{Previous: alice, New: bob}
)

func TestRecorder(t *testing.T) {
	var rec notify.Recorder
	require.Empty(t, rec.Events())

	rec.Notify(mint)
	rec.Notify(own)
	rec.Notify(move)

	require.Equal(t, []any{mint, own, move}, rec.Events())
	require.Equal(t, []ledger.Transfer{mint, move}, rec.Transfers())

	var dst notify.Recorder
	rec.Flush(&dst)

	require.Empty(t, rec.Events())
	require.Equal(t, []any{mint, own, move}, dst.Events())

	dst.Reset()
	require.Empty(t, dst.Events())
}

func TestMulti(t *testing.T) {
	var a, b notify.Recorder

	notify.Multi{&a, &b}.Notify(move)
	notify.Multi{}.Notify(move)

	require.Equal(t, []any{move}, a.Events())
	require.Equal(t, []any{move}, b.Events())
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := notify.NewLogger(zap.New(core))

	l.Notify(move)
	l.Notify(own)
	l.Notify("garbage")

	entries := logs.All()
	require.Len(t, entries, 3)

	require.Equal(t, "transfer", entries[0].Message)
	require.Equal(t, "3", entries[0].ContextMap()["amount"])
	require.Equal(t, alice.String(), entries[0].ContextMap()["from"])

	require.Equal(t, "ownership transferred", entries[1].Message)
	require.Equal(t, bob.String(), entries[1].ContextMap()["new"])

	require.Equal(t, zapcore.WarnLevel, entries[2].Level)
}

func TestToNotification(t *testing.T) {
	contract := util.Uint160{0xcc}

	ne, ok := notify.ToNotification(contract, mint)
	require.True(t, ok)
	require.Equal(t, state.NotificationEvent{
		ScriptHash: contract,
		Name:       notify.TransferName,
		Item: stackitem.NewArray([]stackitem.Item{
			stackitem.Null{},
			stackitem.NewByteArray(alice.BytesBE()),
			stackitem.NewBigInteger(big.NewInt(10)),
		}),
	}, ne)

	ne, ok = notify.ToNotification(contract, own)
	require.True(t, ok)
	require.Equal(t, notify.OwnershipTransferredName, ne.Name)
	require.Equal(t, []stackitem.Item{
		stackitem.NewByteArray(alice.BytesBE()),
		stackitem.NewByteArray(bob.BytesBE()),
	}, ne.Item.Value())

	_, ok = notify.ToNotification(contract, 42)
	require.False(t, ok)
}

func TestNotifications(t *testing.T) {
	contract := util.Uint160{0xcc}
	n := notify.NewNotifications(contract)

	n.Notify(mint)
	n.Notify(struct{}{})
	n.Notify(move)

	evs := n.Events()
	require.Len(t, evs, 2)
	for i := range evs {
		require.Equal(t, contract, evs[i].ScriptHash)
		require.Equal(t, notify.TransferName, evs[i].Name)
	}

	burn := ledger.Transfer{From: bob, To: ledger.ZeroAddress, Amount: uint256.NewInt(1)}
	ne, ok := notify.ToNotification(contract, burn)
	require.True(t, ok)
	require.Equal(t, stackitem.Null{}, ne.Item.Value().([]stackitem.Item)[1])
}
