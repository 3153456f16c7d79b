/*
Package notify provides event sinks for the token ledger.

Sinks implement ledger.Sink. Recorder buffers events in memory, Logger
writes them to a zap logger, Notifications converts them into neo-go
notification events with NEP-17 compatible layout and Multi fans them out.
*/
package notify

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/token-ledger/access"
	"github.com/nspcc-dev/token-ledger/ledger"
	"go.uber.org/zap"
)

// Notification names.
const (
	TransferName             = "Transfer"
	OwnershipTransferredName = "OwnershipTransferred"
)

// Recorder stores events in memory. Zero value is ready to use.
type Recorder struct {
	events []any
}

// Notify implements ledger.Sink.
func (r *Recorder) Notify(event any) {
	r.events = append(r.events, event)
}

// Events returns recorded events in emission order.
func (r *Recorder) Events() []any {
	res := make([]any, len(r.events))
	copy(res, r.events)
	return res
}

// Transfers returns recorded Transfer events in emission order.
func (r *Recorder) Transfers() []ledger.Transfer {
	var res []ledger.Transfer
	for i := range r.events {
		if e, ok := r.events[i].(ledger.Transfer); ok {
			res = append(res, e)
		}
	}
	return res
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.events = r.events[:0]
}

// Flush passes all recorded events into s and resets the Recorder.
func (r *Recorder) Flush(s ledger.Sink) {
	for i := range r.events {
		s.Notify(r.events[i])
	}
	r.Reset()
}

// Logger writes events into a zap logger.
type Logger struct {
	log *zap.Logger
}

// NewLogger returns Logger writing into l.
func NewLogger(l *zap.Logger) *Logger {
	return &Logger{log: l}
}

// Notify implements ledger.Sink.
func (x *Logger) Notify(event any) {
	switch e := event.(type) {
	case ledger.Transfer:
		x.log.Info("transfer",
			zap.Stringer("from", e.From),
			zap.Stringer("to", e.To),
			zap.Stringer("amount", toBig(e.Amount)),
		)
	case access.OwnershipTransferred:
		x.log.Info("ownership transferred",
			zap.Stringer("previous", e.Previous),
			zap.Stringer("new", e.New),
		)
	default:
		x.log.Warn("unknown event", zap.Any("event", event))
	}
}

// Multi passes every event to all its sinks.
type Multi []ledger.Sink

// Notify implements ledger.Sink.
func (m Multi) Notify(event any) {
	for i := range m {
		m[i].Notify(event)
	}
}

// Notifications converts events into notifications of the given contract.
type Notifications struct {
	contract util.Uint160
	events   []state.NotificationEvent
}

// NewNotifications returns Notifications attributing events to contract.
func NewNotifications(contract util.Uint160) *Notifications {
	return &Notifications{contract: contract}
}

// Notify implements ledger.Sink. Unknown events are skipped.
func (n *Notifications) Notify(event any) {
	if ne, ok := ToNotification(n.contract, event); ok {
		n.events = append(n.events, ne)
	}
}

// Events returns accumulated notifications.
func (n *Notifications) Events() []state.NotificationEvent {
	res := make([]state.NotificationEvent, len(n.events))
	copy(res, n.events)
	return res
}

// ToNotification converts event into notification of the contract. The zero
// address is represented as Null exactly like NEP-17 does for mints and burns.
func ToNotification(contract util.Uint160, event any) (state.NotificationEvent, bool) {
	var (
		name  string
		items []stackitem.Item
	)

	switch e := event.(type) {
	case ledger.Transfer:
		name = TransferName
		items = []stackitem.Item{
			addressItem(e.From),
			addressItem(e.To),
			stackitem.NewBigInteger(toBig(e.Amount)),
		}
	case access.OwnershipTransferred:
		name = OwnershipTransferredName
		items = []stackitem.Item{
			addressItem(e.Previous),
			addressItem(e.New),
		}
	default:
		return state.NotificationEvent{}, false
	}

	return state.NotificationEvent{
		ScriptHash: contract,
		Name:       name,
		Item:       stackitem.NewArray(items),
	}, true
}

func addressItem(a util.Uint160) stackitem.Item {
	if a.Equals(ledger.ZeroAddress) {
		return stackitem.Null{}
	}
	return stackitem.NewByteArray(a.BytesBE())
}

func toBig(x *uint256.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return x.ToBig()
}
