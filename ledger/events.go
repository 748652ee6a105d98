package ledger

import (
	"github.com/annchain/bondledger/common"
	"github.com/annchain/bondledger/common/math"
	"github.com/annchain/bondledger/eventbus"
)

const (
	TransferEventType eventbus.EventType = iota + 1
	IssueEventType
	RedeemEventType
	BurnEventType
	ApprovalForEventType // class-wide operator approval changed
)

// EventTypeName maps event types to the names used by logs, the event log
// and the websocket push channels.
func EventTypeName(t eventbus.EventType) string {
	switch t {
	case TransferEventType:
		return "transfer"
	case IssueEventType:
		return "issue"
	case RedeemEventType:
		return "redeem"
	case BurnEventType:
		return "burn"
	case ApprovalForEventType:
		return "approval"
	default:
		return "unknown"
	}
}

type TransferEvent struct {
	Operator common.Address
	From     common.Address
	To       common.Address
	Class    ClassID
	Nonce    NonceID
	Amount   *math.BigInt
}

func (m *TransferEvent) GetEventType() eventbus.EventType {
	return TransferEventType
}

type IssueEvent struct {
	Operator common.Address
	To       common.Address
	Class    ClassID
	Nonce    NonceID
	Amount   *math.BigInt
}

func (m *IssueEvent) GetEventType() eventbus.EventType {
	return IssueEventType
}

type RedeemEvent struct {
	Operator common.Address
	From     common.Address
	Class    ClassID
	Nonce    NonceID
	Amount   *math.BigInt
}

func (m *RedeemEvent) GetEventType() eventbus.EventType {
	return RedeemEventType
}

type BurnEvent struct {
	Operator common.Address
	From     common.Address
	Class    ClassID
	Nonce    NonceID
	Amount   *math.BigInt
}

func (m *BurnEvent) GetEventType() eventbus.EventType {
	return BurnEventType
}

type ApprovalForEvent struct {
	Owner    common.Address
	Operator common.Address
	Class    ClassID
	Approved bool
}

func (m *ApprovalForEvent) GetEventType() eventbus.EventType {
	return ApprovalForEventType
}
