package ledger

import (
	"fmt"

	"github.com/annchain/bondledger/common"
	"github.com/annchain/bondledger/common/math"
	"github.com/tinylib/msgp/msgp"
)

// ClassID identifies a bond class.
type ClassID uint64

// NonceID identifies one issue batch inside a class.
type NonceID uint64

// storeKey is the flat db key of a ledger record. Every record lives under
// exactly one storeKey; journal entries report the key they touched so that
// commit knows what to flush.
type storeKey string

// Record is a ledger state record that can be encoded and flushed to the
// backing store.
type Record interface {
	Encode() ([]byte, error)
}

// HoldingData is the persisted form of one (owner, class, nonce) balance.
type HoldingData struct {
	Owner  common.Address
	Class  ClassID
	Nonce  NonceID
	Amount *math.BigInt
}

// HoldingObject wraps a holding record. Balance entries are created lazily
// and never destroyed; a zero amount means the holder owns nothing under
// the position.
type HoldingObject struct {
	key  storeKey
	data HoldingData

	lg *Ledger
}

func newHoldingObject(owner common.Address, class ClassID, nonce NonceID, lg *Ledger) *HoldingObject {
	return &HoldingObject{
		key: holdingKey(owner, class, nonce),
		data: HoldingData{
			Owner:  owner,
			Class:  class,
			Nonce:  nonce,
			Amount: math.NewBigInt(0),
		},
		lg: lg,
	}
}

func (h *HoldingObject) GetAmount() *math.BigInt {
	return h.data.Amount
}

// SetAmount updates the balance and journals the previous value.
func (h *HoldingObject) SetAmount(amount *math.BigInt) {
	h.lg.journal.append(&holdingChange{
		key:  &h.key,
		prev: h.data.Amount,
	})
	h.data.Amount = amount
}

func (h *HoldingObject) setAmount(amount *math.BigInt) {
	h.data.Amount = amount
}

func (h *HoldingObject) Encode() ([]byte, error) {
	return h.data.MarshalMsg(nil)
}

func (h *HoldingObject) Decode(b []byte, lg *Ledger) error {
	var data HoldingData
	_, err := data.UnmarshalMsg(b)
	if err != nil {
		return err
	}
	h.data = data
	h.key = holdingKey(data.Owner, data.Class, data.Nonce)
	h.lg = lg
	return nil
}

// SupplyData tracks the four supply counters of one (class, nonce) position.
// Total always equals Active+Redeemed+Burned.
type SupplyData struct {
	Class    ClassID
	Nonce    NonceID
	Total    *math.BigInt
	Active   *math.BigInt
	Redeemed *math.BigInt
	Burned   *math.BigInt
}

// SupplyObject wraps the supply record of a position.
type SupplyObject struct {
	key  storeKey
	data SupplyData

	lg *Ledger
}

func newSupplyObject(class ClassID, nonce NonceID, lg *Ledger) *SupplyObject {
	return &SupplyObject{
		key: supplyKey(class, nonce),
		data: SupplyData{
			Class:    class,
			Nonce:    nonce,
			Total:    math.NewBigInt(0),
			Active:   math.NewBigInt(0),
			Redeemed: math.NewBigInt(0),
			Burned:   math.NewBigInt(0),
		},
		lg: lg,
	}
}

func (s *SupplyObject) GetTotal() *math.BigInt    { return s.data.Total }
func (s *SupplyObject) GetActive() *math.BigInt   { return s.data.Active }
func (s *SupplyObject) GetRedeemed() *math.BigInt { return s.data.Redeemed }
func (s *SupplyObject) GetBurned() *math.BigInt   { return s.data.Burned }

// AddIssued grows Total and Active by amount.
func (s *SupplyObject) AddIssued(amount *math.BigInt) {
	s.journalSupply()
	s.data.Total = s.data.Total.Add(amount)
	s.data.Active = s.data.Active.Add(amount)
}

// MoveToRedeemed moves amount from Active to Redeemed. Total is unchanged.
func (s *SupplyObject) MoveToRedeemed(amount *math.BigInt) {
	s.journalSupply()
	s.data.Active = s.data.Active.Sub(amount)
	s.data.Redeemed = s.data.Redeemed.Add(amount)
}

// MoveToBurned moves amount from Active to Burned. Total is unchanged.
func (s *SupplyObject) MoveToBurned(amount *math.BigInt) {
	s.journalSupply()
	s.data.Active = s.data.Active.Sub(amount)
	s.data.Burned = s.data.Burned.Add(amount)
}

func (s *SupplyObject) journalSupply() {
	s.lg.journal.append(&supplyChange{
		key:          &s.key,
		prevTotal:    s.data.Total,
		prevActive:   s.data.Active,
		prevRedeemed: s.data.Redeemed,
		prevBurned:   s.data.Burned,
	})
}

func (s *SupplyObject) setSupply(total, active, redeemed, burned *math.BigInt) {
	s.data.Total = total
	s.data.Active = active
	s.data.Redeemed = redeemed
	s.data.Burned = burned
}

func (s *SupplyObject) Encode() ([]byte, error) {
	return s.data.MarshalMsg(nil)
}

func (s *SupplyObject) Decode(b []byte, lg *Ledger) error {
	var data SupplyData
	_, err := data.UnmarshalMsg(b)
	if err != nil {
		return err
	}
	s.data = data
	s.key = supplyKey(data.Class, data.Nonce)
	s.lg = lg
	return nil
}

/*
	marshaller part. written by hand, do not use msgp generating.
*/

func (h *HoldingData) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, h.Msgsize())
	o, err = h.Owner.MarshalMsg(o)
	if err != nil {
		return
	}
	o = msgp.AppendUint64(o, uint64(h.Class))
	o = msgp.AppendUint64(o, uint64(h.Nonce))
	return h.Amount.MarshalMsg(o)
}

func (h *HoldingData) UnmarshalMsg(bts []byte) (o []byte, err error) {
	o = bts
	o, err = h.Owner.UnmarshalMsg(o)
	if err != nil {
		return
	}
	var v uint64
	v, o, err = msgp.ReadUint64Bytes(o)
	if err != nil {
		return
	}
	h.Class = ClassID(v)
	v, o, err = msgp.ReadUint64Bytes(o)
	if err != nil {
		return
	}
	h.Nonce = NonceID(v)
	h.Amount = math.NewBigInt(0)
	return h.Amount.UnmarshalMsg(o)
}

func (h *HoldingData) Msgsize() int {
	return h.Owner.Msgsize() + 2*msgp.Uint64Size + h.Amount.Msgsize()
}

func (s *SupplyData) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, s.Msgsize())
	o = msgp.AppendUint64(o, uint64(s.Class))
	o = msgp.AppendUint64(o, uint64(s.Nonce))
	for _, counter := range []*math.BigInt{s.Total, s.Active, s.Redeemed, s.Burned} {
		o, err = counter.MarshalMsg(o)
		if err != nil {
			return
		}
	}
	return o, nil
}

func (s *SupplyData) UnmarshalMsg(bts []byte) (o []byte, err error) {
	o = bts
	var v uint64
	v, o, err = msgp.ReadUint64Bytes(o)
	if err != nil {
		return
	}
	s.Class = ClassID(v)
	v, o, err = msgp.ReadUint64Bytes(o)
	if err != nil {
		return
	}
	s.Nonce = NonceID(v)

	counters := make([]*math.BigInt, 4)
	for i := range counters {
		counters[i] = math.NewBigInt(0)
		o, err = counters[i].UnmarshalMsg(o)
		if err != nil {
			return o, fmt.Errorf("unmarshal supply counter %d: %v", i, err)
		}
	}
	s.Total, s.Active, s.Redeemed, s.Burned = counters[0], counters[1], counters[2], counters[3]
	return o, nil
}

func (s *SupplyData) Msgsize() int {
	return 2*msgp.Uint64Size +
		s.Total.Msgsize() + s.Active.Msgsize() + s.Redeemed.Msgsize() + s.Burned.Msgsize()
}
