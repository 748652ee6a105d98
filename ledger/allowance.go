package ledger

import (
	"github.com/annchain/bondledger/common"
	"github.com/annchain/bondledger/common/math"
	"github.com/tinylib/msgp/msgp"
)

// AllowanceData is the persisted remaining allowance a spender may move
// from owner's balance under one (class, nonce).
type AllowanceData struct {
	Owner   common.Address
	Spender common.Address
	Class   ClassID
	Nonce   NonceID
	Amount  *math.BigInt
}

type AllowanceObject struct {
	key  storeKey
	data AllowanceData

	lg *Ledger
}

func newAllowanceObject(owner, spender common.Address, class ClassID, nonce NonceID, lg *Ledger) *AllowanceObject {
	return &AllowanceObject{
		key: allowanceKey(owner, spender, class, nonce),
		data: AllowanceData{
			Owner:   owner,
			Spender: spender,
			Class:   class,
			Nonce:   nonce,
			Amount:  math.NewBigInt(0),
		},
		lg: lg,
	}
}

func (a *AllowanceObject) GetAmount() *math.BigInt {
	return a.data.Amount
}

// SetAmount overwrites the allowance. Approvals replace, they do not
// accumulate.
func (a *AllowanceObject) SetAmount(amount *math.BigInt) {
	a.lg.journal.append(&allowanceChange{
		key:  &a.key,
		prev: a.data.Amount,
	})
	a.data.Amount = amount
}

func (a *AllowanceObject) setAmount(amount *math.BigInt) {
	a.data.Amount = amount
}

func (a *AllowanceObject) Encode() ([]byte, error) {
	return a.data.MarshalMsg(nil)
}

func (a *AllowanceObject) Decode(b []byte, lg *Ledger) error {
	var data AllowanceData
	_, err := data.UnmarshalMsg(b)
	if err != nil {
		return err
	}
	a.data = data
	a.key = allowanceKey(data.Owner, data.Spender, data.Class, data.Nonce)
	a.lg = lg
	return nil
}

// OperatorData is the persisted class-wide operator approval. A true entry
// lets the operator move any nonce of the class without touching per-nonce
// allowances.
type OperatorData struct {
	Owner    common.Address
	Operator common.Address
	Class    ClassID
	Approved bool
}

type OperatorObject struct {
	key  storeKey
	data OperatorData

	lg *Ledger
}

func newOperatorObject(owner, operator common.Address, class ClassID, lg *Ledger) *OperatorObject {
	return &OperatorObject{
		key: operatorKey(owner, operator, class),
		data: OperatorData{
			Owner:    owner,
			Operator: operator,
			Class:    class,
		},
		lg: lg,
	}
}

func (op *OperatorObject) GetApproved() bool {
	return op.data.Approved
}

func (op *OperatorObject) SetApproved(approved bool) {
	op.lg.journal.append(&operatorChange{
		key:  &op.key,
		prev: op.data.Approved,
	})
	op.data.Approved = approved
}

func (op *OperatorObject) setApproved(approved bool) {
	op.data.Approved = approved
}

func (op *OperatorObject) Encode() ([]byte, error) {
	return op.data.MarshalMsg(nil)
}

func (op *OperatorObject) Decode(b []byte, lg *Ledger) error {
	var data OperatorData
	_, err := data.UnmarshalMsg(b)
	if err != nil {
		return err
	}
	op.data = data
	op.key = operatorKey(data.Owner, data.Operator, data.Class)
	op.lg = lg
	return nil
}

/*
	marshaller part. written by hand, do not use msgp generating.
*/

func (a *AllowanceData) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, a.Msgsize())
	o, err = a.Owner.MarshalMsg(o)
	if err != nil {
		return
	}
	o, err = a.Spender.MarshalMsg(o)
	if err != nil {
		return
	}
	o = msgp.AppendUint64(o, uint64(a.Class))
	o = msgp.AppendUint64(o, uint64(a.Nonce))
	return a.Amount.MarshalMsg(o)
}

func (a *AllowanceData) UnmarshalMsg(bts []byte) (o []byte, err error) {
	o = bts
	o, err = a.Owner.UnmarshalMsg(o)
	if err != nil {
		return
	}
	o, err = a.Spender.UnmarshalMsg(o)
	if err != nil {
		return
	}
	var v uint64
	v, o, err = msgp.ReadUint64Bytes(o)
	if err != nil {
		return
	}
	a.Class = ClassID(v)
	v, o, err = msgp.ReadUint64Bytes(o)
	if err != nil {
		return
	}
	a.Nonce = NonceID(v)
	a.Amount = math.NewBigInt(0)
	return a.Amount.UnmarshalMsg(o)
}

func (a *AllowanceData) Msgsize() int {
	return a.Owner.Msgsize() + a.Spender.Msgsize() + 2*msgp.Uint64Size + a.Amount.Msgsize()
}

func (op *OperatorData) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, op.Msgsize())
	o, err = op.Owner.MarshalMsg(o)
	if err != nil {
		return
	}
	o, err = op.Operator.MarshalMsg(o)
	if err != nil {
		return
	}
	o = msgp.AppendUint64(o, uint64(op.Class))
	o = msgp.AppendBool(o, op.Approved)
	return o, nil
}

func (op *OperatorData) UnmarshalMsg(bts []byte) (o []byte, err error) {
	o = bts
	o, err = op.Owner.UnmarshalMsg(o)
	if err != nil {
		return
	}
	o, err = op.Operator.UnmarshalMsg(o)
	if err != nil {
		return
	}
	var v uint64
	v, o, err = msgp.ReadUint64Bytes(o)
	if err != nil {
		return
	}
	op.Class = ClassID(v)
	op.Approved, o, err = msgp.ReadBoolBytes(o)
	return o, err
}

func (op *OperatorData) Msgsize() int {
	return op.Owner.Msgsize() + op.Operator.Msgsize() + msgp.Uint64Size + msgp.BoolSize
}
