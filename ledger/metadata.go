package ledger

import (
	"github.com/annchain/bondledger/common"
	"github.com/annchain/bondledger/common/math"
	"github.com/tinylib/msgp/msgp"
)

// Value is one typed metadata slot of a class or nonce. Only the field
// matching the slot's meaning is set; the others keep zero values.
type Value struct {
	Str  string         `json:"string_value"`
	Num  *math.BigInt   `json:"numeric_value"`
	Addr common.Address `json:"address_value"`
	Bool bool           `json:"bool_value"`
}

func StringValue(s string) Value {
	return Value{Str: s, Num: math.NewBigInt(0)}
}

func NumValue(n *math.BigInt) Value {
	return Value{Num: n}
}

func AddrValue(a common.Address) Value {
	return Value{Num: math.NewBigInt(0), Addr: a}
}

func BoolValue(b bool) Value {
	return Value{Num: math.NewBigInt(0), Bool: b}
}

func copyValues(values []Value) []Value {
	out := make([]Value, len(values))
	for i, v := range values {
		out[i] = v
		if v.Num != nil {
			out[i].Num = v.Num.Clone()
		} else {
			out[i].Num = math.NewBigInt(0)
		}
	}
	return out
}

func copyDescriptors(descriptors []string) []string {
	out := make([]string, len(descriptors))
	copy(out, descriptors)
	return out
}

// ClassData is the persisted, immutable metadata of a bond class.
type ClassData struct {
	Class       ClassID
	Values      []Value
	Descriptors []string
}

type ClassObject struct {
	key  storeKey
	data ClassData

	lg *Ledger
}

func newClassObject(class ClassID, values []Value, descriptors []string, lg *Ledger) *ClassObject {
	return &ClassObject{
		key: classKey(class),
		data: ClassData{
			Class:       class,
			Values:      copyValues(values),
			Descriptors: copyDescriptors(descriptors),
		},
		lg: lg,
	}
}

func (c *ClassObject) GetValues() []Value {
	return copyValues(c.data.Values)
}

func (c *ClassObject) GetDescriptors() []string {
	return copyDescriptors(c.data.Descriptors)
}

func (c *ClassObject) Encode() ([]byte, error) {
	return c.data.MarshalMsg(nil)
}

func (c *ClassObject) Decode(b []byte, lg *Ledger) error {
	var data ClassData
	_, err := data.UnmarshalMsg(b)
	if err != nil {
		return err
	}
	c.data = data
	c.key = classKey(data.Class)
	c.lg = lg
	return nil
}

// NonceData is the persisted, immutable metadata of one issue batch.
type NonceData struct {
	Class       ClassID
	Nonce       NonceID
	Values      []Value
	Descriptors []string
}

type NonceObject struct {
	key  storeKey
	data NonceData

	lg *Ledger
}

func newNonceObject(class ClassID, nonce NonceID, values []Value, descriptors []string, lg *Ledger) *NonceObject {
	return &NonceObject{
		key: nonceKey(class, nonce),
		data: NonceData{
			Class:       class,
			Nonce:       nonce,
			Values:      copyValues(values),
			Descriptors: copyDescriptors(descriptors),
		},
		lg: lg,
	}
}

func (n *NonceObject) GetValues() []Value {
	return copyValues(n.data.Values)
}

func (n *NonceObject) GetDescriptors() []string {
	return copyDescriptors(n.data.Descriptors)
}

// ValueOf returns the value slot named by descriptor.
func (n *NonceObject) ValueOf(descriptor string) (Value, bool) {
	for i, d := range n.data.Descriptors {
		if d == descriptor && i < len(n.data.Values) {
			v := n.data.Values[i]
			if v.Num != nil {
				v.Num = v.Num.Clone()
			} else {
				v.Num = math.NewBigInt(0)
			}
			return v, true
		}
	}
	return Value{}, false
}

func (n *NonceObject) Encode() ([]byte, error) {
	return n.data.MarshalMsg(nil)
}

func (n *NonceObject) Decode(b []byte, lg *Ledger) error {
	var data NonceData
	_, err := data.UnmarshalMsg(b)
	if err != nil {
		return err
	}
	n.data = data
	n.key = nonceKey(data.Class, data.Nonce)
	n.lg = lg
	return nil
}

/*
	marshaller part. written by hand, do not use msgp generating.
*/

func (v *Value) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, v.Msgsize())
	o = msgp.AppendString(o, v.Str)
	num := v.Num
	if num == nil {
		num = math.NewBigInt(0)
	}
	o, err = num.MarshalMsg(o)
	if err != nil {
		return
	}
	o, err = v.Addr.MarshalMsg(o)
	if err != nil {
		return
	}
	o = msgp.AppendBool(o, v.Bool)
	return o, nil
}

func (v *Value) UnmarshalMsg(bts []byte) (o []byte, err error) {
	o = bts
	v.Str, o, err = msgp.ReadStringBytes(o)
	if err != nil {
		return
	}
	v.Num = math.NewBigInt(0)
	o, err = v.Num.UnmarshalMsg(o)
	if err != nil {
		return
	}
	o, err = v.Addr.UnmarshalMsg(o)
	if err != nil {
		return
	}
	v.Bool, o, err = msgp.ReadBoolBytes(o)
	return o, err
}

func (v *Value) Msgsize() int {
	num := v.Num
	if num == nil {
		num = math.NewBigInt(0)
	}
	return msgp.StringPrefixSize + len(v.Str) + num.Msgsize() + v.Addr.Msgsize() + msgp.BoolSize
}

func marshalValues(o []byte, values []Value) ([]byte, error) {
	var err error
	o = msgp.AppendArrayHeader(o, uint32(len(values)))
	for i := range values {
		o, err = values[i].MarshalMsg(o)
		if err != nil {
			return o, err
		}
	}
	return o, nil
}

func unmarshalValues(bts []byte) (values []Value, o []byte, err error) {
	var sz uint32
	sz, o, err = msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return
	}
	values = make([]Value, sz)
	for i := uint32(0); i < sz; i++ {
		o, err = values[i].UnmarshalMsg(o)
		if err != nil {
			return
		}
	}
	return values, o, nil
}

func valuesMsgsize(values []Value) int {
	s := msgp.ArrayHeaderSize
	for i := range values {
		s += values[i].Msgsize()
	}
	return s
}

func marshalDescriptors(o []byte, descriptors []string) []byte {
	o = msgp.AppendArrayHeader(o, uint32(len(descriptors)))
	for _, d := range descriptors {
		o = msgp.AppendString(o, d)
	}
	return o
}

func unmarshalDescriptors(bts []byte) (descriptors []string, o []byte, err error) {
	var sz uint32
	sz, o, err = msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return
	}
	descriptors = make([]string, sz)
	for i := uint32(0); i < sz; i++ {
		descriptors[i], o, err = msgp.ReadStringBytes(o)
		if err != nil {
			return
		}
	}
	return descriptors, o, nil
}

func descriptorsMsgsize(descriptors []string) int {
	s := msgp.ArrayHeaderSize
	for _, d := range descriptors {
		s += msgp.StringPrefixSize + len(d)
	}
	return s
}

func (c *ClassData) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, c.Msgsize())
	o = msgp.AppendUint64(o, uint64(c.Class))
	o, err = marshalValues(o, c.Values)
	if err != nil {
		return
	}
	o = marshalDescriptors(o, c.Descriptors)
	return o, nil
}

func (c *ClassData) UnmarshalMsg(bts []byte) (o []byte, err error) {
	o = bts
	var v uint64
	v, o, err = msgp.ReadUint64Bytes(o)
	if err != nil {
		return
	}
	c.Class = ClassID(v)
	c.Values, o, err = unmarshalValues(o)
	if err != nil {
		return
	}
	c.Descriptors, o, err = unmarshalDescriptors(o)
	return o, err
}

func (c *ClassData) Msgsize() int {
	return msgp.Uint64Size + valuesMsgsize(c.Values) + descriptorsMsgsize(c.Descriptors)
}

func (n *NonceData) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, n.Msgsize())
	o = msgp.AppendUint64(o, uint64(n.Class))
	o = msgp.AppendUint64(o, uint64(n.Nonce))
	o, err = marshalValues(o, n.Values)
	if err != nil {
		return
	}
	o = marshalDescriptors(o, n.Descriptors)
	return o, nil
}

func (n *NonceData) UnmarshalMsg(bts []byte) (o []byte, err error) {
	o = bts
	var v uint64
	v, o, err = msgp.ReadUint64Bytes(o)
	if err != nil {
		return
	}
	n.Class = ClassID(v)
	v, o, err = msgp.ReadUint64Bytes(o)
	if err != nil {
		return
	}
	n.Nonce = NonceID(v)
	n.Values, o, err = unmarshalValues(o)
	if err != nil {
		return
	}
	n.Descriptors, o, err = unmarshalDescriptors(o)
	return o, err
}

func (n *NonceData) Msgsize() int {
	return 2*msgp.Uint64Size + valuesMsgsize(n.Values) + descriptorsMsgsize(n.Descriptors)
}
