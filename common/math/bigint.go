package math

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/tinylib/msgp/msgp"
)

// DO NOT USE MSGP FOR AUTO-GENERATING HERE.
// The marshaller part below is written by hand to adapt big.Int.

// A BigInt represents a signed multi-precision integer.
type BigInt struct {
	Value *big.Int
}

// NewBigInt allocates and returns a new BigInt set to x.
func NewBigInt(x int64) *BigInt {
	return &BigInt{big.NewInt(x)}
}

// NewBigIntFromString allocates and returns a new BigInt parsed from x.
func NewBigIntFromString(x string, base int) (*BigInt, bool) {
	v, success := big.NewInt(0).SetString(x, base)
	if !success {
		return nil, false
	}
	return &BigInt{v}, success
}

// NewBigIntFromBigInt allocates and returns a new BigInt set to x.
func NewBigIntFromBigInt(x *big.Int) *BigInt {
	return &BigInt{big.NewInt(0).Set(x)}
}

// GetBytes returns the absolute value of x as a big-endian byte slice.
func (bi *BigInt) GetBytes() []byte {
	return bi.Value.Bytes()
}

// String returns the value of x as a formatted decimal string.
func (bi *BigInt) String() string {
	return bi.Value.String()
}

// GetInt64 returns the int64 representation of x. If x cannot be represented in
// an int64, the result is undefined.
func (bi *BigInt) GetInt64() int64 {
	return bi.Value.Int64()
}

// SetInt64 sets the big int to x.
func (bi *BigInt) SetInt64(x int64) {
	bi.Value.SetInt64(x)
}

// Sign returns:
//
//	-1 if x <  0
//	 0 if x == 0
//	+1 if x >  0
//
func (bi *BigInt) Sign() int {
	return bi.Value.Sign()
}

// Add returns the sum bi+increment as a new BigInt. bi is not modified.
func (bi *BigInt) Add(increment *BigInt) *BigInt {
	return &BigInt{big.NewInt(0).Add(bi.Value, increment.Value)}
}

// Sub returns the difference bi-decrement as a new BigInt. bi is not modified.
func (bi *BigInt) Sub(decrement *BigInt) *BigInt {
	return &BigInt{big.NewInt(0).Sub(bi.Value, decrement.Value)}
}

// Cmp compares bi and y and returns -1, 0 or +1.
func (bi *BigInt) Cmp(y *BigInt) int {
	return bi.Value.Cmp(y.Value)
}

// Clone returns a deep copy of bi.
func (bi *BigInt) Clone() *BigInt {
	return NewBigIntFromBigInt(bi.Value)
}

// SetString sets the big int to x.
//
// The string prefix determines the actual conversion base. A prefix of "0x" or
// "0X" selects base 16; the "0" prefix selects base 8, and a "0b" or "0B" prefix
// selects base 2. Otherwise the selected base is 10.
func (bi *BigInt) SetString(x string, base int) {
	if bi.Value == nil {
		bi.Value = big.NewInt(0)
	}
	bi.Value.SetString(x, base)
}

// GetString returns the value of x as a formatted string in some number base.
func (bi *BigInt) GetString(base int) string {
	return bi.Value.Text(base)
}

func (bi *BigInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(bi.Value.String())
}

func (bi *BigInt) UnmarshalJSON(b []byte) error {
	var val string
	err := json.Unmarshal(b, &val)
	if err != nil {
		// allow bare numbers as well
		val = string(b)
	}
	v, success := big.NewInt(0).SetString(val, 10)
	if !success {
		return fmt.Errorf("invalid big integer: %s", val)
	}
	bi.Value = v
	return nil
}

/*
	marshaller part. written by hand, do not use msgp generating.
	layout: sign byte (0/1) followed by the absolute value bytes.
*/

func (bi *BigInt) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, bi.Msgsize())
	var sign byte
	if bi.Value.Sign() < 0 {
		sign = 1
	}
	o = msgp.AppendByte(o, sign)
	o = msgp.AppendBytes(o, bi.Value.Bytes())
	return o, nil
}

func (bi *BigInt) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var sign byte
	sign, o, err = msgp.ReadByteBytes(bts)
	if err != nil {
		return
	}
	var b []byte
	b, o, err = msgp.ReadBytesBytes(o, nil)
	if err != nil {
		return
	}
	v := big.NewInt(0).SetBytes(b)
	if sign == 1 {
		v.Neg(v)
	}
	bi.Value = v
	return o, nil
}

func (bi *BigInt) Msgsize() int {
	return msgp.ByteSize + msgp.BytesPrefixSize + len(bi.Value.Bytes())
}
