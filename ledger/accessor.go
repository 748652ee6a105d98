package ledger

import (
	"encoding/binary"
	"fmt"

	"github.com/annchain/bondledger/bonddb"
	"github.com/annchain/bondledger/common"
)

var (
	prefixHoldingKey   = []byte("hl")
	prefixSupplyKey    = []byte("sp")
	prefixAllowanceKey = []byte("al")
	prefixOperatorKey  = []byte("op")
	prefixClassKey     = []byte("cl")
	prefixNonceKey     = []byte("nc")

	prefixGenesisDoneKey = []byte("genesisdone")
)

func appendUint64(key []byte, v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return append(key, buf[:]...)
}

func holdingKey(owner common.Address, class ClassID, nonce NonceID) storeKey {
	key := make([]byte, 0, len(prefixHoldingKey)+common.AddressLength+16)
	key = append(key, prefixHoldingKey...)
	key = append(key, owner.ToBytes()...)
	key = appendUint64(key, uint64(class))
	key = appendUint64(key, uint64(nonce))
	return storeKey(key)
}

func supplyKey(class ClassID, nonce NonceID) storeKey {
	key := make([]byte, 0, len(prefixSupplyKey)+16)
	key = append(key, prefixSupplyKey...)
	key = appendUint64(key, uint64(class))
	key = appendUint64(key, uint64(nonce))
	return storeKey(key)
}

func allowanceKey(owner, spender common.Address, class ClassID, nonce NonceID) storeKey {
	key := make([]byte, 0, len(prefixAllowanceKey)+2*common.AddressLength+16)
	key = append(key, prefixAllowanceKey...)
	key = append(key, owner.ToBytes()...)
	key = append(key, spender.ToBytes()...)
	key = appendUint64(key, uint64(class))
	key = appendUint64(key, uint64(nonce))
	return storeKey(key)
}

func operatorKey(owner, operator common.Address, class ClassID) storeKey {
	key := make([]byte, 0, len(prefixOperatorKey)+2*common.AddressLength+8)
	key = append(key, prefixOperatorKey...)
	key = append(key, owner.ToBytes()...)
	key = append(key, operator.ToBytes()...)
	key = appendUint64(key, uint64(class))
	return storeKey(key)
}

func classKey(class ClassID) storeKey {
	key := make([]byte, 0, len(prefixClassKey)+8)
	key = append(key, prefixClassKey...)
	key = appendUint64(key, uint64(class))
	return storeKey(key)
}

func nonceKey(class ClassID, nonce NonceID) storeKey {
	key := make([]byte, 0, len(prefixNonceKey)+16)
	key = append(key, prefixNonceKey...)
	key = appendUint64(key, uint64(class))
	key = appendUint64(key, uint64(nonce))
	return storeKey(key)
}

func genesisDoneKey() []byte {
	return prefixGenesisDoneKey
}

// Accessor reads and writes ledger records in the backing store.
type Accessor struct {
	db bonddb.Database
}

func NewAccessor(db bonddb.Database) *Accessor {
	return &Accessor{db: db}
}

// LoadHolding reads one holding record. Returns nil if there is none.
func (da *Accessor) LoadHolding(key storeKey, lg *Ledger) (*HoldingObject, error) {
	data, err := da.db.Get([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("load holding: %v", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	h := &HoldingObject{}
	if err := h.Decode(data, lg); err != nil {
		return nil, fmt.Errorf("decode holding: %v", err)
	}
	return h, nil
}

// LoadSupply reads the supply record of a position. Returns nil if there is none.
func (da *Accessor) LoadSupply(key storeKey, lg *Ledger) (*SupplyObject, error) {
	data, err := da.db.Get([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("load supply: %v", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	s := &SupplyObject{}
	if err := s.Decode(data, lg); err != nil {
		return nil, fmt.Errorf("decode supply: %v", err)
	}
	return s, nil
}

// LoadAllowance reads one allowance record. Returns nil if there is none.
func (da *Accessor) LoadAllowance(key storeKey, lg *Ledger) (*AllowanceObject, error) {
	data, err := da.db.Get([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("load allowance: %v", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	a := &AllowanceObject{}
	if err := a.Decode(data, lg); err != nil {
		return nil, fmt.Errorf("decode allowance: %v", err)
	}
	return a, nil
}

// LoadOperator reads one operator approval record. Returns nil if there is none.
func (da *Accessor) LoadOperator(key storeKey, lg *Ledger) (*OperatorObject, error) {
	data, err := da.db.Get([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("load operator: %v", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	op := &OperatorObject{}
	if err := op.Decode(data, lg); err != nil {
		return nil, fmt.Errorf("decode operator: %v", err)
	}
	return op, nil
}

// LoadClass reads class metadata. Returns nil if the class was never registered.
func (da *Accessor) LoadClass(key storeKey, lg *Ledger) (*ClassObject, error) {
	data, err := da.db.Get([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("load class: %v", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	c := &ClassObject{}
	if err := c.Decode(data, lg); err != nil {
		return nil, fmt.Errorf("decode class: %v", err)
	}
	return c, nil
}

// LoadNonce reads nonce metadata. Returns nil if the nonce was never registered.
func (da *Accessor) LoadNonce(key storeKey, lg *Ledger) (*NonceObject, error) {
	data, err := da.db.Get([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("load nonce: %v", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	n := &NonceObject{}
	if err := n.Decode(data, lg); err != nil {
		return nil, fmt.Errorf("decode nonce: %v", err)
	}
	return n, nil
}

// SaveRecord encodes rec and writes it under key.
func (da *Accessor) SaveRecord(key storeKey, rec Record) error {
	data, err := rec.Encode()
	if err != nil {
		return fmt.Errorf("encode record: %v", err)
	}
	return da.db.Put([]byte(key), data)
}

// ReadGenesisDone reports whether genesis state was already applied.
func (da *Accessor) ReadGenesisDone() bool {
	data, _ := da.db.Get(genesisDoneKey())
	return len(data) != 0
}

// WriteGenesisDone marks genesis state as applied.
func (da *Accessor) WriteGenesisDone() error {
	return da.db.Put(genesisDoneKey(), []byte{1})
}
