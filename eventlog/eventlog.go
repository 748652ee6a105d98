// Package eventlog persists every ledger event under a monotonic sequence
// number, so that clients can replay history and follow the tail.
package eventlog

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/annchain/bondledger/bonddb"
	"github.com/annchain/bondledger/common"
	"github.com/annchain/bondledger/common/math"
	"github.com/annchain/bondledger/eventbus"
	"github.com/annchain/bondledger/ledger"
	"github.com/annchain/gcache"
	log "github.com/sirupsen/logrus"
	"github.com/tinylib/msgp/msgp"
	"go.uber.org/atomic"
)

var (
	prefixEventKey = []byte("el")
	tailKey        = []byte("elt")
)

func eventKey(seq uint64) []byte {
	key := make([]byte, len(prefixEventKey)+8)
	copy(key, prefixEventKey)
	binary.BigEndian.PutUint64(key[len(prefixEventKey):], seq)
	return key
}

// EventRecord is the persisted form of one ledger event. Kind tells which
// fields carry meaning; approval records use From for the owner.
type EventRecord struct {
	Seq      uint64             `json:"seq"`
	Kind     eventbus.EventType `json:"kind"`
	KindName string             `json:"kind_name"`
	Time     int64              `json:"time"`
	Operator common.Address     `json:"operator"`
	From     common.Address     `json:"from"`
	To       common.Address     `json:"to"`
	Class    ledger.ClassID     `json:"class"`
	Nonce    ledger.NonceID     `json:"nonce"`
	Amount   *math.BigInt       `json:"amount"`
	Approved bool               `json:"approved"`
}

// RecordFromEvent converts a routed ledger event. Returns nil for event
// types the log does not track.
func RecordFromEvent(ev eventbus.Event) *EventRecord {
	rec := &EventRecord{
		Kind:   ev.GetEventType(),
		Time:   time.Now().Unix(),
		Amount: math.NewBigInt(0),
	}
	switch e := ev.(type) {
	case *ledger.TransferEvent:
		rec.Operator = e.Operator
		rec.From = e.From
		rec.To = e.To
		rec.Class = e.Class
		rec.Nonce = e.Nonce
		rec.Amount = e.Amount
	case *ledger.IssueEvent:
		rec.Operator = e.Operator
		rec.To = e.To
		rec.Class = e.Class
		rec.Nonce = e.Nonce
		rec.Amount = e.Amount
	case *ledger.RedeemEvent:
		rec.Operator = e.Operator
		rec.From = e.From
		rec.Class = e.Class
		rec.Nonce = e.Nonce
		rec.Amount = e.Amount
	case *ledger.BurnEvent:
		rec.Operator = e.Operator
		rec.From = e.From
		rec.Class = e.Class
		rec.Nonce = e.Nonce
		rec.Amount = e.Amount
	case *ledger.ApprovalForEvent:
		rec.Operator = e.Operator
		rec.From = e.Owner
		rec.Class = e.Class
		rec.Approved = e.Approved
	default:
		return nil
	}
	rec.KindName = ledger.EventTypeName(rec.Kind)
	return rec
}

type EventLogConfig struct {
	CacheMaxSize           int
	CacheExpirationSeconds int
}

func DefaultEventLogConfig() EventLogConfig {
	return EventLogConfig{
		CacheMaxSize:           4096,
		CacheExpirationSeconds: 300,
	}
}

// EventLog appends records to the store and serves reads through an LRU
// cache. Appends also fan out to Downstream when one is wired.
type EventLog struct {
	Config     EventLogConfig
	Downstream chan<- *EventRecord

	db    bonddb.Database
	seq   *atomic.Uint64
	cache gcache.Cache
}

func NewEventLog(conf EventLogConfig, db bonddb.Database) (*EventLog, error) {
	el := &EventLog{
		Config: conf,
		db:     db,
		seq:    atomic.NewUint64(0),
	}
	el.cache = gcache.New(conf.CacheMaxSize).LRU().
		Expiration(time.Second * time.Duration(conf.CacheExpirationSeconds)).LoaderFunc(el.load).Build()

	data, err := db.Get(tailKey)
	if err != nil {
		return nil, fmt.Errorf("read event log tail: %v", err)
	}
	if len(data) == 8 {
		el.seq.Store(binary.BigEndian.Uint64(data))
	}
	return el, nil
}

// Tail returns the sequence number of the newest record, 0 when empty.
func (el *EventLog) Tail() uint64 {
	return el.seq.Load()
}

func (el *EventLog) GetBenchmarks() map[string]interface{} {
	return map[string]interface{}{
		"tail": el.Tail(),
	}
}

// Append stores rec under the next sequence number, starting at 1.
func (el *EventLog) Append(rec *EventRecord) error {
	rec.Seq = el.seq.Inc()
	data, err := rec.MarshalMsg(nil)
	if err != nil {
		return fmt.Errorf("encode event %d: %v", rec.Seq, err)
	}
	if err := el.db.Put(eventKey(rec.Seq), data); err != nil {
		return fmt.Errorf("write event %d: %v", rec.Seq, err)
	}
	tail := make([]byte, 8)
	binary.BigEndian.PutUint64(tail, rec.Seq)
	if err := el.db.Put(tailKey, tail); err != nil {
		return fmt.Errorf("write event log tail: %v", err)
	}
	if err := el.cache.Set(rec.Seq, rec); err != nil {
		log.WithError(err).Error("setting event cache")
	}
	return nil
}

// Get returns the record under seq.
func (el *EventLog) Get(seq uint64) (*EventRecord, error) {
	v, err := el.cache.Get(seq)
	if err != nil {
		return nil, err
	}
	return v.(*EventRecord), nil
}

// Range returns up to count records starting at from. It stops early at
// the tail.
func (el *EventLog) Range(from uint64, count int) ([]*EventRecord, error) {
	if from == 0 {
		from = 1
	}
	tail := el.Tail()
	records := make([]*EventRecord, 0, count)
	for seq := from; seq <= tail && len(records) < count; seq++ {
		rec, err := el.Get(seq)
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (el *EventLog) load(key interface{}) (interface{}, error) {
	seq := key.(uint64)
	data, err := el.db.Get(eventKey(seq))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, gcache.KeyNotFoundError
	}
	rec := &EventRecord{}
	if _, err := rec.UnmarshalMsg(data); err != nil {
		return nil, fmt.Errorf("decode event %d: %v", seq, err)
	}
	return rec, nil
}

/*
	eventbus handler part
*/

func (el *EventLog) Name() string {
	return "EventLog"
}

func (el *EventLog) HandlerDescription(t eventbus.EventType) string {
	return fmt.Sprintf("persist %s events", ledger.EventTypeName(t))
}

// HandleEvent appends every routed ledger event and forwards the
// sequenced record downstream.
func (el *EventLog) HandleEvent(ev eventbus.Event) {
	rec := RecordFromEvent(ev)
	if rec == nil {
		log.WithField("type", ev.GetEventType()).Warn("unknown event type, not logging")
		return
	}
	if err := el.Append(rec); err != nil {
		log.WithError(err).WithField("type", rec.KindName).Error("append event")
		return
	}
	if el.Downstream != nil {
		select {
		case el.Downstream <- rec:
		default:
			log.WithField("seq", rec.Seq).Warn("downstream is congested, dropping push")
		}
	}
}

/*
	marshaller part. written by hand, do not use msgp generating.
*/

func (r *EventRecord) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, r.Msgsize())
	o = msgp.AppendUint64(o, r.Seq)
	o = msgp.AppendByte(o, byte(r.Kind))
	o = msgp.AppendString(o, r.KindName)
	o = msgp.AppendInt64(o, r.Time)
	for _, addr := range []common.Address{r.Operator, r.From, r.To} {
		o, err = addr.MarshalMsg(o)
		if err != nil {
			return
		}
	}
	o = msgp.AppendUint64(o, uint64(r.Class))
	o = msgp.AppendUint64(o, uint64(r.Nonce))
	o, err = r.Amount.MarshalMsg(o)
	if err != nil {
		return
	}
	o = msgp.AppendBool(o, r.Approved)
	return o, nil
}

func (r *EventRecord) UnmarshalMsg(bts []byte) (o []byte, err error) {
	o = bts
	r.Seq, o, err = msgp.ReadUint64Bytes(o)
	if err != nil {
		return
	}
	var kind byte
	kind, o, err = msgp.ReadByteBytes(o)
	if err != nil {
		return
	}
	r.Kind = eventbus.EventType(kind)
	r.KindName, o, err = msgp.ReadStringBytes(o)
	if err != nil {
		return
	}
	r.Time, o, err = msgp.ReadInt64Bytes(o)
	if err != nil {
		return
	}
	for _, addr := range []*common.Address{&r.Operator, &r.From, &r.To} {
		o, err = addr.UnmarshalMsg(o)
		if err != nil {
			return
		}
	}
	var v uint64
	v, o, err = msgp.ReadUint64Bytes(o)
	if err != nil {
		return
	}
	r.Class = ledger.ClassID(v)
	v, o, err = msgp.ReadUint64Bytes(o)
	if err != nil {
		return
	}
	r.Nonce = ledger.NonceID(v)
	r.Amount = math.NewBigInt(0)
	o, err = r.Amount.UnmarshalMsg(o)
	if err != nil {
		return
	}
	r.Approved, o, err = msgp.ReadBoolBytes(o)
	return o, err
}

func (r *EventRecord) Msgsize() int {
	return msgp.Uint64Size + msgp.ByteSize +
		msgp.StringPrefixSize + len(r.KindName) + msgp.Int64Size +
		r.Operator.Msgsize() + r.From.Msgsize() + r.To.Msgsize() +
		2*msgp.Uint64Size + r.Amount.Msgsize() + msgp.BoolSize
}
