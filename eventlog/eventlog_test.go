package eventlog_test

import (
	"testing"

	"github.com/annchain/bondledger/bonddb"
	"github.com/annchain/bondledger/common"
	"github.com/annchain/bondledger/common/math"
	"github.com/annchain/bondledger/eventbus"
	"github.com/annchain/bondledger/eventlog"
	"github.com/annchain/bondledger/ledger"
	"github.com/stretchr/testify/assert"
)

var (
	logAlice = common.HexToAddress("0x11aa11aa11aa11aa11aa11aa11aa11aa11aa11aa")
	logBob   = common.HexToAddress("0x22bb22bb22bb22bb22bb22bb22bb22bb22bb22bb")
)

type weirdEvent struct{}

func (weirdEvent) GetEventType() eventbus.EventType {
	return eventbus.EventType(99)
}

func newTestLog(t *testing.T) (*eventlog.EventLog, *bonddb.MemDatabase) {
	db := bonddb.NewMemDatabase()
	el, err := eventlog.NewEventLog(eventlog.DefaultEventLogConfig(), db)
	if err != nil {
		t.Fatalf("new event log: %v", err)
	}
	return el, db
}

func transferEvent(amount int64) *ledger.TransferEvent {
	return &ledger.TransferEvent{
		Operator: logAlice,
		From:     logAlice,
		To:       logBob,
		Class:    1,
		Nonce:    2,
		Amount:   math.NewBigInt(amount),
	}
}

func TestEventLogAppend(t *testing.T) {
	el, _ := newTestLog(t)
	assert.Equal(t, uint64(0), el.Tail())

	for i := int64(1); i <= 3; i++ {
		rec := eventlog.RecordFromEvent(transferEvent(i * 100))
		assert.NoError(t, el.Append(rec))
		assert.Equal(t, uint64(i), rec.Seq)
	}
	assert.Equal(t, uint64(3), el.Tail())

	rec, err := el.Get(2)
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), rec.Seq)
	assert.Equal(t, "transfer", rec.KindName)
	assert.Equal(t, logBob, rec.To)
	assert.Equal(t, int64(200), rec.Amount.GetInt64())
}

func TestEventLogReopen(t *testing.T) {
	el, db := newTestLog(t)
	rec := eventlog.RecordFromEvent(transferEvent(500))
	assert.NoError(t, el.Append(rec))

	again, err := eventlog.NewEventLog(eventlog.DefaultEventLogConfig(), db)
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), again.Tail())

	got, err := again.Get(1)
	assert.NoError(t, err)
	assert.Equal(t, logAlice, got.Operator)
	assert.Equal(t, ledger.TransferEventType, got.Kind)
	assert.Equal(t, int64(500), got.Amount.GetInt64())

	next := eventlog.RecordFromEvent(transferEvent(600))
	assert.NoError(t, again.Append(next))
	assert.Equal(t, uint64(2), next.Seq)
}

func TestEventLogRange(t *testing.T) {
	el, _ := newTestLog(t)
	for i := int64(1); i <= 5; i++ {
		assert.NoError(t, el.Append(eventlog.RecordFromEvent(transferEvent(i))))
	}

	recs, err := el.Range(2, 2)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(recs))
	assert.Equal(t, uint64(2), recs[0].Seq)
	assert.Equal(t, uint64(3), recs[1].Seq)

	// from 0 starts at the first record
	recs, err = el.Range(0, 100)
	assert.NoError(t, err)
	assert.Equal(t, 5, len(recs))

	// beyond the tail
	recs, err = el.Range(9, 3)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(recs))
}

func TestEventLogGetMissing(t *testing.T) {
	el, _ := newTestLog(t)
	_, err := el.Get(42)
	assert.Error(t, err)
}

func TestRecordFromEvent(t *testing.T) {
	rec := eventlog.RecordFromEvent(&ledger.ApprovalForEvent{
		Owner:    logAlice,
		Operator: logBob,
		Class:    7,
		Approved: true,
	})
	assert.Equal(t, ledger.ApprovalForEventType, rec.Kind)
	assert.Equal(t, "approval", rec.KindName)
	assert.Equal(t, logAlice, rec.From)
	assert.Equal(t, logBob, rec.Operator)
	assert.Equal(t, ledger.ClassID(7), rec.Class)
	assert.True(t, rec.Approved)
	assert.Equal(t, int64(0), rec.Amount.GetInt64())

	assert.Nil(t, eventlog.RecordFromEvent(weirdEvent{}))
}

func TestEventLogHandleEvent(t *testing.T) {
	el, _ := newTestLog(t)
	downstream := make(chan *eventlog.EventRecord, 4)
	el.Downstream = downstream

	el.HandleEvent(transferEvent(900))
	assert.Equal(t, uint64(1), el.Tail())

	select {
	case rec := <-downstream:
		assert.Equal(t, uint64(1), rec.Seq)
		assert.Equal(t, int64(900), rec.Amount.GetInt64())
	default:
		t.Fatal("no record forwarded downstream")
	}

	// unknown events are dropped, not appended
	el.HandleEvent(weirdEvent{})
	assert.Equal(t, uint64(1), el.Tail())
}

func TestEventRecordMarshal(t *testing.T) {
	rec := eventlog.RecordFromEvent(transferEvent(12345))
	rec.Seq = 8
	data, err := rec.MarshalMsg(nil)
	assert.NoError(t, err)

	var back eventlog.EventRecord
	left, err := back.UnmarshalMsg(data)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(left))
	assert.Equal(t, rec.Seq, back.Seq)
	assert.Equal(t, rec.Kind, back.Kind)
	assert.Equal(t, rec.KindName, back.KindName)
	assert.Equal(t, rec.From, back.From)
	assert.Equal(t, rec.To, back.To)
	assert.Equal(t, rec.Class, back.Class)
	assert.Equal(t, rec.Nonce, back.Nonce)
	assert.Equal(t, int64(12345), back.Amount.GetInt64())
}
