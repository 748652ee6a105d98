package ledger

import (
	"fmt"
	"sync"

	"github.com/annchain/bondledger/bonddb"
	"github.com/annchain/bondledger/common"
	"github.com/annchain/bondledger/common/math"
	"github.com/annchain/bondledger/eventbus"
	lru "github.com/hashicorp/golang-lru"
	log "github.com/sirupsen/logrus"
)

type LedgerConfig struct {
	// CleanCacheSize bounds the in-memory cache of records that are in
	// sync with the store. Dirty records are pinned outside this cache
	// until flushed.
	CleanCacheSize int
}

func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		CleanCacheSize: 65536,
	}
}

// Ledger is the bond token state machine. Balances are keyed by
// (owner, class, nonce), supplies per (class, nonce) with
// Total == Active+Redeemed+Burned, allowances per
// (owner, spender, class, nonce) and operator approvals per
// (owner, operator, class).
//
// Every write operation is a single atomic transition: it either fully
// applies and emits its event, or reverts through the journal and leaves
// no trace.
type Ledger struct {
	conf LedgerConfig

	accessor  *Accessor
	authority Authority
	progress  ProgressProvider
	bus       eventbus.EventBus

	// records is the working set: every record touched since its last
	// flush. cleans holds records that match the store. A key lives in at
	// most one of the two.
	records  map[storeKey]Record
	cleans   *lru.Cache
	dirtyset map[storeKey]struct{}

	// journal records every action changing ledger data, so a failed
	// operation can be reverted mid-way.
	journal     *journal
	snapshotSet []shot
	snapshotID  int

	// mu serializes all operations. Reads take the write lock too since
	// record loading moves entries between the caches.
	mu sync.RWMutex
}

type shot struct {
	shotid       int
	journalIndex int
}

func NewLedger(conf LedgerConfig, db bonddb.Database, authority Authority, progress ProgressProvider, bus eventbus.EventBus) (*Ledger, error) {
	if conf.CleanCacheSize <= 0 {
		conf.CleanCacheSize = DefaultLedgerConfig().CleanCacheSize
	}
	cleans, err := lru.New(conf.CleanCacheSize)
	if err != nil {
		return nil, err
	}
	if authority == nil {
		log.Warn("no authority wired, issuer operations will all be refused")
		authority = DenyAllAuthority{}
	}
	if progress == nil {
		progress = &RedemptionProgress{}
	}
	lg := &Ledger{
		conf:      conf,
		accessor:  NewAccessor(db),
		authority: authority,
		progress:  progress,
		bus:       bus,
		records:   make(map[storeKey]Record),
		cleans:    cleans,
		dirtyset:  make(map[storeKey]struct{}),
		journal:   newJournal(),
	}
	return lg, nil
}

func (lg *Ledger) Accessor() *Accessor {
	return lg.accessor
}

/*
	write operations
*/

// TransferFrom moves amount of (class, nonce) from from's balance to to's.
// The operator must be the holder itself, an approved class operator of
// the holder, or carry enough allowance; spending through an allowance
// decrements it, the operator path never does. A zero amount moves nothing
// but still emits the transfer event.
func (lg *Ledger) TransferFrom(operator, from, to common.Address, class ClassID, nonce NonceID, amount *math.BigInt) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	lg.mu.Lock()
	defer lg.mu.Unlock()

	snapshotID := lg.snapshot()
	if err := lg.doTransfer(operator, from, to, class, nonce, amount); err != nil {
		lg.revertToSnapshot(snapshotID)
		return err
	}
	lg.commitAndLog("transfer")
	lg.emit(&TransferEvent{
		Operator: operator,
		From:     from,
		To:       to,
		Class:    class,
		Nonce:    nonce,
		Amount:   amount.Clone(),
	})
	return nil
}

func (lg *Ledger) doTransfer(operator, from, to common.Address, class ClassID, nonce NonceID, amount *math.BigInt) error {
	if !operator.EqualTo(from) {
		approved, err := lg.isApprovedFor(from, operator, class)
		if err != nil {
			return err
		}
		if !approved {
			// fall back to the per-nonce allowance
			current, err := lg.allowanceOf(from, operator, class, nonce)
			if err != nil {
				return err
			}
			if current.Cmp(amount) < 0 {
				return ErrInsufficientAllowance
			}
			if amount.Sign() > 0 {
				obj, err := lg.getOrCreateAllowance(from, operator, class, nonce)
				if err != nil {
					return err
				}
				obj.SetAmount(current.Sub(amount))
			}
		}
	}

	balance, err := lg.balanceOf(from, class, nonce)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if amount.Sign() == 0 {
		return nil
	}

	fromObj, err := lg.getOrCreateHolding(from, class, nonce)
	if err != nil {
		return err
	}
	toObj, err := lg.getOrCreateHolding(to, class, nonce)
	if err != nil {
		return err
	}
	fromObj.SetAmount(fromObj.GetAmount().Sub(amount))
	toObj.SetAmount(toObj.GetAmount().Add(amount))
	return nil
}

// Issue mints amount of (class, nonce) to to's balance, growing Total and
// Active supply. Only an issuer of the class may issue, and only into a
// registered nonce.
func (lg *Ledger) Issue(operator, to common.Address, class ClassID, nonce NonceID, amount *math.BigInt) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	lg.mu.Lock()
	defer lg.mu.Unlock()

	if !lg.authority.CanManage(operator, class) {
		return ErrUnauthorizedIssuer
	}
	snapshotID := lg.snapshot()
	if err := lg.doIssue(to, class, nonce, amount); err != nil {
		lg.revertToSnapshot(snapshotID)
		return err
	}
	lg.commitAndLog("issue")
	lg.emit(&IssueEvent{
		Operator: operator,
		To:       to,
		Class:    class,
		Nonce:    nonce,
		Amount:   amount.Clone(),
	})
	return nil
}

func (lg *Ledger) doIssue(to common.Address, class ClassID, nonce NonceID, amount *math.BigInt) error {
	known, err := lg.hasNonce(class, nonce)
	if err != nil {
		return err
	}
	if !known {
		return ErrUnknownPosition
	}
	if amount.Sign() == 0 {
		return nil
	}
	toObj, err := lg.getOrCreateHolding(to, class, nonce)
	if err != nil {
		return err
	}
	supplyObj, err := lg.getOrCreateSupply(class, nonce)
	if err != nil {
		return err
	}
	toObj.SetAmount(toObj.GetAmount().Add(amount))
	supplyObj.AddIssued(amount)
	return nil
}

// Redeem takes amount out of from's balance and moves it from Active to
// Redeemed supply. Total supply is unchanged. Issuer-only; whether a bond
// is mature enough to redeem is the issuer's call, not the ledger's.
func (lg *Ledger) Redeem(operator, from common.Address, class ClassID, nonce NonceID, amount *math.BigInt) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	lg.mu.Lock()
	defer lg.mu.Unlock()

	if !lg.authority.CanManage(operator, class) {
		return ErrUnauthorizedIssuer
	}
	snapshotID := lg.snapshot()
	if err := lg.doRetire(from, class, nonce, amount, false); err != nil {
		lg.revertToSnapshot(snapshotID)
		return err
	}
	lg.commitAndLog("redeem")
	lg.emit(&RedeemEvent{
		Operator: operator,
		From:     from,
		Class:    class,
		Nonce:    nonce,
		Amount:   amount.Clone(),
	})
	return nil
}

// Burn destroys amount of from's balance, moving it from Active to Burned
// supply. Total supply is unchanged. Issuer-only.
func (lg *Ledger) Burn(operator, from common.Address, class ClassID, nonce NonceID, amount *math.BigInt) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	lg.mu.Lock()
	defer lg.mu.Unlock()

	if !lg.authority.CanManage(operator, class) {
		return ErrUnauthorizedIssuer
	}
	snapshotID := lg.snapshot()
	if err := lg.doRetire(from, class, nonce, amount, true); err != nil {
		lg.revertToSnapshot(snapshotID)
		return err
	}
	lg.commitAndLog("burn")
	lg.emit(&BurnEvent{
		Operator: operator,
		From:     from,
		Class:    class,
		Nonce:    nonce,
		Amount:   amount.Clone(),
	})
	return nil
}

// doRetire debits from and moves amount from Active supply to either
// Burned or Redeemed.
func (lg *Ledger) doRetire(from common.Address, class ClassID, nonce NonceID, amount *math.BigInt, burn bool) error {
	known, err := lg.hasNonce(class, nonce)
	if err != nil {
		return err
	}
	if !known {
		return ErrUnknownPosition
	}
	balance, err := lg.balanceOf(from, class, nonce)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if amount.Sign() == 0 {
		return nil
	}
	fromObj, err := lg.getOrCreateHolding(from, class, nonce)
	if err != nil {
		return err
	}
	supplyObj, err := lg.getOrCreateSupply(class, nonce)
	if err != nil {
		return err
	}
	fromObj.SetAmount(fromObj.GetAmount().Sub(amount))
	if burn {
		supplyObj.MoveToBurned(amount)
	} else {
		supplyObj.MoveToRedeemed(amount)
	}
	return nil
}

// Approve overwrites the allowance of spender on owner's
// (class, nonce) balance. Approvals replace the previous value, they never
// accumulate.
func (lg *Ledger) Approve(owner, spender common.Address, class ClassID, nonce NonceID, amount *math.BigInt) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	lg.mu.Lock()
	defer lg.mu.Unlock()

	snapshotID := lg.snapshot()
	obj, err := lg.getOrCreateAllowance(owner, spender, class, nonce)
	if err != nil {
		lg.revertToSnapshot(snapshotID)
		return err
	}
	obj.SetAmount(amount.Clone())
	lg.commitAndLog("approve")
	return nil
}

// BatchApprove applies Approve element-wise over three equal-length
// slices. A length mismatch fails the whole batch; nothing is applied.
func (lg *Ledger) BatchApprove(owner, spender common.Address, classes []ClassID, nonces []NonceID, amounts []*math.BigInt) error {
	if len(classes) != len(nonces) || len(nonces) != len(amounts) {
		return ErrLengthMismatch
	}
	for _, amount := range amounts {
		if err := checkAmount(amount); err != nil {
			return err
		}
	}
	lg.mu.Lock()
	defer lg.mu.Unlock()

	snapshotID := lg.snapshot()
	for i := range classes {
		obj, err := lg.getOrCreateAllowance(owner, spender, classes[i], nonces[i])
		if err != nil {
			lg.revertToSnapshot(snapshotID)
			return err
		}
		obj.SetAmount(amounts[i].Clone())
	}
	lg.commitAndLog("batch approve")
	return nil
}

// SetApprovalForAll grants or revokes operator over every nonce of owner's
// class. The operator path takes precedence over allowances and never
// decrements them.
func (lg *Ledger) SetApprovalForAll(owner, operator common.Address, class ClassID, approved bool) error {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	snapshotID := lg.snapshot()
	obj, err := lg.getOrCreateOperator(owner, operator, class)
	if err != nil {
		lg.revertToSnapshot(snapshotID)
		return err
	}
	obj.SetApproved(approved)
	lg.commitAndLog("set approval for all")
	lg.emit(&ApprovalForEvent{
		Owner:    owner,
		Operator: operator,
		Class:    class,
		Approved: approved,
	})
	return nil
}

// RegisterClass registers a bond class with its immutable metadata.
// Issuer-only, once per class.
func (lg *Ledger) RegisterClass(operator common.Address, class ClassID, values []Value, descriptors []string) error {
	if len(values) != len(descriptors) {
		return ErrLengthMismatch
	}
	lg.mu.Lock()
	defer lg.mu.Unlock()

	if !lg.authority.CanManage(operator, class) {
		return ErrUnauthorizedIssuer
	}
	snapshotID := lg.snapshot()
	if err := lg.doRegisterClass(class, values, descriptors); err != nil {
		lg.revertToSnapshot(snapshotID)
		return err
	}
	lg.commitAndLog("register class")
	return nil
}

func (lg *Ledger) doRegisterClass(class ClassID, values []Value, descriptors []string) error {
	existing, err := lg.getClass(class)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrClassExists
	}
	obj := newClassObject(class, values, descriptors, lg)
	lg.records[obj.key] = obj
	lg.journal.append(&createRecordChange{key: &obj.key})
	return nil
}

// RegisterNonce registers one issue batch under an existing class.
// Issuer-only, once per nonce.
func (lg *Ledger) RegisterNonce(operator common.Address, class ClassID, nonce NonceID, values []Value, descriptors []string) error {
	if len(values) != len(descriptors) {
		return ErrLengthMismatch
	}
	lg.mu.Lock()
	defer lg.mu.Unlock()

	if !lg.authority.CanManage(operator, class) {
		return ErrUnauthorizedIssuer
	}
	snapshotID := lg.snapshot()
	if err := lg.doRegisterNonce(class, nonce, values, descriptors); err != nil {
		lg.revertToSnapshot(snapshotID)
		return err
	}
	lg.commitAndLog("register nonce")
	return nil
}

func (lg *Ledger) doRegisterNonce(class ClassID, nonce NonceID, values []Value, descriptors []string) error {
	parent, err := lg.getClass(class)
	if err != nil {
		return err
	}
	if parent == nil {
		return ErrUnknownPosition
	}
	existing, err := lg.getNonce(class, nonce)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrNonceExists
	}
	obj := newNonceObject(class, nonce, values, descriptors, lg)
	lg.records[obj.key] = obj
	lg.journal.append(&createRecordChange{key: &obj.key})
	return nil
}

/*
	read operations. Unknown keys read as zero values; only the
	metadata and progress queries distinguish unregistered positions.
*/

func (lg *Ledger) TotalSupply(class ClassID, nonce NonceID) *math.BigInt {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	return lg.supplyCounter(class, nonce, func(s *SupplyObject) *math.BigInt { return s.GetTotal() })
}

func (lg *Ledger) ActiveSupply(class ClassID, nonce NonceID) *math.BigInt {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	return lg.supplyCounter(class, nonce, func(s *SupplyObject) *math.BigInt { return s.GetActive() })
}

func (lg *Ledger) RedeemedSupply(class ClassID, nonce NonceID) *math.BigInt {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	return lg.supplyCounter(class, nonce, func(s *SupplyObject) *math.BigInt { return s.GetRedeemed() })
}

func (lg *Ledger) BurnedSupply(class ClassID, nonce NonceID) *math.BigInt {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	return lg.supplyCounter(class, nonce, func(s *SupplyObject) *math.BigInt { return s.GetBurned() })
}

func (lg *Ledger) supplyCounter(class ClassID, nonce NonceID, pick func(*SupplyObject) *math.BigInt) *math.BigInt {
	s, err := lg.getSupply(class, nonce)
	if err != nil {
		log.WithError(err).WithField("class", class).WithField("nonce", nonce).Error("read supply")
		return math.NewBigInt(0)
	}
	if s == nil {
		return math.NewBigInt(0)
	}
	return pick(s).Clone()
}

func (lg *Ledger) BalanceOf(owner common.Address, class ClassID, nonce NonceID) *math.BigInt {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	balance, err := lg.balanceOf(owner, class, nonce)
	if err != nil {
		log.WithError(err).WithField("owner", owner.ShortString()).Error("read balance")
		return math.NewBigInt(0)
	}
	return balance.Clone()
}

func (lg *Ledger) Allowance(owner, spender common.Address, class ClassID, nonce NonceID) *math.BigInt {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	current, err := lg.allowanceOf(owner, spender, class, nonce)
	if err != nil {
		log.WithError(err).WithField("owner", owner.ShortString()).Error("read allowance")
		return math.NewBigInt(0)
	}
	return current.Clone()
}

func (lg *Ledger) IsApprovedFor(owner, operator common.Address, class ClassID) bool {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	approved, err := lg.isApprovedFor(owner, operator, class)
	if err != nil {
		log.WithError(err).WithField("owner", owner.ShortString()).Error("read operator approval")
		return false
	}
	return approved
}

func (lg *Ledger) ClassValues(class ClassID) ([]Value, error) {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	obj, err := lg.getClass(class)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, ErrUnknownPosition
	}
	return obj.GetValues(), nil
}

func (lg *Ledger) ClassMetadata(class ClassID) ([]string, error) {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	obj, err := lg.getClass(class)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, ErrUnknownPosition
	}
	return obj.GetDescriptors(), nil
}

func (lg *Ledger) NonceValues(class ClassID, nonce NonceID) ([]Value, error) {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	obj, err := lg.getNonce(class, nonce)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, ErrUnknownPosition
	}
	return obj.GetValues(), nil
}

func (lg *Ledger) NonceMetadata(class ClassID, nonce NonceID) ([]string, error) {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	obj, err := lg.getNonce(class, nonce)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, ErrUnknownPosition
	}
	return obj.GetDescriptors(), nil
}

// GetProgress reports the achieved/remaining pair of a nonce as computed
// by the wired progress provider. The pair is surfaced verbatim.
func (lg *Ledger) GetProgress(class ClassID, nonce NonceID) (achieved, remaining *math.BigInt, err error) {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	meta, err := lg.getNonce(class, nonce)
	if err != nil {
		return nil, nil, err
	}
	if meta == nil {
		return nil, nil, ErrUnknownPosition
	}
	supplyObj, err := lg.getSupply(class, nonce)
	if err != nil {
		return nil, nil, err
	}

	supply := SupplyData{
		Class:    class,
		Nonce:    nonce,
		Total:    math.NewBigInt(0),
		Active:   math.NewBigInt(0),
		Redeemed: math.NewBigInt(0),
		Burned:   math.NewBigInt(0),
	}
	if supplyObj != nil {
		supply.Total = supplyObj.GetTotal().Clone()
		supply.Active = supplyObj.GetActive().Clone()
		supply.Redeemed = supplyObj.GetRedeemed().Clone()
		supply.Burned = supplyObj.GetBurned().Clone()
	}
	metaData := NonceData{
		Class:       class,
		Nonce:       nonce,
		Values:      meta.GetValues(),
		Descriptors: meta.GetDescriptors(),
	}
	achieved, remaining = lg.progress.ProgressOf(supply, metaData)
	return achieved, remaining, nil
}

// Flush writes every dirty record to the store. Operations flush on their
// own; this is for shutdown and for retrying after store write failures.
func (lg *Ledger) Flush() error {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	return lg.commit()
}

func (lg *Ledger) GetBenchmarks() map[string]interface{} {
	lg.mu.RLock()
	defer lg.mu.RUnlock()
	return map[string]interface{}{
		"records": len(lg.records),
		"cleans":  lg.cleans.Len(),
		"dirty":   len(lg.dirtyset),
	}
}

/*
	internals
*/

func checkAmount(amount *math.BigInt) error {
	if amount == nil || amount.Value == nil {
		return fmt.Errorf("nil amount")
	}
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	return nil
}

func (lg *Ledger) emit(ev eventbus.Event) {
	if lg.bus == nil {
		return
	}
	lg.bus.Route(ev)
}

func (lg *Ledger) commitAndLog(op string) {
	if err := lg.commit(); err != nil {
		log.WithError(err).WithField("op", op).Error("flush failed, records kept dirty for retry")
	}
}

// commit flushes dirty records to the store and demotes everything else
// to the clean cache. Records whose write failed stay dirty and pinned;
// the next commit retries them.
func (lg *Ledger) commit() error {
	for key := range lg.journal.dirties {
		lg.dirtyset[key] = struct{}{}
	}
	var firstErr error
	for key := range lg.dirtyset {
		rec, ok := lg.records[key]
		if !ok {
			// the creating change was reverted
			delete(lg.dirtyset, key)
			continue
		}
		if err := lg.accessor.SaveRecord(key, rec); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		delete(lg.dirtyset, key)
	}
	for key, rec := range lg.records {
		if _, dirty := lg.dirtyset[key]; dirty {
			continue
		}
		lg.cleans.Add(key, rec)
		delete(lg.records, key)
	}
	lg.clearJournal()
	return firstErr
}

func (lg *Ledger) clearJournal() {
	lg.journal = newJournal()
	lg.snapshotID = 0
	lg.snapshotSet = lg.snapshotSet[:0]
}

func (lg *Ledger) snapshot() int {
	id := lg.snapshotID
	lg.snapshotID++
	lg.snapshotSet = append(lg.snapshotSet, shot{shotid: id, journalIndex: lg.journal.length()})
	return id
}

func (lg *Ledger) revertToSnapshot(snapshotid int) {
	index := 0
	s := shot{shotid: -1}
	for i, shotInMem := range lg.snapshotSet {
		if shotInMem.shotid == snapshotid {
			index = i
			s = shotInMem
			break
		}
	}
	if s.shotid == -1 {
		panic(fmt.Sprintf("can't find valid snapshot, id: %d", snapshotid))
	}
	lg.journal.revert(lg, s.journalIndex)
	lg.snapshotSet = lg.snapshotSet[:index]
}

// getRecord looks a key up in the working set, then the clean cache.
func (lg *Ledger) getRecord(key storeKey) (Record, bool) {
	if rec, ok := lg.records[key]; ok {
		return rec, true
	}
	if v, ok := lg.cleans.Get(key); ok {
		return v.(Record), true
	}
	return nil, false
}

// pin moves a record into the working set so it can be mutated.
func (lg *Ledger) pin(key storeKey, rec Record) {
	lg.cleans.Remove(key)
	lg.records[key] = rec
}

func (lg *Ledger) balanceOf(owner common.Address, class ClassID, nonce NonceID) (*math.BigInt, error) {
	key := holdingKey(owner, class, nonce)
	if rec, ok := lg.getRecord(key); ok {
		return rec.(*HoldingObject).GetAmount(), nil
	}
	h, err := lg.accessor.LoadHolding(key, lg)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return math.NewBigInt(0), nil
	}
	lg.cleans.Add(key, h)
	return h.GetAmount(), nil
}

func (lg *Ledger) allowanceOf(owner, spender common.Address, class ClassID, nonce NonceID) (*math.BigInt, error) {
	key := allowanceKey(owner, spender, class, nonce)
	if rec, ok := lg.getRecord(key); ok {
		return rec.(*AllowanceObject).GetAmount(), nil
	}
	a, err := lg.accessor.LoadAllowance(key, lg)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return math.NewBigInt(0), nil
	}
	lg.cleans.Add(key, a)
	return a.GetAmount(), nil
}

func (lg *Ledger) isApprovedFor(owner, operator common.Address, class ClassID) (bool, error) {
	key := operatorKey(owner, operator, class)
	if rec, ok := lg.getRecord(key); ok {
		return rec.(*OperatorObject).GetApproved(), nil
	}
	op, err := lg.accessor.LoadOperator(key, lg)
	if err != nil {
		return false, err
	}
	if op == nil {
		return false, nil
	}
	lg.cleans.Add(key, op)
	return op.GetApproved(), nil
}

func (lg *Ledger) getSupply(class ClassID, nonce NonceID) (*SupplyObject, error) {
	key := supplyKey(class, nonce)
	if rec, ok := lg.getRecord(key); ok {
		return rec.(*SupplyObject), nil
	}
	s, err := lg.accessor.LoadSupply(key, lg)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}
	lg.cleans.Add(key, s)
	return s, nil
}

func (lg *Ledger) getClass(class ClassID) (*ClassObject, error) {
	key := classKey(class)
	if rec, ok := lg.getRecord(key); ok {
		return rec.(*ClassObject), nil
	}
	c, err := lg.accessor.LoadClass(key, lg)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}
	lg.cleans.Add(key, c)
	return c, nil
}

func (lg *Ledger) getNonce(class ClassID, nonce NonceID) (*NonceObject, error) {
	key := nonceKey(class, nonce)
	if rec, ok := lg.getRecord(key); ok {
		return rec.(*NonceObject), nil
	}
	n, err := lg.accessor.LoadNonce(key, lg)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	lg.cleans.Add(key, n)
	return n, nil
}

func (lg *Ledger) hasNonce(class ClassID, nonce NonceID) (bool, error) {
	n, err := lg.getNonce(class, nonce)
	if err != nil {
		return false, err
	}
	return n != nil, nil
}

func (lg *Ledger) getOrCreateHolding(owner common.Address, class ClassID, nonce NonceID) (*HoldingObject, error) {
	key := holdingKey(owner, class, nonce)
	if rec, ok := lg.records[key]; ok {
		return rec.(*HoldingObject), nil
	}
	if v, ok := lg.cleans.Get(key); ok {
		h := v.(*HoldingObject)
		lg.pin(key, h)
		return h, nil
	}
	h, err := lg.accessor.LoadHolding(key, lg)
	if err != nil {
		return nil, err
	}
	if h != nil {
		lg.records[key] = h
		return h, nil
	}
	h = newHoldingObject(owner, class, nonce, lg)
	lg.records[key] = h
	lg.journal.append(&createRecordChange{key: &h.key})
	return h, nil
}

func (lg *Ledger) getOrCreateSupply(class ClassID, nonce NonceID) (*SupplyObject, error) {
	key := supplyKey(class, nonce)
	if rec, ok := lg.records[key]; ok {
		return rec.(*SupplyObject), nil
	}
	if v, ok := lg.cleans.Get(key); ok {
		s := v.(*SupplyObject)
		lg.pin(key, s)
		return s, nil
	}
	s, err := lg.accessor.LoadSupply(key, lg)
	if err != nil {
		return nil, err
	}
	if s != nil {
		lg.records[key] = s
		return s, nil
	}
	s = newSupplyObject(class, nonce, lg)
	lg.records[key] = s
	lg.journal.append(&createRecordChange{key: &s.key})
	return s, nil
}

func (lg *Ledger) getOrCreateAllowance(owner, spender common.Address, class ClassID, nonce NonceID) (*AllowanceObject, error) {
	key := allowanceKey(owner, spender, class, nonce)
	if rec, ok := lg.records[key]; ok {
		return rec.(*AllowanceObject), nil
	}
	if v, ok := lg.cleans.Get(key); ok {
		a := v.(*AllowanceObject)
		lg.pin(key, a)
		return a, nil
	}
	a, err := lg.accessor.LoadAllowance(key, lg)
	if err != nil {
		return nil, err
	}
	if a != nil {
		lg.records[key] = a
		return a, nil
	}
	a = newAllowanceObject(owner, spender, class, nonce, lg)
	lg.records[key] = a
	lg.journal.append(&createRecordChange{key: &a.key})
	return a, nil
}

func (lg *Ledger) getOrCreateOperator(owner, operator common.Address, class ClassID) (*OperatorObject, error) {
	key := operatorKey(owner, operator, class)
	if rec, ok := lg.records[key]; ok {
		return rec.(*OperatorObject), nil
	}
	if v, ok := lg.cleans.Get(key); ok {
		op := v.(*OperatorObject)
		lg.pin(key, op)
		return op, nil
	}
	op, err := lg.accessor.LoadOperator(key, lg)
	if err != nil {
		return nil, err
	}
	if op != nil {
		lg.records[key] = op
		return op, nil
	}
	op = newOperatorObject(owner, operator, class, lg)
	lg.records[key] = op
	lg.journal.append(&createRecordChange{key: &op.key})
	return op, nil
}
