// Copyright 2016 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package ledger

import (
	"github.com/annchain/bondledger/common/math"
)

// journalEntry is a modification entry in the state change journal that can be
// reverted on demand.
type journalEntry interface {
	// revert undoes the changes introduced by this journal entry.
	revert(*Ledger)

	// dirtied returns the store key modified by this journal entry.
	dirtied() *storeKey
}

// journal contains the list of state modifications applied since the last
// commit. These are tracked to be able to be reverted in case of an execution
// exception or revertal request.
type journal struct {
	entries []journalEntry       // Current changes tracked by the journal
	dirties map[storeKey]int     // Dirty records and the number of changes
}

// newJournal create a new initialized journal.
func newJournal() *journal {
	return &journal{
		dirties: make(map[storeKey]int),
	}
}

// append inserts a new modification entry to the end of the change journal.
func (j *journal) append(entry journalEntry) {
	j.entries = append(j.entries, entry)
	if key := entry.dirtied(); key != nil {
		j.dirties[*key]++
	}
}

// revert undoes a batch of journalled modifications along with any reverted
// dirty handling too.
func (j *journal) revert(lg *Ledger, snapshot int) {
	for i := len(j.entries) - 1; i >= snapshot; i-- {
		// Undo the changes made by the operation
		j.entries[i].revert(lg)

		// Drop any dirty tracking induced by the change
		if key := j.entries[i].dirtied(); key != nil {
			if j.dirties[*key]--; j.dirties[*key] == 0 {
				delete(j.dirties, *key)
			}
		}
	}
	j.entries = j.entries[:snapshot]
}

// length returns the current number of entries in the journal.
func (j *journal) length() int {
	return len(j.entries)
}

type (
	// A record was created. Reverting removes it entirely.
	createRecordChange struct {
		key *storeKey
	}

	// Changes to a holding balance.
	holdingChange struct {
		key  *storeKey
		prev *math.BigInt
	}

	// Changes to the supply counters of a position.
	supplyChange struct {
		key          *storeKey
		prevTotal    *math.BigInt
		prevActive   *math.BigInt
		prevRedeemed *math.BigInt
		prevBurned   *math.BigInt
	}

	// Changes to an allowance.
	allowanceChange struct {
		key  *storeKey
		prev *math.BigInt
	}

	// Changes to a class-wide operator approval.
	operatorChange struct {
		key  *storeKey
		prev bool
	}
)

func (ch createRecordChange) revert(lg *Ledger) {
	delete(lg.records, *ch.key)
	delete(lg.dirtyset, *ch.key)
}

func (ch createRecordChange) dirtied() *storeKey {
	return ch.key
}

func (ch holdingChange) revert(lg *Ledger) {
	if rec, ok := lg.records[*ch.key]; ok {
		rec.(*HoldingObject).setAmount(ch.prev)
	}
}

func (ch holdingChange) dirtied() *storeKey {
	return ch.key
}

func (ch supplyChange) revert(lg *Ledger) {
	if rec, ok := lg.records[*ch.key]; ok {
		rec.(*SupplyObject).setSupply(ch.prevTotal, ch.prevActive, ch.prevRedeemed, ch.prevBurned)
	}
}

func (ch supplyChange) dirtied() *storeKey {
	return ch.key
}

func (ch allowanceChange) revert(lg *Ledger) {
	if rec, ok := lg.records[*ch.key]; ok {
		rec.(*AllowanceObject).setAmount(ch.prev)
	}
}

func (ch allowanceChange) dirtied() *storeKey {
	return ch.key
}

func (ch operatorChange) revert(lg *Ledger) {
	if rec, ok := lg.records[*ch.key]; ok {
		rec.(*OperatorObject).setApproved(ch.prev)
	}
}

func (ch operatorChange) dirtied() *storeKey {
	return ch.key
}
