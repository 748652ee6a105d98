package ledger

import (
	"sync"

	"github.com/annchain/bondledger/common"
)

// Authority decides who may register, issue, redeem and burn under a
// class. The ledger consults it on every issuer-only operation.
type Authority interface {
	CanManage(operator common.Address, class ClassID) bool
}

// DenyAllAuthority refuses everyone. It is the fallback when nothing is
// wired, so that a misconfigured node cannot mint.
type DenyAllAuthority struct{}

func (DenyAllAuthority) CanManage(common.Address, ClassID) bool {
	return false
}

// StaticAuthority grants issuer rights from a fixed set. Global issuers
// manage every class, per-class issuers only their own.
type StaticAuthority struct {
	mu      sync.RWMutex
	global  map[common.Address]struct{}
	byClass map[ClassID]map[common.Address]struct{}
}

func NewStaticAuthority() *StaticAuthority {
	return &StaticAuthority{
		global:  make(map[common.Address]struct{}),
		byClass: make(map[ClassID]map[common.Address]struct{}),
	}
}

func (sa *StaticAuthority) AddGlobalIssuer(issuer common.Address) {
	sa.mu.Lock()
	defer sa.mu.Unlock()
	sa.global[issuer] = struct{}{}
}

func (sa *StaticAuthority) AddIssuer(issuer common.Address, class ClassID) {
	sa.mu.Lock()
	defer sa.mu.Unlock()
	issuers, ok := sa.byClass[class]
	if !ok {
		issuers = make(map[common.Address]struct{})
		sa.byClass[class] = issuers
	}
	issuers[issuer] = struct{}{}
}

func (sa *StaticAuthority) CanManage(operator common.Address, class ClassID) bool {
	sa.mu.RLock()
	defer sa.mu.RUnlock()
	if _, ok := sa.global[operator]; ok {
		return true
	}
	issuers, ok := sa.byClass[class]
	if !ok {
		return false
	}
	_, ok = issuers[operator]
	return ok
}
