package ledger

import (
	"time"

	"github.com/annchain/bondledger/common/math"
)

// ProgressProvider computes the achieved/remaining pair of a position.
// What the pair measures is provider-specific; the ledger surfaces it
// verbatim through GetProgress.
type ProgressProvider interface {
	ProgressOf(supply SupplyData, meta NonceData) (achieved, remaining *math.BigInt)
}

// Descriptor names MaturityProgress expects in nonce metadata. Both hold
// unix timestamps in their numeric slot.
const (
	IssuanceDescriptor = "issuance"
	MaturityDescriptor = "maturity"
)

// MaturityProgress measures time: achieved is seconds elapsed since
// issuance, remaining is seconds until maturity, both clamped at zero.
// Nonces without the two timestamps report zero progress.
type MaturityProgress struct {
	// Now is swappable in tests. nil means time.Now.
	Now func() time.Time
}

func (m *MaturityProgress) ProgressOf(supply SupplyData, meta NonceData) (achieved, remaining *math.BigInt) {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	issuance, okIssuance := valueByDescriptor(meta, IssuanceDescriptor)
	maturity, okMaturity := valueByDescriptor(meta, MaturityDescriptor)
	if !okIssuance || !okMaturity || issuance.Num == nil || maturity.Num == nil {
		return math.NewBigInt(0), math.NewBigInt(0)
	}
	ts := math.NewBigInt(now().Unix())
	return clampZero(ts.Sub(issuance.Num)), clampZero(maturity.Num.Sub(ts))
}

func valueByDescriptor(meta NonceData, descriptor string) (Value, bool) {
	for i, d := range meta.Descriptors {
		if d == descriptor && i < len(meta.Values) {
			return meta.Values[i], true
		}
	}
	return Value{}, false
}

func clampZero(v *math.BigInt) *math.BigInt {
	if v.Sign() < 0 {
		return math.NewBigInt(0)
	}
	return v
}

// RedemptionProgress measures supply: achieved is the redeemed counter,
// remaining the active one.
type RedemptionProgress struct{}

func (RedemptionProgress) ProgressOf(supply SupplyData, meta NonceData) (achieved, remaining *math.BigInt) {
	return supply.Redeemed, supply.Active
}
