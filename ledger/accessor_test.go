package ledger

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/annchain/bondledger/bonddb"
	"github.com/annchain/bondledger/common"
	"github.com/annchain/bondledger/common/math"
)

func newTestLDB() (*bonddb.LevelDB, func()) {
	dirname, err := ioutil.TempDir(os.TempDir(), "bonddb_test_")
	if err != nil {
		panic("failed to create test file: " + err.Error())
	}
	db, err := bonddb.NewLevelDB(dirname, 0, 0)
	if err != nil {
		panic("failed to create test database: " + err.Error())
	}

	return db, func() {
		db.Close()
		os.RemoveAll(dirname)
	}
}

func TestStoreKeysAreDistinct(t *testing.T) {
	t.Parallel()

	owner := common.HexToAddress("0xc621b18aa1263ee747b1af41a4eb27647dc8662c")
	spender := common.HexToAddress("0x643d534e15a315173a3c18cd13c9f95c7484a9bc")

	keys := []storeKey{
		holdingKey(owner, 1, 2),
		holdingKey(owner, 2, 1),
		holdingKey(spender, 1, 2),
		supplyKey(1, 2),
		supplyKey(2, 1),
		allowanceKey(owner, spender, 1, 2),
		allowanceKey(spender, owner, 1, 2),
		operatorKey(owner, spender, 1),
		operatorKey(spender, owner, 1),
		classKey(1),
		nonceKey(1, 2),
		nonceKey(2, 1),
	}
	seen := make(map[storeKey]int)
	for i, k := range keys {
		if j, ok := seen[k]; ok {
			t.Fatalf("key %d collides with key %d: %x", i, j, k)
		}
		seen[k] = i
	}
}

func TestAccessorRoundtrip(t *testing.T) {
	t.Parallel()

	db, remove := newTestLDB()
	defer remove()
	acc := NewAccessor(db)

	owner := common.HexToAddress("0xc621b18aa1263ee747b1af41a4eb27647dc8662c")
	spender := common.HexToAddress("0x643d534e15a315173a3c18cd13c9f95c7484a9bc")

	holding := newHoldingObject(owner, 3, 7, nil)
	holding.setAmount(math.NewBigInt(777))
	if err := acc.SaveRecord(holding.key, holding); err != nil {
		t.Fatalf("save holding failed: %v", err)
	}
	loaded, err := acc.LoadHolding(holding.key, nil)
	if err != nil {
		t.Fatalf("load holding failed: %v", err)
	}
	if loaded == nil {
		t.Fatalf("cannot read holding back from db")
	}
	if loaded.GetAmount().GetInt64() != 777 {
		t.Fatalf("holding amount should be 777, but get %s", loaded.GetAmount())
	}
	if loaded.key != holding.key {
		t.Fatalf("decoded holding rebuilt the wrong key: %x", loaded.key)
	}

	missing, err := acc.LoadHolding(holdingKey(owner, 9, 9), nil)
	if err != nil {
		t.Fatalf("load missing holding failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing holding should load as nil")
	}

	supply := newSupplyObject(3, 7, nil)
	supply.setSupply(math.NewBigInt(1000), math.NewBigInt(700), math.NewBigInt(200), math.NewBigInt(100))
	if err := acc.SaveRecord(supply.key, supply); err != nil {
		t.Fatalf("save supply failed: %v", err)
	}
	loadedSupply, err := acc.LoadSupply(supply.key, nil)
	if err != nil {
		t.Fatalf("load supply failed: %v", err)
	}
	if loadedSupply == nil {
		t.Fatalf("cannot read supply back from db")
	}
	if loadedSupply.GetTotal().GetInt64() != 1000 ||
		loadedSupply.GetActive().GetInt64() != 700 ||
		loadedSupply.GetRedeemed().GetInt64() != 200 ||
		loadedSupply.GetBurned().GetInt64() != 100 {
		t.Fatalf("supply counters are wrong after reload: %d %d %d %d",
			loadedSupply.GetTotal().GetInt64(), loadedSupply.GetActive().GetInt64(),
			loadedSupply.GetRedeemed().GetInt64(), loadedSupply.GetBurned().GetInt64())
	}

	allowance := newAllowanceObject(owner, spender, 3, 7, nil)
	allowance.setAmount(math.NewBigInt(55))
	if err := acc.SaveRecord(allowance.key, allowance); err != nil {
		t.Fatalf("save allowance failed: %v", err)
	}
	loadedAllowance, err := acc.LoadAllowance(allowance.key, nil)
	if err != nil {
		t.Fatalf("load allowance failed: %v", err)
	}
	if loadedAllowance == nil || loadedAllowance.GetAmount().GetInt64() != 55 {
		t.Fatalf("allowance is wrong after reload: %+v", loadedAllowance)
	}

	operator := newOperatorObject(owner, spender, 3, nil)
	operator.setApproved(true)
	if err := acc.SaveRecord(operator.key, operator); err != nil {
		t.Fatalf("save operator failed: %v", err)
	}
	loadedOperator, err := acc.LoadOperator(operator.key, nil)
	if err != nil {
		t.Fatalf("load operator failed: %v", err)
	}
	if loadedOperator == nil || !loadedOperator.GetApproved() {
		t.Fatalf("operator approval is wrong after reload: %+v", loadedOperator)
	}
}

func TestMetadataRoundtrip(t *testing.T) {
	t.Parallel()

	db, remove := newTestLDB()
	defer remove()
	acc := NewAccessor(db)

	owner := common.HexToAddress("0xc621b18aa1263ee747b1af41a4eb27647dc8662c")
	values := []Value{
		StringValue("corp-bond-2026"),
		NumValue(math.NewBigInt(500)),
		AddrValue(owner),
		BoolValue(true),
	}
	descriptors := []string{"name", "coupon_rate", "registrar", "callable"}

	class := newClassObject(5, values, descriptors, nil)
	if err := acc.SaveRecord(class.key, class); err != nil {
		t.Fatalf("save class failed: %v", err)
	}
	loadedClass, err := acc.LoadClass(class.key, nil)
	if err != nil {
		t.Fatalf("load class failed: %v", err)
	}
	if loadedClass == nil {
		t.Fatalf("cannot read class back from db")
	}
	got := loadedClass.GetValues()
	if len(got) != len(values) {
		t.Fatalf("class should carry %d values, got %d", len(values), len(got))
	}
	if got[0].Str != "corp-bond-2026" || got[1].Num.GetInt64() != 500 ||
		!got[2].Addr.EqualTo(owner) || !got[3].Bool {
		t.Fatalf("class values are wrong after reload: %+v", got)
	}

	nonce := newNonceObject(5, 9, values, descriptors, nil)
	if err := acc.SaveRecord(nonce.key, nonce); err != nil {
		t.Fatalf("save nonce failed: %v", err)
	}
	loadedNonce, err := acc.LoadNonce(nonce.key, nil)
	if err != nil {
		t.Fatalf("load nonce failed: %v", err)
	}
	if loadedNonce == nil {
		t.Fatalf("cannot read nonce back from db")
	}
	rate, ok := loadedNonce.ValueOf("coupon_rate")
	if !ok || rate.Num.GetInt64() != 500 {
		t.Fatalf("coupon_rate lookup is wrong after reload: %+v ok=%v", rate, ok)
	}
	if _, ok := loadedNonce.ValueOf("unknown"); ok {
		t.Fatalf("unknown descriptor should not resolve")
	}
}

func TestGenesisFlag(t *testing.T) {
	t.Parallel()

	db, remove := newTestLDB()
	defer remove()
	acc := NewAccessor(db)

	if acc.ReadGenesisDone() {
		t.Fatalf("fresh db should not carry the genesis flag")
	}
	if err := acc.WriteGenesisDone(); err != nil {
		t.Fatalf("write genesis flag failed: %v", err)
	}
	if !acc.ReadGenesisDone() {
		t.Fatalf("genesis flag should stick")
	}
}
