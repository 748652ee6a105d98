package ledger_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/annchain/bondledger/ledger"
)

const testGenesisJSON = `{
  "issuer": "0x0b5d53f433b7e4a4f853a01e987f977497dda262",
  "classes": [
    {
      "id": 1,
      "descriptors": ["name", "coupon_rate"],
      "values": [{"string": "corp-bond-2026"}, {"numeric": "500"}],
      "nonces": [
        {
          "id": 1,
          "descriptors": ["issuance", "maturity"],
          "values": [{"numeric": "1700000000"}, {"numeric": "1700001000"}],
          "holdings": [
            {"owner": "0xc621b18aa1263ee747b1af41a4eb27647dc8662c", "amount": "1000"},
            {"owner": "0x643d534e15a315173a3c18cd13c9f95c7484a9bc", "amount": "500"}
          ]
        }
      ]
    }
  ]
}`

func writeTestGenesis(t *testing.T, content string) (string, func()) {
	dir, err := ioutil.TempDir(os.TempDir(), "genesis_test_")
	if err != nil {
		t.Fatalf("create temp dir error: %v", err)
	}
	path := filepath.Join(dir, "genesis.json")
	if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
		os.RemoveAll(dir)
		t.Fatalf("write genesis file error: %v", err)
	}
	return path, func() { os.RemoveAll(dir) }
}

func TestGenesisApply(t *testing.T) {
	t.Parallel()

	path, remove := writeTestGenesis(t, testGenesisJSON)
	defer remove()

	genesis, err := ledger.LoadGenesis(path)
	if err != nil {
		t.Fatalf("load genesis error: %v", err)
	}
	if !genesis.Issuer.EqualTo(testIssuer) {
		t.Fatalf("genesis issuer is wrong: %s", genesis.Issuer)
	}

	lg, _ := newTestLedgerWithBus(t, nil)
	if err := genesis.Apply(lg); err != nil {
		t.Fatalf("apply genesis error: %v", err)
	}
	checkBalance(t, lg, testAlice, 1000)
	checkBalance(t, lg, testBob, 500)
	checkSupplies(t, lg, 1500, 1500, 0, 0)
	values, err := lg.ClassValues(testClass)
	if err != nil {
		t.Fatalf("class values error: %v", err)
	}
	if values[0].Str != "corp-bond-2026" {
		t.Fatalf("genesis class metadata is wrong: %+v", values)
	}

	// the second application is a no-op, balances must not double
	if err := genesis.Apply(lg); err != nil {
		t.Fatalf("re-apply genesis error: %v", err)
	}
	checkBalance(t, lg, testAlice, 1000)
	checkSupplies(t, lg, 1500, 1500, 0, 0)
}

func TestGenesisUnknownIssuer(t *testing.T) {
	t.Parallel()

	path, remove := writeTestGenesis(t, `{
  "issuer": "0x89b28a81332001c26f6fd887f7f8a7bfc5e54c25",
  "classes": [{"id": 1, "descriptors": [], "values": [], "nonces": []}]
}`)
	defer remove()

	genesis, err := ledger.LoadGenesis(path)
	if err != nil {
		t.Fatalf("load genesis error: %v", err)
	}
	lg, _ := newTestLedgerWithBus(t, nil)
	if err := genesis.Apply(lg); err == nil {
		t.Fatalf("genesis with an unknown issuer should fail")
	}
}

func TestGenesisBadAmount(t *testing.T) {
	t.Parallel()

	path, remove := writeTestGenesis(t, `{
  "issuer": "0x0b5d53f433b7e4a4f853a01e987f977497dda262",
  "classes": [
    {"id": 1, "descriptors": [], "values": [], "nonces": [
      {"id": 1, "descriptors": [], "values": [], "holdings": [
        {"owner": "0xc621b18aa1263ee747b1af41a4eb27647dc8662c", "amount": "one million"}
      ]}
    ]}
  ]
}`)
	defer remove()

	if _, err := ledger.LoadGenesis(path); err == nil {
		t.Fatalf("genesis with a malformed amount should fail to load")
	}
}
