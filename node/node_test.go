package node

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/annchain/bondledger/common"
	"github.com/annchain/bondledger/ledger"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nodeTestGenesis = `{
  "issuer": "0x0b5d53f433b7e4a4f853a01e987f977497dda262",
  "classes": [
    {
      "id": 1,
      "descriptors": ["name"],
      "values": [{"string": "corp-bond-2026"}],
      "nonces": [
        {
          "id": 1,
          "descriptors": ["issuance", "maturity"],
          "values": [{"numeric": "1700000000"}, {"numeric": "1700001000"}],
          "holdings": [
            {"owner": "0xc621b18aa1263ee747b1af41a4eb27647dc8662c", "amount": "1000"}
          ]
        }
      ]
    }
  ]
}`

func writeTestGenesis(t *testing.T) string {
	f, err := ioutil.TempFile("", "genesis*.json")
	require.NoError(t, err)
	_, err = f.WriteString(nodeTestGenesis)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func TestNewNodeGenesis(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	genesisPath := writeTestGenesis(t)
	defer os.Remove(genesisPath)

	viper.Set("db.name", "memory")
	viper.Set("genesis.path", genesisPath)

	n := NewNode()
	// store plus monitor, no servers enabled
	assert.Equal(t, 2, len(n.Components))

	holder := common.HexToAddress("0xc621b18aa1263ee747b1af41a4eb27647dc8662c")
	balance := n.ledger.BalanceOf(holder, ledger.ClassID(1), ledger.NonceID(1))
	assert.Equal(t, "1000", balance.String())
	assert.EqualValues(t, 1, n.eventLog.Tail())

	n.Start()
	n.Stop()
}

func TestNewNodeServers(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("db.name", "memory")
	viper.Set("rpc.enabled", true)
	viper.Set("rpc.port", "0")
	viper.Set("ws.enabled", true)
	viper.Set("ws.port", "0")

	n := NewNode()
	assert.Equal(t, 4, len(n.Components))

	// the ledger events must reach the websocket push channel
	require.NotNil(t, n.eventLog.Downstream)

	n.Start()
	defer n.Stop()

	owner := common.HexToAddress("0x0b5d53f433b7e4a4f853a01e987f977497dda262")
	operator := common.HexToAddress("0x643d534e15a315173a3c18cd13c9f95c7484a9bc")
	err := n.ledger.SetApprovalForAll(owner, operator, ledger.ClassID(1), true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n.eventLog.Tail())
}

func TestGetHostname(t *testing.T) {
	assert.NotEmpty(t, getHostname())
}
