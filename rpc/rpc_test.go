// Copyright © 2019 Annchain Authors <EMAIL ADDRESS>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package rpc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/annchain/bondledger/bonddb"
	"github.com/annchain/bondledger/common"
	"github.com/annchain/bondledger/eventbus"
	"github.com/annchain/bondledger/eventlog"
	"github.com/annchain/bondledger/ledger"
	"github.com/annchain/bondledger/status"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

var (
	rpcIssuer = common.HexToAddress("0x1000000000000000000000000000000000000001")
	rpcAlice  = common.HexToAddress("0x2000000000000000000000000000000000000002")
	rpcBob    = common.HexToAddress("0x3000000000000000000000000000000000000003")
)

type envelope struct {
	Err  string          `json:"err"`
	Data json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) (*RpcController, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	db := bonddb.NewMemDatabase()
	auth := ledger.NewStaticAuthority()
	auth.AddGlobalIssuer(rpcIssuer)

	el, err := eventlog.NewEventLog(eventlog.DefaultEventLogConfig(), db)
	if err != nil {
		t.Fatalf("new event log: %v", err)
	}
	bus := &eventbus.DefaultEventBus{}
	bus.InitDefault()
	for _, tp := range []eventbus.EventType{
		ledger.TransferEventType, ledger.IssueEventType, ledger.RedeemEventType,
		ledger.BurnEventType, ledger.ApprovalForEventType,
	} {
		bus.ListenTo(eventbus.EventHandlerRegisterInfo{Type: tp, Name: ledger.EventTypeName(tp), Handler: el})
	}
	bus.Build()

	lg, err := ledger.NewLedger(ledger.DefaultLedgerConfig(), db, auth, nil, bus)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	controller := &RpcController{Ledger: lg, EventLog: el}
	return controller, controller.Newrouter()
}

func doGet(t *testing.T, router *gin.Engine, path string) (int, envelope) {
	req, err := http.NewRequest("GET", path, nil)
	assert.NoError(t, err)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad response body %q: %v", w.Body.String(), err)
	}
	return w.Code, env
}

func doPost(t *testing.T, router *gin.Engine, path string, body interface{}) (int, envelope) {
	jsonData, err := json.Marshal(body)
	assert.NoError(t, err)
	req, err := http.NewRequest("POST", path, bytes.NewBuffer(jsonData))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad response body %q: %v", w.Body.String(), err)
	}
	return w.Code, env
}

func registerPosition(t *testing.T, router *gin.Engine) {
	code, env := doPost(t, router, "/register_class", RegisterClassRequest{
		Issuer: rpcIssuer.Hex(),
		Class:  1,
		Values: []MetaValue{
			{String: "corp-bond-2026"},
			{Numeric: "500"},
		},
		Descriptors: []string{"name", "coupon_rate"},
	})
	assert.Equal(t, http.StatusOK, code, env.Err)

	code, env = doPost(t, router, "/register_nonce", RegisterNonceRequest{
		Issuer: rpcIssuer.Hex(),
		Class:  1,
		Nonce:  1,
		Values: []MetaValue{
			{Numeric: "1700000000"},
			{Numeric: "1700001000"},
		},
		Descriptors: []string{"issuance", "maturity"},
	})
	assert.Equal(t, http.StatusOK, code, env.Err)
}

func issueTo(t *testing.T, router *gin.Engine, to common.Address, amount string) {
	code, env := doPost(t, router, "/issue", IssueRequest{
		Operator: rpcIssuer.Hex(),
		To:       to.Hex(),
		Class:    1,
		Nonce:    1,
		Amount:   amount,
	})
	assert.Equal(t, http.StatusOK, code, env.Err)
}

func TestPingAndIndex(t *testing.T) {
	_, router := newTestRouter(t)

	req, _ := http.NewRequest("GET", "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")

	req, _ = http.NewRequest("GET", "/", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Available endpoints")
	assert.Contains(t, w.Body.String(), "total_supply")
}

func TestIssueAndQuery(t *testing.T) {
	_, router := newTestRouter(t)
	registerPosition(t, router)
	issueTo(t, router, rpcAlice, "1000")

	code, env := doGet(t, router, "/balance?address="+rpcAlice.Hex()+"&class=1&nonce=1")
	assert.Equal(t, http.StatusOK, code)
	var balResp struct {
		Balance string `json:"balance"`
	}
	assert.NoError(t, json.Unmarshal(env.Data, &balResp))
	assert.Equal(t, "1000", balResp.Balance)

	code, env = doGet(t, router, "/total_supply?class=1&nonce=1")
	assert.Equal(t, http.StatusOK, code)
	var supplyResp struct {
		Supply string `json:"supply"`
	}
	assert.NoError(t, json.Unmarshal(env.Data, &supplyResp))
	assert.Equal(t, "1000", supplyResp.Supply)

	code, env = doGet(t, router, "/supply?class=1&nonce=1")
	assert.Equal(t, http.StatusOK, code)
	var allResp struct {
		Total    string `json:"total"`
		Active   string `json:"active"`
		Redeemed string `json:"redeemed"`
		Burned   string `json:"burned"`
	}
	assert.NoError(t, json.Unmarshal(env.Data, &allResp))
	assert.Equal(t, "1000", allResp.Total)
	assert.Equal(t, "1000", allResp.Active)
	assert.Equal(t, "0", allResp.Redeemed)
	assert.Equal(t, "0", allResp.Burned)
}

func TestTransferFlow(t *testing.T) {
	_, router := newTestRouter(t)
	registerPosition(t, router)
	issueTo(t, router, rpcAlice, "1000")

	code, env := doPost(t, router, "/approve", ApproveRequest{
		Owner:   rpcAlice.Hex(),
		Spender: rpcBob.Hex(),
		Class:   1,
		Nonce:   1,
		Amount:  "300",
	})
	assert.Equal(t, http.StatusOK, code, env.Err)

	code, env = doPost(t, router, "/transfer_from", TransferRequest{
		Operator: rpcBob.Hex(),
		From:     rpcAlice.Hex(),
		To:       rpcBob.Hex(),
		Class:    1,
		Nonce:    1,
		Amount:   "200",
	})
	assert.Equal(t, http.StatusOK, code, env.Err)

	code, env = doGet(t, router, "/allowance?owner="+rpcAlice.Hex()+"&spender="+rpcBob.Hex()+"&class=1&nonce=1")
	assert.Equal(t, http.StatusOK, code)
	var alResp struct {
		Remaining string `json:"remaining"`
	}
	assert.NoError(t, json.Unmarshal(env.Data, &alResp))
	assert.Equal(t, "100", alResp.Remaining)

	// rest of the allowance cannot cover another 200
	code, env = doPost(t, router, "/transfer_from", TransferRequest{
		Operator: rpcBob.Hex(),
		From:     rpcAlice.Hex(),
		To:       rpcBob.Hex(),
		Class:    1,
		Nonce:    1,
		Amount:   "200",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Err, "allowance")
}

func TestOperatorEndpoints(t *testing.T) {
	_, router := newTestRouter(t)
	registerPosition(t, router)
	issueTo(t, router, rpcAlice, "500")

	code, env := doPost(t, router, "/set_approval_for_all", SetApprovalRequest{
		Owner:    rpcAlice.Hex(),
		Operator: rpcBob.Hex(),
		Class:    1,
		Approved: true,
	})
	assert.Equal(t, http.StatusOK, code, env.Err)

	code, env = doGet(t, router, "/is_approved_for?owner="+rpcAlice.Hex()+"&operator="+rpcBob.Hex()+"&class=1")
	assert.Equal(t, http.StatusOK, code)
	var apResp struct {
		Approved bool `json:"approved"`
	}
	assert.NoError(t, json.Unmarshal(env.Data, &apResp))
	assert.True(t, apResp.Approved)

	// operators move funds without any allowance
	code, env = doPost(t, router, "/transfer_from", TransferRequest{
		Operator: rpcBob.Hex(),
		From:     rpcAlice.Hex(),
		To:       rpcBob.Hex(),
		Class:    1,
		Nonce:    1,
		Amount:   "100",
	})
	assert.Equal(t, http.StatusOK, code, env.Err)
}

func TestBatchApproveEndpoint(t *testing.T) {
	_, router := newTestRouter(t)
	registerPosition(t, router)

	code, env := doPost(t, router, "/batch_approve", BatchApproveRequest{
		Owner:   rpcAlice.Hex(),
		Spender: rpcBob.Hex(),
		Classes: []uint64{1, 1},
		Nonces:  []uint64{1, 2},
		Amounts: []string{"10", "20"},
	})
	assert.Equal(t, http.StatusOK, code, env.Err)

	code, env = doGet(t, router, "/allowance?owner="+rpcAlice.Hex()+"&spender="+rpcBob.Hex()+"&class=1&nonce=2")
	assert.Equal(t, http.StatusOK, code)
	var alResp struct {
		Remaining string `json:"remaining"`
	}
	assert.NoError(t, json.Unmarshal(env.Data, &alResp))
	assert.Equal(t, "20", alResp.Remaining)

	// mismatched arrays are refused as a whole
	code, env = doPost(t, router, "/batch_approve", BatchApproveRequest{
		Owner:   rpcAlice.Hex(),
		Spender: rpcBob.Hex(),
		Classes: []uint64{1},
		Nonces:  []uint64{1, 2},
		Amounts: []string{"10", "20"},
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestErrorMapping(t *testing.T) {
	_, router := newTestRouter(t)
	registerPosition(t, router)

	// stranger issuing
	code, env := doPost(t, router, "/issue", IssueRequest{
		Operator: rpcAlice.Hex(),
		To:       rpcAlice.Hex(),
		Class:    1,
		Nonce:    1,
		Amount:   "10",
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.NotEmpty(t, env.Err)

	// unregistered position
	code, _ = doPost(t, router, "/issue", IssueRequest{
		Operator: rpcIssuer.Hex(),
		To:       rpcAlice.Hex(),
		Class:    9,
		Nonce:    9,
		Amount:   "10",
	})
	assert.Equal(t, http.StatusNotFound, code)

	// negative amount
	code, _ = doPost(t, router, "/issue", IssueRequest{
		Operator: rpcIssuer.Hex(),
		To:       rpcAlice.Hex(),
		Class:    1,
		Nonce:    1,
		Amount:   "-5",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	// malformed amount
	code, _ = doPost(t, router, "/issue", IssueRequest{
		Operator: rpcIssuer.Hex(),
		To:       rpcAlice.Hex(),
		Class:    1,
		Nonce:    1,
		Amount:   "ten",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	// malformed address
	code, _ = doPost(t, router, "/issue", IssueRequest{
		Operator: "zzzz",
		To:       rpcAlice.Hex(),
		Class:    1,
		Nonce:    1,
		Amount:   "10",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	// spending more than the balance
	issueTo(t, router, rpcAlice, "10")
	code, env = doPost(t, router, "/transfer_from", TransferRequest{
		Operator: rpcAlice.Hex(),
		From:     rpcAlice.Hex(),
		To:       rpcBob.Hex(),
		Class:    1,
		Nonce:    1,
		Amount:   "100",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Err, "balance")
}

func TestMaintenanceGate(t *testing.T) {
	_, router := newTestRouter(t)
	registerPosition(t, router)
	defer status.MaintenanceMode.Store(false)

	code, _ := doGet(t, router, "/maintenance?on=true")
	assert.Equal(t, http.StatusOK, code)

	code, env := doPost(t, router, "/issue", IssueRequest{
		Operator: rpcIssuer.Hex(),
		To:       rpcAlice.Hex(),
		Class:    1,
		Nonce:    1,
		Amount:   "10",
	})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, env.Err, "maintenance")

	// reads stay available
	code, _ = doGet(t, router, "/total_supply?class=1&nonce=1")
	assert.Equal(t, http.StatusOK, code)

	code, env = doGet(t, router, "/status")
	assert.Equal(t, http.StatusOK, code)
	var ns NodeStatus
	assert.NoError(t, json.Unmarshal(env.Data, &ns))
	assert.True(t, ns.Maintenance)

	code, _ = doGet(t, router, "/maintenance?on=false")
	assert.Equal(t, http.StatusOK, code)
	issueTo(t, router, rpcAlice, "10")
}

func TestMetadataEndpoints(t *testing.T) {
	_, router := newTestRouter(t)
	registerPosition(t, router)

	code, env := doGet(t, router, "/class_values?class=1")
	assert.Equal(t, http.StatusOK, code)
	var values []ledger.Value
	assert.NoError(t, json.Unmarshal(env.Data, &values))
	assert.Equal(t, 2, len(values))
	assert.Equal(t, "corp-bond-2026", values[0].Str)
	assert.Equal(t, "500", values[1].Num.String())

	code, env = doGet(t, router, "/class_metadata?class=1")
	assert.Equal(t, http.StatusOK, code)
	var descriptors []string
	assert.NoError(t, json.Unmarshal(env.Data, &descriptors))
	assert.Equal(t, []string{"name", "coupon_rate"}, descriptors)

	code, env = doGet(t, router, "/nonce_metadata?class=1&nonce=1")
	assert.Equal(t, http.StatusOK, code)
	assert.NoError(t, json.Unmarshal(env.Data, &descriptors))
	assert.Equal(t, []string{"issuance", "maturity"}, descriptors)

	code, _ = doGet(t, router, "/class_values?class=9")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = doGet(t, router, "/nonce_values?class=1&nonce=9")
	assert.Equal(t, http.StatusNotFound, code)

	// default provider reports redemption progress
	issueTo(t, router, rpcAlice, "1000")
	code, env = doGet(t, router, "/progress?class=1&nonce=1")
	assert.Equal(t, http.StatusOK, code)
	var progResp struct {
		Achieved  string `json:"achieved"`
		Remaining string `json:"remaining"`
	}
	assert.NoError(t, json.Unmarshal(env.Data, &progResp))
	assert.Equal(t, "0", progResp.Achieved)
	assert.Equal(t, "1000", progResp.Remaining)
}

func TestEventEndpoints(t *testing.T) {
	_, router := newTestRouter(t)
	registerPosition(t, router)
	issueTo(t, router, rpcAlice, "1000")

	code, env := doPost(t, router, "/redeem", RetireRequest{
		Operator: rpcIssuer.Hex(),
		From:     rpcAlice.Hex(),
		Class:    1,
		Nonce:    1,
		Amount:   "100",
	})
	assert.Equal(t, http.StatusOK, code, env.Err)

	code, env = doGet(t, router, "/events?from=1&count=10")
	assert.Equal(t, http.StatusOK, code)
	var evResp struct {
		Tail   uint64                  `json:"tail"`
		Events []*eventlog.EventRecord `json:"events"`
	}
	assert.NoError(t, json.Unmarshal(env.Data, &evResp))
	assert.Equal(t, uint64(2), evResp.Tail)
	assert.Equal(t, 2, len(evResp.Events))
	assert.Equal(t, "issue", evResp.Events[0].KindName)
	assert.Equal(t, "redeem", evResp.Events[1].KindName)

	code, env = doGet(t, router, "/event?seq=1")
	assert.Equal(t, http.StatusOK, code)
	var rec eventlog.EventRecord
	assert.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, "issue", rec.KindName)
	assert.Equal(t, rpcAlice, rec.To)

	code, _ = doGet(t, router, "/event?seq=99")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestEndpointListing(t *testing.T) {
	_, router := newTestRouter(t)
	req, _ := http.NewRequest("GET", "/", nil)
	req.Host = "localhost:8000"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	body := w.Body.String()
	for _, name := range []string{
		"transfer_from", "issue", "redeem", "burn", "approve", "batch_approve",
		"set_approval_for_all", "register_class", "register_nonce",
		"balance", "allowance", "is_approved_for", "progress", "events",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("endpoint %s missing from listing", name)
		}
	}
}
