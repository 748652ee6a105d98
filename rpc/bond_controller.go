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
	"fmt"
	"net/http"

	"github.com/annchain/bondledger/common"
	"github.com/annchain/bondledger/common/math"
	"github.com/annchain/bondledger/ledger"
	"github.com/annchain/bondledger/status"
	"github.com/gin-gonic/gin"
)

type TransferRequest struct {
	Operator string `json:"operator"`
	From     string `json:"from"`
	To       string `json:"to"`
	Class    uint64 `json:"class"`
	Nonce    uint64 `json:"nonce"`
	Amount   string `json:"amount"`
}

type IssueRequest struct {
	Operator string `json:"operator"`
	To       string `json:"to"`
	Class    uint64 `json:"class"`
	Nonce    uint64 `json:"nonce"`
	Amount   string `json:"amount"`
}

type RetireRequest struct {
	Operator string `json:"operator"`
	From     string `json:"from"`
	Class    uint64 `json:"class"`
	Nonce    uint64 `json:"nonce"`
	Amount   string `json:"amount"`
}

type ApproveRequest struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Class   uint64 `json:"class"`
	Nonce   uint64 `json:"nonce"`
	Amount  string `json:"amount"`
}

type BatchApproveRequest struct {
	Owner   string   `json:"owner"`
	Spender string   `json:"spender"`
	Classes []uint64 `json:"classes"`
	Nonces  []uint64 `json:"nonces"`
	Amounts []string `json:"amounts"`
}

type SetApprovalRequest struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
	Class    uint64 `json:"class"`
	Approved bool   `json:"approved"`
}

// MetaValue is the wire form of one typed metadata slot. Numbers travel
// as decimal strings.
type MetaValue struct {
	String  string `json:"string_value"`
	Numeric string `json:"numeric_value"`
	Address string `json:"address_value"`
	Bool    bool   `json:"bool_value"`
}

type RegisterClassRequest struct {
	Issuer      string      `json:"issuer"`
	Class       uint64      `json:"class"`
	Values      []MetaValue `json:"values"`
	Descriptors []string    `json:"descriptors"`
}

type RegisterNonceRequest struct {
	Issuer      string      `json:"issuer"`
	Class       uint64      `json:"class"`
	Nonce       uint64      `json:"nonce"`
	Values      []MetaValue `json:"values"`
	Descriptors []string    `json:"descriptors"`
}

func toLedgerValues(in []MetaValue) ([]ledger.Value, error) {
	values := make([]ledger.Value, 0, len(in))
	for i, mv := range in {
		v := ledger.Value{Str: mv.String, Bool: mv.Bool, Num: math.NewBigInt(0)}
		if mv.Numeric != "" {
			num, ok := math.NewBigIntFromString(mv.Numeric, 10)
			if !ok {
				return nil, fmt.Errorf("value %d numeric format error: %s", i, mv.Numeric)
			}
			v.Num = num
		}
		if mv.Address != "" {
			addr, err := common.StringToAddress(mv.Address)
			if err != nil {
				return nil, fmt.Errorf("value %d address format error: %v", i, err)
			}
			v.Addr = addr
		}
		values = append(values, v)
	}
	return values, nil
}

func maintenanceGate(c *gin.Context) bool {
	if status.MaintenanceMode.Load() {
		Response(c, http.StatusServiceUnavailable, fmt.Errorf("maintenance mode"), nil)
		return false
	}
	return true
}

func (r *RpcController) TransferFrom(c *gin.Context) {
	var txReq TransferRequest

	if !maintenanceGate(c) {
		return
	}

	err := c.ShouldBindJSON(&txReq)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("request format error: %v", err), nil)
		return
	}
	operator, err := common.StringToAddress(txReq.Operator)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("operator address format error: %v", err), nil)
		return
	}
	from, err := common.StringToAddress(txReq.From)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("from address format error: %v", err), nil)
		return
	}
	to, err := common.StringToAddress(txReq.To)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("to address format error: %v", err), nil)
		return
	}

	amount, ok := math.NewBigIntFromString(txReq.Amount, 10)
	if !ok {
		err = fmt.Errorf("new Big Int error")
	}
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("amount format error: %v", err), nil)
		return
	}

	err = r.Ledger.TransferFrom(operator, from, to, ledger.ClassID(txReq.Class), ledger.NonceID(txReq.Nonce), amount)
	if err != nil {
		Response(c, errorStatus(err), err, nil)
		return
	}
	Response(c, http.StatusOK, nil, nil)
	return
}

func (r *RpcController) Issue(c *gin.Context) {
	var txReq IssueRequest

	if !maintenanceGate(c) {
		return
	}

	err := c.ShouldBindJSON(&txReq)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("request format error: %v", err), nil)
		return
	}
	operator, err := common.StringToAddress(txReq.Operator)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("operator address format error: %v", err), nil)
		return
	}
	to, err := common.StringToAddress(txReq.To)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("to address format error: %v", err), nil)
		return
	}

	amount, ok := math.NewBigIntFromString(txReq.Amount, 10)
	if !ok {
		err = fmt.Errorf("new Big Int error")
	}
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("amount format error: %v", err), nil)
		return
	}

	err = r.Ledger.Issue(operator, to, ledger.ClassID(txReq.Class), ledger.NonceID(txReq.Nonce), amount)
	if err != nil {
		Response(c, errorStatus(err), err, nil)
		return
	}
	Response(c, http.StatusOK, nil, nil)
	return
}

func (r *RpcController) retire(c *gin.Context, burn bool) {
	var txReq RetireRequest

	if !maintenanceGate(c) {
		return
	}

	err := c.ShouldBindJSON(&txReq)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("request format error: %v", err), nil)
		return
	}
	operator, err := common.StringToAddress(txReq.Operator)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("operator address format error: %v", err), nil)
		return
	}
	from, err := common.StringToAddress(txReq.From)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("from address format error: %v", err), nil)
		return
	}

	amount, ok := math.NewBigIntFromString(txReq.Amount, 10)
	if !ok {
		err = fmt.Errorf("new Big Int error")
	}
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("amount format error: %v", err), nil)
		return
	}

	if burn {
		err = r.Ledger.Burn(operator, from, ledger.ClassID(txReq.Class), ledger.NonceID(txReq.Nonce), amount)
	} else {
		err = r.Ledger.Redeem(operator, from, ledger.ClassID(txReq.Class), ledger.NonceID(txReq.Nonce), amount)
	}
	if err != nil {
		Response(c, errorStatus(err), err, nil)
		return
	}
	Response(c, http.StatusOK, nil, nil)
	return
}

func (r *RpcController) Redeem(c *gin.Context) {
	r.retire(c, false)
}

func (r *RpcController) Burn(c *gin.Context) {
	r.retire(c, true)
}

func (r *RpcController) Approve(c *gin.Context) {
	var txReq ApproveRequest

	if !maintenanceGate(c) {
		return
	}

	err := c.ShouldBindJSON(&txReq)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("request format error: %v", err), nil)
		return
	}
	owner, err := common.StringToAddress(txReq.Owner)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("owner address format error: %v", err), nil)
		return
	}
	spender, err := common.StringToAddress(txReq.Spender)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("spender address format error: %v", err), nil)
		return
	}

	amount, ok := math.NewBigIntFromString(txReq.Amount, 10)
	if !ok {
		err = fmt.Errorf("new Big Int error")
	}
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("amount format error: %v", err), nil)
		return
	}

	err = r.Ledger.Approve(owner, spender, ledger.ClassID(txReq.Class), ledger.NonceID(txReq.Nonce), amount)
	if err != nil {
		Response(c, errorStatus(err), err, nil)
		return
	}
	Response(c, http.StatusOK, nil, nil)
	return
}

func (r *RpcController) BatchApprove(c *gin.Context) {
	var txReq BatchApproveRequest

	if !maintenanceGate(c) {
		return
	}

	err := c.ShouldBindJSON(&txReq)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("request format error: %v", err), nil)
		return
	}
	owner, err := common.StringToAddress(txReq.Owner)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("owner address format error: %v", err), nil)
		return
	}
	spender, err := common.StringToAddress(txReq.Spender)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("spender address format error: %v", err), nil)
		return
	}

	classes := make([]ledger.ClassID, 0, len(txReq.Classes))
	for _, cl := range txReq.Classes {
		classes = append(classes, ledger.ClassID(cl))
	}
	nonces := make([]ledger.NonceID, 0, len(txReq.Nonces))
	for _, n := range txReq.Nonces {
		nonces = append(nonces, ledger.NonceID(n))
	}
	amounts := make([]*math.BigInt, 0, len(txReq.Amounts))
	for i, a := range txReq.Amounts {
		amount, ok := math.NewBigIntFromString(a, 10)
		if !ok {
			Response(c, http.StatusBadRequest, fmt.Errorf("amount %d format error: %s", i, a), nil)
			return
		}
		amounts = append(amounts, amount)
	}

	err = r.Ledger.BatchApprove(owner, spender, classes, nonces, amounts)
	if err != nil {
		Response(c, errorStatus(err), err, nil)
		return
	}
	Response(c, http.StatusOK, nil, nil)
	return
}

func (r *RpcController) SetApprovalForAll(c *gin.Context) {
	var txReq SetApprovalRequest

	if !maintenanceGate(c) {
		return
	}

	err := c.ShouldBindJSON(&txReq)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("request format error: %v", err), nil)
		return
	}
	owner, err := common.StringToAddress(txReq.Owner)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("owner address format error: %v", err), nil)
		return
	}
	operator, err := common.StringToAddress(txReq.Operator)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("operator address format error: %v", err), nil)
		return
	}

	err = r.Ledger.SetApprovalForAll(owner, operator, ledger.ClassID(txReq.Class), txReq.Approved)
	if err != nil {
		Response(c, errorStatus(err), err, nil)
		return
	}
	Response(c, http.StatusOK, nil, nil)
	return
}

func (r *RpcController) RegisterClass(c *gin.Context) {
	var txReq RegisterClassRequest

	if !maintenanceGate(c) {
		return
	}

	err := c.ShouldBindJSON(&txReq)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("request format error: %v", err), nil)
		return
	}
	issuer, err := common.StringToAddress(txReq.Issuer)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("issuer address format error: %v", err), nil)
		return
	}
	values, err := toLedgerValues(txReq.Values)
	if err != nil {
		Response(c, http.StatusBadRequest, err, nil)
		return
	}

	err = r.Ledger.RegisterClass(issuer, ledger.ClassID(txReq.Class), values, txReq.Descriptors)
	if err != nil {
		Response(c, errorStatus(err), err, nil)
		return
	}
	Response(c, http.StatusOK, nil, nil)
	return
}

func (r *RpcController) RegisterNonce(c *gin.Context) {
	var txReq RegisterNonceRequest

	if !maintenanceGate(c) {
		return
	}

	err := c.ShouldBindJSON(&txReq)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("request format error: %v", err), nil)
		return
	}
	issuer, err := common.StringToAddress(txReq.Issuer)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("issuer address format error: %v", err), nil)
		return
	}
	values, err := toLedgerValues(txReq.Values)
	if err != nil {
		Response(c, http.StatusBadRequest, err, nil)
		return
	}

	err = r.Ledger.RegisterNonce(issuer, ledger.ClassID(txReq.Class), ledger.NonceID(txReq.Nonce), values, txReq.Descriptors)
	if err != nil {
		Response(c, errorStatus(err), err, nil)
		return
	}
	Response(c, http.StatusOK, nil, nil)
	return
}
