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
	"strconv"

	"github.com/annchain/bondledger/common/math"
	"github.com/annchain/bondledger/ledger"
	"github.com/gin-gonic/gin"
)

// maximum records one events query may return
const maxEventPageSize = 100

func (r *RpcController) queryPosition(c *gin.Context) (ledger.ClassID, ledger.NonceID, bool) {
	class, err := queryUint64(c, "class")
	if err != nil {
		Response(c, http.StatusBadRequest, err, nil)
		return 0, 0, false
	}
	nonce, err := queryUint64(c, "nonce")
	if err != nil {
		Response(c, http.StatusBadRequest, err, nil)
		return 0, 0, false
	}
	return ledger.ClassID(class), ledger.NonceID(nonce), true
}

func (r *RpcController) supply(c *gin.Context, pick func(ledger.ClassID, ledger.NonceID) *math.BigInt) {
	cors(c)
	class, nonce, ok := r.queryPosition(c)
	if !ok {
		return
	}
	Response(c, http.StatusOK, nil, gin.H{
		"class":  class,
		"nonce":  nonce,
		"supply": pick(class, nonce),
	})
	return
}

func (r *RpcController) TotalSupply(c *gin.Context) {
	r.supply(c, r.Ledger.TotalSupply)
}

func (r *RpcController) ActiveSupply(c *gin.Context) {
	r.supply(c, r.Ledger.ActiveSupply)
}

func (r *RpcController) RedeemedSupply(c *gin.Context) {
	r.supply(c, r.Ledger.RedeemedSupply)
}

func (r *RpcController) BurnedSupply(c *gin.Context) {
	r.supply(c, r.Ledger.BurnedSupply)
}

// Supply returns all four counters of one position at once.
func (r *RpcController) Supply(c *gin.Context) {
	cors(c)
	class, nonce, ok := r.queryPosition(c)
	if !ok {
		return
	}
	Response(c, http.StatusOK, nil, gin.H{
		"class":    class,
		"nonce":    nonce,
		"total":    r.Ledger.TotalSupply(class, nonce),
		"active":   r.Ledger.ActiveSupply(class, nonce),
		"redeemed": r.Ledger.RedeemedSupply(class, nonce),
		"burned":   r.Ledger.BurnedSupply(class, nonce),
	})
	return
}

func (r *RpcController) Balance(c *gin.Context) {
	cors(c)
	address, err := queryAddress(c, "address")
	if err != nil {
		Response(c, http.StatusBadRequest, err, nil)
		return
	}
	class, nonce, ok := r.queryPosition(c)
	if !ok {
		return
	}
	b := r.Ledger.BalanceOf(address, class, nonce)
	Response(c, http.StatusOK, nil, gin.H{
		"address": address,
		"balance": b,
	})
	return
}

func (r *RpcController) Allowance(c *gin.Context) {
	cors(c)
	owner, err := queryAddress(c, "owner")
	if err != nil {
		Response(c, http.StatusBadRequest, err, nil)
		return
	}
	spender, err := queryAddress(c, "spender")
	if err != nil {
		Response(c, http.StatusBadRequest, err, nil)
		return
	}
	class, nonce, ok := r.queryPosition(c)
	if !ok {
		return
	}
	Response(c, http.StatusOK, nil, gin.H{
		"owner":     owner,
		"spender":   spender,
		"remaining": r.Ledger.Allowance(owner, spender, class, nonce),
	})
	return
}

func (r *RpcController) IsApprovedFor(c *gin.Context) {
	cors(c)
	owner, err := queryAddress(c, "owner")
	if err != nil {
		Response(c, http.StatusBadRequest, err, nil)
		return
	}
	operator, err := queryAddress(c, "operator")
	if err != nil {
		Response(c, http.StatusBadRequest, err, nil)
		return
	}
	class, err := queryUint64(c, "class")
	if err != nil {
		Response(c, http.StatusBadRequest, err, nil)
		return
	}
	Response(c, http.StatusOK, nil, gin.H{
		"owner":    owner,
		"operator": operator,
		"approved": r.Ledger.IsApprovedFor(owner, operator, ledger.ClassID(class)),
	})
	return
}

func (r *RpcController) ClassValues(c *gin.Context) {
	cors(c)
	class, err := queryUint64(c, "class")
	if err != nil {
		Response(c, http.StatusBadRequest, err, nil)
		return
	}
	values, err := r.Ledger.ClassValues(ledger.ClassID(class))
	if err != nil {
		Response(c, errorStatus(err), err, nil)
		return
	}
	Response(c, http.StatusOK, nil, values)
	return
}

func (r *RpcController) ClassMetadata(c *gin.Context) {
	cors(c)
	class, err := queryUint64(c, "class")
	if err != nil {
		Response(c, http.StatusBadRequest, err, nil)
		return
	}
	descriptors, err := r.Ledger.ClassMetadata(ledger.ClassID(class))
	if err != nil {
		Response(c, errorStatus(err), err, nil)
		return
	}
	Response(c, http.StatusOK, nil, descriptors)
	return
}

func (r *RpcController) NonceValues(c *gin.Context) {
	cors(c)
	class, nonce, ok := r.queryPosition(c)
	if !ok {
		return
	}
	values, err := r.Ledger.NonceValues(class, nonce)
	if err != nil {
		Response(c, errorStatus(err), err, nil)
		return
	}
	Response(c, http.StatusOK, nil, values)
	return
}

func (r *RpcController) NonceMetadata(c *gin.Context) {
	cors(c)
	class, nonce, ok := r.queryPosition(c)
	if !ok {
		return
	}
	descriptors, err := r.Ledger.NonceMetadata(class, nonce)
	if err != nil {
		Response(c, errorStatus(err), err, nil)
		return
	}
	Response(c, http.StatusOK, nil, descriptors)
	return
}

func (r *RpcController) Progress(c *gin.Context) {
	cors(c)
	class, nonce, ok := r.queryPosition(c)
	if !ok {
		return
	}
	achieved, remaining, err := r.Ledger.GetProgress(class, nonce)
	if err != nil {
		Response(c, errorStatus(err), err, nil)
		return
	}
	Response(c, http.StatusOK, nil, gin.H{
		"achieved":  achieved,
		"remaining": remaining,
	})
	return
}

func (r *RpcController) Events(c *gin.Context) {
	cors(c)
	if r.EventLog == nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("event log not enabled"), nil)
		return
	}
	var from uint64
	var err error
	if s := c.Query("from"); s != "" {
		from, err = strconv.ParseUint(s, 10, 64)
		if err != nil {
			Response(c, http.StatusBadRequest, fmt.Errorf("from format error: %v", err), nil)
			return
		}
	}
	count := 20
	if s := c.Query("count"); s != "" {
		count, err = strconv.Atoi(s)
		if err != nil || count < 0 {
			Response(c, http.StatusBadRequest, fmt.Errorf("count format error"), nil)
			return
		}
	}
	if count > maxEventPageSize {
		count = maxEventPageSize
	}
	records, err := r.EventLog.Range(from, count)
	if err != nil {
		Response(c, http.StatusInternalServerError, err, nil)
		return
	}
	Response(c, http.StatusOK, nil, gin.H{
		"tail":   r.EventLog.Tail(),
		"events": records,
	})
	return
}

func (r *RpcController) Event(c *gin.Context) {
	cors(c)
	if r.EventLog == nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("event log not enabled"), nil)
		return
	}
	seq, err := queryUint64(c, "seq")
	if err != nil {
		Response(c, http.StatusBadRequest, err, nil)
		return
	}
	rec, err := r.EventLog.Get(seq)
	if err != nil {
		Response(c, http.StatusNotFound, fmt.Errorf("event not found"), nil)
		return
	}
	Response(c, http.StatusOK, nil, rec)
	return
}
