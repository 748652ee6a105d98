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

	"github.com/annchain/bondledger/common"
	"github.com/annchain/bondledger/eventlog"
	"github.com/annchain/bondledger/ledger"
	"github.com/annchain/bondledger/status"
	"github.com/gin-gonic/gin"
)

type RpcController struct {
	Ledger   *ledger.Ledger
	EventLog *eventlog.EventLog
}

func cors(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
}

func checkError(err error, c *gin.Context, status int, message string) bool {
	if err != nil {
		c.JSON(status, gin.H{
			"error": fmt.Sprintf("%s:%s", err.Error(), message),
		})
		return false
	}
	return true
}

func Response(c *gin.Context, status int, err error, data interface{}) {
	var msg string
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, gin.H{
		"err":  msg,
		"data": data,
	})
}

// errorStatus maps ledger errors to http codes. Validation problems are
// the caller's fault, everything unexpected is ours.
func errorStatus(err error) int {
	switch err {
	case ledger.ErrUnauthorizedIssuer:
		return http.StatusForbidden
	case ledger.ErrUnknownPosition:
		return http.StatusNotFound
	case ledger.ErrInsufficientBalance, ledger.ErrInsufficientAllowance,
		ledger.ErrLengthMismatch, ledger.ErrNegativeAmount,
		ledger.ErrClassExists, ledger.ErrNonceExists:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func queryUint64(c *gin.Context, name string) (uint64, error) {
	s := c.Query(name)
	if s == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s format error: %v", name, err)
	}
	return v, nil
}

func queryAddress(c *gin.Context, name string) (common.Address, error) {
	addr, err := common.StringToAddress(c.Query(name))
	if err != nil {
		return common.Address{}, fmt.Errorf("%s format error: %v", name, err)
	}
	return addr, nil
}

//NodeStatus
type NodeStatus struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Uptime      int64  `json:"uptime"`
	Maintenance bool   `json:"maintenance"`
	EventTail   uint64 `json:"event_tail"`
}

//Status node status
func (r *RpcController) Status(c *gin.Context) {
	var ns NodeStatus
	ns.Name = status.NodeName.Load()
	ns.Version = status.Version
	ns.Uptime = status.UptimeSeconds()
	ns.Maintenance = status.MaintenanceMode.Load()
	if r.EventLog != nil {
		ns.EventTail = r.EventLog.Tail()
	}
	cors(c)
	Response(c, http.StatusOK, nil, ns)
}

// Maintenance flips the write gate. on=true refuses ledger writes until
// turned off again.
func (r *RpcController) Maintenance(c *gin.Context) {
	cors(c)
	on := c.Query("on")
	switch on {
	case "true":
		status.MaintenanceMode.Store(true)
	case "false":
		status.MaintenanceMode.Store(false)
	default:
		Response(c, http.StatusBadRequest, fmt.Errorf("on must be true or false"), nil)
		return
	}
	Response(c, http.StatusOK, nil, gin.H{
		"maintenance": status.MaintenanceMode.Load(),
	})
	return
}
