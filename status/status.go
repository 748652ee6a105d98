// Package status holds process wide flags shared across components.
package status

import (
	"time"

	"go.uber.org/atomic"
)

// Version is stamped by the build.
var Version = "0.0.1"

var (
	// MaintenanceMode refuses ledger writes over RPC while set. Reads
	// stay available.
	MaintenanceMode = atomic.NewBool(false)

	// NodeName is the reporting identity of this process.
	NodeName = atomic.NewString("bondledger")

	// StartupTimestamp is the unix time the node finished starting.
	StartupTimestamp = atomic.NewInt64(0)
)

func MarkStarted() {
	StartupTimestamp.Store(time.Now().Unix())
}

// UptimeSeconds returns 0 until MarkStarted has run.
func UptimeSeconds() int64 {
	started := StartupTimestamp.Load()
	if started == 0 {
		return 0
	}
	return time.Now().Unix() - started
}
