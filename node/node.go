package node

import (
	"path/filepath"

	"github.com/annchain/bondledger/bonddb"
	"github.com/annchain/bondledger/common"
	"github.com/annchain/bondledger/common/utilfuncs"
	"github.com/annchain/bondledger/eventbus"
	"github.com/annchain/bondledger/eventlog"
	"github.com/annchain/bondledger/ledger"
	"github.com/annchain/bondledger/performance"
	"github.com/annchain/bondledger/rpc"
	"github.com/annchain/bondledger/status"
	"github.com/annchain/bondledger/wserver"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Node is the basic entrypoint for all modules to start.
type Node struct {
	Components []Component

	ledger   *ledger.Ledger
	eventLog *eventlog.EventLog
}

func NewNode() *Node {
	n := new(Node)
	// Order matters.
	// Open the store and seed it first, then provide service.
	db := openDatabase()

	authority := ledger.NewStaticAuthority()
	for _, issuer := range viper.GetStringSlice("authority.issuers") {
		addr, err := common.StringToAddress(issuer)
		utilfuncs.PanicIfError(err, "issuer in authority.issuers")
		authority.AddGlobalIssuer(addr)
	}

	var progress ledger.ProgressProvider
	switch viper.GetString("progress.provider") {
	case "maturity":
		progress = &ledger.MaturityProgress{}
	default:
		progress = &ledger.RedemptionProgress{}
	}

	eventLog, err := eventlog.NewEventLog(eventLogConfig(), db)
	utilfuncs.PanicIfError(err, "open event log")
	n.eventLog = eventLog

	bus := &eventbus.DefaultEventBus{}
	bus.InitDefault()
	for _, t := range []eventbus.EventType{
		ledger.TransferEventType,
		ledger.IssueEventType,
		ledger.RedeemEventType,
		ledger.BurnEventType,
		ledger.ApprovalForEventType,
	} {
		bus.ListenTo(eventbus.EventHandlerRegisterInfo{
			Type:    t,
			Name:    ledger.EventTypeName(t),
			Handler: eventLog,
		})
	}
	bus.Build()

	lg, err := ledger.NewLedger(ledgerConfig(), db, authority, progress, bus)
	utilfuncs.PanicIfError(err, "create ledger")
	n.ledger = lg

	service := newLedgerService(lg, db)
	n.Components = append(n.Components, service)

	if genesisPath := viper.GetString("genesis.path"); genesisPath != "" {
		genesis, err := ledger.LoadGenesis(genesisPath)
		utilfuncs.PanicIfError(err, "load genesis")
		authority.AddGlobalIssuer(genesis.Issuer)
		err = genesis.Apply(lg)
		utilfuncs.PanicIfError(err, "apply genesis")
	}

	monitor := &performance.PerformanceMonitor{
		IntervalSeconds: viper.GetInt("performance.interval_seconds"),
	}
	monitor.Register(service)
	monitor.Register(eventLog)

	if viper.GetBool("ws.enabled") {
		wsServer := wserver.NewServer(":" + viper.GetString("ws.port"))
		eventLog.Downstream = wsServer.EventChan
		monitor.Register(wsServer)
		n.Components = append(n.Components, wsServer)
	}

	if viper.GetBool("rpc.enabled") {
		controller := &rpc.RpcController{
			Ledger:   lg,
			EventLog: eventLog,
		}
		n.Components = append(n.Components, rpc.NewRpcServer(viper.GetString("rpc.port"), controller))
	}

	if reportUrl := viper.GetString("report.url"); reportUrl != "" {
		reporter := &performance.SoccerdashReporter{
			Id:     getHostname(),
			IpPort: reportUrl,
			Logger: logrus.StandardLogger(),
		}
		reporter.InitDefault()
		monitor.Reporters = append(monitor.Reporters, reporter)
	}
	n.Components = append(n.Components, monitor)

	status.NodeName.Store(getHostname())
	return n
}

func (n *Node) Start() {
	for _, component := range n.Components {
		logrus.Infof("Starting %s", component.Name())
		component.Start()
		logrus.Infof("Started: %s", component.Name())
	}
	status.MarkStarted()
	logrus.Info("Node Started")
}

func (n *Node) Stop() {
	for i := len(n.Components) - 1; i >= 0; i-- {
		comp := n.Components[i]
		logrus.Infof("Stopping %s", comp.Name())
		comp.Stop()
		logrus.Infof("Stopped: %s", comp.Name())
	}
	logrus.Info("Node Stopped")
}

func openDatabase() bonddb.Database {
	switch viper.GetString("db.name") {
	case "leveldb":
		path := viper.GetString("db.path")
		if path == "" {
			path = filepath.Join(viper.GetString("datadir"), "bondledger")
		}
		db, err := bonddb.NewLevelDB(path, viper.GetInt("db.cache"), viper.GetInt("db.handles"))
		utilfuncs.PanicIfError(err, "open leveldb")
		return db
	default:
		return bonddb.NewMemDatabase()
	}
}

func ledgerConfig() ledger.LedgerConfig {
	conf := ledger.DefaultLedgerConfig()
	if size := viper.GetInt("ledger.cache"); size > 0 {
		conf.CleanCacheSize = size
	}
	return conf
}

func eventLogConfig() eventlog.EventLogConfig {
	conf := eventlog.DefaultEventLogConfig()
	if size := viper.GetInt("eventlog.cache"); size > 0 {
		conf.CacheMaxSize = size
	}
	if seconds := viper.GetInt("eventlog.expiration_seconds"); seconds > 0 {
		conf.CacheExpirationSeconds = seconds
	}
	return conf
}
