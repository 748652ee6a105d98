package node

import (
	"time"

	"github.com/annchain/bondledger/bonddb"
	"github.com/annchain/bondledger/ledger"
	"github.com/sirupsen/logrus"
)

const flushIntervalSeconds = 60

// ledgerService owns the store lifecycle. It is the first component up and
// the last one down, so the servers never see a closed database. While
// running it periodically retries records whose save failed during commit.
type ledgerService struct {
	ledger *ledger.Ledger
	db     bonddb.Database
	quit   chan bool
}

func newLedgerService(lg *ledger.Ledger, db bonddb.Database) *ledgerService {
	return &ledgerService{
		ledger: lg,
		db:     db,
		quit:   make(chan bool),
	}
}

func (s *ledgerService) Start() {
	go s.flushLoop()
}

func (s *ledgerService) Stop() {
	s.quit <- true
	if err := s.ledger.Flush(); err != nil {
		logrus.WithError(err).Error("flushing ledger on shutdown")
	}
	s.db.Close()
}

func (s *ledgerService) Name() string {
	return "Ledger"
}

func (s *ledgerService) GetBenchmarks() map[string]interface{} {
	return s.ledger.GetBenchmarks()
}

func (s *ledgerService) flushLoop() {
	ticker := time.NewTicker(time.Second * flushIntervalSeconds)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.ledger.Flush(); err != nil {
				logrus.WithError(err).Error("flushing ledger")
			}
		case <-s.quit:
			return
		}
	}
}
