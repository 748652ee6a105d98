package performance

import (
	"github.com/latifrons/soccerdash"
	"github.com/sirupsen/logrus"
)

// SoccerdashReporter ships samples to a soccerdash board.
type SoccerdashReporter struct {
	Id         string
	IpPort     string
	BufferSize int
	Logger     *logrus.Logger
	reporter   *soccerdash.Reporter
}

func (s *SoccerdashReporter) InitDefault() {
	if s.BufferSize <= 0 {
		s.BufferSize = 100
	}
	s.reporter = &soccerdash.Reporter{
		Id:            s.Id,
		TargetAddress: s.IpPort,
		BufferSize:    s.BufferSize,
		Logger:        s.Logger,
	}
}

func (s SoccerdashReporter) Report(key string, value interface{}) {
	s.reporter.Report(key, value, false)
}
