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
package performance

import (
	"runtime"
	"time"

	"github.com/annchain/bondledger/status"
	"github.com/sirupsen/logrus"
)

// PerformanceReporter pushes one sample to a dashboard.
type PerformanceReporter interface {
	Report(key string, value interface{})
}

// PerformanceDataProvider exposes the internal counters of a component.
type PerformanceDataProvider interface {
	Name() string
	GetBenchmarks() map[string]interface{}
}

// PerformanceMonitor periodically collects benchmarks from all registered
// providers, logs them and hands them to the reporters.
type PerformanceMonitor struct {
	IntervalSeconds int
	Reporters       []PerformanceReporter

	dataProviders []PerformanceDataProvider
	quit          bool
}

func (p *PerformanceMonitor) Register(dataProvider PerformanceDataProvider) {
	p.dataProviders = append(p.dataProviders, dataProvider)
}

func (p *PerformanceMonitor) Start() {
	interval := p.IntervalSeconds
	if interval <= 0 {
		interval = 10
	}
	go func() {
		p.quit = false
		for !p.quit {
			data := p.CollectData()
			for key, value := range data {
				for _, reporter := range p.Reporters {
					reporter.Report(key, value)
				}
			}
			logrus.WithFields(logrus.Fields(data)).Debug("performance")

			time.Sleep(time.Second * time.Duration(interval))
		}
	}()
}

func (p *PerformanceMonitor) Stop() {
	p.quit = true
}

func (PerformanceMonitor) Name() string {
	return "PerformanceMonitor"
}

func (p *PerformanceMonitor) CollectData() map[string]interface{} {
	data := make(map[string]interface{})
	for _, ch := range p.dataProviders {
		data[ch.Name()] = ch.GetBenchmarks()
	}
	// add additional fields
	data["goroutines"] = runtime.NumGoroutine()
	data["uptime"] = status.UptimeSeconds()
	return data
}
