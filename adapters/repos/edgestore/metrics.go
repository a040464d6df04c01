//               _
// __   __  ___ | |  ___    __ _   ___  _ __
// \ \ / / / _ \| | / _ \  / _` | / _ \| '_ \
//  \ V / |  __/| || (_) || (_| ||  __/| | | |
//   \_/   \___||_| \___/  \__, | \___||_| |_|
//                         |___/
//
//  Copyright © 2019 - 2026 Velogen Labs. All rights reserved.
//
//  CONTACT: hello@velogen.io
//

package edgestore

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/velogen/velogen/usecases/monitoring"
)

type Metrics struct {
	enabled bool
	written prometheus.Counter
	read    prometheus.Counter
}

func newWriterMetrics(prom *monitoring.PrometheusMetrics, store string) *Metrics {
	if prom == nil {
		return &Metrics{}
	}

	return &Metrics{
		enabled: true,
		written: prom.EdgeStoreEdgesWritten.With(prometheus.Labels{
			"store": store,
		}),
	}
}

func newReaderMetrics(prom *monitoring.PrometheusMetrics, store, mode string) *Metrics {
	if prom == nil {
		return &Metrics{}
	}

	return &Metrics{
		enabled: true,
		read: prom.EdgeStoreEdgesRead.With(prometheus.Labels{
			"store": store,
			"mode":  mode,
		}),
	}
}

func (m *Metrics) WroteEdge() {
	if !m.enabled {
		return
	}

	m.written.Inc()
}

func (m *Metrics) ReadEdge() {
	if !m.enabled {
		return
	}

	m.read.Inc()
}
