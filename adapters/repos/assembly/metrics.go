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

package assembly

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/velogen/velogen/usecases/monitoring"
)

// The cache counters are process wide on purpose: they keep their
// totals across graphs and refreshes and are reported once, at
// Shutdown.
var (
	degreeCacheHits   uint64
	degreeCacheMisses uint64
)

// Metrics wraps the graph's share of the central prometheus metrics.
// The zero value is a disabled no-op.
type Metrics struct {
	enabled bool

	vertices        prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	refreshDuration prometheus.Observer
}

func newMetrics(prom *monitoring.PrometheusMetrics, k int) *Metrics {
	if prom == nil {
		return &Metrics{}
	}

	kLabel := prometheus.Labels{"k": strconv.Itoa(k)}
	return &Metrics{
		enabled:         true,
		vertices:        prom.UnitigGraphVertices.With(kLabel),
		cacheHits:       prom.UnitigGraphDegreeCacheOps.With(prometheus.Labels{"result": "hit"}),
		cacheMisses:     prom.UnitigGraphDegreeCacheOps.With(prometheus.Labels{"result": "miss"}),
		refreshDuration: prom.UnitigGraphRefreshDuration.With(kLabel),
	}
}

func (m *Metrics) SetVertexCount(n int) {
	if !m.enabled {
		return
	}
	m.vertices.Set(float64(n))
}

func (m *Metrics) DegreeCacheHit() {
	if !m.enabled {
		return
	}
	m.cacheHits.Inc()
}

func (m *Metrics) DegreeCacheMiss() {
	if !m.enabled {
		return
	}
	m.cacheMisses.Inc()
}

func (m *Metrics) ObserveRefresh(d time.Duration) {
	if !m.enabled {
		return
	}
	m.refreshDuration.Observe(d.Seconds())
}
