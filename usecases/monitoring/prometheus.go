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

package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics holds every metric vector the assembly core exposes.
// Components derive their own guarded Metrics wrappers from it, a nil
// *PrometheusMetrics disables monitoring entirely.
type PrometheusMetrics struct {
	Registerer prometheus.Registerer

	EdgeStoreEdgesWritten *prometheus.CounterVec
	EdgeStoreEdgesRead    *prometheus.CounterVec

	UnitigGraphVertices        *prometheus.GaugeVec
	UnitigGraphDegreeCacheOps  *prometheus.CounterVec
	UnitigGraphRefreshDuration *prometheus.HistogramVec
}

func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = NoopRegisterer
	}

	return &PrometheusMetrics{
		Registerer: reg,

		EdgeStoreEdgesWritten: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "velogen_edge_store_edges_written_total",
				Help: "Edges appended to an edge store, by store name",
			}, []string{"store"}),

		EdgeStoreEdgesRead: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "velogen_edge_store_edges_read_total",
				Help: "Edges pulled from an edge store, by store name and read mode",
			}, []string{"store", "mode"}),

		UnitigGraphVertices: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "velogen_unitig_graph_vertices",
				Help: "Vertices currently held by a unitig graph, by k-mer size",
			}, []string{"k"}),

		UnitigGraphDegreeCacheOps: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "velogen_unitig_graph_degree_cache_ops_total",
				Help: "Out-degree lookups answered from cache (hit) or recomputed (miss)",
			}, []string{"result"}),

		UnitigGraphRefreshDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "velogen_unitig_graph_refresh_duration_seconds",
				Help:    "Wall time of unitig graph refresh passes",
				Buckets: prometheus.DefBuckets,
			}, []string{"k"}),
	}
}
