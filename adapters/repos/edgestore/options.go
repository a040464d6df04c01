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
	"github.com/sirupsen/logrus"

	"github.com/velogen/velogen/usecases/monitoring"
)

type WriterOption func(w *Writer) error

func WithWriterLogger(logger logrus.FieldLogger) WriterOption {
	return func(w *Writer) error {
		w.logger = logger
		return nil
	}
}

func WithWriterMetrics(prom *monitoring.PrometheusMetrics) WriterOption {
	return func(w *Writer) error {
		w.prom = prom
		return nil
	}
}

type ReaderOption func(r *Reader) error

func WithReaderLogger(logger logrus.FieldLogger) ReaderOption {
	return func(r *Reader) error {
		r.logger = logger
		return nil
	}
}

func WithReaderMetrics(prom *monitoring.PrometheusMetrics) ReaderOption {
	return func(r *Reader) error {
		r.prom = prom
		return nil
	}
}

// WithPread replaces the memory map with pread-style reads through a
// small page cache. Edges returned in this mode are private copies.
func WithPread(enabled bool) ReaderOption {
	return func(r *Reader) error {
		r.pread = enabled
		return nil
	}
}
