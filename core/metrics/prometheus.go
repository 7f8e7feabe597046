// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.
package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Gauge ...
	Gauge instrument = iota
	// Counter ...
	Counter
	// Histogram ...
	Histogram
)

const namespace = "perps"

var (
	// ErrInstrumentNotSupported signals the specified instrument is not yet supported.
	ErrInstrumentNotSupported = errors.New("instrument type unsupported")
	// ErrInstrumentTypeMismatch signal the type of the instrument is not expected.
	ErrInstrumentTypeMismatch = errors.New("instrument is not of the expected type")
)

var (
	setupOnce sync.Once
	setupErr  error

	engineTime          *prometheus.CounterVec
	positionCounter     *prometheus.CounterVec
	rejectionCounter    *prometheus.CounterVec
	fundingCounter      *prometheus.CounterVec
	liquidationFund     *prometheus.GaugeVec
	protocolFee         *prometheus.GaugeVec
	fundingTimeDeltaHst *prometheus.HistogramVec
)

// abstract prometheus types.
type instrument int

// combine all possible prometheus options + way to differentiate between regular or vector type.
type instrumentOpts struct {
	opts    prometheus.Opts
	buckets []float64
	vectors []string
}

type mi struct {
	gaugeV     *prometheus.GaugeVec
	gauge      prometheus.Gauge
	counterV   *prometheus.CounterVec
	counter    prometheus.Counter
	histogramV *prometheus.HistogramVec
	histogram  prometheus.Histogram
}

// InstrumentOption - vararg for instrument options setting.
type InstrumentOption func(o *instrumentOpts)

// Vectors - configuration used to create a vector of a given interface, slice of label names.
func Vectors(labels ...string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.vectors = labels
	}
}

// Help - set the help field on instrument.
func Help(help string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Help = help
	}
}

// Namespace - set namespace.
func Namespace(ns string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Namespace = ns
	}
}

// Buckets - specific to histogram type.
func Buckets(b []float64) InstrumentOption {
	return func(o *instrumentOpts) {
		o.buckets = b
	}
}

// AddInstrument configure and register new metrics instrument.
func AddInstrument(reg prometheus.Registerer, t instrument, name string, opts ...InstrumentOption) (*mi, error) {
	var col prometheus.Collector
	ret := mi{}
	opt := instrumentOpts{
		opts: prometheus.Opts{
			Name: name,
		},
	}
	for _, o := range opts {
		o(&opt)
	}
	switch t {
	case Gauge:
		o := prometheus.GaugeOpts(opt.opts)
		if len(opt.vectors) == 0 {
			ret.gauge = prometheus.NewGauge(o)
			col = ret.gauge
		} else {
			ret.gaugeV = prometheus.NewGaugeVec(o, opt.vectors)
			col = ret.gaugeV
		}
	case Counter:
		o := prometheus.CounterOpts(opt.opts)
		if len(opt.vectors) == 0 {
			ret.counter = prometheus.NewCounter(o)
			col = ret.counter
		} else {
			ret.counterV = prometheus.NewCounterVec(o, opt.vectors)
			col = ret.counterV
		}
	case Histogram:
		o := opt.histogram()
		if len(opt.vectors) == 0 {
			ret.histogram = prometheus.NewHistogram(o)
			col = ret.histogram
		} else {
			ret.histogramV = prometheus.NewHistogramVec(o, opt.vectors)
			col = ret.histogramV
		}
	default:
		return nil, ErrInstrumentNotSupported
	}
	if err := reg.Register(col); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (i instrumentOpts) histogram() prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Name:        i.opts.Name,
		Namespace:   i.opts.Namespace,
		Subsystem:   i.opts.Subsystem,
		ConstLabels: i.opts.ConstLabels,
		Help:        i.opts.Help,
		Buckets:     i.buckets,
	}
}

// GaugeVec returns a prometheus GaugeVec instrument.
func (m mi) GaugeVec() (*prometheus.GaugeVec, error) {
	if m.gaugeV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.gaugeV, nil
}

// CounterVec returns a prometheus CounterVec instrument.
func (m mi) CounterVec() (*prometheus.CounterVec, error) {
	if m.counterV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.counterV, nil
}

func (m mi) HistogramVec() (*prometheus.HistogramVec, error) {
	if m.histogramV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.histogramV, nil
}

// Setup registers the instruments with the default registry. It is safe to
// call more than once.
func Setup() error {
	setupOnce.Do(func() {
		setupErr = setupMetrics(prometheus.DefaultRegisterer)
	})
	return setupErr
}

// Start enable metrics (given config). The returned server is nil when
// metrics are disabled.
func Start(conf Config) (*http.Server, error) {
	if !conf.Enabled {
		return nil, nil
	}
	if err := Setup(); err != nil {
		return nil, errors.Wrap(err, "could not set up metrics")
	}
	mux := http.NewServeMux()
	mux.Handle(conf.Path, promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", conf.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		_ = srv.ListenAndServe()
	}()
	return srv, nil
}

func setupMetrics(reg prometheus.Registerer) error {
	h, err := AddInstrument(
		reg,
		Counter,
		"engine_seconds_total",
		Namespace(namespace),
		Vectors("market", "engine", "fn"),
		Help("Time spent in engine operations"),
	)
	if err != nil {
		return err
	}
	if engineTime, err = h.CounterVec(); err != nil {
		return err
	}

	h, err = AddInstrument(
		reg,
		Counter,
		"positions_total",
		Namespace(namespace),
		Vectors("market", "op"),
		Help("Number of successful position operations"),
	)
	if err != nil {
		return err
	}
	if positionCounter, err = h.CounterVec(); err != nil {
		return err
	}

	h, err = AddInstrument(
		reg,
		Counter,
		"rejections_total",
		Namespace(namespace),
		Vectors("market", "op", "error"),
		Help("Number of rejected position operations"),
	)
	if err != nil {
		return err
	}
	if rejectionCounter, err = h.CounterVec(); err != nil {
		return err
	}

	h, err = AddInstrument(
		reg,
		Counter,
		"funding_settlements_total",
		Namespace(namespace),
		Vectors("market"),
		Help("Number of funding settlements that moved the growth accumulators"),
	)
	if err != nil {
		return err
	}
	if fundingCounter, err = h.CounterVec(); err != nil {
		return err
	}

	h, err = AddInstrument(
		reg,
		Histogram,
		"funding_time_delta_seconds",
		Namespace(namespace),
		Vectors("market"),
		Buckets([]float64{1, 10, 60, 300, 900, 3600, 28800}),
		Help("Seconds elapsed between funding settlements"),
	)
	if err != nil {
		return err
	}
	if fundingTimeDeltaHst, err = h.HistogramVec(); err != nil {
		return err
	}

	h, err = AddInstrument(
		reg,
		Gauge,
		"liquidation_fund",
		Namespace(namespace),
		Vectors("market"),
		Help("Liquidation fund balance, may be negative"),
	)
	if err != nil {
		return err
	}
	if liquidationFund, err = h.GaugeVec(); err != nil {
		return err
	}

	h, err = AddInstrument(
		reg,
		Gauge,
		"protocol_fee",
		Namespace(namespace),
		Vectors("market"),
		Help("Accumulated protocol fee"),
	)
	if err != nil {
		return err
	}
	protocolFee, err = h.GaugeVec()
	return err
}

// PositionCounterInc increments the position operation counter.
func PositionCounterInc(market, op string) {
	if positionCounter == nil {
		return
	}
	positionCounter.WithLabelValues(market, op).Inc()
}

// RejectionCounterInc counts a rejected operation by error.
func RejectionCounterInc(market, op string, err error) {
	if rejectionCounter == nil || err == nil {
		return
	}
	rejectionCounter.WithLabelValues(market, op, err.Error()).Inc()
}

// FundingSettled records a funding settlement covering timeDelta seconds.
func FundingSettled(market string, timeDelta uint64) {
	if fundingCounter == nil {
		return
	}
	fundingCounter.WithLabelValues(market).Inc()
	fundingTimeDeltaHst.WithLabelValues(market).Observe(float64(timeDelta))
}

// LiquidationFundSet updates the liquidation fund gauge.
func LiquidationFundSet(market string, v float64) {
	if liquidationFund == nil {
		return
	}
	liquidationFund.WithLabelValues(market).Set(v)
}

// ProtocolFeeSet updates the protocol fee gauge.
func ProtocolFeeSet(market string, v float64) {
	if protocolFee == nil {
		return
	}
	protocolFee.WithLabelValues(market).Set(v)
}

// TimeCounter measures the time spent in an engine call.
type TimeCounter struct {
	labelValues []string
	start       time.Time
}

// NewTimeCounter starts measuring, labels are market, engine and fn.
func NewTimeCounter(labelValues ...string) *TimeCounter {
	return &TimeCounter{
		labelValues: labelValues,
		start:       time.Now(),
	}
}

// EngineTimeCounterAdd stops the counter and adds the elapsed time.
func (t *TimeCounter) EngineTimeCounterAdd() {
	if engineTime == nil {
		return
	}
	engineTime.WithLabelValues(t.labelValues...).Add(time.Since(t.start).Seconds())
}
