package stats

import (
	"github.com/rs/zerolog/log"
)

// Statistics is the engine-wide metrics registry: one Ticker per TickerKind
// and one Histogram per HistogramKind, all pre-built and fixed for the life
// of the registry. A single Statistics value is shared by every subsystem
// that records metrics; Go's garbage collector supplies the shared-ownership
// lifetime, so the handle is simply passed down to whoever needs it. Every
// operation dispatches by direct array index. An out-of-range kind is a
// programming defect and panics.
type Statistics interface {
	// GetTickerCount returns the current value of the kind's counter.
	GetTickerCount(kind TickerKind) uint64
	// RecordTick adds count to the kind's counter.
	RecordTick(kind TickerKind, count uint64)
	// MeasureTime folds one sample into the kind's histogram.
	MeasureTime(kind HistogramKind, value uint64)
	// HistogramData fills data with the kind's current summary statistics.
	HistogramData(kind HistogramKind, data *HistogramData)
	// HistogramString renders the kind's histogram for humans.
	HistogramString(kind HistogramKind) string
}

// New returns a ready-to-use Statistics registry with every kind at its
// empty baseline.
func New() Statistics {
	r := &registry{}
	for i := range r.histograms {
		r.histograms[i] = newBucketedHistogram()
	}
	log.Debug().
		Int("tickers", int(TickerKindCount)).
		Int("histograms", int(HistogramKindCount)).
		Msg("Statistics registry created")
	return r
}

type registry struct {
	tickers    [TickerKindCount]Ticker
	histograms [HistogramKindCount]*bucketedHistogram
}

func (r *registry) GetTickerCount(kind TickerKind) uint64 {
	return r.tickers[kind].Count()
}

func (r *registry) RecordTick(kind TickerKind, count uint64) {
	r.tickers[kind].Add(count)
}

func (r *registry) MeasureTime(kind HistogramKind, value uint64) {
	r.histograms[kind].Add(value)
}

func (r *registry) HistogramData(kind HistogramKind, data *HistogramData) {
	r.histograms[kind].Data(data)
}

func (r *registry) HistogramString(kind HistogramKind) string {
	return r.histograms[kind].String()
}

// RecordTick adds count to the kind's counter on s. A nil s means metrics
// are disabled and the call is a silent no-op, so call sites never carry a
// presence check of their own.
func RecordTick(s Statistics, kind TickerKind, count uint64) {
	if s != nil {
		s.RecordTick(kind, count)
	}
}

// MeasureTime folds value into the kind's histogram on s, or does nothing
// when s is nil.
func MeasureTime(s Statistics, kind HistogramKind, value uint64) {
	if s != nil {
		s.MeasureTime(kind, value)
	}
}
