package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"
)

// HistogramData is a point-in-time summary of a histogram. All five fields
// are derived from the same internal snapshot, so they are mutually
// consistent even while samples keep arriving.
type HistogramData struct {
	Median            float64
	Percentile95      float64
	Percentile99      float64
	Average           float64
	StandardDeviation float64
}

// Histogram folds an unbounded stream of uint64 samples (typically
// microseconds or bytes) into bounded aggregate state and answers summary
// queries on demand. Add must be safe under heavy concurrent use; queries
// may run at any time and never block writers. Quantiles are approximate:
// the error is bounded by the width of the bucket straddling the requested
// rank, which for the exponential bucket layout used here is at most half
// the reported value. An empty histogram reports 0 for every statistic.
type Histogram interface {
	// Add folds one sample into the histogram.
	Add(value uint64)
	// Clear resets the histogram to its empty baseline.
	Clear()

	Median() float64
	Percentile(p float64) float64
	Average() float64
	StandardDeviation() float64
	// Data fills all five summary statistics from a single state snapshot.
	Data(data *HistogramData)
	// String renders a human-readable summary plus a per-bucket table.
	String() string
}

// NewHistogram returns the production concurrent bucketed estimator.
func NewHistogram() Histogram {
	return newBucketedHistogram()
}

// bucketLimits holds the inclusive upper bound of every bucket. Bounds start
// at 1 and grow by roughly 1.5x, covering single microseconds or bytes up to
// the exabyte/minute range; the final bound is a catch-all for anything
// beyond the exponential span. Shared read-only state for all histograms.
var bucketLimits = makeBucketLimits()

const maxTrackedValue = uint64(1) << 60

func makeBucketLimits() []uint64 {
	limits := make([]uint64, 0, 128)
	for cur := uint64(1); cur < maxTrackedValue; {
		limits = append(limits, cur)
		next := cur + cur/2
		if next == cur {
			next = cur + 1
		}
		cur = next
	}
	return append(limits, math.MaxUint64)
}

// bucketedHistogram is the production Histogram: one atomic counter per
// bucket plus running moment accumulators, all updated lock-free. The sum of
// squares is kept as float64 bits behind a CAS loop because squared byte
// counts overflow uint64 almost immediately.
type bucketedHistogram struct {
	counts     []atomic.Uint64 // one per bucketLimits entry
	num        atomic.Uint64
	sum        atomic.Uint64
	sumSquares atomic.Uint64 // math.Float64bits
	min        atomic.Uint64 // MaxUint64 while empty
	max        atomic.Uint64
}

func newBucketedHistogram() *bucketedHistogram {
	h := &bucketedHistogram{
		counts: make([]atomic.Uint64, len(bucketLimits)),
	}
	h.min.Store(math.MaxUint64)
	return h
}

// Add folds one sample in: O(log B) bucket lookup, then a handful of atomic
// updates. No locks, no allocation.
func (h *bucketedHistogram) Add(value uint64) {
	idx := sort.Search(len(bucketLimits), func(i int) bool {
		return value <= bucketLimits[i]
	})
	h.counts[idx].Add(1)
	h.num.Add(1)
	h.sum.Add(value)
	fv := float64(value)
	addFloat(&h.sumSquares, fv*fv)
	for {
		old := h.min.Load()
		if value >= old || h.min.CompareAndSwap(old, value) {
			break
		}
	}
	for {
		old := h.max.Load()
		if value <= old || h.max.CompareAndSwap(old, value) {
			break
		}
	}
}

// addFloat adds v to the float64 stored in bits, lock-free.
func addFloat(bits *atomic.Uint64, v float64) {
	for {
		old := bits.Load()
		next := math.Float64bits(math.Float64frombits(old) + v)
		if bits.CompareAndSwap(old, next) {
			return
		}
	}
}

// Clear resets every accumulator. Concurrent Adds may interleave with the
// reset; callers wanting a clean cut quiesce writers first.
func (h *bucketedHistogram) Clear() {
	for i := range h.counts {
		h.counts[i].Store(0)
	}
	h.num.Store(0)
	h.sum.Store(0)
	h.sumSquares.Store(0)
	h.min.Store(math.MaxUint64)
	h.max.Store(0)
}

// histogramSnapshot is a bounded-staleness copy of the accumulators. Bucket
// counters are loaded one by one while writers proceed, which is the
// staleness the query contract allows; every statistic computed from one
// snapshot is internally consistent.
type histogramSnapshot struct {
	counts     []uint64
	num        uint64
	sum        uint64
	sumSquares float64
	min        uint64
	max        uint64
}

func (h *bucketedHistogram) snapshot() histogramSnapshot {
	s := histogramSnapshot{
		counts:     make([]uint64, len(h.counts)),
		num:        h.num.Load(),
		sum:        h.sum.Load(),
		sumSquares: math.Float64frombits(h.sumSquares.Load()),
		min:        h.min.Load(),
		max:        h.max.Load(),
	}
	for i := range h.counts {
		s.counts[i] = h.counts[i].Load()
	}
	if s.num == 0 {
		s.min = 0
	}
	return s
}

// percentile scans bucket counts from the low end until the cumulative count
// reaches p% of the total, then interpolates linearly inside the straddling
// bucket. The estimate is clamped to the observed [min, max], which keeps it
// exact for single-valued streams and monotone in p.
func (s *histogramSnapshot) percentile(p float64) float64 {
	if s.num == 0 {
		return 0
	}
	if p < 0 {
		p = 0
	} else if p > 100 {
		p = 100
	}
	threshold := p / 100 * float64(s.num)
	var cumulative float64
	for i, c := range s.counts {
		if c == 0 {
			continue
		}
		cumulative += float64(c)
		if cumulative >= threshold {
			left := 0.0
			if i > 0 {
				left = float64(bucketLimits[i-1])
			}
			right := float64(bucketLimits[i])
			pos := (threshold - (cumulative - float64(c))) / float64(c)
			r := left + pos*(right-left)
			if mn := float64(s.min); r < mn {
				r = mn
			}
			if mx := float64(s.max); r > mx {
				r = mx
			}
			return r
		}
	}
	return float64(s.max)
}

func (s *histogramSnapshot) average() float64 {
	if s.num == 0 {
		return 0
	}
	return float64(s.sum) / float64(s.num)
}

func (s *histogramSnapshot) standardDeviation() float64 {
	if s.num == 0 {
		return 0
	}
	mean := s.average()
	variance := s.sumSquares/float64(s.num) - mean*mean
	if variance < 0 {
		// floating-point residue on near-constant streams
		variance = 0
	}
	return math.Sqrt(variance)
}

func (h *bucketedHistogram) Median() float64 {
	s := h.snapshot()
	return s.percentile(50)
}

func (h *bucketedHistogram) Percentile(p float64) float64 {
	s := h.snapshot()
	return s.percentile(p)
}

func (h *bucketedHistogram) Average() float64 {
	s := h.snapshot()
	return s.average()
}

func (h *bucketedHistogram) StandardDeviation() float64 {
	s := h.snapshot()
	return s.standardDeviation()
}

func (h *bucketedHistogram) Data(data *HistogramData) {
	s := h.snapshot()
	data.Median = s.percentile(50)
	data.Percentile95 = s.percentile(95)
	data.Percentile99 = s.percentile(99)
	data.Average = s.average()
	data.StandardDeviation = s.standardDeviation()
}

func (h *bucketedHistogram) String() string {
	s := h.snapshot()

	var b strings.Builder
	fmt.Fprintf(&b, "Count: %d  Average: %.4f  StdDev: %.2f\n",
		s.num, s.average(), s.standardDeviation())
	fmt.Fprintf(&b, "Min: %d  Median: %.4f  Max: %d\n",
		s.min, s.percentile(50), s.max)
	fmt.Fprintf(&b, "Percentiles: P50: %.2f P75: %.2f P99: %.2f P99.9: %.2f P99.99: %.2f\n",
		s.percentile(50), s.percentile(75), s.percentile(99),
		s.percentile(99.9), s.percentile(99.99))
	b.WriteString(strings.Repeat("-", 64))
	b.WriteByte('\n')
	if s.num == 0 {
		return b.String()
	}

	var cumulative uint64
	for i, c := range s.counts {
		if c == 0 {
			continue
		}
		cumulative += c
		left := uint64(0)
		if i > 0 {
			left = bucketLimits[i-1]
		}
		right := "inf"
		if bucketLimits[i] != math.MaxUint64 {
			right = fmt.Sprintf("%d", bucketLimits[i])
		}
		percent := float64(c) / float64(s.num) * 100
		cumPercent := float64(cumulative) / float64(s.num) * 100
		// one hash per 5% of the total
		marks := strings.Repeat("#", int(percent/5+0.5))
		fmt.Fprintf(&b, "[ %12d, %12s ) %10d %8.3f%% %8.3f%% %s\n",
			left, right, c, percent, cumPercent, marks)
	}
	return b.String()
}
