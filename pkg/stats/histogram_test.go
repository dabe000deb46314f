package stats

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogram_Empty(t *testing.T) {
	h := NewHistogram()

	assert.Equal(t, 0.0, h.Median())
	assert.Equal(t, 0.0, h.Percentile(95))
	assert.Equal(t, 0.0, h.Percentile(99))
	assert.Equal(t, 0.0, h.Average())
	assert.Equal(t, 0.0, h.StandardDeviation())

	var data HistogramData
	h.Data(&data)
	assert.Equal(t, HistogramData{}, data)

	out := h.String()
	assert.Contains(t, out, "Count: 0")
}

func TestHistogram_SingleValueStream(t *testing.T) {
	h := NewHistogram()
	for i := 0; i < 1000; i++ {
		h.Add(10)
	}

	// The estimate is clamped to the observed [min, max], so a constant
	// stream reports exact values, not bucket-width approximations.
	assert.Equal(t, 10.0, h.Median())
	assert.Equal(t, 10.0, h.Percentile(95))
	assert.Equal(t, 10.0, h.Percentile(99))
	assert.Equal(t, 10.0, h.Average())
	assert.Equal(t, 0.0, h.StandardDeviation())
}

func TestHistogram_AverageAndStdDev(t *testing.T) {
	h := NewHistogram()
	for v := uint64(1); v <= 100; v++ {
		h.Add(v)
	}

	// sum = 5050, sum of squares = 338350
	assert.InDelta(t, 50.5, h.Average(), 1e-9)
	assert.InDelta(t, math.Sqrt(338350.0/100-50.5*50.5), h.StandardDeviation(), 1e-9)
}

func TestHistogram_UniformQuantiles(t *testing.T) {
	h := NewHistogram()
	for v := uint64(1); v <= 1000; v++ {
		h.Add(v)
	}

	// Quantile error is bounded by the straddling bucket's width; for the
	// 1.5x layout that is at most half the reported value.
	assert.InEpsilon(t, 500.0, h.Median(), 0.5)
	assert.InEpsilon(t, 950.0, h.Percentile(95), 0.5)
	assert.InEpsilon(t, 990.0, h.Percentile(99), 0.5)
}

func TestHistogram_PercentileMonotonic(t *testing.T) {
	h := NewHistogram()
	for i := uint64(0); i < 5000; i++ {
		h.Add(i * i % 9973)
	}

	prev := -1.0
	for p := 0.0; p <= 100.0; p += 2.5 {
		cur := h.Percentile(p)
		assert.GreaterOrEqual(t, cur, prev, "percentile %v below percentile %v", p, p-2.5)
		prev = cur
	}
}

func TestHistogram_PercentileClampsRange(t *testing.T) {
	h := NewHistogram()
	for v := uint64(1); v <= 100; v++ {
		h.Add(v)
	}

	assert.Equal(t, h.Percentile(0), h.Percentile(-10))
	assert.Equal(t, h.Percentile(100), h.Percentile(250))
}

func TestHistogram_ConcurrentOrderIndependence(t *testing.T) {
	values := make([]uint64, 10000)
	for i := range values {
		values[i] = uint64(i*31%4096) + 1
	}

	sequential := NewHistogram()
	for _, v := range values {
		sequential.Add(v)
	}

	concurrent := NewHistogram()
	const workers = 8
	var wg sync.WaitGroup
	chunk := len(values) / workers
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(part []uint64) {
			defer wg.Done()
			for _, v := range part {
				concurrent.Add(v)
			}
		}(values[w*chunk : (w+1)*chunk])
	}
	wg.Wait()

	var seq, conc HistogramData
	sequential.Data(&seq)
	concurrent.Data(&conc)

	// Bucket counts and the integer sum are commutative, so count-derived
	// statistics match exactly; the sum of squares accumulates in float64,
	// so the standard deviation may differ by rounding only.
	assert.Equal(t, seq.Median, conc.Median)
	assert.Equal(t, seq.Percentile95, conc.Percentile95)
	assert.Equal(t, seq.Percentile99, conc.Percentile99)
	assert.Equal(t, seq.Average, conc.Average)
	assert.InDelta(t, seq.StandardDeviation, conc.StandardDeviation, 1e-6)
}

func TestHistogram_DataMatchesFieldQueries(t *testing.T) {
	h := NewHistogram()
	for i := uint64(0); i < 2000; i++ {
		h.Add(i * 7 % 1500)
	}

	var data HistogramData
	h.Data(&data)

	assert.Equal(t, h.Median(), data.Median)
	assert.Equal(t, h.Percentile(95), data.Percentile95)
	assert.Equal(t, h.Percentile(99), data.Percentile99)
	assert.Equal(t, h.Average(), data.Average)
	assert.Equal(t, h.StandardDeviation(), data.StandardDeviation)
}

func TestHistogram_Clear(t *testing.T) {
	h := NewHistogram()
	for v := uint64(1); v <= 500; v++ {
		h.Add(v)
	}
	require.NotEqual(t, 0.0, h.Average())

	h.Clear()

	assert.Equal(t, 0.0, h.Median())
	assert.Equal(t, 0.0, h.Average())
	assert.Equal(t, 0.0, h.StandardDeviation())

	// usable again after the reset
	h.Add(42)
	assert.Equal(t, 42.0, h.Median())
	assert.Equal(t, 42.0, h.Average())
}

func TestHistogram_String(t *testing.T) {
	h := NewHistogram()
	for v := uint64(1); v <= 100; v++ {
		h.Add(v)
	}

	out := h.String()
	assert.Contains(t, out, "Count: 100")
	assert.Contains(t, out, "Min: 1")
	assert.Contains(t, out, "Max: 100")
	assert.Contains(t, out, "P99")
}

func TestBucketLimits_SortedAndCapped(t *testing.T) {
	require.NotEmpty(t, bucketLimits)
	for i := 1; i < len(bucketLimits); i++ {
		assert.Greater(t, bucketLimits[i], bucketLimits[i-1])
	}
	assert.Equal(t, uint64(math.MaxUint64), bucketLimits[len(bucketLimits)-1])
}

// Benchmarks

func BenchmarkHistogram_Add(b *testing.B) {
	h := NewHistogram()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Add(uint64(i % 100000))
	}
}

func BenchmarkHistogram_AddParallel(b *testing.B) {
	h := NewHistogram()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		v := uint64(0)
		for pb.Next() {
			v = v*6364136223846793005 + 1442695040888963407
			h.Add(v % 1000000)
		}
	})
}

func BenchmarkHistogram_Data(b *testing.B) {
	h := NewHistogram()
	for i := uint64(0); i < 100000; i++ {
		h.Add(i % 50000)
	}

	var data HistogramData
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Data(&data)
	}
}
