package main

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/storagekit/enginestats/pkg/config"
	"github.com/storagekit/enginestats/pkg/stats"
)

// workload drives synthetic engine traffic against one shared registry: N
// foreground workers issuing reads, writes and multigets, one background
// compactor, one periodic reporter. Latencies and sizes are synthesized, not
// measured; the point is contention on the recording path, not IO.
type workload struct {
	cfg      *config.Config
	registry stats.Statistics
	logger   zerolog.Logger
}

func newWorkload(cfg *config.Config, registry stats.Statistics, logger zerolog.Logger) *workload {
	return &workload{
		cfg:      cfg,
		registry: registry,
		logger:   logger,
	}
}

// run blocks until ctx is done and every goroutine has drained.
func (w *workload) run(ctx context.Context) {
	var wg sync.WaitGroup

	for i := 0; i < w.cfg.Workload.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.worker(ctx, id)
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.compactor(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.reporter(ctx)
	}()

	wg.Wait()
}

func (w *workload) worker(ctx context.Context, id int) {
	rng := rand.New(rand.NewSource(int64(id) + 1))
	s := w.registry
	wl := w.cfg.Workload

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		switch {
		case rng.Float64() < wl.ReadRatio:
			w.read(rng, s)
		case rng.Intn(20) == 0:
			w.multiget(rng, s)
		default:
			w.write(rng, s)
		}
	}
}

func (w *workload) read(rng *rand.Rand, s stats.Statistics) {
	size := w.valueSize(rng)
	stats.RecordTick(s, stats.NumberKeysRead, 1)
	stats.RecordTick(s, stats.BytesRead, size)

	// ~90% of lookups hit the block cache and come back fast; the rest go
	// to disk, where the bloom filter saves roughly half the file reads.
	if rng.Intn(10) == 0 {
		stats.RecordTick(s, stats.BlockCacheMiss, 1)
		if rng.Intn(2) == 0 {
			stats.RecordTick(s, stats.BloomFilterUseful, 1)
			stats.MeasureTime(s, stats.DBGet, latencyMicros(rng, 30))
		} else {
			stats.MeasureTime(s, stats.DBGet, latencyMicros(rng, 900))
		}
	} else {
		stats.RecordTick(s, stats.BlockCacheHit, 1)
		stats.MeasureTime(s, stats.DBGet, latencyMicros(rng, 12))
	}
}

func (w *workload) write(rng *rand.Rand, s stats.Statistics) {
	size := w.valueSize(rng)
	stats.RecordTick(s, stats.NumberKeysWritten, 1)
	stats.RecordTick(s, stats.BytesWritten, size)
	stats.MeasureTime(s, stats.DBWrite, latencyMicros(rng, 70))

	// occasional L0 back-pressure
	if rng.Intn(500) == 0 {
		stall := latencyMicros(rng, 4000)
		stats.RecordTick(s, stats.StallL0SlowdownMicros, stall)
	}
}

func (w *workload) multiget(rng *rand.Rand, s stats.Statistics) {
	batch := 1 + rng.Intn(w.cfg.Workload.MultigetBatch)
	var bytes uint64
	for i := 0; i < batch; i++ {
		bytes += w.valueSize(rng)
	}

	stats.RecordTick(s, stats.NumberMultigetCalls, 1)
	stats.RecordTick(s, stats.NumberMultigetKeysRead, uint64(batch))
	stats.RecordTick(s, stats.NumberMultigetBytesRead, bytes)
	stats.MeasureTime(s, stats.DBMultiget, uint64(batch)*latencyMicros(rng, 15))
}

// compactor simulates background compactions and their file churn.
func (w *workload) compactor(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Workload.CompactionInterval)
	defer ticker.Stop()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	s := w.registry

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		stats.RecordTick(s, stats.NumberFileOpens, uint64(2+rng.Intn(6)))
		stats.RecordTick(s, stats.NumberFileCloses, uint64(2+rng.Intn(6)))
		stats.RecordTick(s, stats.CompactionKeyDropNewerEntry, uint64(rng.Intn(2000)))
		stats.RecordTick(s, stats.CompactionKeyDropObsolete, uint64(rng.Intn(500)))

		stats.MeasureTime(s, stats.CompactionTime, latencyMicros(rng, 250000))
		stats.MeasureTime(s, stats.TableSyncMicros, latencyMicros(rng, 3000))
		stats.MeasureTime(s, stats.CompactionOutfileSyncMicros, latencyMicros(rng, 3000))
		stats.MeasureTime(s, stats.WALFileSyncMicros, latencyMicros(rng, 800))
		stats.MeasureTime(s, stats.ManifestFileSyncMicros, latencyMicros(rng, 400))
		stats.MeasureTime(s, stats.TableOpenIOMicros, latencyMicros(rng, 600))

		w.logger.Debug().Msg("Simulated compaction cycle")
	}
}

func (w *workload) reporter(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Report.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report(w.logger, w.registry)
		}
	}
}

func (w *workload) valueSize(rng *rand.Rand) uint64 {
	min := w.cfg.Workload.ValueSizeMin
	max := w.cfg.Workload.ValueSizeMax
	return uint64(min + rng.Intn(max-min+1))
}

// latencyMicros draws a long-tailed latency around the given typical value.
func latencyMicros(rng *rand.Rand, typical uint64) uint64 {
	v := uint64(rng.ExpFloat64() * float64(typical))
	if v < 1 {
		v = 1
	}
	return v
}
