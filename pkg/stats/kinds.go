package stats

import "fmt"

// TickerKind identifies one monotone event counter tracked by the engine.
// Kinds are contiguous and zero-based; TickerKindCount is the upper bound
// sentinel and never a valid kind. Adding a kind means inserting it before
// TickerKindCount and registering its name in TickerNames.
type TickerKind int

const (
	BlockCacheMiss TickerKind = iota
	BlockCacheHit
	// Number of times the bloom filter avoided a file read.
	BloomFilterUseful
	// Reasons a key was dropped during compaction.
	CompactionKeyDropNewerEntry
	CompactionKeyDropObsolete
	CompactionKeyDropUser
	// Keys written through Put/Write and keys served by Get.
	NumberKeysWritten
	NumberKeysRead
	BytesWritten
	BytesRead
	NumberFileCloses
	NumberFileOpens
	NumberFileErrors
	// Write-path stall timers, in microseconds.
	StallL0SlowdownMicros
	StallMemtableCompactionMicros
	StallL0NumFilesMicros
	RateLimitDelayMillis
	// Iterators currently open.
	NumberIterators
	NumberMultigetCalls
	NumberMultigetKeysRead
	NumberMultigetBytesRead

	TickerKindCount
)

// HistogramKind identifies one latency or size distribution tracked by the
// engine. Same numbering contract as TickerKind, with HistogramKindCount as
// the sentinel.
type HistogramKind int

const (
	DBGet HistogramKind = iota
	DBWrite
	CompactionTime
	TableSyncMicros
	CompactionOutfileSyncMicros
	WALFileSyncMicros
	ManifestFileSyncMicros
	// Time spent in IO during table open.
	TableOpenIOMicros
	DBMultiget

	HistogramKindCount
)

// TickerNames maps each ticker kind to its stable external name. Consumers
// such as exporters key on these strings; the values never change once
// released.
var TickerNames = [TickerKindCount]string{
	BlockCacheMiss:                "engine.block.cache.miss",
	BlockCacheHit:                 "engine.block.cache.hit",
	BloomFilterUseful:             "engine.bloom.filter.useful",
	CompactionKeyDropNewerEntry:   "engine.compaction.key.drop.new",
	CompactionKeyDropObsolete:     "engine.compaction.key.drop.obsolete",
	CompactionKeyDropUser:         "engine.compaction.key.drop.user",
	NumberKeysWritten:             "engine.number.keys.written",
	NumberKeysRead:                "engine.number.keys.read",
	BytesWritten:                  "engine.bytes.written",
	BytesRead:                     "engine.bytes.read",
	NumberFileCloses:              "engine.no.file.closes",
	NumberFileOpens:               "engine.no.file.opens",
	NumberFileErrors:              "engine.no.file.errors",
	StallL0SlowdownMicros:         "engine.l0.slowdown.micros",
	StallMemtableCompactionMicros: "engine.memtable.compaction.micros",
	StallL0NumFilesMicros:         "engine.l0.num.files.stall.micros",
	RateLimitDelayMillis:          "engine.rate.limit.delay.millis",
	NumberIterators:               "engine.num.iterators",
	NumberMultigetCalls:           "engine.number.multiget.get",
	NumberMultigetKeysRead:        "engine.number.multiget.keys.read",
	NumberMultigetBytesRead:       "engine.number.multiget.bytes.read",
}

// HistogramNames maps each histogram kind to its stable external name.
var HistogramNames = [HistogramKindCount]string{
	DBGet:                       "engine.db.get.micros",
	DBWrite:                     "engine.db.write.micros",
	CompactionTime:              "engine.compaction.times.micros",
	TableSyncMicros:             "engine.table.sync.micros",
	CompactionOutfileSyncMicros: "engine.compaction.outfile.sync.micros",
	WALFileSyncMicros:           "engine.wal.file.sync.micros",
	ManifestFileSyncMicros:      "engine.manifest.file.sync.micros",
	TableOpenIOMicros:           "engine.table.open.io.micros",
	DBMultiget:                  "engine.db.multiget.micros",
}

// String returns the kind's registered external name.
func (k TickerKind) String() string {
	if k < 0 || k >= TickerKindCount {
		return fmt.Sprintf("TickerKind(%d)", int(k))
	}
	return TickerNames[k]
}

// String returns the kind's registered external name.
func (k HistogramKind) String() string {
	if k < 0 || k >= HistogramKindCount {
		return fmt.Sprintf("HistogramKind(%d)", int(k))
	}
	return HistogramNames[k]
}

// A kind without a name is a definitional defect, caught once at startup
// rather than on the recording path.
func init() {
	for k := TickerKind(0); k < TickerKindCount; k++ {
		if TickerNames[k] == "" {
			panic(fmt.Sprintf("stats: ticker kind %d has no registered name", int(k)))
		}
	}
	for k := HistogramKind(0); k < HistogramKindCount; k++ {
		if HistogramNames[k] == "" {
			panic(fmt.Sprintf("stats: histogram kind %d has no registered name", int(k)))
		}
	}
}
