package stats

// Nop returns a Statistics that accepts every record and reports zero for
// every query. It serves callers that structurally require a registry but
// want no collection, and tests that need a harmless stand-in.
func Nop() Statistics {
	return nopStatistics{}
}

type nopStatistics struct{}

func (nopStatistics) GetTickerCount(TickerKind) uint64 { return 0 }

func (nopStatistics) RecordTick(TickerKind, uint64) {}

func (nopStatistics) MeasureTime(HistogramKind, uint64) {}

func (nopStatistics) HistogramData(_ HistogramKind, data *HistogramData) {
	*data = HistogramData{}
}

func (nopStatistics) HistogramString(HistogramKind) string { return "" }
