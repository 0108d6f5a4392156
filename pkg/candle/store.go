// Package candle folds unit price quotes into OHLC candles per timeframe.
package candle

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"tc.com/unit-oracle/pkg/metrics"
)

// Candle is one OHLC bucket as served over the API. Time is the bucket start
// in unix seconds, aligned to the timeframe.
type Candle struct {
	Time  int64   `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// bucket is the in-progress decimal form of a candle.
type bucket struct {
	start int64
	open  decimal.Decimal
	high  decimal.Decimal
	low   decimal.Decimal
	close decimal.Decimal
}

// Store keeps a capped, oldest-first-evicted candle history per timeframe.
// The last bucket of each timeframe is the currently open one.
type Store struct {
	mu         sync.RWMutex
	maxPerTF   int
	timeframes []int             // minutes, sorted
	frames     map[int][]*bucket // timeframe -> buckets, oldest first
}

// NewStore creates a store for the given timeframes (minutes), each capped at
// maxPerTimeframe candles.
func NewStore(timeframes []int, maxPerTimeframe int) *Store {
	tfs := append([]int(nil), timeframes...)
	sort.Ints(tfs)

	frames := make(map[int][]*bucket, len(tfs))
	for _, tf := range tfs {
		frames[tf] = nil
	}

	return &Store{
		maxPerTF:   maxPerTimeframe,
		timeframes: tfs,
		frames:     frames,
	}
}

// Timeframes returns the configured timeframes in minutes.
func (s *Store) Timeframes() []int {
	return append([]int(nil), s.timeframes...)
}

// Fold feeds one quote value into the open bucket of every timeframe,
// starting a new bucket when the value crosses a bucket boundary.
func (s *Store) Fold(price decimal.Decimal, ts time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unix := ts.Unix()
	for _, tf := range s.timeframes {
		period := int64(tf) * 60
		start := unix - unix%period

		buckets := s.frames[tf]
		if n := len(buckets); n > 0 && buckets[n-1].start == start {
			b := buckets[n-1]
			if price.GreaterThan(b.high) {
				b.high = price
			}
			if price.LessThan(b.low) {
				b.low = price
			}
			b.close = price
			continue
		}

		buckets = append(buckets, &bucket{
			start: start,
			open:  price,
			high:  price,
			low:   price,
			close: price,
		})
		if len(buckets) > s.maxPerTF {
			buckets = buckets[len(buckets)-s.maxPerTF:]
		}
		s.frames[tf] = buckets
		metrics.RecordCandleCount(strconv.Itoa(tf), len(buckets))
	}
}

// Candles returns up to limit candles for the timeframe, oldest first and
// including the open bucket. Unknown timeframes are an error.
func (s *Store) Candles(timeframe, limit int) ([]Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buckets, ok := s.frames[timeframe]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTimeframe, timeframe)
	}

	if limit <= 0 || limit > len(buckets) {
		limit = len(buckets)
	}

	out := make([]Candle, 0, limit)
	for _, b := range buckets[len(buckets)-limit:] {
		out = append(out, Candle{
			Time:  b.start,
			Open:  b.open.InexactFloat64(),
			High:  b.high.InexactFloat64(),
			Low:   b.low.InexactFloat64(),
			Close: b.close.InexactFloat64(),
		})
	}
	return out, nil
}
