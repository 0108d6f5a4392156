package candle

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_FoldSameBucket(t *testing.T) {
	s := NewStore([]int{1}, 1000)

	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	s.Fold(decimal.NewFromInt(100), base)
	s.Fold(decimal.NewFromInt(105), base.Add(10*time.Second))
	s.Fold(decimal.NewFromInt(98), base.Add(30*time.Second))

	candles, err := s.Candles(1, 0)
	require.NoError(t, err)
	require.Len(t, candles, 1)

	c := candles[0]
	assert.Equal(t, base.Unix(), c.Time)
	assert.Equal(t, 100.0, c.Open)
	assert.Equal(t, 105.0, c.High)
	assert.Equal(t, 98.0, c.Low)
	assert.Equal(t, 98.0, c.Close)
}

func TestStore_FoldRollsOverAtBoundary(t *testing.T) {
	s := NewStore([]int{1}, 1000)

	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	s.Fold(decimal.NewFromInt(100), base.Add(59*time.Second))
	s.Fold(decimal.NewFromInt(101), base.Add(60*time.Second))

	candles, err := s.Candles(1, 0)
	require.NoError(t, err)
	require.Len(t, candles, 2)

	assert.Equal(t, base.Unix(), candles[0].Time)
	assert.Equal(t, 100.0, candles[0].Close)
	assert.Equal(t, base.Add(time.Minute).Unix(), candles[1].Time)
	assert.Equal(t, 101.0, candles[1].Open)
}

func TestStore_BucketStartAlignment(t *testing.T) {
	s := NewStore([]int{15}, 1000)

	ts := time.Date(2026, 8, 26, 12, 7, 33, 0, time.UTC)
	s.Fold(decimal.NewFromInt(100), ts)

	candles, err := s.Candles(15, 0)
	require.NoError(t, err)
	require.Len(t, candles, 1)

	start := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, start.Unix(), candles[0].Time)
}

func TestStore_EvictsOldestAtCap(t *testing.T) {
	s := NewStore([]int{1}, 3)

	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.Fold(decimal.NewFromInt(int64(100+i)), base.Add(time.Duration(i)*time.Minute))
	}

	candles, err := s.Candles(1, 0)
	require.NoError(t, err)
	require.Len(t, candles, 3)

	// The two oldest buckets are gone.
	assert.Equal(t, base.Add(2*time.Minute).Unix(), candles[0].Time)
	assert.Equal(t, 102.0, candles[0].Open)
	assert.Equal(t, 104.0, candles[2].Open)
}

func TestStore_CandlesLimit(t *testing.T) {
	s := NewStore([]int{1}, 1000)

	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		s.Fold(decimal.NewFromInt(int64(100+i)), base.Add(time.Duration(i)*time.Minute))
	}

	// Limit returns the most recent candles, still oldest first.
	candles, err := s.Candles(1, 4)
	require.NoError(t, err)
	require.Len(t, candles, 4)
	assert.Equal(t, 106.0, candles[0].Open)
	assert.Equal(t, 109.0, candles[3].Open)

	// A limit beyond the stored count returns everything.
	candles, err = s.Candles(1, 500)
	require.NoError(t, err)
	assert.Len(t, candles, 10)
}

func TestStore_UnknownTimeframe(t *testing.T) {
	s := NewStore([]int{1, 15}, 1000)

	_, err := s.Candles(7, 10)
	assert.ErrorIs(t, err, ErrUnknownTimeframe)
}

func TestStore_IndependentTimeframes(t *testing.T) {
	s := NewStore([]int{1, 15}, 1000)

	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.Fold(decimal.NewFromInt(int64(100+i)), base.Add(time.Duration(i)*time.Minute))
	}

	oneMin, err := s.Candles(1, 0)
	require.NoError(t, err)
	assert.Len(t, oneMin, 5)

	// All five folds land in one 15-minute bucket.
	fifteen, err := s.Candles(15, 0)
	require.NoError(t, err)
	require.Len(t, fifteen, 1)
	assert.Equal(t, 100.0, fifteen[0].Open)
	assert.Equal(t, 104.0, fifteen[0].High)
	assert.Equal(t, 100.0, fifteen[0].Low)
	assert.Equal(t, 104.0, fifteen[0].Close)
}
