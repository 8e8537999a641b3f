package timeseries

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/vlogscan/internal/model"
)

func ev(ts int64) model.Event {
	return model.Event{Timestamp: ts, HasTimestamp: true, User: model.UnknownUser}
}

func counts(buckets []model.TimeBucket) []int {
	out := make([]int, len(buckets))
	for i, b := range buckets {
		out[i] = b.Count
	}
	return out
}

func starts(buckets []model.TimeBucket) []int64 {
	out := make([]int64, len(buckets))
	for i, b := range buckets {
		out[i] = b.WindowStart
	}
	return out
}

func TestAggregateGapFillAbsolute(t *testing.T) {
	events := []model.Event{ev(130), ev(10), ev(15), ev(250)}

	buckets, err := Aggregate(events, Config{Width: 60})
	require.NoError(t, err)

	assert.Equal(t, []int64{0, 60, 120, 180, 240}, starts(buckets))
	assert.Equal(t, []int{2, 0, 1, 0, 1}, counts(buckets))
}

func TestAggregateRelative(t *testing.T) {
	events := []model.Event{ev(1010), ev(1065), ev(1071), ev(1200)}

	buckets, err := Aggregate(events, Config{Width: 60, Basis: Relative})
	require.NoError(t, err)

	assert.Equal(t, []int64{1010, 1070, 1130, 1190}, starts(buckets))
	assert.Equal(t, []int{2, 1, 0, 1}, counts(buckets))
}

func TestAggregateSkipsUnusable(t *testing.T) {
	bad := ev(500)
	bad.Err = &model.ParseError{Kind: model.ErrMalformedIP}
	untimed := model.Event{User: model.UnknownUser}

	buckets, err := Aggregate([]model.Event{ev(60), bad, untimed}, Config{})
	require.NoError(t, err)

	require.Len(t, buckets, 1, "error event must not extend the range")
	assert.Equal(t, 1, buckets[0].Count)
}

func TestAggregateTotalMatchesUsable(t *testing.T) {
	events := []model.Event{ev(0), ev(59), ev(60), ev(61), ev(3600), ev(7199)}

	buckets, err := Aggregate(events, Config{Width: 300})
	require.NoError(t, err)

	total := 0
	for i, b := range buckets {
		total += b.Count
		if i > 0 {
			assert.Equal(t, int64(300), b.WindowStart-buckets[i-1].WindowStart)
		}
	}
	assert.Equal(t, len(events), total)
}

func TestAggregateIdempotent(t *testing.T) {
	events := []model.Event{ev(5), ev(400), ev(401), ev(90)}

	a, err := Aggregate(events, Config{Width: 60})
	require.NoError(t, err)
	b, err := Aggregate(events, Config{Width: 60})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestAggregateNegativeTimestamps(t *testing.T) {
	buckets, err := Aggregate([]model.Event{ev(-61), ev(-1), ev(0)}, Config{Width: 60})
	require.NoError(t, err)

	assert.Equal(t, []int64{-120, -60, 0}, starts(buckets))
	assert.Equal(t, []int{1, 1, 1}, counts(buckets))
}

func TestAggregateNoData(t *testing.T) {
	_, err := Aggregate(nil, Config{})
	assert.ErrorIs(t, err, ErrNoData)

	bad := ev(10)
	bad.Err = &model.ParseError{Kind: model.ErrUnknownEventType}
	_, err = Aggregate([]model.Event{bad}, Config{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestAggregateRejectsBadConfig(t *testing.T) {
	_, err := Aggregate([]model.Event{ev(1)}, Config{Width: -5})
	assert.Error(t, err)

	_, err = Aggregate([]model.Event{ev(1)}, Config{Basis: "lunar"})
	assert.Error(t, err)
}

func TestAggregateSpanTooLarge(t *testing.T) {
	events := []model.Event{ev(1000), ev(math.MaxInt64)}

	for _, basis := range []Basis{Absolute, Relative} {
		_, err := Aggregate(events, Config{Basis: basis})
		assert.ErrorIs(t, err, ErrSpanTooLarge, "basis %s", basis)
	}

	_, err := Aggregate([]model.Event{ev(math.MinInt64), ev(math.MaxInt64)}, Config{Width: 1, Basis: Relative})
	assert.ErrorIs(t, err, ErrSpanTooLarge)

	_, err = Aggregate([]model.Event{ev(1000), ev(99999999999)}, Config{})
	assert.ErrorIs(t, err, ErrSpanTooLarge)
}

func TestAggregateMaxBucketsBoundary(t *testing.T) {
	events := []model.Event{ev(0), ev(5*60 + 1)}

	buckets, err := Aggregate(events, Config{MaxBuckets: 6})
	require.NoError(t, err)
	assert.Len(t, buckets, 6)

	_, err = Aggregate(events, Config{MaxBuckets: 5})
	assert.ErrorIs(t, err, ErrSpanTooLarge)

	_, err = Aggregate(events, Config{MaxBuckets: -1})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSpanTooLarge)
}

func TestParseBasis(t *testing.T) {
	b, err := ParseBasis("")
	require.NoError(t, err)
	assert.Equal(t, Absolute, b)

	b, err = ParseBasis("Relative")
	require.NoError(t, err)
	assert.Equal(t, Relative, b)

	_, err = ParseBasis("wall")
	assert.Error(t, err)
}
