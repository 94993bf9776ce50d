package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postpulse/domain/timeline"
)

func agePtr(v float64) *float64 { return &v }

func syntheticSeries(postID string, n int) timeline.PostSeries {
	points := make([]timeline.TimePoint, n)
	for i := range points {
		points[i] = timeline.TimePoint{
			BucketTS:     "2025-03-01T12:00:00Z",
			AgeMinutes:   agePtr(float64(i * 15)),
			DeltaViews:   float64(100 + i),
			DeltaReposts: float64(i),
		}
	}
	return timeline.PostSeries{PostID: postID, Points: points}
}

func TestBuildDataset_Shape(t *testing.T) {
	series := []timeline.PostSeries{syntheticSeries("p", 10)}
	k := 3

	ds := BuildDataset(series, k, 0.01, TargetViews)

	// One row per bucket with k prior buckets.
	assert.Equal(t, 7, ds.Len())
	assert.Len(t, ds.Y, ds.Len())
	assert.Len(t, ds.Meta, ds.Len())
	for _, row := range ds.X {
		assert.Len(t, row, k+1)
	}
}

func TestBuildDataset_FeatureValues(t *testing.T) {
	series := []timeline.PostSeries{syntheticSeries("p", 5)}
	k := 2
	lambda := 0.02

	ds := BuildDataset(series, k, lambda, TargetViews)
	require.Equal(t, 3, ds.Len())

	// First emitted row is bucket i=2 with age 30.
	row := ds.X[0]
	assert.InDelta(t, math.Exp(-lambda*30), row[0], 1e-12)
	// Lags run most-recent first: dReposts[1], dReposts[0].
	assert.Equal(t, 1.0, row[1])
	assert.Equal(t, 0.0, row[2])
	assert.Equal(t, 102.0, ds.Y[0])
}

func TestBuildDataset_TargetSelection(t *testing.T) {
	series := []timeline.PostSeries{syntheticSeries("p", 5)}

	views := BuildDataset(series, 2, 0.01, TargetViews)
	reposts := BuildDataset(series, 2, 0.01, TargetReposts)

	assert.Equal(t, 102.0, views.Y[0])
	assert.Equal(t, 2.0, reposts.Y[0])
}

func TestBuildDataset_SkipsMissingAge(t *testing.T) {
	post := syntheticSeries("p", 6)
	post.Points[4].AgeMinutes = nil
	ds := BuildDataset([]timeline.PostSeries{post}, 2, 0.01, TargetViews)

	// Buckets 2,3,5 qualify; bucket 4 lacks an age.
	assert.Equal(t, 3, ds.Len())
}

func TestBuildDataset_ShortSeriesYieldsNothing(t *testing.T) {
	ds := BuildDataset([]timeline.PostSeries{syntheticSeries("p", 3)}, 3, 0.01, TargetViews)
	assert.Equal(t, 0, ds.Len())
}

func TestSplitByPost_TemporalHoldout(t *testing.T) {
	series := []timeline.PostSeries{
		syntheticSeries("a", 13), // 10 dataset rows
		syntheticSeries("b", 4),  // 1 dataset row
	}
	ds := BuildDataset(series, 3, 0.01, TargetViews)
	require.Equal(t, 11, ds.Len())

	split := SplitByPost(ds)

	// Post a: floor(0.8*10)=8 train, 2 test. Post b: max(1, floor(0.8*1))=1
	// train, 0 test.
	assert.Len(t, split.XTrain, 9)
	assert.Len(t, split.XTest, 2)
	assert.Len(t, split.YTrain, 9)
	assert.Len(t, split.YTest, 2)
}

func TestSplitByPost_TestRowsAreLatest(t *testing.T) {
	ds := BuildDataset([]timeline.PostSeries{syntheticSeries("a", 13)}, 3, 0.01, TargetViews)
	split := SplitByPost(ds)

	require.Len(t, split.YTest, 2)
	// Targets increase with bucket index, so the two largest land in test.
	assert.Equal(t, []float64{111, 112}, split.YTest)
}
