package model

import (
	"math"

	"postpulse/domain/timeline"
)

// BuildDataset constructs one feature row per (post, bucket) pair that has
// at least k strictly-prior buckets and a non-nil age. The feature vector
// is [exp(-lambda*age), dReposts[i-1], ..., dReposts[i-k]] and the target
// is that bucket's delta for the requested key.
func BuildDataset(series []timeline.PostSeries, k int, lambda float64, target TargetKey) *Dataset {
	ds := &Dataset{}

	for _, post := range series {
		points := post.Points
		for i := k; i < len(points); i++ {
			age := points[i].AgeMinutes
			if age == nil {
				continue
			}

			row := make([]float64, 0, k+1)
			row = append(row, math.Exp(-lambda**age))
			for lag := 1; lag <= k; lag++ {
				row = append(row, points[i-lag].DeltaReposts)
			}

			ds.X = append(ds.X, row)
			ds.Y = append(ds.Y, targetValue(points[i], target))
			ds.Meta = append(ds.Meta, RowMeta{PostID: post.PostID, BucketTS: points[i].BucketTS})
		}
	}
	return ds
}

func targetValue(p timeline.TimePoint, target TargetKey) float64 {
	if target == TargetReposts {
		return p.DeltaReposts
	}
	return p.DeltaViews
}
