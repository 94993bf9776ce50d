// Package timeline reconstructs per-post time series from flat metrics
// rows: grouping by post, chronological ordering, and per-bucket delta
// computation over cumulative counters.
package timeline

// TimePoint is one observed bucket of a post's series after delta
// reconstruction. AgeMinutes is nil when the source row carried no usable
// age value; such points are skipped by the feature builder.
type TimePoint struct {
	BucketTS     string
	AgeMinutes   *float64
	DeltaViews   float64
	DeltaReposts float64
}

// PostSeries is one post's observations sorted ascending by bucket
// timestamp, ties broken by original row order.
type PostSeries struct {
	PostID string
	Points []TimePoint
}

// PostRows is one post's row indices in chronological order, shared
// between the series builder and the consistency validator so both walk
// records identically.
type PostRows struct {
	PostID string
	Rows   []int
}
