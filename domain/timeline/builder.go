package timeline

import (
	"math"
	"sort"
	"time"

	"postpulse/domain/core"
	"postpulse/domain/tabular"
)

// bucketLayouts are the timestamp shapes accepted for bucket_ts, tried in
// order.
var bucketLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseBucketTS parses a bucket timestamp, trying each accepted layout.
func ParseBucketTS(raw string) (time.Time, bool) {
	for _, layout := range bucketLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// GroupSorted groups row indices by post_id in first-seen post order and
// sorts each group ascending by parsed bucket_ts, keeping the original row
// index as a stable secondary key. Rows with an empty post_id are skipped;
// an unparseable bucket_ts is a hard error rather than an arbitrary sort
// position.
func GroupSorted(t *tabular.Table) ([]PostRows, error) {
	idx := t.ColumnIndex()
	postCol, tsCol := idx["post_id"], idx["bucket_ts"]

	order := make([]string, 0)
	groups := make(map[string][]int)
	sortKeys := make([]int64, len(t.Rows))

	for row := range t.Rows {
		postID := t.Cell(row, postCol)
		if postID == "" {
			continue
		}
		ts, ok := ParseBucketTS(t.Cell(row, tsCol))
		if !ok {
			return nil, core.NewBadTimestampError(t.Cell(row, tsCol), row)
		}
		sortKeys[row] = ts.UnixNano()
		if _, seen := groups[postID]; !seen {
			order = append(order, postID)
		}
		groups[postID] = append(groups[postID], row)
	}

	out := make([]PostRows, 0, len(order))
	for _, postID := range order {
		rows := groups[postID]
		sort.SliceStable(rows, func(i, j int) bool {
			return sortKeys[rows[i]] < sortKeys[rows[j]]
		})
		out = append(out, PostRows{PostID: postID, Rows: rows})
	}
	return out, nil
}

// BuildSeries turns flat metrics rows into per-post series with clean
// per-bucket deltas. The first observation of a post has no predecessor,
// so its deltas come from the CSV's own delta_views/delta_reposts columns
// (zero when absent); every later observation uses the clamped difference
// max(0, current - previous) so a decreasing cumulative counter never
// yields a negative delta.
func BuildSeries(t *tabular.Table) ([]PostSeries, error) {
	grouped, err := GroupSorted(t)
	if err != nil {
		return nil, err
	}

	idx := t.ColumnIndex()
	ageCol, ok := idx["age_minutes"]
	if !ok {
		ageCol = -1
	}
	viewsCol := idx["views"]
	repostsCol := idx["reposts"]
	dViewsCol, ok := idx["delta_views"]
	if !ok {
		dViewsCol = -1
	}
	dRepostsCol, ok := idx["delta_reposts"]
	if !ok {
		dRepostsCol = -1
	}

	series := make([]PostSeries, 0, len(grouped))
	for _, group := range grouped {
		points := make([]TimePoint, 0, len(group.Rows))
		havePrev := false
		var prevViews, prevReposts float64

		for _, row := range group.Rows {
			point := TimePoint{BucketTS: t.Cell(row, tsColumn(idx))}
			if age, ok := core.ToNumber(t.Cell(row, ageCol)); ok {
				point.AgeMinutes = &age
			}

			views := core.NumberOr(t.Cell(row, viewsCol), 0)
			reposts := core.NumberOr(t.Cell(row, repostsCol), 0)

			if havePrev {
				point.DeltaViews = math.Max(0, views-prevViews)
				point.DeltaReposts = math.Max(0, reposts-prevReposts)
			} else {
				point.DeltaViews = core.NumberOr(t.Cell(row, dViewsCol), 0)
				point.DeltaReposts = core.NumberOr(t.Cell(row, dRepostsCol), 0)
			}

			prevViews, prevReposts = views, reposts
			havePrev = true
			points = append(points, point)
		}

		series = append(series, PostSeries{PostID: group.PostID, Points: points})
	}
	return series, nil
}

func tsColumn(idx map[string]int) int {
	if col, ok := idx["bucket_ts"]; ok {
		return col
	}
	return -1
}
