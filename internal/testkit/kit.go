// Package testkit generates synthetic post-metrics fixtures for tests:
// cumulative counters following an exponential exposure decay with
// periodic repost bursts, plus the derived columns the validator
// cross-checks.
package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	"postpulse/adapters/table"
	"postpulse/domain/tabular"
)

// MetricsHeader is the full column set produced by GenerateMetricsTable.
var MetricsHeader = []string{
	"post_id", "bucket_ts", "age_minutes",
	"views", "likes", "replies", "reposts", "quotes",
	"delta_views", "delta_likes", "delta_replies", "delta_reposts", "delta_quotes",
	"delta_engagement_rate", "virality_score",
}

// GenerateMetricsTable builds a deterministic synthetic metrics table with
// the given number of posts and 15-minute buckets per post. Exposure
// deltas decay exponentially with age plus noise; reposts arrive in
// periodic bursts. Derived columns are computed with the production
// formulas, so a freshly generated table validates clean.
func GenerateMetricsTable(posts, buckets int, seed int64) *tabular.Table {
	rng := rand.New(rand.NewSource(seed))
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t := &tabular.Table{Header: append([]string(nil), MetricsHeader...)}

	for p := 0; p < posts; p++ {
		postID := fmt.Sprintf("post_%03d", p+1)
		published := start.Add(time.Duration(p) * time.Hour)

		var views, likes, replies, reposts, quotes float64
		for i := 0; i < buckets; i++ {
			age := float64(i * 15)

			dViews := math.Round(math.Max(0, 600*math.Exp(-0.004*age)+rng.NormFloat64()*20))
			dReposts := 0.0
			if i%7 == 3 {
				dReposts = float64(3 + rng.Intn(5))
			} else if rng.Float64() < 0.1 {
				dReposts = 1
			}
			dLikes := math.Round(dViews * 0.05)
			dReplies := math.Round(dViews * 0.01)
			dQuotes := math.Round(dReposts * 0.5)

			views += dViews
			likes += dLikes
			replies += dReplies
			reposts += dReposts
			quotes += dQuotes

			virality := 0.0
			if views != 0 {
				virality = ((replies*3 + reposts*2.5 + quotes*2 + likes) / views) * 100
			}
			engagementRate := 0.0
			if dViews != 0 {
				engagementRate = ((dLikes + dReplies + dReposts + dQuotes) / dViews) * 100
			}

			t.Rows = append(t.Rows, []string{
				postID,
				published.Add(time.Duration(i) * 15 * time.Minute).Format(time.RFC3339),
				formatCount(age),
				formatCount(views), formatCount(likes), formatCount(replies),
				formatCount(reposts), formatCount(quotes),
				formatCount(dViews), formatCount(dLikes), formatCount(dReplies),
				formatCount(dReposts), formatCount(dQuotes),
				formatDerived(engagementRate), formatDerived(virality),
			})
		}
	}
	return t
}

// WriteCSVFile serializes a table to disk, for tests that exercise the
// file-reading path.
func WriteCSVFile(t *tabular.Table, path string) error {
	return os.WriteFile(path, []byte(table.WriteCSV(t)), 0644)
}

func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDerived(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
