package app

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"postpulse/domain/core"
	"postpulse/domain/tabular"
	"postpulse/domain/timeline"
)

// counter columns cross-checked by the validator, paired with their
// CSV-supplied delta columns.
var counterColumns = []string{"views", "likes", "replies", "reposts", "quotes"}

const (
	rawDeltaEps     = 1e-6
	derivedEps      = 1e-4
	liftWindowSize  = 4
	liftMinNonzero  = 3
	liftReportLimit = 10
)

// ValidatorColumns is the column set the consistency validator requires.
var ValidatorColumns = []string{
	"post_id", "bucket_ts",
	"views", "likes", "replies", "reposts", "quotes",
	"delta_views", "delta_likes", "delta_replies", "delta_reposts", "delta_quotes",
	"delta_engagement_rate", "virality_score",
}

// LiftCandidate is a bucket whose exposure growth exceeds its rolling
// baseline with no repost activity to explain it.
type LiftCandidate struct {
	PostID     string  `json:"post_id"`
	BucketTS   string  `json:"bucket_ts"`
	DeltaViews float64 `json:"delta_views"`
	Baseline   float64 `json:"baseline"`
	Lift       float64 `json:"lift"`
}

// ValidationReport aggregates the consistency checks over one metrics
// table. Mismatches are findings, never errors: a report with non-zero
// counters is still a successful validation run.
type ValidationReport struct {
	Rows                     int             `json:"rows"`
	Posts                    int             `json:"posts"`
	MonotonicViolations      int             `json:"monotonic_violations"`
	DeltaMismatches          int             `json:"delta_mismatches"`
	ViralityMismatches       int             `json:"virality_mismatches"`
	EngagementRateMismatches int             `json:"engagement_rate_mismatches"`
	LiftCandidates           []LiftCandidate `json:"lift_candidates"`
}

// ValidatorService re-derives the metrics CSV's computed columns from raw
// counters and cross-checks them, flagging arithmetic drift, monotonicity
// breaks and unexplained exposure spikes. It is read-only diagnostics: it
// never mutates or repairs the input.
type ValidatorService struct{}

// NewValidatorService creates a validator.
func NewValidatorService() *ValidatorService {
	return &ValidatorService{}
}

// Validate walks each post's records in chronological order, checking
// every record against its predecessor and maintaining the trailing
// delta-views window for lift detection.
func (s *ValidatorService) Validate(t *tabular.Table) (*ValidationReport, error) {
	grouped, err := timeline.GroupSorted(t)
	if err != nil {
		return nil, err
	}

	idx := t.ColumnIndex()
	report := &ValidationReport{Rows: len(t.Rows), Posts: len(grouped)}
	var lifts []LiftCandidate

	for _, group := range grouped {
		lifts = append(lifts, s.validatePost(t, idx, group, report)...)
	}

	// Stable sort keeps equal-lift candidates in discovery order so the
	// report is identical across runs.
	sort.SliceStable(lifts, func(i, j int) bool { return lifts[i].Lift > lifts[j].Lift })
	if len(lifts) > liftReportLimit {
		lifts = lifts[:liftReportLimit]
	}
	report.LiftCandidates = lifts
	return report, nil
}

// validatePost runs the per-record checks for one post and returns its
// lift candidates.
func (s *ValidatorService) validatePost(t *tabular.Table, idx map[string]int, group timeline.PostRows, report *ValidationReport) []LiftCandidate {
	var (
		candidates []LiftCandidate
		window     []float64 // trailing computed delta-views, current excluded
		prev       []float64
	)

	for _, row := range group.Rows {
		cur := make([]float64, len(counterColumns))
		for i, col := range counterColumns {
			cur[i] = core.NumberOr(t.Cell(row, idx[col]), 0)
		}

		var dViews, dReposts float64
		if prev == nil {
			dViews = core.NumberOr(t.Cell(row, idx["delta_views"]), 0)
			dReposts = core.NumberOr(t.Cell(row, idx["delta_reposts"]), 0)
		} else {
			computed := make([]float64, len(counterColumns))
			monotonicBroken := false
			deltaMismatch := false
			for i, col := range counterColumns {
				if cur[i] < prev[i] {
					monotonicBroken = true
				}
				computed[i] = math.Max(0, cur[i]-prev[i])
				supplied := core.NumberOr(t.Cell(row, idx["delta_"+col]), 0)
				if !core.ApproxEqual(computed[i], supplied, rawDeltaEps) {
					deltaMismatch = true
				}
			}
			if monotonicBroken {
				report.MonotonicViolations++
			}
			if deltaMismatch {
				report.DeltaMismatches++
			}

			s.checkVirality(t, idx, row, cur, report)
			s.checkEngagementRate(t, idx, row, report)

			dViews = computed[0]
			dReposts = computed[3]
		}

		if cand, ok := s.detectLift(window, dViews, dReposts); ok {
			cand.PostID = group.PostID
			cand.BucketTS = t.Cell(row, idx["bucket_ts"])
			candidates = append(candidates, cand)
		}

		window = append(window, dViews)
		if len(window) > liftWindowSize {
			window = window[len(window)-liftWindowSize:]
		}
		prev = cur
	}
	return candidates
}

// checkVirality recomputes the weighted engagement composite
// ((replies*3 + reposts*2.5 + quotes*2 + likes) / views) * 100 and
// compares it with the CSV's virality_score, both sides rounded to 4
// decimals.
func (s *ValidatorService) checkVirality(t *tabular.Table, idx map[string]int, row int, cur []float64, report *ValidationReport) {
	views, likes, replies, reposts, quotes := cur[0], cur[1], cur[2], cur[3], cur[4]

	computed := 0.0
	if views != 0 {
		computed = ((replies*3 + reposts*2.5 + quotes*2 + likes) / views) * 100
	}
	supplied := core.NumberOr(t.Cell(row, idx["virality_score"]), 0)

	if !core.ApproxEqual(core.Round4(computed), core.Round4(supplied), derivedEps) {
		report.ViralityMismatches++
	}
}

// checkEngagementRate recomputes the delta engagement rate from the CSV's
// own delta columns (not the independently recomputed deltas) and compares
// it with delta_engagement_rate the same rounded way.
func (s *ValidatorService) checkEngagementRate(t *tabular.Table, idx map[string]int, row int, report *ValidationReport) {
	dViews := core.NumberOr(t.Cell(row, idx["delta_views"]), 0)
	dLikes := core.NumberOr(t.Cell(row, idx["delta_likes"]), 0)
	dReplies := core.NumberOr(t.Cell(row, idx["delta_replies"]), 0)
	dReposts := core.NumberOr(t.Cell(row, idx["delta_reposts"]), 0)
	dQuotes := core.NumberOr(t.Cell(row, idx["delta_quotes"]), 0)

	computed := 0.0
	if dViews != 0 {
		computed = ((dLikes + dReplies + dReposts + dQuotes) / dViews) * 100
	}
	supplied := core.NumberOr(t.Cell(row, idx["delta_engagement_rate"]), 0)

	if !core.ApproxEqual(core.Round4(computed), core.Round4(supplied), derivedEps) {
		report.EngagementRateMismatches++
	}
}

// detectLift compares the current delta-views against the median of the
// non-zero values in the trailing window. A candidate needs at least 3
// non-zero windowed values, a positive lift, and exactly zero delta
// reposts; anything short of that is silently not flagged.
func (s *ValidatorService) detectLift(window []float64, dViews, dReposts float64) (LiftCandidate, bool) {
	var nonzero []float64
	for _, v := range window {
		if v != 0 {
			nonzero = append(nonzero, v)
		}
	}
	if len(nonzero) < liftMinNonzero {
		return LiftCandidate{}, false
	}

	baseline, err := stats.Median(nonzero)
	if err != nil {
		return LiftCandidate{}, false
	}

	lift := math.Max(0, dViews-baseline)
	if lift <= 0 || dReposts != 0 {
		return LiftCandidate{}, false
	}

	return LiftCandidate{DeltaViews: dViews, Baseline: baseline, Lift: lift}, true
}

// Render prints the plain-text console report.
func (r *ValidationReport) Render(w io.Writer) {
	fmt.Fprintf(w, "=== METRICS CONSISTENCY REPORT ===\n")
	fmt.Fprintf(w, "Rows: %d\n", r.Rows)
	fmt.Fprintf(w, "Posts: %d\n", r.Posts)
	fmt.Fprintf(w, "Monotonic violations: %d\n", r.MonotonicViolations)
	fmt.Fprintf(w, "Delta mismatches: %d\n", r.DeltaMismatches)
	fmt.Fprintf(w, "Virality score mismatches: %d\n", r.ViralityMismatches)
	fmt.Fprintf(w, "Delta engagement rate mismatches: %d\n", r.EngagementRateMismatches)

	if len(r.LiftCandidates) == 0 {
		fmt.Fprintf(w, "\nNo reach-lift candidates detected.\n")
		return
	}

	fmt.Fprintf(w, "\nTop reach-lift candidates (views spike with zero reposts):\n")
	for i, c := range r.LiftCandidates {
		fmt.Fprintf(w, "%2d. post=%s bucket=%s delta_views=%.0f baseline=%.1f lift=%.1f\n",
			i+1, c.PostID, c.BucketTS, c.DeltaViews, c.Baseline, c.Lift)
	}

	liftValues := make([]float64, len(r.LiftCandidates))
	for i, c := range r.LiftCandidates {
		liftValues[i] = c.Lift
	}
	meanLift, _ := stats.Mean(liftValues)
	maxLift, _ := stats.Max(liftValues)
	fmt.Fprintf(w, "Reported lift: mean=%.1f max=%.1f\n", meanLift, maxLift)
}
