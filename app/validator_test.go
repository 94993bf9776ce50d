package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postpulse/domain/tabular"
	"postpulse/internal/testkit"
)

// validatorTable builds a table in the validator's required-column order:
// post_id, bucket_ts, five counters, five deltas, delta_engagement_rate,
// virality_score.
func validatorTable(rows ...[]string) *tabular.Table {
	return &tabular.Table{
		Header: append([]string(nil), ValidatorColumns...),
		Rows:   rows,
	}
}

func TestValidate_CleanSyntheticTable(t *testing.T) {
	tbl := testkit.GenerateMetricsTable(3, 20, 99)

	report, err := NewValidatorService().Validate(tbl)
	require.NoError(t, err)

	assert.Equal(t, 60, report.Rows)
	assert.Equal(t, 3, report.Posts)
	assert.Zero(t, report.MonotonicViolations)
	assert.Zero(t, report.DeltaMismatches)
	assert.Zero(t, report.ViralityMismatches)
	assert.Zero(t, report.EngagementRateMismatches)
}

func TestValidate_MonotonicViolation(t *testing.T) {
	tbl := validatorTable(
		[]string{"p", "2025-03-01T12:00:00Z", "100", "0", "0", "0", "0", "100", "0", "0", "0", "0", "0", "0"},
		[]string{"p", "2025-03-01T12:15:00Z", "90", "0", "0", "0", "0", "0", "0", "0", "0", "0", "0", "0"},
	)

	report, err := NewValidatorService().Validate(tbl)
	require.NoError(t, err)

	// The decreasing views counter is one violation; the clamped delta
	// (zero) matches the supplied delta, so no mismatch is charged.
	assert.Equal(t, 1, report.MonotonicViolations)
	assert.Zero(t, report.DeltaMismatches)
}

func TestValidate_DeltaMismatch(t *testing.T) {
	tbl := validatorTable(
		[]string{"p", "2025-03-01T12:00:00Z", "100", "0", "0", "0", "0", "100", "0", "0", "0", "0", "0", "0"},
		[]string{"p", "2025-03-01T12:15:00Z", "250", "0", "0", "0", "0", "120", "0", "0", "0", "0", "0", "0"},
	)

	report, err := NewValidatorService().Validate(tbl)
	require.NoError(t, err)

	// Recomputed delta is 150, CSV claims 120. One mismatch per record,
	// however many dimensions drift.
	assert.Equal(t, 1, report.DeltaMismatches)
	assert.Zero(t, report.MonotonicViolations)
}

func TestValidate_ViralityMismatch(t *testing.T) {
	tbl := validatorTable(
		[]string{"p", "2025-03-01T12:00:00Z", "100", "10", "0", "0", "0", "100", "10", "0", "0", "0", "10.0000", "10.0000"},
		[]string{"p", "2025-03-01T12:15:00Z", "200", "20", "0", "0", "0", "100", "10", "0", "0", "0", "10.0000", "99.0000"},
	)

	report, err := NewValidatorService().Validate(tbl)
	require.NoError(t, err)

	// Correct virality for the second record is (20/200)*100 = 10, not 99.
	assert.Equal(t, 1, report.ViralityMismatches)
	assert.Zero(t, report.EngagementRateMismatches)
}

func TestValidate_EngagementRateMismatch(t *testing.T) {
	tbl := validatorTable(
		[]string{"p", "2025-03-01T12:00:00Z", "100", "10", "0", "0", "0", "100", "10", "0", "0", "0", "10.0000", "10.0000"},
		[]string{"p", "2025-03-01T12:15:00Z", "200", "20", "0", "0", "0", "100", "10", "0", "0", "0", "55.0000", "10.0000"},
	)

	report, err := NewValidatorService().Validate(tbl)
	require.NoError(t, err)

	assert.Equal(t, 1, report.EngagementRateMismatches)
	assert.Zero(t, report.ViralityMismatches)
}

func TestValidate_LiftCandidate(t *testing.T) {
	tbl := validatorTable(
		[]string{"p", "2025-03-01T12:00:00Z", "100", "0", "0", "5", "0", "100", "0", "0", "5", "0", "5.0000", "12.5000"},
		[]string{"p", "2025-03-01T12:15:00Z", "200", "0", "0", "10", "0", "100", "0", "0", "5", "0", "5.0000", "12.5000"},
		[]string{"p", "2025-03-01T12:30:00Z", "300", "0", "0", "15", "0", "100", "0", "0", "5", "0", "5.0000", "12.5000"},
		[]string{"p", "2025-03-01T12:45:00Z", "400", "0", "0", "20", "0", "100", "0", "0", "5", "0", "5.0000", "12.5000"},
		[]string{"p", "2025-03-01T13:00:00Z", "900", "0", "0", "20", "0", "500", "0", "0", "0", "0", "0.0000", "5.5556"},
	)

	report, err := NewValidatorService().Validate(tbl)
	require.NoError(t, err)

	assert.Zero(t, report.MonotonicViolations)
	assert.Zero(t, report.DeltaMismatches)
	assert.Zero(t, report.ViralityMismatches)
	assert.Zero(t, report.EngagementRateMismatches)

	// The final bucket spikes to 500 views with zero reposts against a
	// baseline median of 100.
	require.Len(t, report.LiftCandidates, 1)
	cand := report.LiftCandidates[0]
	assert.Equal(t, "p", cand.PostID)
	assert.Equal(t, "2025-03-01T13:00:00Z", cand.BucketTS)
	assert.Equal(t, 500.0, cand.DeltaViews)
	assert.Equal(t, 100.0, cand.Baseline)
	assert.Equal(t, 400.0, cand.Lift)
}

func TestValidate_LiftNeedsHistory(t *testing.T) {
	// Only two prior non-zero deltas: the spike cannot be scored.
	tbl := validatorTable(
		[]string{"p", "2025-03-01T12:00:00Z", "100", "0", "0", "0", "0", "100", "0", "0", "0", "0", "0", "0"},
		[]string{"p", "2025-03-01T12:15:00Z", "200", "0", "0", "0", "0", "100", "0", "0", "0", "0", "0", "0"},
		[]string{"p", "2025-03-01T12:30:00Z", "700", "0", "0", "0", "0", "500", "0", "0", "0", "0", "0", "0"},
	)

	report, err := NewValidatorService().Validate(tbl)
	require.NoError(t, err)
	assert.Empty(t, report.LiftCandidates)
}

func TestValidate_RepostActivityExplainsSpike(t *testing.T) {
	tbl := validatorTable(
		[]string{"p", "2025-03-01T12:00:00Z", "100", "0", "0", "0", "0", "100", "0", "0", "0", "0", "0", "0"},
		[]string{"p", "2025-03-01T12:15:00Z", "200", "0", "0", "0", "0", "100", "0", "0", "0", "0", "0", "0"},
		[]string{"p", "2025-03-01T12:30:00Z", "300", "0", "0", "0", "0", "100", "0", "0", "0", "0", "0", "0"},
		[]string{"p", "2025-03-01T12:45:00Z", "400", "0", "0", "0", "0", "100", "0", "0", "0", "0", "0", "0"},
		[]string{"p", "2025-03-01T13:00:00Z", "900", "0", "0", "4", "0", "500", "0", "0", "4", "0", "0.8000", "1.1111"},
	)

	report, err := NewValidatorService().Validate(tbl)
	require.NoError(t, err)
	// The spike coincides with repost activity, so it is explained.
	assert.Empty(t, report.LiftCandidates)
}

func TestValidate_Idempotent(t *testing.T) {
	tbl := testkit.GenerateMetricsTable(4, 25, 1234)
	svc := NewValidatorService()

	first, err := svc.Validate(tbl)
	require.NoError(t, err)
	second, err := svc.Validate(tbl)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestValidationReport_Render(t *testing.T) {
	report := &ValidationReport{
		Rows:  10,
		Posts: 2,
		LiftCandidates: []LiftCandidate{
			{PostID: "p1", BucketTS: "2025-03-01T13:00:00Z", DeltaViews: 500, Baseline: 100, Lift: 400},
		},
	}

	var buf bytes.Buffer
	report.Render(&buf)
	out := buf.String()

	assert.Contains(t, out, "=== METRICS CONSISTENCY REPORT ===")
	assert.Contains(t, out, "Rows: 10")
	assert.Contains(t, out, "post=p1")
	assert.Contains(t, out, "lift=400.0")
	assert.Contains(t, out, "mean=400.0 max=400.0")
}

func TestValidationReport_Render_NoCandidates(t *testing.T) {
	var buf bytes.Buffer
	(&ValidationReport{}).Render(&buf)
	assert.Contains(t, buf.String(), "No reach-lift candidates detected.")
}
