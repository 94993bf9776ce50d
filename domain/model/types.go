// Package model builds supervised feature datasets from post series and
// defines the trained-model shapes of the diffusion parameter artifact.
package model

// BucketMinutes documents the assumed snapshot cadence of the input data.
// It is a fixed contract constant emitted in the parameter artifact, not
// derived from the data.
const BucketMinutes = 15

// TargetKey selects which per-bucket delta a dataset predicts.
type TargetKey string

const (
	// TargetViews models per-bucket exposure growth.
	TargetViews TargetKey = "delta_views"
	// TargetReposts models per-bucket repost velocity.
	TargetReposts TargetKey = "delta_reposts"
)

// RowMeta traces one feature row back to its (post, bucket) origin. The
// holdout splitter groups rows by PostID through this metadata.
type RowMeta struct {
	PostID   string
	BucketTS string
}

// Dataset is a feature matrix with its parallel target vector and row
// metadata. len(X) == len(Y) == len(Meta) always holds, and every feature
// row is exactly k+1 wide: one decayed-age baseline feature followed by k
// lagged repost deltas, most recent lag first.
type Dataset struct {
	X    [][]float64
	Y    []float64
	Meta []RowMeta
}

// Len returns the number of feature rows.
func (d *Dataset) Len() int { return len(d.X) }

// Split is a per-post temporal holdout: within each post the earlier
// buckets train and the later buckets test.
type Split struct {
	XTrain [][]float64
	YTrain []float64
	XTest  [][]float64
	YTest  []float64
}

// TrainedModel bundles the winning configuration of a hyperparameter
// sweep for one target.
type TrainedModel struct {
	Target           TargetKey
	Lambda           float64
	Weights          []float64 // baseline weight followed by k lag weights
	RMSE             float64
	NTrain           int
	NTest            int
	TrainNonzeroRate float64
	TestNonzeroRate  float64
}

// TrainingParams is the JSON parameter artifact written by the training
// CLI. Field names are a published contract consumed downstream; they
// must not change.
type TrainingParams struct {
	BucketMinutes int            `json:"bucket_minutes"`
	K             int            `json:"k"`
	Alpha         float64        `json:"alpha"`
	ExposureModel ExposureParams `json:"exposure_model"`
	RepostModel   RepostParams   `json:"repost_model"`
}

// ExposureParams is the exposure-delta model section of the artifact.
type ExposureParams struct {
	Lambda           float64   `json:"lambda"`
	BaselineWeight   float64   `json:"baseline_weight"`
	BetaRepostLags   []float64 `json:"beta_repost_lags"`
	RMSE             float64   `json:"rmse"`
	NTrain           int       `json:"n_train"`
	NTest            int       `json:"n_test"`
	TrainNonzeroRate float64   `json:"train_nonzero_rate"`
	TestNonzeroRate  float64   `json:"test_nonzero_rate"`
}

// RepostParams is the repost-delta model section of the artifact.
type RepostParams struct {
	Lambda           float64   `json:"lambda"`
	BaselineWeight   float64   `json:"baseline_weight"`
	WRepostLags      []float64 `json:"w_repost_lags"`
	RMSE             float64   `json:"rmse"`
	NTrain           int       `json:"n_train"`
	NTest            int       `json:"n_test"`
	TrainNonzeroRate float64   `json:"train_nonzero_rate"`
	TestNonzeroRate  float64   `json:"test_nonzero_rate"`
}

// NewExposureParams converts a trained exposure model into its artifact
// section.
func NewExposureParams(m *TrainedModel) ExposureParams {
	return ExposureParams{
		Lambda:           m.Lambda,
		BaselineWeight:   m.Weights[0],
		BetaRepostLags:   append([]float64(nil), m.Weights[1:]...),
		RMSE:             m.RMSE,
		NTrain:           m.NTrain,
		NTest:            m.NTest,
		TrainNonzeroRate: m.TrainNonzeroRate,
		TestNonzeroRate:  m.TestNonzeroRate,
	}
}

// NewRepostParams converts a trained repost model into its artifact
// section.
func NewRepostParams(m *TrainedModel) RepostParams {
	return RepostParams{
		Lambda:           m.Lambda,
		BaselineWeight:   m.Weights[0],
		WRepostLags:      append([]float64(nil), m.Weights[1:]...),
		RMSE:             m.RMSE,
		NTrain:           m.NTrain,
		NTest:            m.NTest,
		TrainNonzeroRate: m.TrainNonzeroRate,
		TestNonzeroRate:  m.TestNonzeroRate,
	}
}
