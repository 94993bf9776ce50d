// Package app orchestrates the diffusion pipeline: hyperparameter sweeps
// over the decay rate for the two target models, and the metrics
// consistency validator.
package app

import (
	"fmt"

	"postpulse/adapters/stats"
	"postpulse/domain/core"
	"postpulse/domain/model"
	"postpulse/domain/timeline"
	"postpulse/internal"

	"golang.org/x/sync/errgroup"
)

// Decay-rate sweep constants. The bounds and count are tuned values
// spanning roughly a 160x range; downstream artifacts depend on them, so
// they are preserved verbatim.
const (
	lambdaMin   = 0.0005
	lambdaMax   = 0.08
	lambdaSteps = 40
)

// TrainerService fits ridge-regularized diffusion models over per-post
// series.
type TrainerService struct {
	log *internal.Logger
}

// NewTrainerService creates a trainer using the default logger.
func NewTrainerService() *TrainerService {
	return &TrainerService{log: internal.DefaultLogger}
}

// TrainModel sweeps the decay-rate grid for one target and returns the
// configuration with the lowest held-out RMSE, or nil when no grid point
// produced a usable fit (too few samples everywhere, or every system was
// singular). A nil return is the caller's signal that this target cannot
// be trained from the data at hand.
func (s *TrainerService) TrainModel(series []timeline.PostSeries, k int, alpha float64, target model.TargetKey) *model.TrainedModel {
	var best *model.TrainedModel

	for _, lambda := range stats.LogSpace(lambdaMin, lambdaMax, lambdaSteps) {
		candidate := s.evaluate(series, k, alpha, lambda, target)
		if candidate == nil {
			continue
		}
		// Strict < keeps the earliest grid point on ties.
		if best == nil || candidate.RMSE < best.RMSE {
			best = candidate
		}
	}

	if best != nil {
		s.log.Debug("selected lambda=%.6f rmse=%.4f for %s", best.Lambda, best.RMSE, target)
	}
	return best
}

// evaluate builds, splits and fits one (lambda, target) configuration.
func (s *TrainerService) evaluate(series []timeline.PostSeries, k int, alpha, lambda float64, target model.TargetKey) *model.TrainedModel {
	ds := model.BuildDataset(series, k, lambda, target)

	minSamples := 20
	if k*5 > minSamples {
		minSamples = k * 5
	}
	if ds.Len() < minSamples {
		return nil
	}

	split := model.SplitByPost(ds)
	weights := stats.FitRidge(split.XTrain, split.YTrain, alpha)
	if weights == nil {
		return nil
	}

	preds := make([]float64, len(split.XTest))
	for i, row := range split.XTest {
		preds[i] = stats.Predict(weights, row)
	}

	return &model.TrainedModel{
		Target:           target,
		Lambda:           lambda,
		Weights:          weights,
		RMSE:             stats.RMSE(split.YTest, preds),
		NTrain:           len(split.YTrain),
		NTest:            len(split.YTest),
		TrainNonzeroRate: stats.NonzeroRate(split.YTrain),
		TestNonzeroRate:  stats.NonzeroRate(split.YTest),
	}
}

// TrainAll fits the exposure and repost models concurrently; the two
// sweeps are independent, so the result is identical to running them in
// sequence. Either target failing to train is fatal for the run.
func (s *TrainerService) TrainAll(series []timeline.PostSeries, k int, alpha float64) (*model.TrainingParams, error) {
	var exposure, repost *model.TrainedModel

	var g errgroup.Group
	g.Go(func() error {
		exposure = s.TrainModel(series, k, alpha, model.TargetViews)
		if exposure == nil {
			return fmt.Errorf("not enough data to train exposure model: %w", core.ErrInsufficientData)
		}
		return nil
	})
	g.Go(func() error {
		repost = s.TrainModel(series, k, alpha, model.TargetReposts)
		if repost == nil {
			return fmt.Errorf("not enough data to train repost model: %w", core.ErrInsufficientData)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.TrainingParams{
		BucketMinutes: model.BucketMinutes,
		K:             k,
		Alpha:         alpha,
		ExposureModel: model.NewExposureParams(exposure),
		RepostModel:   model.NewRepostParams(repost),
	}, nil
}
