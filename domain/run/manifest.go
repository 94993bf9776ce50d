// Package run records training-run provenance so a parameter artifact can
// be traced back to the exact input that produced it.
package run

import (
	"time"

	"postpulse/domain/core"
)

// Manifest is the replay record written alongside a parameter artifact.
type Manifest struct {
	RunID          core.RunID `json:"run_id"`
	CreatedAt      time.Time  `json:"created_at"`
	InputPath      string     `json:"input_path"`
	InputSHA256    core.Hash  `json:"input_sha256"`
	K              int        `json:"k"`
	Alpha          float64    `json:"alpha"`
	ArtifactSHA256 core.Hash  `json:"artifact_sha256"`
}

// NewManifest fingerprints the raw input bytes and the serialized artifact
// for a completed training run.
func NewManifest(inputPath string, input []byte, k int, alpha float64, artifact []byte) Manifest {
	return Manifest{
		RunID:          core.NewRunID(),
		CreatedAt:      time.Now().UTC(),
		InputPath:      inputPath,
		InputSHA256:    core.NewHash(input),
		K:              k,
		Alpha:          alpha,
		ArtifactSHA256: core.NewHash(artifact),
	}
}

// Validate checks if the manifest is complete
func (m Manifest) Validate() error {
	if m.RunID.IsEmpty() {
		return core.ErrInvalidInput
	}
	if m.InputSHA256.IsEmpty() || m.ArtifactSHA256.IsEmpty() {
		return core.ErrInvalidInput
	}
	return nil
}
