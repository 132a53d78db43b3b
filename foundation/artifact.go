package foundation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"io"
	"os"

	"github.com/biswajyotidutta/tabeda/pkg/errors"
)

//go:embed artifacts/tabular-icl-v1.json
var defaultArtifact []byte

// Artifact is the pretrained configuration of the in-context regressor.
type Artifact struct {
	Name    string `json:"name"`
	Version string `json:"version"`

	// Members is the number of ensemble members averaged at prediction time.
	Members int `json:"members"`

	// Temperature scales the attention logits. Lower is more local.
	Temperature float64 `json:"temperature"`

	// FeatureFraction is the share of features each member attends over.
	FeatureFraction float64 `json:"feature_fraction"`

	// PriorAlpha is the ridge penalty of the linear prior head.
	PriorAlpha float64 `json:"prior_alpha"`

	// PriorWeight blends the prior head into the prediction, in [0, 1].
	PriorWeight float64 `json:"prior_weight"`

	// MaxContext caps the number of training rows kept as context; 0 keeps all.
	MaxContext int `json:"max_context"`

	Seed uint64 `json:"seed"`
}

// DefaultArtifact returns the embedded artifact.
func DefaultArtifact() (*Artifact, error) {
	return ReadArtifact(bytes.NewReader(defaultArtifact))
}

// LoadArtifact reads and validates an artifact file.
func LoadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open artifact %s", path)
	}
	defer f.Close()
	return ReadArtifact(f)
}

// ReadArtifact decodes and validates an artifact. Unknown fields are rejected.
func ReadArtifact(r io.Reader) (*Artifact, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var a Artifact
	if err := dec.Decode(&a); err != nil {
		return nil, errors.Wrap(err, "failed to decode artifact")
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Validate checks that every field is in range.
func (a *Artifact) Validate() error {
	switch {
	case a.Members < 1:
		return errors.NewValidationError("members", "must be at least 1", a.Members)
	case !(a.Temperature > 0):
		return errors.NewValidationError("temperature", "must be positive", a.Temperature)
	case !(a.FeatureFraction > 0 && a.FeatureFraction <= 1):
		return errors.NewValidationError("feature_fraction", "must be in (0, 1]", a.FeatureFraction)
	case a.PriorAlpha < 0:
		return errors.NewValidationError("prior_alpha", "must be non-negative", a.PriorAlpha)
	case !(a.PriorWeight >= 0 && a.PriorWeight <= 1):
		return errors.NewValidationError("prior_weight", "must be in [0, 1]", a.PriorWeight)
	case a.MaxContext < 0:
		return errors.NewValidationError("max_context", "must be non-negative", a.MaxContext)
	}
	return nil
}

// String identifies the artifact in logs.
func (a *Artifact) String() string {
	return a.Name + "@" + a.Version
}
