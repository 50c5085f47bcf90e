// Package artifact persists and loads the fitted classifier and its scaling
// parameters.
//
// The two files are stamped with the same content identifier at save time;
// loading refuses a pair whose versions disagree, since scoring with a
// scaler from a different training run silently shifts every prediction.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"fraudscore/internal/features"
	"fraudscore/internal/forest"
)

const (
	forestFile = "forest.json"
	scalerFile = "scaler.json"
)

// LoadError reports a missing, corrupt, or version-mismatched artifact at
// startup. It is fatal: the service must refuse to serve rather than score
// with a broken model.
type LoadError struct {
	Path string
	Msg  string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("artifact load failed (%s): %s", e.Path, e.Msg)
}

type forestEnvelope struct {
	Version   string        `json:"version"`
	TrainedAt time.Time     `json:"trained_at"`
	RunID     string        `json:"run_id,omitempty"`
	Forest    forest.Forest `json:"forest"`
}

type scalerEnvelope struct {
	Version string                     `json:"version"`
	Scaling features.ScalingParameters `json:"scaling"`
}

// Artifact is the fully loaded serving state: one forest, one set of scaling
// parameters, and the shared content version.
type Artifact struct {
	Version   string
	TrainedAt time.Time
	RunID     string
	Forest    *forest.Forest
	Scaling   features.ScalingParameters
}

// Save writes the forest and scaler to dir, both stamped with the forest
// content identifier. RunID ties the files back to the training run that
// produced them.
func Save(dir string, f *forest.Forest, scaling features.ScalingParameters, runID string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	version := f.ContentID()
	fe := forestEnvelope{
		Version:   version,
		TrainedAt: time.Now().UTC(),
		RunID:     runID,
		Forest:    *f,
	}
	if err := writeJSON(filepath.Join(dir, forestFile), fe); err != nil {
		return "", err
	}

	se := scalerEnvelope{Version: version, Scaling: scaling}
	if err := writeJSON(filepath.Join(dir, scalerFile), se); err != nil {
		return "", err
	}

	log.Info().
		Str("dir", dir).
		Str("version", version).
		Str("run_id", runID).
		Msg("artifact saved")

	return version, nil
}

// Load reads the forest and scaler pair from dir. Any missing or corrupt
// file, or a version mismatch between the two, is a LoadError.
func Load(dir string) (*Artifact, error) {
	var fe forestEnvelope
	if err := readJSON(filepath.Join(dir, forestFile), &fe); err != nil {
		return nil, err
	}
	var se scalerEnvelope
	if err := readJSON(filepath.Join(dir, scalerFile), &se); err != nil {
		return nil, err
	}

	if fe.Version == "" || fe.Version != se.Version {
		return nil, &LoadError{
			Path: dir,
			Msg:  fmt.Sprintf("version mismatch: forest %q vs scaler %q", fe.Version, se.Version),
		}
	}
	if len(fe.Forest.Trees) == 0 {
		return nil, &LoadError{Path: filepath.Join(dir, forestFile), Msg: "forest has no trees"}
	}

	log.Info().
		Str("dir", dir).
		Str("version", fe.Version).
		Time("trained_at", fe.TrainedAt).
		Int("trees", len(fe.Forest.Trees)).
		Msg("artifact loaded")

	return &Artifact{
		Version:   fe.Version,
		TrainedAt: fe.TrainedAt,
		RunID:     fe.RunID,
		Forest:    &fe.Forest,
		Scaling:   se.Scaling,
	}, nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &LoadError{Path: path, Msg: "file not found"}
		}
		return &LoadError{Path: path, Msg: err.Error()}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &LoadError{Path: path, Msg: fmt.Sprintf("corrupt artifact: %v", err)}
	}
	return nil
}
