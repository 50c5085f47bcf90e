package train

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"fraudscore/internal/artifact"
	"fraudscore/internal/cfg"
	"fraudscore/internal/features"
	"fraudscore/internal/forest"
	"fraudscore/internal/txn"
)

// Result summarizes one training run.
type Result struct {
	RunID      string                  `json:"run_id"`
	Version    string                  `json:"version"`
	TrainedAt  time.Time               `json:"trained_at"`
	Duration   time.Duration           `json:"-"`
	TrainRows  int                     `json:"train_rows"`
	TestRows   int                     `json:"test_rows"`
	Positives  int                     `json:"positives"`
	Threshold  float64                 `json:"threshold"`
	Params     forest.Hyperparameters  `json:"hyperparameters"`
	Metrics    MetricsReport           `json:"metrics"`
	ModelDir   string                  `json:"model_dir"`
	DatasetRef string                  `json:"dataset"`
}

// Run executes the full offline pipeline and persists both the artifacts
// and the metrics report. The scaler is fit on the training split only so
// held-out metrics stay honest.
func Run(settings cfg.Settings) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()

	log.Info().
		Str("run_id", runID).
		Str("dataset", settings.Dataset).
		Msg("training run started")

	ds, err := LoadDataset(settings.Dataset)
	if err != nil {
		return nil, err
	}

	trainIdx, testIdx := Split(ds, settings.TestSize, settings.Seed)
	if len(trainIdx) == 0 || len(testIdx) == 0 {
		return nil, fmt.Errorf("split produced empty partition: train=%d test=%d", len(trainIdx), len(testIdx))
	}

	times := make([]float64, len(trainIdx))
	amounts := make([]float64, len(trainIdx))
	for i, idx := range trainIdx {
		times[i] = ds.Transactions[idx].Time
		amounts[i] = ds.Transactions[idx].Amount
	}
	scaling := features.FitScaling(times, amounts)
	transformer := features.NewTransformer(scaling)

	trainVecs, trainLabels, err := vectorize(transformer, ds, trainIdx)
	if err != nil {
		return nil, err
	}
	testVecs, testLabels, err := vectorize(transformer, ds, testIdx)
	if err != nil {
		return nil, err
	}

	params := forest.Hyperparameters{
		Trees:        settings.Trees,
		MaxDepth:     settings.MaxDepth,
		MinLeaf:      settings.MinLeaf,
		MinPositives: settings.MinPositives,
		Seed:         settings.Seed,
	}
	f, err := forest.Fit(trainVecs, trainLabels, params)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(testVecs))
	for i, vec := range testVecs {
		scores[i] = f.Score(vec)
	}
	report := Evaluate(scores, testLabels, settings.Threshold)

	version, err := artifact.Save(settings.ModelDir, f, scaling, runID)
	if err != nil {
		return nil, err
	}

	positives := 0
	for _, y := range trainLabels {
		if y == 1 {
			positives++
		}
	}

	result := &Result{
		RunID:      runID,
		Version:    version,
		TrainedAt:  time.Now().UTC(),
		Duration:   time.Since(start),
		TrainRows:  len(trainVecs),
		TestRows:   len(testVecs),
		Positives:  positives,
		Threshold:  settings.Threshold,
		Params:     params,
		Metrics:    report,
		ModelDir:   settings.ModelDir,
		DatasetRef: settings.Dataset,
	}

	if settings.ReportsDir != "" {
		if err := WriteReport(settings.ReportsDir, result); err != nil {
			return nil, err
		}
	}

	log.Info().
		Str("run_id", runID).
		Str("version", version).
		Float64("precision", report.Precision).
		Float64("recall", report.Recall).
		Float64("f1", report.F1).
		Float64("roc_auc", report.ROCAUC).
		Float64("pr_auc", report.PRAUC).
		Dur("duration", result.Duration).
		Msg("training run completed")

	return result, nil
}

// vectorize transforms dataset rows into feature vectors. A transform
// failure here means the dataset violates the schema the service enforces
// at serving time, which aborts the run.
func vectorize(t *features.Transformer, ds *Dataset, idx []int) ([]txn.FeatureVector, []int, error) {
	vecs := make([]txn.FeatureVector, 0, len(idx))
	labels := make([]int, 0, len(idx))
	for _, i := range idx {
		vec, err := t.Transform(ds.Transactions[i])
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i, err)
		}
		vecs = append(vecs, vec)
		labels = append(labels, ds.Labels[i])
	}
	return vecs, labels, nil
}
