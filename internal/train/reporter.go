package train

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// WriteReport persists the metrics report as JSON plus a human-readable
// summary in the output directory.
func WriteReport(dir string, result *Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create reports directory: %w", err)
	}

	if err := writeJSONReport(dir, result); err != nil {
		return err
	}
	return writeSummary(dir, result)
}

func writeJSONReport(dir string, result *Result) error {
	jsonPath := filepath.Join(dir, "metrics_report.json")

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}

	log.Info().Str("file", jsonPath).Msg("JSON report generated")
	return nil
}

func writeSummary(dir string, result *Result) error {
	summaryPath := filepath.Join(dir, "training_summary.txt")
	file, err := os.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "TRAINING RUN SUMMARY\n")
	fmt.Fprintf(file, "====================\n\n")

	fmt.Fprintf(file, "Run ID: %s\n", result.RunID)
	fmt.Fprintf(file, "Artifact Version: %s\n", result.Version)
	fmt.Fprintf(file, "Trained At: %s\n", result.TrainedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(file, "Duration: %s\n", result.Duration)
	fmt.Fprintf(file, "Dataset: %s\n\n", result.DatasetRef)

	fmt.Fprintf(file, "DATA\n")
	fmt.Fprintf(file, "----\n")
	fmt.Fprintf(file, "Training Rows: %d\n", result.TrainRows)
	fmt.Fprintf(file, "Test Rows: %d\n", result.TestRows)
	fmt.Fprintf(file, "Fraud Examples (train): %d\n\n", result.Positives)

	fmt.Fprintf(file, "HYPERPARAMETERS\n")
	fmt.Fprintf(file, "---------------\n")
	fmt.Fprintf(file, "Trees: %d\n", result.Params.Trees)
	fmt.Fprintf(file, "Max Depth: %d\n", result.Params.MaxDepth)
	fmt.Fprintf(file, "Min Leaf: %d\n", result.Params.MinLeaf)
	fmt.Fprintf(file, "Seed: %d\n", result.Params.Seed)
	fmt.Fprintf(file, "Threshold: %.2f\n\n", result.Threshold)

	fmt.Fprintf(file, "HELD-OUT METRICS\n")
	fmt.Fprintf(file, "----------------\n")
	fmt.Fprintf(file, "Precision: %.4f\n", result.Metrics.Precision)
	fmt.Fprintf(file, "Recall: %.4f\n", result.Metrics.Recall)
	fmt.Fprintf(file, "F1-Score: %.4f\n", result.Metrics.F1)
	fmt.Fprintf(file, "ROC-AUC: %.4f\n", result.Metrics.ROCAUC)
	fmt.Fprintf(file, "PR-AUC: %.4f\n\n", result.Metrics.PRAUC)

	cm := result.Metrics.Confusion
	fmt.Fprintf(file, "CONFUSION MATRIX\n")
	fmt.Fprintf(file, "----------------\n")
	fmt.Fprintf(file, "True Positives: %d\n", cm.TruePositives)
	fmt.Fprintf(file, "False Positives: %d\n", cm.FalsePositives)
	fmt.Fprintf(file, "True Negatives: %d\n", cm.TrueNegatives)
	fmt.Fprintf(file, "False Negatives: %d\n", cm.FalseNegatives)

	log.Info().Str("file", summaryPath).Msg("Summary report generated")
	return nil
}
