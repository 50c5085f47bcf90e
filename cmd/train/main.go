package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"fraudscore/internal/cfg"
	"fraudscore/internal/train"
)

func main() {
	var (
		dataset    = flag.String("dataset", "", "Path to labeled CSV dataset (overrides config)")
		modelDir   = flag.String("model-dir", "", "Output directory for artifacts (overrides config)")
		reportsDir = flag.String("reports", "", "Output directory for reports (overrides config)")
		logLevel   = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	_ = godotenv.Load()

	config, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	if *dataset != "" {
		config.Dataset = *dataset
	}
	if *modelDir != "" {
		config.ModelDir = *modelDir
	}
	if *reportsDir != "" {
		config.ReportsDir = *reportsDir
	}
	if config.Dataset == "" {
		log.Fatal().Msg("No dataset configured; set -dataset or DATASET")
	}

	result, err := train.Run(config)
	if err != nil {
		log.Fatal().Err(err).Msg("Training run failed")
	}

	printSummary(result)
}

func printSummary(result *train.Result) {
	fmt.Println("\n=== TRAINING RESULTS ===")
	fmt.Printf("Run ID: %s\n", result.RunID)
	fmt.Printf("Artifact Version: %s\n", result.Version)
	fmt.Printf("Train Rows: %d (fraud: %d)\n", result.TrainRows, result.Positives)
	fmt.Printf("Test Rows: %d\n", result.TestRows)
	fmt.Printf("Precision: %.4f\n", result.Metrics.Precision)
	fmt.Printf("Recall: %.4f\n", result.Metrics.Recall)
	fmt.Printf("F1-Score: %.4f\n", result.Metrics.F1)
	fmt.Printf("ROC-AUC: %.4f\n", result.Metrics.ROCAUC)
	fmt.Printf("PR-AUC: %.4f\n", result.Metrics.PRAUC)
	fmt.Printf("Duration: %s\n", result.Duration)
	fmt.Println("========================")
}
