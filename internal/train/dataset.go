// Package train implements the offline pipeline: load a labeled dataset,
// fit the scaler and classifier, evaluate on a held-out split, and persist
// the artifacts together with a reproducible metrics report.
package train

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"fraudscore/internal/txn"
)

// Dataset is a labeled set of historical transactions.
type Dataset struct {
	Transactions []txn.Transaction
	Labels       []int
}

// LoadDataset reads a labeled CSV (the 30 feature columns plus a class
// column, names matched case-insensitively). Rows with unparseable values
// are dropped with a log line; training data is expected to be clean, so a
// high drop count is a red flag for the operator, not an error here.
func LoadDataset(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}

	byName := make(map[string]int, len(header))
	for i, col := range header {
		byName[strings.ToLower(strings.TrimSpace(col))] = i
	}

	var columns [txn.FeatureCount]int
	for i := 0; i < txn.FeatureCount; i++ {
		idx, ok := byName[txn.FieldName(i)]
		if !ok {
			return nil, fmt.Errorf("dataset missing required column %q", txn.FieldName(i))
		}
		columns[i] = idx
	}
	classCol, ok := byName["class"]
	if !ok {
		return nil, fmt.Errorf("dataset missing required column %q", "class")
	}

	ds := &Dataset{}
	dropped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			dropped++
			continue
		}

		var values [txn.FeatureCount]float64
		bad := false
		for i, col := range columns {
			if col >= len(record) {
				bad = true
				break
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				bad = true
				break
			}
			values[i] = v
		}
		if bad || classCol >= len(record) {
			dropped++
			continue
		}

		label, err := strconv.ParseFloat(strings.TrimSpace(record[classCol]), 64)
		if err != nil {
			dropped++
			continue
		}

		tx := txn.Transaction{Time: values[0], Amount: values[1]}
		copy(tx.V[:], values[2:])
		ds.Transactions = append(ds.Transactions, tx)
		ds.Labels = append(ds.Labels, int(label))
	}

	if len(ds.Transactions) == 0 {
		return nil, fmt.Errorf("dataset %s contains no usable rows", path)
	}

	log.Info().
		Str("path", path).
		Int("rows", len(ds.Transactions)).
		Int("dropped", dropped).
		Msg("dataset loaded")

	return ds, nil
}

// Split partitions the dataset into train and test index sets. The split is
// stratified per class and driven by the seed, so identical inputs always
// produce identical partitions.
func Split(ds *Dataset, testSize float64, seed int64) (trainIdx, testIdx []int) {
	rng := rand.New(rand.NewSource(seed))

	var byClass [2][]int
	for i, y := range ds.Labels {
		c := 0
		if y == 1 {
			c = 1
		}
		byClass[c] = append(byClass[c], i)
	}

	for _, idx := range byClass {
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		nTest := int(math.Round(float64(len(idx)) * testSize))
		testIdx = append(testIdx, idx[:nTest]...)
		trainIdx = append(trainIdx, idx[nTest:]...)
	}
	return trainIdx, testIdx
}
