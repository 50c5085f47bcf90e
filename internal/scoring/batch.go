package scoring

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"fraudscore/internal/txn"
)

// SkippedRow records one batch row that was dropped before scoring.
// Index is the zero-based position among the data rows (the header does not
// count).
type SkippedRow struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// BatchResult carries predictions for the valid rows of a batch, in input
// order, plus the rows that were skipped and why. Prediction i always
// corresponds to the i-th valid row.
type BatchResult struct {
	Predictions []Prediction `json:"predictions"`
	Skipped     []SkippedRow `json:"skipped"`
}

// ScoreBatch parses tabular CSV input and scores every valid row in input
// order. The header must name all 30 required columns (case-insensitive,
// extra columns ignored) or the whole batch aborts before any row is
// scored. Rows with unparseable or non-finite values are skipped and
// reported, not fatal. Zero valid rows is a batch-level validation error.
func (e *Engine) ScoreBatch(r io.Reader) (BatchResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return BatchResult{}, txn.NewValidationError("empty or unreadable batch")
	}

	columns, err := mapColumns(header)
	if err != nil {
		return BatchResult{}, err
	}

	if e.metrics != nil {
		e.metrics.BatchesInc()
	}

	result := BatchResult{}
	row := -1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			result.skip(row, fmt.Sprintf("malformed CSV row: %v", err))
			e.rowSkipped()
			continue
		}

		tx, reason := parseRow(record, columns)
		if reason != "" {
			result.skip(row, reason)
			e.rowSkipped()
			continue
		}

		p, err := e.ScoreOne(tx)
		if err != nil {
			// Values parsed but failed field validation (negative
			// time/amount); reported like any other skipped row.
			result.skip(row, err.Error())
			e.rowSkipped()
			continue
		}

		result.Predictions = append(result.Predictions, p)
		if e.metrics != nil {
			e.metrics.BatchRowScoredInc()
		}
	}

	if len(result.Predictions) == 0 {
		return BatchResult{}, txn.NewValidationError("batch contains no valid rows")
	}

	log.Info().
		Int("scored", len(result.Predictions)).
		Int("skipped", len(result.Skipped)).
		Msg("batch scored")

	return result, nil
}

func (r *BatchResult) skip(index int, reason string) {
	r.Skipped = append(r.Skipped, SkippedRow{Index: index, Reason: reason})
}

func (e *Engine) rowSkipped() {
	if e.metrics != nil {
		e.metrics.BatchRowSkippedInc()
	}
}

// mapColumns resolves the position of each required field in the header,
// matching names case-insensitively. All 30 columns must be present.
func mapColumns(header []string) ([txn.FeatureCount]int, error) {
	byName := make(map[string]int, len(header))
	for i, col := range header {
		byName[strings.ToLower(strings.TrimSpace(col))] = i
	}

	var columns [txn.FeatureCount]int
	var missing []string
	for i := 0; i < txn.FeatureCount; i++ {
		name := txn.FieldName(i)
		idx, ok := byName[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		columns[i] = idx
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return columns, txn.NewValidationError("missing required columns", missing...)
	}
	return columns, nil
}

// parseRow converts one CSV record into a transaction. A non-empty reason
// means the row must be skipped.
func parseRow(record []string, columns [txn.FeatureCount]int) (txn.Transaction, string) {
	var values [txn.FeatureCount]float64
	for i, col := range columns {
		if col >= len(record) {
			return txn.Transaction{}, fmt.Sprintf("row has %d fields, column %s missing", len(record), txn.FieldName(i))
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
		if err != nil {
			return txn.Transaction{}, fmt.Sprintf("column %s: unparseable value %q", txn.FieldName(i), record[col])
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return txn.Transaction{}, fmt.Sprintf("column %s: non-finite value %q", txn.FieldName(i), record[col])
		}
		values[i] = v
	}

	tx := txn.Transaction{Time: values[0], Amount: values[1]}
	copy(tx.V[:], values[2:])
	return tx, ""
}
