package scoring

import (
	"fmt"
	"strings"
	"testing"

	"fraudscore/internal/txn"
)

// batchCSV builds a CSV document with the canonical header and one data row
// per entry; each entry lists the 30 field values in canonical order.
func batchCSV(rows ...[]string) string {
	var b strings.Builder
	b.WriteString(strings.Join(txn.FieldNames(), ","))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(strings.Join(row, ","))
		b.WriteString("\n")
	}
	return b.String()
}

// validRow returns 30 parseable values with the given amount.
func validRow(amount string) []string {
	row := make([]string, txn.FeatureCount)
	row[0] = "100"
	row[1] = amount
	for i := 2; i < txn.FeatureCount; i++ {
		row[i] = "0.1"
	}
	return row
}

func TestScoreBatch_AllValidRowsInOrder(t *testing.T) {
	e := newTestEngine(amountScorer{}, 0.5, nil)

	input := batchCSV(
		validRow("10"),
		validRow("200"),
		validRow("30"),
	)

	result, err := e.ScoreBatch(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Predictions) != 3 {
		t.Fatalf("expected 3 predictions, got %d", len(result.Predictions))
	}
	if len(result.Skipped) != 0 {
		t.Fatalf("expected no skipped rows, got %v", result.Skipped)
	}

	wantFraud := []bool{false, true, false}
	for i, p := range result.Predictions {
		if p.IsFraud != wantFraud[i] {
			t.Errorf("row %d: expected is_fraud=%v, got %v", i, wantFraud[i], p.IsFraud)
		}
	}
}

func TestScoreBatch_SkipsBadRowsAndReportsThem(t *testing.T) {
	m := &MockMetrics{}
	e := newTestEngine(amountScorer{}, 0.5, m)

	bad := validRow("50")
	bad[5] = "not-a-number"
	negative := validRow("-1")

	input := batchCSV(
		validRow("10"),
		validRow("200"),
		bad,
		validRow("30"),
		negative,
		validRow("400"),
	)

	result, err := e.ScoreBatch(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Predictions) != 4 {
		t.Fatalf("expected 4 predictions, got %d", len(result.Predictions))
	}
	if len(result.Skipped) != 2 {
		t.Fatalf("expected 2 skipped rows, got %v", result.Skipped)
	}

	if result.Skipped[0].Index != 2 {
		t.Errorf("expected first skip at data row 2, got %d", result.Skipped[0].Index)
	}
	if !strings.Contains(result.Skipped[0].Reason, "v4") {
		t.Errorf("expected skip reason to name column v4, got %q", result.Skipped[0].Reason)
	}
	if result.Skipped[1].Index != 4 {
		t.Errorf("expected second skip at data row 4, got %d", result.Skipped[1].Index)
	}
	if !strings.Contains(result.Skipped[1].Reason, "amount") {
		t.Errorf("expected skip reason to name amount, got %q", result.Skipped[1].Reason)
	}

	// Order of surviving rows is preserved: 10, 200, 30, 400.
	wantFraud := []bool{false, true, false, true}
	for i, p := range result.Predictions {
		if p.IsFraud != wantFraud[i] {
			t.Errorf("prediction %d: expected is_fraud=%v, got %v", i, wantFraud[i], p.IsFraud)
		}
	}

	if m.batches != 1 {
		t.Errorf("expected 1 batch counted, got %d", m.batches)
	}
	if m.rowsScored != 4 || m.rowsSkipped != 2 {
		t.Errorf("expected 4 scored / 2 skipped counted, got %d / %d", m.rowsScored, m.rowsSkipped)
	}
}

func TestScoreBatch_MissingColumnAborts(t *testing.T) {
	e := newTestEngine(amountScorer{}, 0.5, nil)

	// Header missing the amount and v7 columns entirely.
	names := txn.FieldNames()
	var kept []string
	for _, n := range names {
		if n == "amount" || n == "v7" {
			continue
		}
		kept = append(kept, n)
	}
	row := make([]string, len(kept))
	for i := range row {
		row[i] = "1"
	}
	input := strings.Join(kept, ",") + "\n" + strings.Join(row, ",") + "\n"

	_, err := e.ScoreBatch(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected validation error for missing columns")
	}
	verr, ok := err.(*txn.ValidationError)
	if !ok {
		t.Fatalf("expected *txn.ValidationError, got %T", err)
	}
	if len(verr.Fields) != 2 || verr.Fields[0] != "amount" || verr.Fields[1] != "v7" {
		t.Errorf("expected missing columns [amount v7], got %v", verr.Fields)
	}
}

func TestScoreBatch_HeaderIsCaseInsensitive(t *testing.T) {
	e := newTestEngine(amountScorer{}, 0.5, nil)

	names := txn.FieldNames()
	header := make([]string, len(names))
	for i, n := range names {
		header[i] = strings.ToUpper(n[:1]) + n[1:]
	}
	input := strings.Join(header, ",") + "\n" + strings.Join(validRow("200"), ",") + "\n"

	result, err := e.ScoreBatch(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Predictions) != 1 || !result.Predictions[0].IsFraud {
		t.Errorf("expected one fraud prediction, got %+v", result)
	}
}

func TestScoreBatch_ExtraColumnsIgnored(t *testing.T) {
	e := newTestEngine(amountScorer{}, 0.5, nil)

	header := strings.Join(txn.FieldNames(), ",") + ",class,notes"
	row := strings.Join(validRow("10"), ",") + ",0,ok"
	input := header + "\n" + row + "\n"

	result, err := e.ScoreBatch(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Predictions) != 1 {
		t.Fatalf("expected 1 prediction, got %d", len(result.Predictions))
	}
}

func TestScoreBatch_EmptyInput(t *testing.T) {
	e := newTestEngine(amountScorer{}, 0.5, nil)

	if _, err := e.ScoreBatch(strings.NewReader("")); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestScoreBatch_NoValidRows(t *testing.T) {
	e := newTestEngine(amountScorer{}, 0.5, nil)

	bad := validRow("50")
	bad[0] = "garbage"
	input := batchCSV(bad)

	_, err := e.ScoreBatch(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected error when no row survives")
	}
	if _, ok := err.(*txn.ValidationError); !ok {
		t.Fatalf("expected *txn.ValidationError, got %T", err)
	}
}

func TestScoreBatch_LargeBatchCountsMatch(t *testing.T) {
	e := newTestEngine(amountScorer{}, 0.5, nil)

	const n = 250
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = validRow(fmt.Sprintf("%d", i))
	}
	result, err := e.ScoreBatch(strings.NewReader(batchCSV(rows...)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Predictions) != n {
		t.Fatalf("expected %d predictions, got %d", n, len(result.Predictions))
	}

	s := e.Statistics()
	if s.TotalRequests != n {
		t.Errorf("expected %d statistics entries, got %d", n, s.TotalRequests)
	}
}
