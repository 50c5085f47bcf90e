package txn

import "testing"

func TestFieldName(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "time"},
		{1, "amount"},
		{2, "v1"},
		{15, "v14"},
		{29, "v28"},
	}
	for _, tc := range tests {
		if got := FieldName(tc.index); got != tc.want {
			t.Errorf("FieldName(%d) = %q, want %q", tc.index, got, tc.want)
		}
	}
}

func TestFieldNames(t *testing.T) {
	names := FieldNames()
	if len(names) != FeatureCount {
		t.Fatalf("expected %d names, got %d", FeatureCount, len(names))
	}
	if names[0] != "time" || names[1] != "amount" || names[29] != "v28" {
		t.Errorf("unexpected name ordering: %v", names)
	}
}

func TestValidationError_NamesFields(t *testing.T) {
	err := NewValidationError("invalid field values", "amount", "v14")
	msg := err.Error()
	if msg != "validation failed: invalid field values: amount, v14" {
		t.Errorf("unexpected message: %q", msg)
	}

	bare := NewValidationError("batch contains no valid rows")
	if bare.Error() != "validation failed: batch contains no valid rows" {
		t.Errorf("unexpected message: %q", bare.Error())
	}
}
