package forest

import (
	"math/rand"
	"sync"
	"testing"

	"fraudscore/internal/txn"
)

// syntheticData builds a separable imbalanced set: legitimate rows cluster
// near zero, fraud rows follow the known exemplar pattern of extreme
// negative principal components.
func syntheticData(legit, fraud int, seed int64) ([]txn.FeatureVector, []int) {
	rng := rand.New(rand.NewSource(seed))
	var vecs []txn.FeatureVector
	var labels []int

	for i := 0; i < legit; i++ {
		var v txn.FeatureVector
		v[0] = rng.Float64() * 2       // scaled time
		v[1] = rng.NormFloat64() * 0.3 // scaled amount
		for j := 2; j < txn.FeatureCount; j++ {
			v[j] = rng.NormFloat64() * 0.5
		}
		vecs = append(vecs, v)
		labels = append(labels, 0)
	}

	for i := 0; i < fraud; i++ {
		var v txn.FeatureVector
		v[0] = rng.Float64() * 2
		v[1] = rng.NormFloat64() * 0.3
		for j := 2; j < txn.FeatureCount; j++ {
			v[j] = rng.NormFloat64() * 0.5
		}
		v[2] = -3.0 + rng.NormFloat64()*0.4   // v1
		v[4] = -5.2 + rng.NormFloat64()*0.4   // v3
		v[5] = -4.1 + rng.NormFloat64()*0.4   // v4
		v[15] = -4.29 + rng.NormFloat64()*0.3 // v14
		vecs = append(vecs, v)
		labels = append(labels, 1)
	}

	return vecs, labels
}

func testParams() Hyperparameters {
	return Hyperparameters{
		Trees:        30,
		MaxDepth:     6,
		MinLeaf:      1,
		MinPositives: 5,
		Seed:         7,
	}
}

func TestFit_DeterministicForSeed(t *testing.T) {
	vecs, labels := syntheticData(300, 15, 1)

	a, err := Fit(vecs, labels, testParams())
	if err != nil {
		t.Fatalf("first fit failed: %v", err)
	}
	b, err := Fit(vecs, labels, testParams())
	if err != nil {
		t.Fatalf("second fit failed: %v", err)
	}

	if a.ContentID() != b.ContentID() {
		t.Errorf("expected identical fits for identical seed, got %s vs %s", a.ContentID(), b.ContentID())
	}

	var probe txn.FeatureVector
	probe[15] = -4.29
	if a.Score(probe) != b.Score(probe) {
		t.Error("expected identical scores from identical fits")
	}
}

func TestFit_RejectsBadLabels(t *testing.T) {
	vecs, labels := syntheticData(50, 10, 2)
	labels[3] = 2

	_, err := Fit(vecs, labels, testParams())
	if err == nil {
		t.Fatal("expected TrainingError for label outside {0,1}")
	}
	if _, ok := err.(*TrainingError); !ok {
		t.Fatalf("expected *TrainingError, got %T", err)
	}
}

func TestFit_RejectsTooFewPositives(t *testing.T) {
	vecs, labels := syntheticData(100, 2, 3)

	_, err := Fit(vecs, labels, testParams())
	if err == nil {
		t.Fatal("expected TrainingError for too few positives")
	}
	if _, ok := err.(*TrainingError); !ok {
		t.Fatalf("expected *TrainingError, got %T", err)
	}
}

func TestFit_RejectsEmptyAndMismatched(t *testing.T) {
	if _, err := Fit(nil, nil, testParams()); err == nil {
		t.Error("expected error for empty input")
	}
	vecs, labels := syntheticData(10, 10, 4)
	if _, err := Fit(vecs, labels[:5], testParams()); err == nil {
		t.Error("expected error for feature/label size mismatch")
	}
}

func TestScore_SeparatesFraudExemplar(t *testing.T) {
	vecs, labels := syntheticData(400, 20, 5)
	f, err := Fit(vecs, labels, testParams())
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	// Near-zero transaction, the legitimate pattern.
	var legit txn.FeatureVector
	legit[0] = 0.1
	legit[1] = 0.05

	// Known fraud exemplar: extreme v14 and large negative v1, v3, v4.
	var fraud txn.FeatureVector
	fraud[2] = -3.1
	fraud[4] = -5.0
	fraud[5] = -4.0
	fraud[15] = -4.29

	legitScore := f.Score(legit)
	fraudScore := f.Score(fraud)

	if legitScore >= 0.5 {
		t.Errorf("expected legitimate score well below 0.5, got %f", legitScore)
	}
	if fraudScore <= 0.5 {
		t.Errorf("expected fraud exemplar score above 0.5, got %f", fraudScore)
	}
}

func TestScore_BoundsAndConcurrency(t *testing.T) {
	vecs, labels := syntheticData(200, 10, 6)
	f, err := Fit(vecs, labels, testParams())
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	for _, v := range vecs {
		s := f.Score(v)
		if s < 0 || s > 1 {
			t.Fatalf("score %f out of [0,1]", s)
		}
	}

	// Concurrent reads against one fitted forest must all agree.
	var probe txn.FeatureVector
	probe[15] = -4.29
	want := f.Score(probe)

	var wg sync.WaitGroup
	results := make([]float64, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.Score(probe)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if got != want {
			t.Fatalf("concurrent score %d: got %f, want %f", i, got, want)
		}
	}
}

func TestScore_EmptyForest(t *testing.T) {
	f := &Forest{}
	var v txn.FeatureVector
	if got := f.Score(v); got != 0 {
		t.Errorf("expected 0 for empty forest, got %f", got)
	}
}

func TestClassWeights_InverseToFrequency(t *testing.T) {
	vecs, labels := syntheticData(190, 10, 8)
	f, err := Fit(vecs, labels, testParams())
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	// n/(2*count): 200/(2*190) and 200/(2*10).
	if f.ClassWeights[0] != 200.0/380.0 {
		t.Errorf("unexpected negative-class weight %f", f.ClassWeights[0])
	}
	if f.ClassWeights[1] != 10.0 {
		t.Errorf("unexpected positive-class weight %f", f.ClassWeights[1])
	}
}
