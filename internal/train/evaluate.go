package train

import "sort"

// ConfusionMatrix is the 2x2 outcome table at the decision threshold.
type ConfusionMatrix struct {
	TruePositives  int `json:"true_positives"`
	FalsePositives int `json:"false_positives"`
	TrueNegatives  int `json:"true_negatives"`
	FalseNegatives int `json:"false_negatives"`
}

// MetricsReport carries the held-out evaluation metrics. PR-AUC is the
// headline number for this problem: with ~0.17% fraud prevalence, ROC-AUC
// alone overstates how good a classifier is.
type MetricsReport struct {
	Precision float64         `json:"precision"`
	Recall    float64         `json:"recall"`
	F1        float64         `json:"f1"`
	ROCAUC    float64         `json:"roc_auc"`
	PRAUC     float64         `json:"pr_auc"`
	Confusion ConfusionMatrix `json:"confusion_matrix"`
}

// Evaluate computes threshold metrics and both AUCs over held-out scores.
func Evaluate(scores []float64, labels []int, threshold float64) MetricsReport {
	var cm ConfusionMatrix
	for i, s := range scores {
		predicted := s >= threshold
		actual := labels[i] == 1
		switch {
		case predicted && actual:
			cm.TruePositives++
		case predicted && !actual:
			cm.FalsePositives++
		case !predicted && actual:
			cm.FalseNegatives++
		default:
			cm.TrueNegatives++
		}
	}

	report := MetricsReport{Confusion: cm}
	if cm.TruePositives+cm.FalsePositives > 0 {
		report.Precision = float64(cm.TruePositives) / float64(cm.TruePositives+cm.FalsePositives)
	}
	if cm.TruePositives+cm.FalseNegatives > 0 {
		report.Recall = float64(cm.TruePositives) / float64(cm.TruePositives+cm.FalseNegatives)
	}
	if report.Precision+report.Recall > 0 {
		report.F1 = 2 * report.Precision * report.Recall / (report.Precision + report.Recall)
	}
	report.ROCAUC = rocAUC(scores, labels)
	report.PRAUC = prAUC(scores, labels)
	return report
}

// rocAUC is the rank-based (Mann-Whitney) estimate, with tied scores
// assigned their average rank.
func rocAUC(scores []float64, labels []int) float64 {
	n := len(scores)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && scores[order[j]] == scores[order[i]] {
			j++
		}
		avg := float64(i+j+1) / 2 // average of 1-based ranks i+1..j
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		i = j
	}

	var nPos, nNeg int
	var sumPos float64
	for i, y := range labels {
		if y == 1 {
			nPos++
			sumPos += ranks[i]
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0
	}
	return (sumPos - float64(nPos)*float64(nPos+1)/2) / (float64(nPos) * float64(nNeg))
}

// prAUC is the average-precision estimate of the area under the
// precision-recall curve: precision at each positive, weighted by the
// recall step it contributes.
func prAUC(scores []float64, labels []int) float64 {
	n := len(scores)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	var nPos int
	for _, y := range labels {
		if y == 1 {
			nPos++
		}
	}
	if nPos == 0 {
		return 0
	}

	var tp, fp int
	var ap, lastRecall float64
	for i := 0; i < n; {
		// Advance through ties as one block so equal scores share one
		// precision point.
		j := i
		for j < n && scores[order[j]] == scores[order[i]] {
			if labels[order[j]] == 1 {
				tp++
			} else {
				fp++
			}
			j++
		}
		recall := float64(tp) / float64(nPos)
		precision := float64(tp) / float64(tp+fp)
		ap += (recall - lastRecall) * precision
		lastRecall = recall
		i = j
	}
	return ap
}
