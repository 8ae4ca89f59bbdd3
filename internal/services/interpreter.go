package services

import (
	"math"

	"alfredoptarigan/crypto-identifier/internal/models"
)

// maxAlternatives is how many ranked predictions the result card shows.
const maxAlternatives = 2

// InterpretResult turns a raw classifier payload into a verdict. It is total:
// missing fields degrade to zero values and a nil response gives the zero verdict.
func InterpretResult(resp *models.ClassifierResponse) models.PredictionVerdict {
	verdict := models.PredictionVerdict{
		Alternatives: []models.Alternative{},
	}
	if resp == nil {
		return verdict
	}

	if resp.Confidence != nil {
		verdict.ConfidencePercent = toPercent(*resp.Confidence)
	}

	// The server owns calibration; its flag is trusted as-is.
	if resp.IsUncertain != nil {
		verdict.IsUncertain = *resp.IsUncertain
	}

	if resp.Threshold != nil {
		threshold := toPercent(*resp.Threshold)
		verdict.ThresholdPercent = &threshold
	}

	switch {
	case verdict.IsUncertain:
		verdict.Label = models.UnknownLabel
	case resp.PredictedAlgorithm != nil:
		verdict.Label = *resp.PredictedAlgorithm
	}

	for i, pred := range resp.TopPredictions {
		if i == maxAlternatives {
			break
		}
		verdict.Alternatives = append(verdict.Alternatives, models.Alternative{
			Rank:              i + 1,
			Algorithm:         pred.Algorithm,
			ConfidencePercent: toPercent(pred.Confidence),
		})
	}

	return verdict
}

// toPercent rounds half up and clamps to [0, 100].
func toPercent(fraction float64) int {
	if math.IsNaN(fraction) {
		return 0
	}
	pct := math.Floor(fraction*100 + 0.5)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return int(pct)
}
