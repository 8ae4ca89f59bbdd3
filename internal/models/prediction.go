package models

// ClassifierResponse is the raw payload returned by the classifier's predict endpoint.
// Optional fields are pointers so the interpreter can tell "absent" from zero.
type ClassifierResponse struct {
	PredictedAlgorithm *string         `json:"predicted_algorithm,omitempty"`
	Confidence         *float64        `json:"confidence,omitempty"`
	TopPredictions     []TopPrediction `json:"top_predictions,omitempty"`
	IsUncertain        *bool           `json:"is_uncertain,omitempty"`
	Threshold          *float64        `json:"threshold,omitempty"`
}

type TopPrediction struct {
	Algorithm  string  `json:"algorithm"`
	Confidence float64 `json:"confidence"`
}

// UnknownLabel replaces the predicted algorithm when the classifier flags the
// prediction as below its calibrated threshold.
const UnknownLabel = "Unknown"

// PredictionVerdict is the display-ready reading of a ClassifierResponse.
// It is derived on demand and never stored.
type PredictionVerdict struct {
	Label             string        `json:"label"`
	ConfidencePercent int           `json:"confidence_percent"`
	ThresholdPercent  *int          `json:"threshold_percent,omitempty"`
	IsUncertain       bool          `json:"is_uncertain"`
	Alternatives      []Alternative `json:"alternatives"`
}

type Alternative struct {
	Rank              int    `json:"rank"`
	Algorithm         string `json:"algorithm"`
	ConfidencePercent int    `json:"confidence_percent"`
}
