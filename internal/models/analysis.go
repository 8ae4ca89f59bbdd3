package models

type AnalysisStatus string

const (
	StatusIdle       AnalysisStatus = "idle"
	StatusSubmitting AnalysisStatus = "submitting"
	StatusSucceeded  AnalysisStatus = "succeeded"
	StatusFailed     AnalysisStatus = "failed"
)

// User-facing failure messages. Transport errors are deliberately collapsed
// into a single message.
const (
	MessageNoFile         = "Please upload a ciphertext file."
	MessageBackendFailure = "Error connecting to backend."
)

// ViewModel is the snapshot the page shell renders.
type ViewModel struct {
	Status       AnalysisStatus     `json:"status"`
	ErrorMessage string             `json:"error_message,omitempty"`
	FileName     string             `json:"file_name,omitempty"`
	Verdict      *PredictionVerdict `json:"verdict"`
}

func (v ViewModel) IsSubmitting() bool {
	return v.Status == StatusSubmitting
}
