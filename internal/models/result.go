package models

type UploadResponse struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	Size     int64  `json:"size"`
}

type SessionResponse struct {
	ID       string    `json:"id"`
	Theme    Theme     `json:"theme"`
	Analysis ViewModel `json:"analysis"`
}

type ThemeResponse struct {
	Theme Theme `json:"theme"`
}

type HealthResponse struct {
	Status     string `json:"status"`
	Classifier string `json:"classifier"`
	Sessions   int    `json:"sessions"`
}
