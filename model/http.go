package model

type AnalyzeResponse struct {
	Source     string `json:"source"`
	Status     string `json:"status"`
	Acceptable bool   `json:"acceptable"`
	Key        string `json:"key,omitempty"`
	KeySource  string `json:"key_source,omitempty"`
	Interval   string `json:"interval,omitempty"`
	Semitones  int    `json:"semitones"`
	NumEvents  int    `json:"num_events"`
	Error      string `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
