package models

import "time"

// PrewarmItem is the outcome of warming one series.
type PrewarmItem struct {
	Series     string `json:"series"`
	OK         bool   `json:"ok"`
	Historical int    `json:"historical,omitempty"`
	Forecast   int    `json:"forecast,omitempty"`
	Source     string `json:"source,omitempty"`
	Error      string `json:"error,omitempty"`
}

// PrewarmReport summarises one pre-warm run.
type PrewarmReport struct {
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	From       string        `json:"from"`
	Horizon    int           `json:"horizonte"`
	Items      []PrewarmItem `json:"items"`
}

// Failed counts the series that could not be warmed.
func (r PrewarmReport) Failed() int {
	n := 0
	for _, it := range r.Items {
		if !it.OK {
			n++
		}
	}
	return n
}
