package domain

import "time"

// TrendRecord is one normalized hit from a single source for a single seed keyword.
// Records are immutable once produced and discarded after ranking unless a caller
// persists them.
type TrendRecord struct {
	Keyword      string    `json:"keyword"`
	Interest     float64   `json:"interest"`
	ProjectedRPM float64   `json:"projected_rpm"`
	Source       string    `json:"source"`
	ScannedOn    time.Time `json:"scanned_on"`
}

// NicheSuggestion is a report entry derived from the trend feed.
type NicheSuggestion struct {
	Niche     string `json:"niche"`
	Source    string `json:"source"`
	Rationale string `json:"rationale"`
}
