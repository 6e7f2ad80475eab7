package entity

import "time"

type ManifestResult struct {
	RequestID string    `json:"request_id"`
	Manifest  string    `json:"manifest"`
	Hosts     int       `json:"hosts"`
	CreatedAt time.Time `json:"created_at"`
}

type ManifestIssue struct {
	Document int    `json:"document"`
	Message  string `json:"message"`
}
