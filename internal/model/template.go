package model

import "time"

// TemplateMeta is the sidecar written next to a cached template. It records
// when the template was last fetched and where from.
type TemplateMeta struct {
	FetchedAt    time.Time `json:"fetchedAt"`
	TemplateName string    `json:"templateName"`
	Source       string    `json:"source"`
}
