// internal/models/hunt.go
package models

import "time"

// HuntSummary is what a hunt reports back. It is never persisted as a lead.
type HuntSummary struct {
	HuntID       string        `json:"hunt_id"`
	Success      bool          `json:"success"`
	Query        string        `json:"query"`
	City         string        `json:"city"`
	RequestedBy  string        `json:"requested_by"`
	TotalResults int           `json:"total_results"`
	FoundLeads   int           `json:"found_leads"`
	Leads        []string      `json:"leads"`
	TruncatedTo  int           `json:"truncated_to"`
	Duplicates   int           `json:"duplicates"`
	DroppedLeads int           `json:"dropped_leads"`
	Failures     []LeadFailure `json:"failed_leads,omitempty"`
	ErrorCode    string        `json:"error_code,omitempty"`
	Error        string        `json:"error,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
}

// LeadFailure records one candidate the store refused.
type LeadFailure struct {
	Phone  string `json:"phone"`
	Reason string `json:"reason"`
}

// Duration is the wall-clock time the hunt took.
func (s *HuntSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// ToVariables flattens the summary into Zeebe process variables.
func (s *HuntSummary) ToVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"huntId":       s.HuntID,
		"success":      s.Success,
		"query":        s.Query,
		"city":         s.City,
		"totalResults": s.TotalResults,
		"foundLeads":   s.FoundLeads,
		"leads":        s.Leads,
		"duplicates":   s.Duplicates,
		"droppedLeads": s.DroppedLeads,
	}
	if s.ErrorCode != "" {
		vars["errorCode"] = s.ErrorCode
		vars["error"] = s.Error
	}
	return vars
}
