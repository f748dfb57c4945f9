package huntleads

import (
	"context"

	"lead-hunter/internal/models"
)

// Input is read from the job's process variables.
type Input struct {
	Query       string `json:"query"`
	City        string `json:"city"`
	RequesterID string `json:"requesterId"`
}

// HuntRunner runs a hunt inline and waits for its summary.
type HuntRunner interface {
	Run(ctx context.Context, query models.SearchQuery) (*models.HuntSummary, error)
}
