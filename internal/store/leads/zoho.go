package leads

import (
	"context"
	"errors"

	"lead-hunter/internal/common/zoho"
	"lead-hunter/internal/models"
)

// LeadCreator is the part of the Zoho client the mirror needs.
type LeadCreator interface {
	CreateLead(ctx context.Context, lead *zoho.Lead) (string, error)
}

// ZohoMirror copies leads into the Zoho CRM Leads module.
type ZohoMirror struct {
	crm LeadCreator
}

func NewZohoMirror(crm LeadCreator) *ZohoMirror {
	return &ZohoMirror{crm: crm}
}

func (m *ZohoMirror) Name() string { return "zoho" }

func (m *ZohoMirror) Mirror(ctx context.Context, lead *models.Lead) error {
	_, err := m.crm.CreateLead(ctx, toZohoLead(lead))
	if errors.Is(err, zoho.ErrDuplicate) {
		return nil
	}
	return err
}

func toZohoLead(lead *models.Lead) *zoho.Lead {
	lastName := lead.Phone
	if lead.Name != nil && *lead.Name != "" {
		lastName = *lead.Name
	}
	website := ""
	if lead.SourceDomain != "" {
		website = "https://" + lead.SourceDomain
	}
	return &zoho.Lead{
		LastName:    lastName,
		Phone:       lead.Phone,
		LeadSource:  lead.Source,
		LeadStatus:  "Not Contacted",
		Description: lead.Notes,
		Website:     website,
	}
}
