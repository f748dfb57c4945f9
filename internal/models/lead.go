// internal/models/lead.go
package models

import (
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Lead statuses used by the CRM side.
const (
	LeadStatusNew       = "new"
	LeadStatusConverted = "converted"
)

// Lead is a phone number accepted as a likely buyer contact.
type Lead struct {
	ID           string    `json:"id"`
	Phone        string    `json:"phone"`
	Name         *string   `json:"name,omitempty"`
	Source       string    `json:"source"`
	SourceDomain string    `json:"source_domain,omitempty"`
	Notes        string    `json:"notes"`
	Status       string    `json:"status"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// LeadStats counts a requester's leads by status.
type LeadStats struct {
	TotalLeads int `json:"total_leads"`
	NewLeads   int `json:"new_leads"`
	Converted  int `json:"converted"`
}

// SourceDomain returns the registrable domain of link ("olx.com.eg" for
// "https://www.olx.com.eg/ad/1"), or "" when link has no usable host.
func SourceDomain(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ""
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}
