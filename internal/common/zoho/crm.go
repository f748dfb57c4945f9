// Package zoho is a minimal Zoho CRM v3 client for the Leads module.
package zoho

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	httpclient "lead-hunter/internal/common/http"
)

const DefaultBaseURL = "https://www.zohoapis.com/crm/v3"

// ErrDuplicate is returned when Zoho rejects a record as DUPLICATE_DATA.
var ErrDuplicate = errors.New("zoho: duplicate record")

type CRMClient struct {
	apiKey     string
	oauthToken string
	baseURL    string
	httpClient httpclient.Doer
}

type Option func(*CRMClient)

func WithBaseURL(u string) Option {
	return func(c *CRMClient) { c.baseURL = u }
}

func WithHTTPClient(d httpclient.Doer) Option {
	return func(c *CRMClient) { c.httpClient = d }
}

// Lead is the subset of the Zoho Leads layout the hunter fills in.
// Last_Name is mandatory in Zoho.
type Lead struct {
	ID          string `json:"id,omitempty"`
	LastName    string `json:"Last_Name"`
	Phone       string `json:"Phone"`
	LeadSource  string `json:"Lead_Source,omitempty"`
	LeadStatus  string `json:"Lead_Status,omitempty"`
	Description string `json:"Description,omitempty"`
	Website     string `json:"Website,omitempty"`
}

type upsertResponse struct {
	Data []struct {
		Code    string `json:"code"`
		Details struct {
			ID string `json:"id"`
		} `json:"details"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"data"`
}

func NewCRMClient(apiKey, oauthToken string, opts ...Option) *CRMClient {
	c := &CRMClient{
		apiKey:     apiKey,
		oauthToken: oauthToken,
		baseURL:    DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = httpclient.NewClient(30 * time.Second)
	}
	return c
}

func (c *CRMClient) authHeaders() map[string]string {
	return map[string]string{"Authorization": "Zoho-oauthtoken " + c.oauthToken}
}

// CreateLead inserts one lead and returns its Zoho id.
func (c *CRMClient) CreateLead(ctx context.Context, lead *Lead) (string, error) {
	payload := map[string]interface{}{
		"data": []Lead{*lead},
	}
	req, err := httpclient.NewJSONRequest(ctx, http.MethodPost, c.baseURL+"/Leads", payload, c.authHeaders())
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var createResp upsertResponse
	if uErr := json.Unmarshal(body, &createResp); uErr == nil && len(createResp.Data) > 0 {
		if createResp.Data[0].Code == "DUPLICATE_DATA" {
			return "", ErrDuplicate
		}
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to create lead (status %d): %s", resp.StatusCode, string(body))
	}
	if len(createResp.Data) == 0 {
		return "", fmt.Errorf("no data in response")
	}
	if createResp.Data[0].Status != "success" {
		return "", fmt.Errorf("lead creation failed: %s", createResp.Data[0].Message)
	}

	return createResp.Data[0].Details.ID, nil
}

// SearchLeadsByPhone returns the leads whose Phone matches exactly.
func (c *CRMClient) SearchLeadsByPhone(ctx context.Context, phone string) ([]Lead, error) {
	u := fmt.Sprintf("%s/Leads/search?phone=%s", c.baseURL, url.QueryEscape(phone))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range c.authHeaders() {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	// Zoho answers 204 when the search has no hits.
	if resp.StatusCode == http.StatusNoContent {
		return []Lead{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to search leads (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Data []Lead `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Data, nil
}
