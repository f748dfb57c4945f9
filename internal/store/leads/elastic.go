package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"lead-hunter/internal/models"
)

const leadsMapping = `{
  "mappings": {
    "properties": {
      "id":            { "type": "keyword" },
      "phone":         { "type": "keyword" },
      "name":          { "type": "text" },
      "source":        { "type": "keyword" },
      "source_domain": { "type": "keyword" },
      "notes":         { "type": "text" },
      "status":        { "type": "keyword" },
      "created_by":    { "type": "keyword" },
      "created_at":    { "type": "date" }
    }
  }
}`

// ElasticMirror indexes leads by id so notes are full-text searchable.
type ElasticMirror struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticMirror(client *elasticsearch.Client, index string) *ElasticMirror {
	if index == "" {
		index = "leads"
	}
	return &ElasticMirror{client: client, index: index}
}

func (m *ElasticMirror) Name() string { return "elasticsearch" }

// EnsureIndex creates the index with its mapping if it does not exist yet.
func (m *ElasticMirror) EnsureIndex(ctx context.Context) error {
	res, err := m.client.Indices.Exists([]string{m.index}, m.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", m.index, err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = m.client.Indices.Create(
		m.index,
		m.client.Indices.Create.WithContext(ctx),
		m.client.Indices.Create.WithBody(strings.NewReader(leadsMapping)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", m.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		// A concurrent starter may have won the race.
		if strings.Contains(string(body), "resource_already_exists_exception") {
			return nil
		}
		return fmt.Errorf("failed to create index %s: %s", m.index, res.Status())
	}
	return nil
}

func (m *ElasticMirror) Mirror(ctx context.Context, lead *models.Lead) error {
	body, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("failed to encode lead: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      m.index,
		DocumentID: lead.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, m.client)
	if err != nil {
		return fmt.Errorf("elasticsearch index failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch index error: %s", res.Status())
	}
	return nil
}
