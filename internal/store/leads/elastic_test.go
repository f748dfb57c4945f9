package leads

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeElastic struct {
	mu       sync.Mutex
	exists   bool
	created  bool
	docs     map[string]map[string]interface{}
	failDocs bool
}

func (f *fakeElastic) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodHead && r.URL.Path == "/leads":
		if f.exists {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodPut && r.URL.Path == "/leads":
		f.created = true
		f.exists = true
		_, _ = w.Write([]byte(`{"acknowledged":true,"index":"leads"}`))
	case r.Method == http.MethodPut && len(r.URL.Path) > len("/leads/_doc/"):
		if f.failDocs {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"unavailable"}`))
			return
		}
		var doc map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&doc)
		f.docs[r.URL.Path[len("/leads/_doc/"):]] = doc
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newElasticMirror(t *testing.T, fake *fakeElastic) *ElasticMirror {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return NewElasticMirror(client, "leads")
}

func TestElasticMirror_EnsureIndex(t *testing.T) {
	fake := &fakeElastic{docs: map[string]map[string]interface{}{}}
	mirror := newElasticMirror(t, fake)

	require.NoError(t, mirror.EnsureIndex(context.Background()))
	assert.True(t, fake.created)

	fake.created = false
	require.NoError(t, mirror.EnsureIndex(context.Background()))
	assert.False(t, fake.created, "existing index is left alone")
}

func TestElasticMirror_Mirror(t *testing.T) {
	fake := &fakeElastic{docs: map[string]map[string]interface{}{}}
	mirror := newElasticMirror(t, fake)
	lead := sampleLead()

	require.NoError(t, mirror.Mirror(context.Background(), lead))

	doc, ok := fake.docs[lead.ID]
	require.True(t, ok)
	assert.Equal(t, "01098765432", doc["phone"])
	assert.Equal(t, "olx.com.eg", doc["source_domain"])

	fake.failDocs = true
	assert.Error(t, mirror.Mirror(context.Background(), lead))
}
