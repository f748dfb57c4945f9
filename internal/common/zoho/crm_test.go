package zoho

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRMClient_CreateLead(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantID     string
		wantErr    bool
		wantDupErr bool
	}{
		{
			name:   "created",
			status: http.StatusCreated,
			body:   `{"data":[{"code":"SUCCESS","details":{"id":"5725767000000524157"},"message":"record added","status":"success"}]}`,
			wantID: "5725767000000524157",
		},
		{
			name:       "duplicate",
			status:     http.StatusBadRequest,
			body:       `{"data":[{"code":"DUPLICATE_DATA","details":{},"message":"duplicate data","status":"error"}]}`,
			wantErr:    true,
			wantDupErr: true,
		},
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    `{"code":"INVALID_TOKEN","message":"invalid oauth token"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got struct {
				Data []Lead `json:"data"`
			}
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/Leads", r.URL.Path)
				assert.Equal(t, "Zoho-oauthtoken tok", r.Header.Get("Authorization"))
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewCRMClient("key", "tok", WithBaseURL(server.URL))
			id, err := c.CreateLead(context.Background(), &Lead{
				LastName:   "01098765432",
				Phone:      "01098765432",
				LeadSource: "hunter:شقة",
			})

			require.Len(t, got.Data, 1)
			assert.Equal(t, "01098765432", got.Data[0].Phone)

			if tt.wantErr {
				require.Error(t, err)
				if tt.wantDupErr {
					assert.ErrorIs(t, err, ErrDuplicate)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestCRMClient_SearchLeadsByPhone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Leads/search", r.URL.Path)
		switch r.URL.Query().Get("phone") {
		case "01098765432":
			_, _ = w.Write([]byte(`{"data":[{"id":"1","Last_Name":"x","Phone":"01098765432"}]}`))
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer server.Close()

	c := NewCRMClient("key", "tok", WithBaseURL(server.URL))

	found, err := c.SearchLeadsByPhone(context.Background(), "01098765432")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "1", found[0].ID)

	none, err := c.SearchLeadsByPhone(context.Background(), "01000000000")
	require.NoError(t, err)
	assert.Empty(t, none)
}
