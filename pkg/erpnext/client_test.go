package erpnext

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AryaKesharwani/erp-next-contract/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func newTestClient(serverURL string) *Client {
	return NewClient(Config{
		BaseURL:   serverURL,
		APIKey:    "key",
		APISecret: "secret",
	}, testLogger())
}

func TestGetClients(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/resource/Client", r.URL.Path)

		expectedAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("key:secret"))
		assert.Equal(t, expectedAuth, r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"name": "CLI-1", "client_name": "Acme Corp", "aliases": "Acme, ACME Inc."},
				{"name": "CLI-2", "client_name": "Globex", "aliases": ""},
			},
		})
	}))
	defer server.Close()

	clients, err := newTestClient(server.URL).GetClients(context.Background())
	require.NoError(t, err)

	require.Len(t, clients, 2)
	assert.Equal(t, "CLI-1", clients[0].ClientID)
	assert.Equal(t, "Acme Corp", clients[0].ClientName)
	assert.Equal(t, []string{"Acme", "ACME Inc."}, clients[0].Aliases)
	assert.Empty(t, clients[1].Aliases)
}

func TestCreateClient(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/resource/Client", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"name": received["name"]},
		})
	}))
	defer server.Close()

	candidate := models.CandidateIdentity{
		PrimaryName:      "TechStart Inc.",
		AlternativeNames: []string{"TechStart", "TS Labs"},
	}

	created, err := newTestClient(server.URL).CreateClient(context.Background(), candidate)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(created.ClientID, "CLI-"), "client id %q should carry the CLI- prefix", created.ClientID)
	assert.Equal(t, "TechStart Inc.", created.ClientName)
	assert.Equal(t, "TechStart Inc.", received["client_name"])
	assert.Equal(t, "TechStart, TS Labs", received["aliases"])
}

func TestCreateContractMapsSowType(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/resource/ContractCustom", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"name": "CON-42"},
		})
	}))
	defer server.Close()

	contractID, err := newTestClient(server.URL).CreateContract(context.Background(), models.ContractRecord{
		ClientID:     "CLI-1",
		DocumentName: "msa.pdf",
		SowType:      "Time & Material",
		StartDate:    "2026-01-01",
		EndDate:      "2026-12-31",
		AutoRenewal:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, "CON-42", contractID)
	assert.Equal(t, "T&M", received["sow_type"])
	assert.Equal(t, "CLI-1", received["client"])
	assert.Equal(t, "Active", received["status"])
	assert.Equal(t, true, received["auto_renewal"])
}

func TestGetExpiringContracts(t *testing.T) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/resource/ContractCustom", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("filters"), "Active")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{
					"name":          "CON-1",
					"client":        "CLI-1",
					"client_name":   "Acme Corp",
					"document_name": "sow.pdf",
					"end_date":      today.AddDate(0, 0, 30).Format("2006-01-02"),
				},
				{
					"name":     "CON-2",
					"client":   "CLI-2",
					"end_date": "not-a-date",
				},
			},
		})
	}))
	defer server.Close()

	contracts, err := newTestClient(server.URL).GetExpiringContracts(context.Background(), 90)
	require.NoError(t, err)

	// The unparseable row is skipped, not fatal
	require.Len(t, contracts, 1)
	assert.Equal(t, "CON-1", contracts[0].ContractID)
	assert.Equal(t, 30, contracts[0].DaysUntilExpiration)
}

func TestGetDocuments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/resource/ContractDocument", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("limit_page_length"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{
					"name":     "DOC-1",
					"title":    "acme-msa.pdf",
					"content":  "This Master Services Agreement...",
					"source":   "drive",
					"modified": "2026-08-01 09:30:00.000000",
				},
			},
		})
	}))
	defer server.Close()

	docs, err := newTestClient(server.URL).GetDocuments(context.Background(), 25)
	require.NoError(t, err)

	require.Len(t, docs, 1)
	assert.Equal(t, "DOC-1", docs[0].ID)
	assert.Equal(t, "acme-msa.pdf", docs[0].Name)
	assert.Equal(t, "drive", docs[0].Source)
	assert.Equal(t, 2026, docs[0].ModifiedAt.Year())
}

func TestCreateAlertErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	err := newTestClient(server.URL).CreateAlert(context.Background(), models.Alert{
		Type:     models.AlertTypeExpiration,
		Priority: models.AlertPriorityHigh,
		Subject:  "Contract expiring",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestMapSowType(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Time & Material", "T&M"},
		{"time and material", "T&M"},
		{"T&M", "T&M"},
		{"Fixed Price", "Fixed Cost"},
		{"fixed cost", "Fixed Cost"},
		{"Fixed", "Fixed Cost"},
		{"Retainer", "Retainer"},
		{"  retainer  ", "Retainer"},
		{"something else", "T&M"},
		{"", "T&M"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, MapSowType(tt.input), "input %q", tt.input)
	}
}
