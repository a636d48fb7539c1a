// Package erpnext is the HTTP client for the ERPNext resource API, the
// system of record for clients, contracts, and alerts.
package erpnext

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/AryaKesharwani/erp-next-contract/pkg/httpclient"
	"github.com/AryaKesharwani/erp-next-contract/pkg/models"
	"github.com/AryaKesharwani/erp-next-contract/pkg/tracing"
)

// Doctypes managed by this service
const (
	DoctypeClient   = "Client"
	DoctypeContract = "ContractCustom"
	DoctypeAlert    = "Alert"
	DoctypeDocument = "ContractDocument"
)

const dateLayout = "2006-01-02"

// Config holds ERPNext connection settings
type Config struct {
	BaseURL       string
	APIKey        string
	APISecret     string
	Timeout       time.Duration
	RatePerSecond float64
	RateBurst     int
}

// Client talks to the ERPNext resource API
type Client struct {
	http       *httpclient.Client
	baseURL    string
	authHeader string
	logger     ectologger.Logger
}

// NewClient creates a new ERPNext client
func NewClient(cfg Config, logger ectologger.Logger) *Client {
	httpCfg := httpclient.DefaultConfig()
	if cfg.Timeout > 0 {
		httpCfg.Timeout = cfg.Timeout
	}
	httpCfg.RatePerSecond = cfg.RatePerSecond
	httpCfg.RateBurst = cfg.RateBurst

	credentials := base64.StdEncoding.EncodeToString([]byte(cfg.APIKey + ":" + cfg.APISecret))

	return &Client{
		http:       httpclient.NewClient(httpCfg, logger),
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		authHeader: "Basic " + credentials,
		logger:     logger,
	}
}

func (c *Client) resourceURL(doctype string) string {
	return c.baseURL + "/api/resource/" + url.PathEscape(doctype)
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Authorization": c.authHeader,
		"Accept":        "application/json",
	}
}

func (c *Client) decode(resp *httpclient.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := string(resp.Body)
		if len(body) > 512 {
			body = body[:512]
		}
		return fmt.Errorf("erpnext returned status %d: %s", resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode erpnext response: %w", err)
	}
	return nil
}

type clientRow struct {
	Name       string `json:"name"`
	ClientName string `json:"client_name"`
	Aliases    string `json:"aliases"`
}

// GetClients fetches the full client registry.
func (c *Client) GetClients(ctx context.Context) ([]models.Client, error) {
	ctx, span := tracing.StartSpan(ctx, "erpnext.Client.GetClients")
	defer span.End()

	query := url.Values{}
	query.Set("fields", `["name","client_name","aliases"]`)
	query.Set("limit_page_length", "0")

	resp, err := c.http.Get(ctx, c.resourceURL(DoctypeClient)+"?"+query.Encode(), c.headers())
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data []clientRow `json:"data"`
	}
	if err := c.decode(resp, &payload); err != nil {
		return nil, err
	}

	clients := make([]models.Client, 0, len(payload.Data))
	for _, row := range payload.Data {
		clients = append(clients, models.Client{
			ClientID:   row.Name,
			ClientName: row.ClientName,
			Aliases:    splitAliases(row.Aliases),
		})
	}

	c.logger.WithContext(ctx).WithField("clients", len(clients)).Debug("Fetched client registry")
	return clients, nil
}

// Clients implements the registry provider interface.
func (c *Client) Clients(ctx context.Context) ([]models.Client, error) {
	return c.GetClients(ctx)
}

// CreateClient creates a new client record from a candidate identity.
func (c *Client) CreateClient(ctx context.Context, candidate models.CandidateIdentity) (models.Client, error) {
	ctx, span := tracing.StartSpan(ctx, "erpnext.Client.CreateClient")
	defer span.End()

	clientID := fmt.Sprintf("CLI-%d", time.Now().Unix())
	doc := map[string]any{
		"name":        clientID,
		"client_name": candidate.PrimaryName,
		"aliases":     strings.Join(candidate.AlternativeNames, ", "),
	}

	resp, err := c.http.PostJSON(ctx, c.resourceURL(DoctypeClient), c.headers(), doc)
	if err != nil {
		return models.Client{}, err
	}

	var payload struct {
		Data clientRow `json:"data"`
	}
	if err := c.decode(resp, &payload); err != nil {
		return models.Client{}, err
	}
	if payload.Data.Name != "" {
		clientID = payload.Data.Name
	}

	created := models.Client{
		ClientID:   clientID,
		ClientName: candidate.PrimaryName,
		Aliases:    candidate.AlternativeNames,
	}

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"client_id":   created.ClientID,
		"client_name": created.ClientName,
	}).Info("Created client record")

	return created, nil
}

// CreateContract creates a contract record for a reconciled document.
func (c *Client) CreateContract(ctx context.Context, record models.ContractRecord) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "erpnext.Client.CreateContract")
	defer span.End()

	doc := map[string]any{
		"client":        record.ClientID,
		"document_name": record.DocumentName,
		"sow_type":      MapSowType(record.SowType),
		"status":        "Active",
		"auto_renewal":  record.AutoRenewal,
	}
	if record.StartDate != "" {
		doc["start_date"] = record.StartDate
	}
	if record.EndDate != "" {
		doc["end_date"] = record.EndDate
	}

	resp, err := c.http.PostJSON(ctx, c.resourceURL(DoctypeContract), c.headers(), doc)
	if err != nil {
		return "", err
	}

	var payload struct {
		Data struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := c.decode(resp, &payload); err != nil {
		return "", err
	}

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"contract_id": payload.Data.Name,
		"client_id":   record.ClientID,
	}).Info("Created contract record")

	return payload.Data.Name, nil
}

type documentRow struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Source   string `json:"source"`
	Modified string `json:"modified"`
}

// GetDocuments fetches recently modified contract documents for the
// processing cycle. The ingest ledger decides which ones still need work.
func (c *Client) GetDocuments(ctx context.Context, limit int) ([]models.Document, error) {
	ctx, span := tracing.StartSpan(ctx, "erpnext.Client.GetDocuments")
	defer span.End()

	query := url.Values{}
	query.Set("fields", `["name","title","content","source","modified"]`)
	query.Set("order_by", "modified desc")
	query.Set("limit_page_length", fmt.Sprintf("%d", limit))

	resp, err := c.http.Get(ctx, c.resourceURL(DoctypeDocument)+"?"+query.Encode(), c.headers())
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data []documentRow `json:"data"`
	}
	if err := c.decode(resp, &payload); err != nil {
		return nil, err
	}

	docs := make([]models.Document, 0, len(payload.Data))
	for _, row := range payload.Data {
		doc := models.Document{
			ID:     row.Name,
			Name:   row.Title,
			Text:   row.Content,
			Source: row.Source,
		}
		if modified, err := time.Parse("2006-01-02 15:04:05.000000", row.Modified); err == nil {
			doc.ModifiedAt = modified
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

type contractRow struct {
	Name         string `json:"name"`
	Client       string `json:"client"`
	ClientName   string `json:"client_name"`
	DocumentName string `json:"document_name"`
	EndDate      string `json:"end_date"`
}

// GetExpiringContracts returns active contracts expiring within daysAhead
// days, each annotated with its days until expiration.
func (c *Client) GetExpiringContracts(ctx context.Context, daysAhead int) ([]models.ExpiringContract, error) {
	ctx, span := tracing.StartSpan(ctx, "erpnext.Client.GetExpiringContracts")
	defer span.End()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	until := today.AddDate(0, 0, daysAhead)

	filters, err := json.Marshal([]any{
		[]any{"status", "=", "Active"},
		[]any{"end_date", "between", []string{today.Format(dateLayout), until.Format(dateLayout)}},
	})
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("fields", `["name","client","client_name","document_name","end_date"]`)
	query.Set("filters", string(filters))
	query.Set("limit_page_length", "0")

	resp, err := c.http.Get(ctx, c.resourceURL(DoctypeContract)+"?"+query.Encode(), c.headers())
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data []contractRow `json:"data"`
	}
	if err := c.decode(resp, &payload); err != nil {
		return nil, err
	}

	contracts := make([]models.ExpiringContract, 0, len(payload.Data))
	for _, row := range payload.Data {
		endDate, err := time.Parse(dateLayout, row.EndDate)
		if err != nil {
			c.logger.WithContext(ctx).WithError(err).WithField("contract_id", row.Name).Warn("Skipping contract with unparseable end date")
			continue
		}
		contracts = append(contracts, models.ExpiringContract{
			ContractID:          row.Name,
			ClientID:            row.Client,
			ClientName:          row.ClientName,
			DocumentName:        row.DocumentName,
			EndDate:             endDate,
			DaysUntilExpiration: int(endDate.Sub(today).Hours() / 24),
		})
	}

	return contracts, nil
}

// CreateAlert creates an alert record.
func (c *Client) CreateAlert(ctx context.Context, alert models.Alert) error {
	ctx, span := tracing.StartSpan(ctx, "erpnext.Client.CreateAlert")
	defer span.End()

	doc := map[string]any{
		"alert_type": alert.Type,
		"priority":   alert.Priority,
		"subject":    alert.Subject,
		"message":    alert.Message,
	}
	if alert.ContractID != "" {
		doc["contract"] = alert.ContractID
	}
	if alert.DocumentID != "" {
		doc["document_id"] = alert.DocumentID
	}

	resp, err := c.http.PostJSON(ctx, c.resourceURL(DoctypeAlert), c.headers(), doc)
	if err != nil {
		return err
	}

	return c.decode(resp, nil)
}

func splitAliases(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	aliases := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			aliases = append(aliases, trimmed)
		}
	}
	return aliases
}
