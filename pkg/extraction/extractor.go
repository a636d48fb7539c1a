// Package extraction pulls structured contract metadata out of document
// text using the Anthropic messages API.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Gobusters/ectologger"
	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/AryaKesharwani/erp-next-contract/pkg/models"
	"github.com/AryaKesharwani/erp-next-contract/pkg/tracing"
)

const systemPrompt = "You are a contract analyst. You extract structured metadata from legal documents. " +
	"Identify the document type, the counterparty organization (primary name and any alternate names or DBAs), " +
	"effective and expiration dates, auto-renewal terms, and the statement-of-work type. " +
	"Be conservative: never invent values, and report your confidence. Return strict JSON only."

// ErrEmptyDocument is returned when there is no text to extract from.
var ErrEmptyDocument = errors.New("document has no text to extract")

// Messager is the slice of the Anthropic client the extractor uses.
type Messager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Config holds extractor settings
type Config struct {
	APIKey              string
	Model               string
	MaxTokens           int
	ConfidenceThreshold float64
}

// Extractor calls the model and parses its response.
type Extractor struct {
	messages            Messager
	model               string
	maxTokens           int
	confidenceThreshold float64
	logger              ectologger.Logger
}

// NewExtractor creates an Extractor backed by the Anthropic API.
func NewExtractor(cfg Config, logger ectologger.Logger) *Extractor {
	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return NewExtractorWithMessager(&client.Messages, cfg, logger)
}

// NewExtractorWithMessager creates an Extractor with an explicit transport,
// used by tests.
func NewExtractorWithMessager(messages Messager, cfg Config, logger ectologger.Logger) *Extractor {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &Extractor{
		messages:            messages,
		model:               cfg.Model,
		maxTokens:           maxTokens,
		confidenceThreshold: cfg.ConfidenceThreshold,
		logger:              logger,
	}
}

// Extract runs the model over the document text and parses the response.
func (e *Extractor) Extract(ctx context.Context, doc models.Document) (*models.ExtractionResult, error) {
	ctx, span := tracing.StartSpan(ctx, "extraction.Extractor.Extract")
	defer span.End()

	if strings.TrimSpace(doc.Text) == "" {
		return nil, ErrEmptyDocument
	}

	prompt := buildPrompt(doc)

	resp, err := e.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(e.model),
		MaxTokens:   int64(e.maxTokens),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).WithField("document_id", doc.ID).Error("Extraction request failed")
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	result, err := ParseResult(sb.String(), e.confidenceThreshold)
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).WithField("document_id", doc.ID).Error("Failed to parse extraction response")
		return nil, err
	}

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"document_id":    doc.ID,
		"document_type":  result.DocumentType,
		"primary_name":   result.ClientInfo.PrimaryName,
		"confidence":     result.Confidence,
		"low_confidence": result.LowConfidence,
	}).Info("Extracted document metadata")

	return result, nil
}

func buildPrompt(doc models.Document) string {
	var sb strings.Builder
	sb.WriteString("Extract contract metadata from the following document as JSON with this shape:\n")
	sb.WriteString(`{"document_type": string, "client_info": {"primary_name": string, "alternative_names": [string], "confidence": number}, "contract_details": {"effective_date": "YYYY-MM-DD", "expiration_date": "YYYY-MM-DD", "auto_renewal": bool, "sow_type": string}, "type_specific": object, "confidence": number}`)
	sb.WriteString("\n\nDocument name: ")
	sb.WriteString(doc.Name)
	sb.WriteString("\n\nDocument text:\n")
	sb.WriteString(doc.Text)
	return sb.String()
}
