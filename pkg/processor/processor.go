// Package processor drives a document through extraction, reconciliation,
// persistence, and record updates in the system of record.
package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"

	appctx "github.com/AryaKesharwani/erp-next-contract/pkg/context"
	"github.com/AryaKesharwani/erp-next-contract/pkg/database"
	"github.com/AryaKesharwani/erp-next-contract/pkg/matching"
	"github.com/AryaKesharwani/erp-next-contract/pkg/models"
	"github.com/AryaKesharwani/erp-next-contract/pkg/tracing"
)

const dateLayout = "2006-01-02"

// Extractor pulls structured metadata out of document text.
type Extractor interface {
	Extract(ctx context.Context, doc models.Document) (*models.ExtractionResult, error)
}

// Registry serves client snapshots and drops them when the registry changes.
type Registry interface {
	Clients(ctx context.Context) ([]models.Client, error)
	Invalidate()
}

// RecordWriter creates client and contract records in the system of record.
type RecordWriter interface {
	CreateClient(ctx context.Context, candidate models.CandidateIdentity) (models.Client, error)
	CreateContract(ctx context.Context, record models.ContractRecord) (string, error)
}

// MappingStore persists reconciliation decisions.
type MappingStore interface {
	Create(ctx context.Context, result *models.MappingResult) (*models.MappingResult, error)
}

// Ledger tracks which documents have been handled.
type Ledger interface {
	IsProcessed(ctx context.Context, documentID string) (bool, error)
	MarkStatus(ctx context.Context, doc models.Document, status string, processingErr error) error
}

// AlertSink raises alerts for failures and expiring contracts.
type AlertSink interface {
	ProcessingError(ctx context.Context, doc models.Document, cause error) error
	EvaluateExpiration(ctx context.Context, contract models.ExpiringContract) error
}

// Emitter announces processing outcomes on the event stream.
type Emitter interface {
	MappingDecided(ctx context.Context, documentID string, candidate models.CandidateIdentity, decision models.MatchDecision) error
	ClientCreated(ctx context.Context, documentID string, client models.Client) error
	ContractCreated(ctx context.Context, documentID, contractID string, record models.ContractRecord) error
}

// RowBuilder converts a decision into a persistable mapping result row.
type RowBuilder func(documentID string, candidate models.CandidateIdentity, decision models.MatchDecision) (*models.MappingResult, error)

// Processor reconciles extracted documents against the client registry.
type Processor struct {
	db        database.DB
	extractor Extractor
	matcher   *matching.Matcher
	registry  Registry
	records   RecordWriter
	mappings  MappingStore
	buildRow  RowBuilder
	ledger    Ledger
	alerts    AlertSink
	emitter   Emitter
	threshold float64
	logger    ectologger.Logger
}

// NewProcessor creates a document processor. emitter may be nil.
func NewProcessor(
	db database.DB,
	extractor Extractor,
	matcher *matching.Matcher,
	registry Registry,
	records RecordWriter,
	mappings MappingStore,
	buildRow RowBuilder,
	ledger Ledger,
	alerts AlertSink,
	emitter Emitter,
	threshold float64,
	logger ectologger.Logger,
) *Processor {
	return &Processor{
		db:        db,
		extractor: extractor,
		matcher:   matcher,
		registry:  registry,
		records:   records,
		mappings:  mappings,
		buildRow:  buildRow,
		ledger:    ledger,
		alerts:    alerts,
		emitter:   emitter,
		threshold: threshold,
		logger:    logger,
	}
}

// ProcessDocument runs a single document through the pipeline. Documents are
// marked in the ledger whether they succeed or fail so a broken document does
// not loop forever; failures raise an error alert instead of returning one.
func (p *Processor) ProcessDocument(ctx context.Context, doc models.Document) error {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.ProcessDocument")
	defer span.End()

	ctx = appctx.SetDocumentID(ctx, doc.ID)
	log := p.logger.WithContext(ctx).WithField("document_id", doc.ID)

	done, err := p.ledger.IsProcessed(ctx, doc.ID)
	if err != nil {
		return err
	}
	if done {
		log.Debug("Document already processed, skipping")
		return nil
	}

	result, err := p.extractor.Extract(ctx, doc)
	if err != nil {
		return p.fail(ctx, doc, fmt.Errorf("extraction failed: %w", err))
	}

	candidate := result.ClientInfo.Identity()
	if err := matching.ValidateCandidate(candidate); err != nil {
		return p.fail(ctx, doc, fmt.Errorf("extracted identity is unusable: %w", err))
	}

	clients, err := p.registry.Clients(ctx)
	if err != nil {
		return p.fail(ctx, doc, fmt.Errorf("failed to load client registry: %w", err))
	}

	decision := p.matcher.Match(candidate, clients, p.threshold)
	log.WithFields(map[string]any{
		"candidate":      candidate.PrimaryName,
		"recommendation": string(decision.Recommendation),
		"confidence":     decision.Confidence,
	}).Info("Reconciled candidate against registry")

	if err := p.persistDecision(ctx, doc, candidate, decision); err != nil {
		return p.fail(ctx, doc, err)
	}

	if p.emitter != nil {
		if err := p.emitter.MappingDecided(ctx, doc.ID, candidate, decision); err != nil {
			log.WithError(err).Warn("Failed to publish mapping event")
		}
	}

	client, contractID, record, err := p.updateRecords(ctx, doc, candidate, decision, result)
	if err != nil {
		return p.fail(ctx, doc, err)
	}

	p.evaluateExpiration(ctx, client, contractID, doc, record)

	log.WithFields(map[string]any{
		"client_id":   client.ClientID,
		"contract_id": contractID,
	}).Info("Document processed")

	return nil
}

// persistDecision writes the mapping result and the ledger row in one
// transaction.
func (p *Processor) persistDecision(ctx context.Context, doc models.Document, candidate models.CandidateIdentity, decision models.MatchDecision) error {
	row, err := p.buildRow(doc.ID, candidate, decision)
	if err != nil {
		return fmt.Errorf("failed to build mapping result: %w", err)
	}

	txCtx, tx, err := database.GetTx(ctx, p.logger, p.db, nil)
	if err != nil {
		return err
	}

	if _, err := p.mappings.Create(txCtx, row); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := p.ledger.MarkStatus(txCtx, doc, models.DocumentStatusProcessed, nil); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	return nil
}

// updateRecords applies the decision to the system of record: reuse the
// matched client or create a new one, then create the contract.
func (p *Processor) updateRecords(ctx context.Context, doc models.Document, candidate models.CandidateIdentity, decision models.MatchDecision, result *models.ExtractionResult) (models.Client, string, models.ContractRecord, error) {
	var client models.Client
	var record models.ContractRecord

	if decision.IsMatch() {
		client = models.Client{ClientID: decision.ClientID, ClientName: decision.ClientName}
	} else {
		created, err := p.records.CreateClient(ctx, candidate)
		if err != nil {
			return client, "", record, fmt.Errorf("failed to create client record: %w", err)
		}
		client = created

		// New client must be visible to the next document.
		p.registry.Invalidate()

		if p.emitter != nil {
			if err := p.emitter.ClientCreated(ctx, doc.ID, client); err != nil {
				p.logger.WithContext(ctx).WithError(err).Warn("Failed to publish client event")
			}
		}
	}

	record = models.ContractRecord{
		ClientID:     client.ClientID,
		DocumentName: doc.Name,
		SowType:      result.ContractDetails.SowType,
		StartDate:    result.ContractDetails.EffectiveDate,
		EndDate:      result.ContractDetails.ExpirationDate,
		AutoRenewal:  result.ContractDetails.AutoRenewal,
	}

	contractID, err := p.records.CreateContract(ctx, record)
	if err != nil {
		return client, "", record, fmt.Errorf("failed to create contract record: %w", err)
	}

	if p.emitter != nil {
		if err := p.emitter.ContractCreated(ctx, doc.ID, contractID, record); err != nil {
			p.logger.WithContext(ctx).WithError(err).Warn("Failed to publish contract event")
		}
	}

	return client, contractID, record, nil
}

// evaluateExpiration checks the new contract against the alert periods.
func (p *Processor) evaluateExpiration(ctx context.Context, client models.Client, contractID string, doc models.Document, record models.ContractRecord) {
	if record.EndDate == "" {
		return
	}

	endDate, err := time.Parse(dateLayout, record.EndDate)
	if err != nil {
		p.logger.WithContext(ctx).WithError(err).WithField("end_date", record.EndDate).Warn("Skipping expiration check for unparseable end date")
		return
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	contract := models.ExpiringContract{
		ContractID:          contractID,
		ClientID:            client.ClientID,
		ClientName:          client.ClientName,
		DocumentName:        doc.Name,
		EndDate:             endDate,
		DaysUntilExpiration: int(endDate.Sub(today).Hours() / 24),
	}

	if err := p.alerts.EvaluateExpiration(ctx, contract); err != nil {
		p.logger.WithContext(ctx).WithError(err).WithField("contract_id", contractID).Error("Failed to evaluate contract expiration")
	}
}

// fail raises an error alert and marks the document failed. The returned
// error is nil so intake does not redeliver a document that will fail again.
func (p *Processor) fail(ctx context.Context, doc models.Document, cause error) error {
	p.logger.WithContext(ctx).WithError(cause).WithField("document_id", doc.ID).Error("Document processing failed")

	if err := p.alerts.ProcessingError(ctx, doc, cause); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to raise processing error alert")
	}
	if err := p.ledger.MarkStatus(ctx, doc, models.DocumentStatusFailed, cause); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to mark document as failed")
		return err
	}

	return nil
}
