// Package alerts raises notifications for expiring contracts and failed
// document processing.
package alerts

import (
	"context"
	"fmt"
	"sort"

	"github.com/Gobusters/ectologger"

	"github.com/AryaKesharwani/erp-next-contract/pkg/models"
	"github.com/AryaKesharwani/erp-next-contract/pkg/tracing"
)

// Notifier creates alert records in the system of record.
type Notifier interface {
	CreateAlert(ctx context.Context, alert models.Alert) error
}

// ContractSource lists active contracts approaching expiration.
type ContractSource interface {
	GetExpiringContracts(ctx context.Context, daysAhead int) ([]models.ExpiringContract, error)
}

// Log persists raised alerts locally.
type Log interface {
	Create(ctx context.Context, alert models.Alert) (*models.AlertLogEntry, error)
	WasAlerted(ctx context.Context, alertType, contractID, subject string) (bool, error)
}

// Publisher announces raised alerts on the event stream.
type Publisher interface {
	AlertRaised(ctx context.Context, alert models.Alert) error
}

// Engine evaluates expiration windows and raises alerts.
type Engine struct {
	periods   []int // descending
	notifier  Notifier
	contracts ContractSource
	log       Log
	publisher Publisher
	logger    ectologger.Logger
}

// NewEngine creates an alert engine. periods are the day marks at which
// expiration alerts fire. publisher may be nil.
func NewEngine(periods []int, notifier Notifier, contracts ContractSource, log Log, publisher Publisher, logger ectologger.Logger) *Engine {
	sorted := make([]int, 0, len(periods))
	for _, p := range periods {
		if p > 0 {
			sorted = append(sorted, p)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	return &Engine{
		periods:   sorted,
		notifier:  notifier,
		contracts: contracts,
		log:       log,
		publisher: publisher,
		logger:    logger,
	}
}

// periodFor returns the tightest configured period covering days, or 0 when
// days falls outside every period.
func (e *Engine) periodFor(days int) int {
	period := 0
	for _, p := range e.periods {
		if days <= p {
			period = p
		}
	}
	return period
}

func priorityFor(days int) string {
	switch {
	case days <= 30:
		return models.AlertPriorityHigh
	case days <= 60:
		return models.AlertPriorityMedium
	default:
		return models.AlertPriorityLow
	}
}

// EvaluateExpiration raises an expiration alert for a contract whose end date
// falls within a configured alert period. Contracts past due or outside every
// period are left alone.
func (e *Engine) EvaluateExpiration(ctx context.Context, contract models.ExpiringContract) error {
	ctx, span := tracing.StartSpan(ctx, "alerts.Engine.EvaluateExpiration")
	defer span.End()

	days := contract.DaysUntilExpiration
	if days < 0 {
		return nil
	}

	period := e.periodFor(days)
	if period == 0 {
		return nil
	}

	alert := e.expirationAlert(contract, period, days)
	return e.raise(ctx, alert)
}

// CheckContractExpirations sweeps active contracts and alerts those sitting
// exactly on a period boundary. Already-raised alerts are skipped so a daily
// sweep fires each period once per contract.
func (e *Engine) CheckContractExpirations(ctx context.Context) error {
	ctx, span := tracing.StartSpan(ctx, "alerts.Engine.CheckContractExpirations")
	defer span.End()

	if len(e.periods) == 0 {
		return nil
	}

	contracts, err := e.contracts.GetExpiringContracts(ctx, e.periods[0])
	if err != nil {
		return fmt.Errorf("failed to fetch expiring contracts: %w", err)
	}

	boundaries := make(map[int]bool, len(e.periods))
	for _, p := range e.periods {
		boundaries[p] = true
	}

	raised := 0
	for _, contract := range contracts {
		if !boundaries[contract.DaysUntilExpiration] {
			continue
		}

		alert := e.expirationAlert(contract, contract.DaysUntilExpiration, contract.DaysUntilExpiration)
		seen, err := e.log.WasAlerted(ctx, models.AlertTypeExpiration, contract.ContractID, alert.Subject)
		if err != nil {
			return err
		}
		if seen {
			continue
		}

		if err := e.raise(ctx, alert); err != nil {
			e.logger.WithContext(ctx).WithError(err).WithField("contract_id", contract.ContractID).Error("Failed to raise expiration alert")
			continue
		}
		raised++
	}

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"contracts": len(contracts),
		"alerts":    raised,
	}).Info("Completed contract expiration sweep")

	return nil
}

// ProcessingError raises a high priority alert for a document that failed
// processing.
func (e *Engine) ProcessingError(ctx context.Context, doc models.Document, cause error) error {
	ctx, span := tracing.StartSpan(ctx, "alerts.Engine.ProcessingError")
	defer span.End()

	alert := models.Alert{
		Type:       models.AlertTypeProcessingError,
		Priority:   models.AlertPriorityHigh,
		Subject:    fmt.Sprintf("Document processing failed: %s", doc.Name),
		Message:    cause.Error(),
		DocumentID: doc.ID,
	}
	return e.raise(ctx, alert)
}

func (e *Engine) expirationAlert(contract models.ExpiringContract, period, days int) models.Alert {
	return models.Alert{
		Type:       models.AlertTypeExpiration,
		Priority:   priorityFor(period),
		Subject:    fmt.Sprintf("Contract %s expires in %d days", contract.ContractID, period),
		Message:    fmt.Sprintf("Contract %s for %s expires on %s (%d days remaining)", contract.ContractID, contract.ClientName, contract.EndDate.Format("2006-01-02"), days),
		ContractID: contract.ContractID,
	}
}

func (e *Engine) raise(ctx context.Context, alert models.Alert) error {
	if err := e.notifier.CreateAlert(ctx, alert); err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}

	entry, err := e.log.Create(ctx, alert)
	if err != nil {
		return err
	}
	alert.ID = entry.ID
	alert.CreatedAt = entry.CreatedAt

	if e.publisher != nil {
		if err := e.publisher.AlertRaised(ctx, alert); err != nil {
			e.logger.WithContext(ctx).WithError(err).Warn("Failed to publish alert event")
		}
	}

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"alert_type": alert.Type,
		"priority":   alert.Priority,
		"subject":    alert.Subject,
	}).Info("Raised alert")

	return nil
}
