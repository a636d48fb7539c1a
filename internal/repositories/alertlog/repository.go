package alertlog

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/AryaKesharwani/erp-next-contract/pkg/database"
	"github.com/AryaKesharwani/erp-next-contract/pkg/models"
	"github.com/AryaKesharwani/erp-next-contract/pkg/tracing"
)

// Repository handles alert log persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new alert log repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create persists a raised alert. Joins any transaction bound to ctx.
func (r *Repository) Create(ctx context.Context, alert models.Alert) (*models.AlertLogEntry, error) {
	ctx, span := tracing.StartSpan(ctx, "alertlog.Repository.Create")
	defer span.End()

	entry := models.AlertLogEntry{
		ID:        uuid.New().String(),
		Type:      alert.Type,
		Priority:  alert.Priority,
		Subject:   alert.Subject,
		Message:   alert.Message,
		CreatedAt: time.Now().UTC(),
	}
	if alert.ContractID != "" {
		contractID := alert.ContractID
		entry.ContractID = &contractID
	}
	if alert.DocumentID != "" {
		documentID := alert.DocumentID
		entry.DocumentID = &documentID
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("alert_log")
	sb.Cols("id", "type", "priority", "subject", "message", "contract_id", "document_id", "created_at")
	sb.Values(entry.ID, entry.Type, entry.Priority, entry.Subject, entry.Message, entry.ContractID, entry.DocumentID, entry.CreatedAt)

	query, args := sb.Build()
	exec := database.ExecutorFor(ctx, r.db)
	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"alert_type": alert.Type}).Error("Failed to create alert log entry")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create alert log entry")
	}

	return &entry, nil
}

// WasAlerted reports whether an alert of the given type was already raised
// for a contract with the given subject. Keeps the expiration sweep from
// re-alerting the same period on every pass.
func (r *Repository) WasAlerted(ctx context.Context, alertType, contractID, subject string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "alertlog.Repository.WasAlerted")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(1)")
	sb.From("alert_log")
	sb.Where(
		sb.Equal("type", alertType),
		sb.Equal("contract_id", contractID),
		sb.Equal("subject", subject),
	)

	query, args := sb.Build()
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to check alert log")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to check alert log")
	}

	return count > 0, nil
}

// List retrieves recent alerts, optionally filtered by type
func (r *Repository) List(ctx context.Context, alertType string, limit int) ([]models.AlertLogEntry, error) {
	ctx, span := tracing.StartSpan(ctx, "alertlog.Repository.List")
	defer span.End()

	if limit < 1 || limit > 500 {
		limit = 100
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "type", "priority", "subject", "message", "contract_id", "document_id", "created_at")
	sb.From("alert_log")
	if alertType != "" {
		sb.Where(sb.Equal("type", alertType))
	}
	sb.OrderBy("created_at DESC")
	sb.Limit(limit)

	query, args := sb.Build()
	var entries []models.AlertLogEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list alerts")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list alerts")
	}

	return entries, nil
}
