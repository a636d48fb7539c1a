package processeddocument

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

// Repository is the ingest ledger for documents.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new processed document repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// IsProcessed reports whether a document has already been handled.
func (r *Repository) IsProcessed(ctx context.Context, documentID string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "processeddocument.Repository.IsProcessed")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(1)")
	sb.From("processed_documents")
	sb.Where(
		sb.Equal("document_id", documentID),
		sb.NotEqual("status", models.DocumentStatusPending),
	)

	query, args := sb.Build()
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to check processed document")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to check processed document")
	}

	return count > 0, nil
}

// MarkStatus records the processing outcome for a document. Documents are
// marked either way so a failing document does not loop forever. Joins any
// transaction bound to ctx.
func (r *Repository) MarkStatus(ctx context.Context, doc models.Document, status string, processingErr error) error {
	ctx, span := tracing.StartSpan(ctx, "processeddocument.Repository.MarkStatus")
	defer span.End()

	now := time.Now().UTC()
	var errMsg *string
	if processingErr != nil {
		msg := processingErr.Error()
		errMsg = &msg
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("processed_documents")
	sb.Cols("id", "document_id", "document_name", "status", "error", "processed_at", "created_at", "updated_at")
	sb.Values(uuid.New().String(), doc.ID, doc.Name, status, errMsg, now, now, now)

	query, args := sb.Build()
	query += " ON CONFLICT (document_id) DO UPDATE SET status = EXCLUDED.status, error = EXCLUDED.error, processed_at = EXCLUDED.processed_at, updated_at = EXCLUDED.updated_at"

	exec := database.ExecutorFor(ctx, r.db)
	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"document_id": doc.ID}).Error("Failed to mark document status")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to mark document status")
	}

	return nil
}

// List retrieves recent ledger entries, optionally filtered by status
func (r *Repository) List(ctx context.Context, status string, limit int) ([]models.ProcessedDocument, error) {
	ctx, span := tracing.StartSpan(ctx, "processeddocument.Repository.List")
	defer span.End()

	if limit < 1 || limit > 500 {
		limit = 100
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "document_id", "document_name", "status", "error", "processed_at", "created_at", "updated_at")
	sb.From("processed_documents")
	if status != "" {
		sb.Where(sb.Equal("status", status))
	}
	sb.OrderBy("updated_at DESC")
	sb.Limit(limit)

	query, args := sb.Build()
	var docs []models.ProcessedDocument
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list processed documents")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list processed documents")
	}

	return docs, nil
}
