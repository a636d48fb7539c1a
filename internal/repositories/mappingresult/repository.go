package mappingresult

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx/types"

	"github.com/AryaKesharwani/erp-next-contract/pkg/database"
	"github.com/AryaKesharwani/erp-next-contract/pkg/models"
	"github.com/AryaKesharwani/erp-next-contract/pkg/tracing"
)

// Repository handles mapping result persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new mapping result repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// FromDecision builds a persistable row from a match decision.
func FromDecision(documentID string, candidate models.CandidateIdentity, decision models.MatchDecision) (*models.MappingResult, error) {
	reasons, err := json.Marshal(decision.MatchReasons)
	if err != nil {
		return nil, err
	}
	alternatives, err := json.Marshal(decision.Alternatives)
	if err != nil {
		return nil, err
	}

	result := &models.MappingResult{
		CandidateName:  candidate.PrimaryName,
		Recommendation: string(decision.Recommendation),
		Confidence:     decision.Confidence,
		MatchReasons:   types.JSONText(reasons),
		Alternatives:   types.JSONText(alternatives),
	}
	if documentID != "" {
		result.DocumentID = &documentID
	}
	if decision.IsMatch() {
		clientID := decision.ClientID
		clientName := decision.ClientName
		result.MatchedClientID = &clientID
		result.MatchedClientName = &clientName
	}
	return result, nil
}

// Create persists a mapping result. Joins any transaction bound to ctx.
func (r *Repository) Create(ctx context.Context, result *models.MappingResult) (*models.MappingResult, error) {
	ctx, span := tracing.StartSpan(ctx, "mappingresult.Repository.Create")
	defer span.End()

	if result.ID == "" {
		result.ID = uuid.New().String()
	}
	result.CreatedAt = time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("mapping_results")
	sb.Cols("id", "document_id", "candidate_name", "matched_client_id", "matched_client_name", "recommendation", "confidence", "match_reasons", "alternatives", "created_at")
	sb.Values(result.ID, result.DocumentID, result.CandidateName, result.MatchedClientID, result.MatchedClientName, result.Recommendation, result.Confidence, result.MatchReasons, result.Alternatives, result.CreatedAt)

	query, args := sb.Build()
	exec := database.ExecutorFor(ctx, r.db)
	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"mapping_result_id": result.ID}).Error("Failed to create mapping result")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create mapping result")
	}

	return result, nil
}

// Get retrieves a mapping result by ID
func (r *Repository) Get(ctx context.Context, id string) (*models.MappingResult, error) {
	ctx, span := tracing.StartSpan(ctx, "mappingresult.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "document_id", "candidate_name", "matched_client_id", "matched_client_name", "recommendation", "confidence", "match_reasons", "alternatives", "created_at")
	sb.From("mapping_results")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var result models.MappingResult
	if err := r.db.GetContext(ctx, &result, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("mapping result %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get mapping result")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get mapping result")
	}

	return &result, nil
}

// List retrieves recent mapping results, optionally filtered by recommendation
func (r *Repository) List(ctx context.Context, recommendation string, limit int) ([]models.MappingResult, error) {
	ctx, span := tracing.StartSpan(ctx, "mappingresult.Repository.List")
	defer span.End()

	if limit < 1 || limit > 500 {
		limit = 100
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "document_id", "candidate_name", "matched_client_id", "matched_client_name", "recommendation", "confidence", "match_reasons", "alternatives", "created_at")
	sb.From("mapping_results")
	if recommendation != "" {
		sb.Where(sb.Equal("recommendation", recommendation))
	}
	sb.OrderBy("created_at DESC")
	sb.Limit(limit)

	query, args := sb.Build()
	var results []models.MappingResult
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list mapping results")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list mapping results")
	}

	return results, nil
}

// GetByDocument retrieves the mapping result for a document
func (r *Repository) GetByDocument(ctx context.Context, documentID string) (*models.MappingResult, error) {
	ctx, span := tracing.StartSpan(ctx, "mappingresult.Repository.GetByDocument")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "document_id", "candidate_name", "matched_client_id", "matched_client_name", "recommendation", "confidence", "match_reasons", "alternatives", "created_at")
	sb.From("mapping_results")
	sb.Where(sb.Equal("document_id", documentID))
	sb.OrderBy("created_at DESC")
	sb.Limit(1)

	query, args := sb.Build()
	var result models.MappingResult
	if err := r.db.GetContext(ctx, &result, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil // no mapping recorded yet
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get mapping result by document")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get mapping result")
	}

	return &result, nil
}
