package match

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AryaKesharwani/erp-next-contract/pkg/matching"
	"github.com/AryaKesharwani/erp-next-contract/pkg/models"
)

type fakeRegistry struct {
	clients []models.Client
	err     error
}

func (f *fakeRegistry) Clients(ctx context.Context) ([]models.Client, error) {
	return f.clients, f.err
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {})
}

func perform(t *testing.T, handler *Handler, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/match", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, handler.Match(c)
}

func TestMatchReturnsDecision(t *testing.T) {
	reg := &fakeRegistry{clients: []models.Client{
		{ClientID: "C1", ClientName: "Acme Corporation"},
		{ClientID: "C2", ClientName: "Globex LLC"},
	}}
	handler := NewHandler(matching.NewMatcher(), reg, 0.75, testLogger())

	rec, err := perform(t, handler, `{"primary_name": "Acme Corp"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var decision models.MatchDecision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
	assert.Equal(t, models.RecommendationUseMatch, decision.Recommendation)
	assert.Equal(t, "C1", decision.ClientID)
	assert.Equal(t, 1.0, decision.Confidence)
}

func TestMatchHonorsRequestThreshold(t *testing.T) {
	reg := &fakeRegistry{clients: []models.Client{{ClientID: "C1", ClientName: "Acme"}}}
	handler := NewHandler(matching.NewMatcher(), reg, 0.75, testLogger())

	// "Acmex" vs "Acme" scores 80; a 0.9 threshold forces the unmatched shape.
	rec, err := perform(t, handler, `{"primary_name": "Acmex", "threshold": 0.9}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var decision models.MatchDecision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
	assert.Equal(t, models.RecommendationCreateNewClient, decision.Recommendation)
	assert.Equal(t, "Acmex", decision.SuggestedClientName)
}

func TestMatchRejectsMissingPrimaryName(t *testing.T) {
	handler := NewHandler(matching.NewMatcher(), &fakeRegistry{}, 0.75, testLogger())

	_, err := perform(t, handler, `{"alternative_names": ["Acme"]}`)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
}

func TestMatchRejectsBlankPrimaryName(t *testing.T) {
	handler := NewHandler(matching.NewMatcher(), &fakeRegistry{}, 0.75, testLogger())

	_, err := perform(t, handler, `{"primary_name": "   "}`)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
}

func TestMatchRegistryUnavailable(t *testing.T) {
	reg := &fakeRegistry{err: errors.New("erpnext down")}
	handler := NewHandler(matching.NewMatcher(), reg, 0.75, testLogger())

	_, err := perform(t, handler, `{"primary_name": "Acme"}`)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, httperror.GetStatusCode(err))
}
