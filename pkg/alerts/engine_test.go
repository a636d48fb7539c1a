package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AryaKesharwani/erp-next-contract/pkg/models"
)

type fakeNotifier struct {
	alerts []models.Alert
	err    error
}

func (f *fakeNotifier) CreateAlert(ctx context.Context, alert models.Alert) error {
	if f.err != nil {
		return f.err
	}
	f.alerts = append(f.alerts, alert)
	return nil
}

type fakeContracts struct {
	contracts []models.ExpiringContract
	daysAhead int
}

func (f *fakeContracts) GetExpiringContracts(ctx context.Context, daysAhead int) ([]models.ExpiringContract, error) {
	f.daysAhead = daysAhead
	return f.contracts, nil
}

type fakeLog struct {
	entries []models.Alert
	seen    map[string]bool
}

func (f *fakeLog) Create(ctx context.Context, alert models.Alert) (*models.AlertLogEntry, error) {
	f.entries = append(f.entries, alert)
	return &models.AlertLogEntry{ID: "log-1", CreatedAt: time.Now()}, nil
}

func (f *fakeLog) WasAlerted(ctx context.Context, alertType, contractID, subject string) (bool, error) {
	return f.seen[contractID+"|"+subject], nil
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {})
}

func newTestEngine(notifier *fakeNotifier, contracts *fakeContracts, log *fakeLog) *Engine {
	return NewEngine([]int{90, 60, 30, 14, 7}, notifier, contracts, log, nil, testLogger())
}

func expiring(id string, days int) models.ExpiringContract {
	return models.ExpiringContract{
		ContractID:          id,
		ClientID:            "CLI-1",
		ClientName:          "Acme",
		EndDate:             time.Now().AddDate(0, 0, days),
		DaysUntilExpiration: days,
	}
}

func TestEvaluateExpirationPicksTightestPeriod(t *testing.T) {
	tests := []struct {
		name     string
		days     int
		period   int
		priority string
	}{
		{"well inside highest band", 85, 90, models.AlertPriorityLow},
		{"medium band", 45, 60, models.AlertPriorityMedium},
		{"high band", 25, 30, models.AlertPriorityHigh},
		{"tightest band", 3, 7, models.AlertPriorityHigh},
		{"exact boundary", 60, 60, models.AlertPriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &fakeNotifier{}
			log := &fakeLog{}
			engine := newTestEngine(notifier, &fakeContracts{}, log)

			err := engine.EvaluateExpiration(context.Background(), expiring("CTR-1", tt.days))
			require.NoError(t, err)

			require.Len(t, notifier.alerts, 1)
			alert := notifier.alerts[0]
			assert.Equal(t, models.AlertTypeExpiration, alert.Type)
			assert.Equal(t, tt.priority, alert.Priority)
			assert.Contains(t, alert.Subject, "expires in")
			assert.Equal(t, "CTR-1", alert.ContractID)
			assert.Len(t, log.entries, 1)
		})
	}
}

func TestEvaluateExpirationOutsideAllPeriods(t *testing.T) {
	notifier := &fakeNotifier{}
	engine := newTestEngine(notifier, &fakeContracts{}, &fakeLog{})

	require.NoError(t, engine.EvaluateExpiration(context.Background(), expiring("CTR-1", 120)))
	require.NoError(t, engine.EvaluateExpiration(context.Background(), expiring("CTR-2", -1)))

	assert.Empty(t, notifier.alerts)
}

func TestCheckContractExpirationsAlertsBoundariesOnly(t *testing.T) {
	notifier := &fakeNotifier{}
	contracts := &fakeContracts{contracts: []models.ExpiringContract{
		expiring("CTR-1", 30),
		expiring("CTR-2", 29),
		expiring("CTR-3", 7),
		expiring("CTR-4", 90),
	}}
	log := &fakeLog{}
	engine := newTestEngine(notifier, contracts, log)

	err := engine.CheckContractExpirations(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 90, contracts.daysAhead)
	require.Len(t, notifier.alerts, 3)
	assert.Equal(t, "CTR-1", notifier.alerts[0].ContractID)
	assert.Equal(t, "CTR-3", notifier.alerts[1].ContractID)
	assert.Equal(t, "CTR-4", notifier.alerts[2].ContractID)
}

func TestCheckContractExpirationsSkipsAlreadyRaised(t *testing.T) {
	notifier := &fakeNotifier{}
	contracts := &fakeContracts{contracts: []models.ExpiringContract{expiring("CTR-1", 30)}}
	log := &fakeLog{seen: map[string]bool{
		"CTR-1|Contract CTR-1 expires in 30 days": true,
	}}
	engine := newTestEngine(notifier, contracts, log)

	err := engine.CheckContractExpirations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notifier.alerts)
}

func TestProcessingError(t *testing.T) {
	notifier := &fakeNotifier{}
	log := &fakeLog{}
	engine := newTestEngine(notifier, &fakeContracts{}, log)

	doc := models.Document{ID: "DOC-1", Name: "msa.pdf"}
	err := engine.ProcessingError(context.Background(), doc, errors.New("extraction timed out"))
	require.NoError(t, err)

	require.Len(t, notifier.alerts, 1)
	alert := notifier.alerts[0]
	assert.Equal(t, models.AlertTypeProcessingError, alert.Type)
	assert.Equal(t, models.AlertPriorityHigh, alert.Priority)
	assert.Contains(t, alert.Subject, "msa.pdf")
	assert.Equal(t, "extraction timed out", alert.Message)
	assert.Equal(t, "DOC-1", alert.DocumentID)
}

func TestRaisePropagatesNotifierFailure(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("erpnext unavailable")}
	log := &fakeLog{}
	engine := newTestEngine(notifier, &fakeContracts{}, log)

	err := engine.EvaluateExpiration(context.Background(), expiring("CTR-1", 10))
	require.Error(t, err)
	assert.Empty(t, log.entries)
}
