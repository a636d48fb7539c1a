package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AryaKesharwani/erp-next-contract/pkg/models"
)

type published struct {
	eventType string
	key       string
	value     []byte
}

type fakeSink struct {
	messages []published
}

func (f *fakeSink) Publish(ctx context.Context, eventType, key string, value []byte) error {
	f.messages = append(f.messages, published{eventType: eventType, key: key, value: value})
	return nil
}

func newTestEmitter(sink *fakeSink) *Emitter {
	e := NewEmitter(sink)
	e.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }
	return e
}

func TestMappingDecided(t *testing.T) {
	sink := &fakeSink{}
	emitter := newTestEmitter(sink)

	candidate := models.CandidateIdentity{PrimaryName: "Acme Corp"}
	decision := models.NewUseMatch(models.Client{ClientID: "C1", ClientName: "Acme Corporation"}, 1.0, []string{"Exact name match (normalized)"}, nil)

	require.NoError(t, emitter.MappingDecided(context.Background(), "DOC-1", candidate, decision))

	require.Len(t, sink.messages, 1)
	msg := sink.messages[0]
	assert.Equal(t, EventMappingDecided, msg.eventType)
	assert.Equal(t, "DOC-1", msg.key)

	var event MappingDecidedEvent
	require.NoError(t, json.Unmarshal(msg.value, &event))
	assert.Equal(t, EventMappingDecided, event.EventType)
	assert.Equal(t, "Acme Corp", event.CandidateName)
	assert.Equal(t, "USE_MATCH", event.Recommendation)
	assert.Equal(t, "C1", event.ClientID)
	assert.Equal(t, 1.0, event.Confidence)
	assert.False(t, event.Timestamp.IsZero())
}

func TestMappingDecidedUnmatchedOmitsClient(t *testing.T) {
	sink := &fakeSink{}
	emitter := newTestEmitter(sink)

	candidate := models.CandidateIdentity{PrimaryName: "Globex"}
	decision := models.NewCreateNewClient("Globex", 0.4, nil, nil)

	require.NoError(t, emitter.MappingDecided(context.Background(), "DOC-2", candidate, decision))

	var event MappingDecidedEvent
	require.NoError(t, json.Unmarshal(sink.messages[0].value, &event))
	assert.Equal(t, "CREATE_NEW_CLIENT", event.Recommendation)
	assert.Empty(t, event.ClientID)
}

func TestClientAndContractCreated(t *testing.T) {
	sink := &fakeSink{}
	emitter := newTestEmitter(sink)

	client := models.Client{ClientID: "CLI-7", ClientName: "Globex", Aliases: []string{"Globex Corp"}}
	require.NoError(t, emitter.ClientCreated(context.Background(), "DOC-3", client))

	record := models.ContractRecord{ClientID: "CLI-7", DocumentName: "globex-sow.pdf", SowType: "T&M", EndDate: "2026-12-31"}
	require.NoError(t, emitter.ContractCreated(context.Background(), "DOC-3", "CTR-9", record))

	require.Len(t, sink.messages, 2)
	assert.Equal(t, EventClientCreated, sink.messages[0].eventType)
	assert.Equal(t, "CLI-7", sink.messages[0].key)
	assert.Equal(t, EventContractCreated, sink.messages[1].eventType)
	assert.Equal(t, "CTR-9", sink.messages[1].key)

	var event ContractCreatedEvent
	require.NoError(t, json.Unmarshal(sink.messages[1].value, &event))
	assert.Equal(t, "2026-12-31", event.EndDate)
}

func TestAlertRaisedKeyFallsBackToDocument(t *testing.T) {
	sink := &fakeSink{}
	emitter := newTestEmitter(sink)

	require.NoError(t, emitter.AlertRaised(context.Background(), models.Alert{
		Type:       models.AlertTypeProcessingError,
		Priority:   models.AlertPriorityHigh,
		Subject:    "Document processing failed: x.pdf",
		DocumentID: "DOC-4",
	}))

	require.Len(t, sink.messages, 1)
	assert.Equal(t, "DOC-4", sink.messages[0].key)

	require.NoError(t, emitter.AlertRaised(context.Background(), models.Alert{
		Type:       models.AlertTypeExpiration,
		Priority:   models.AlertPriorityHigh,
		Subject:    "Contract CTR-1 expires in 7 days",
		ContractID: "CTR-1",
	}))
	assert.Equal(t, "CTR-1", sink.messages[1].key)
}
