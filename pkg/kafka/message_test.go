package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocumentEvent(t *testing.T) {
	msg := &IncomingMessage{
		Key: "DOC-1",
		Value: []byte(`{
			"event_type": "document.extracted",
			"document_id": "DOC-1",
			"name": "acme-msa.pdf",
			"text": "This Master Services Agreement...",
			"source": "drive"
		}`),
		Headers: map[string]string{"event_type": "document.extracted"},
	}

	require.NoError(t, msg.ParseDocumentEvent())
	require.NotNil(t, msg.DocumentEvent)

	doc := msg.Document()
	assert.Equal(t, "DOC-1", doc.ID)
	assert.Equal(t, "acme-msa.pdf", doc.Name)
	assert.Equal(t, "This Master Services Agreement...", doc.Text)
	assert.Equal(t, "drive", doc.Source)
	assert.Equal(t, "document.extracted", msg.GetEventType())
}

func TestParseDocumentEventMissingID(t *testing.T) {
	msg := &IncomingMessage{Value: []byte(`{"name": "x.pdf"}`)}
	assert.Error(t, msg.ParseDocumentEvent())
}

func TestParseDocumentEventInvalidJSON(t *testing.T) {
	msg := &IncomingMessage{Value: []byte(`not json`)}
	assert.Error(t, msg.ParseDocumentEvent())
}

func TestGetEventTypePrefersHeader(t *testing.T) {
	msg := &IncomingMessage{
		Value:   []byte(`{"event_type": "document.extracted", "document_id": "DOC-2"}`),
		Headers: map[string]string{"event_type": "document.updated"},
	}
	require.NoError(t, msg.ParseDocumentEvent())
	assert.Equal(t, "document.updated", msg.GetEventType())
}

func TestDocumentWithoutParsedEvent(t *testing.T) {
	msg := &IncomingMessage{}
	assert.Empty(t, msg.Document().ID)
}
