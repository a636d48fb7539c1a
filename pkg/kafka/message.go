package kafka

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/AryaKesharwani/erp-next-contract/pkg/models"
)

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	// Parsed content
	DocumentEvent *DocumentEvent
}

// DocumentEvent is the intake payload announcing a document ready for
// reconciliation.
type DocumentEvent struct {
	EventType  string    `json:"event_type"` // document.extracted
	DocumentID string    `json:"document_id"`
	Name       string    `json:"name"`
	Text       string    `json:"text"`
	Source     string    `json:"source,omitempty"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
}

// ParseDocumentEvent parses the message value as a document event
func (m *IncomingMessage) ParseDocumentEvent() error {
	var evt DocumentEvent
	if err := json.Unmarshal(m.Value, &evt); err != nil {
		return err
	}
	if evt.DocumentID == "" {
		return errors.New("document event missing document_id")
	}
	m.DocumentEvent = &evt
	return nil
}

// GetEventType returns the event type, preferring the header over the body
func (m *IncomingMessage) GetEventType() string {
	if t := m.Headers["event_type"]; t != "" {
		return t
	}
	if m.DocumentEvent != nil {
		return m.DocumentEvent.EventType
	}
	return ""
}

// Document converts the parsed event into a document for processing
func (m *IncomingMessage) Document() models.Document {
	if m.DocumentEvent == nil {
		return models.Document{}
	}
	return models.Document{
		ID:         m.DocumentEvent.DocumentID,
		Name:       m.DocumentEvent.Name,
		Text:       m.DocumentEvent.Text,
		Source:     m.DocumentEvent.Source,
		ModifiedAt: m.DocumentEvent.ModifiedAt,
	}
}
