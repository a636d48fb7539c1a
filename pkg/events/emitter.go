// Package events defines the typed events this service emits on its output
// topic.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/AryaKesharwani/erp-next-contract/pkg/models"
)

// Event types
const (
	EventMappingDecided  = "mapping.decided"
	EventClientCreated   = "client.created"
	EventContractCreated = "contract.created"
	EventAlertRaised     = "alert.raised"
)

// Sink is the keyed publish surface the emitter writes to.
type Sink interface {
	Publish(ctx context.Context, eventType, key string, value []byte) error
}

// MappingDecidedEvent announces a reconciliation decision for a document.
type MappingDecidedEvent struct {
	EventType      string                    `json:"event_type"`
	DocumentID     string                    `json:"document_id"`
	CandidateName  string                    `json:"candidate_name"`
	Recommendation string                    `json:"recommendation"`
	ClientID       string                    `json:"client_id,omitempty"`
	ClientName     string                    `json:"client_name,omitempty"`
	Confidence     float64                   `json:"confidence"`
	MatchReasons   []string                  `json:"match_reasons,omitempty"`
	Alternatives   []models.AlternativeMatch `json:"alternatives,omitempty"`
	Timestamp      time.Time                 `json:"timestamp"`
}

// ClientCreatedEvent announces a client record created for an unmatched
// candidate.
type ClientCreatedEvent struct {
	EventType  string    `json:"event_type"`
	ClientID   string    `json:"client_id"`
	ClientName string    `json:"client_name"`
	Aliases    []string  `json:"aliases,omitempty"`
	DocumentID string    `json:"document_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// ContractCreatedEvent announces a contract record created for a reconciled
// document.
type ContractCreatedEvent struct {
	EventType  string    `json:"event_type"`
	ContractID string    `json:"contract_id"`
	ClientID   string    `json:"client_id"`
	DocumentID string    `json:"document_id,omitempty"`
	SowType    string    `json:"sow_type,omitempty"`
	EndDate    string    `json:"end_date,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// AlertRaisedEvent announces a raised alert.
type AlertRaisedEvent struct {
	EventType  string    `json:"event_type"`
	AlertID    string    `json:"alert_id,omitempty"`
	AlertType  string    `json:"alert_type"`
	Priority   string    `json:"priority"`
	Subject    string    `json:"subject"`
	ContractID string    `json:"contract_id,omitempty"`
	DocumentID string    `json:"document_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Emitter publishes typed events to a sink.
type Emitter struct {
	sink Sink
	now  func() time.Time
}

// NewEmitter creates an event emitter
func NewEmitter(sink Sink) *Emitter {
	return &Emitter{
		sink: sink,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// MappingDecided emits a mapping.decided event keyed by document id.
func (e *Emitter) MappingDecided(ctx context.Context, documentID string, candidate models.CandidateIdentity, decision models.MatchDecision) error {
	event := MappingDecidedEvent{
		EventType:      EventMappingDecided,
		DocumentID:     documentID,
		CandidateName:  candidate.PrimaryName,
		Recommendation: string(decision.Recommendation),
		Confidence:     decision.Confidence,
		MatchReasons:   decision.MatchReasons,
		Alternatives:   decision.Alternatives,
		Timestamp:      e.now(),
	}
	if decision.IsMatch() {
		event.ClientID = decision.ClientID
		event.ClientName = decision.ClientName
	}
	return e.publish(ctx, EventMappingDecided, documentID, event)
}

// ClientCreated emits a client.created event keyed by client id.
func (e *Emitter) ClientCreated(ctx context.Context, documentID string, client models.Client) error {
	event := ClientCreatedEvent{
		EventType:  EventClientCreated,
		ClientID:   client.ClientID,
		ClientName: client.ClientName,
		Aliases:    client.Aliases,
		DocumentID: documentID,
		Timestamp:  e.now(),
	}
	return e.publish(ctx, EventClientCreated, client.ClientID, event)
}

// ContractCreated emits a contract.created event keyed by contract id.
func (e *Emitter) ContractCreated(ctx context.Context, documentID, contractID string, record models.ContractRecord) error {
	event := ContractCreatedEvent{
		EventType:  EventContractCreated,
		ContractID: contractID,
		ClientID:   record.ClientID,
		DocumentID: documentID,
		SowType:    record.SowType,
		EndDate:    record.EndDate,
		Timestamp:  e.now(),
	}
	return e.publish(ctx, EventContractCreated, contractID, event)
}

// AlertRaised emits an alert.raised event keyed by the alerted record.
func (e *Emitter) AlertRaised(ctx context.Context, alert models.Alert) error {
	key := alert.ContractID
	if key == "" {
		key = alert.DocumentID
	}
	event := AlertRaisedEvent{
		EventType:  EventAlertRaised,
		AlertID:    alert.ID,
		AlertType:  alert.Type,
		Priority:   alert.Priority,
		Subject:    alert.Subject,
		ContractID: alert.ContractID,
		DocumentID: alert.DocumentID,
		Timestamp:  e.now(),
	}
	return e.publish(ctx, EventAlertRaised, key, event)
}

func (e *Emitter) publish(ctx context.Context, eventType, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return e.sink.Publish(ctx, eventType, key, data)
}
