// Package cloudevent implements the normalised event envelope (CloudEvents
// v1.0 subset) and routing-key taxonomy shared across the discovery mesh.
package cloudevent

import (
	"time"

	"github.com/google/uuid"
)

const SpecVersion = "1.0"
const ContentType = "application/json"

// Envelope is the wire format for every message on the event mesh.
type Envelope struct {
	SpecVersion     string                 `json:"specversion"`
	ID              string                 `json:"id"`
	Source          string                 `json:"source"`
	Type            string                 `json:"type"`
	Time            string                 `json:"time"`
	DataContentType string                 `json:"datacontenttype"`
	Subject         string                 `json:"subject,omitempty"`
	CorrelationID   string                 `json:"correlationid,omitempty"`
	Data            map[string]interface{} `json:"data"`
}

// New builds an Envelope with a fresh ID and RFC-3339 time. scanID may be
// empty for events not tied to a scan.
func New(source, eventType, scanID string, data map[string]interface{}) Envelope {
	return Envelope{
		SpecVersion:     SpecVersion,
		ID:              uuid.NewString(),
		Source:          source,
		Type:            eventType,
		Time:            time.Now().UTC().Format(time.RFC3339Nano),
		DataContentType: ContentType,
		Subject:         scanID,
		Data:            data,
	}
}

// DerivedFrom builds the outgoing envelope for a processed event, preserving
// correlation back to the original message.
func DerivedFrom(original Envelope, source, eventType string, data map[string]interface{}) Envelope {
	e := New(source, eventType, original.Subject, data)
	e.CorrelationID = original.ID
	return e
}
