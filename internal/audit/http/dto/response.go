// Package dto provides data transfer objects for audit HTTP responses.
package dto

import (
	"time"

	auditDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/domain"
)

// EventResponse represents an audit event in API responses.
type EventResponse struct {
	ID        string         `json:"id"`
	EventType string         `json:"event_type"`
	Operation string         `json:"operation"`
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Signed    bool           `json:"signed"`
}

// MapEventToResponse converts a domain event to an API response.
func MapEventToResponse(event *auditDomain.Event) EventResponse {
	return EventResponse{
		ID:        event.ID.String(),
		EventType: string(event.Type),
		Operation: event.Operation,
		Status:    string(event.Status),
		Timestamp: event.Timestamp,
		Metadata:  event.Metadata,
		Signed:    len(event.Signature) > 0,
	}
}

// ListEventsResponse represents a list of audit events in API responses.
type ListEventsResponse struct {
	Data []EventResponse `json:"data"`
}

// MapEventsToListResponse converts domain events to a list API response.
func MapEventsToListResponse(events []*auditDomain.Event) ListEventsResponse {
	data := make([]EventResponse, 0, len(events))
	for _, event := range events {
		data = append(data, MapEventToResponse(event))
	}
	return ListEventsResponse{
		Data: data,
	}
}

// VerifyResponse reports the outcome of a signature check over the buffer.
type VerifyResponse struct {
	Valid  bool `json:"valid"`
	Events int  `json:"events"`
}
