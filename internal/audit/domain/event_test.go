package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		event   Event
		wantErr bool
	}{
		{
			name:  "valid",
			event: Event{Type: EventTypeStorage, Operation: "write", Status: StatusSuccess},
		},
		{
			name:    "missing operation",
			event:   Event{Type: EventTypeStorage, Status: StatusSuccess},
			wantErr: true,
		},
		{
			name:    "unknown type",
			event:   Event{Type: "network", Operation: "write", Status: StatusSuccess},
			wantErr: true,
		},
		{
			name:    "unknown status",
			event:   Event{Type: EventTypeCrypto, Operation: "encrypt", Status: "maybe"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFilter_Matches(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	event := &Event{
		Type:      EventTypeKeyManagement,
		Operation: "rotate",
		Status:    StatusFailure,
		Timestamp: base,
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{name: "empty filter", filter: Filter{}, want: true},
		{name: "type match", filter: Filter{Type: EventTypeKeyManagement}, want: true},
		{name: "type mismatch", filter: Filter{Type: EventTypeStorage}, want: false},
		{name: "status match", filter: Filter{Status: StatusFailure}, want: true},
		{name: "status mismatch", filter: Filter{Status: StatusSuccess}, want: false},
		{name: "inclusive since", filter: Filter{Since: base}, want: true},
		{name: "after window", filter: Filter{Until: base.Add(-time.Second)}, want: false},
		{name: "before window", filter: Filter{Since: base.Add(time.Second)}, want: false},
		{
			name:   "inside window",
			filter: Filter{Since: base.Add(-time.Hour), Until: base.Add(time.Hour)},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(event))
		})
	}
}
