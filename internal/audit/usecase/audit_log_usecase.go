package usecase

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/domain"
	auditService "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/service"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/errors"
)

// DefaultCapacity is the ring buffer size used when none is configured.
const DefaultCapacity = 1000

// Config holds audit log configuration.
type Config struct {
	Capacity int
}

// auditLog is a fixed-capacity ring buffer of signed events.
type auditLog struct {
	redactor     *auditService.Redactor
	signer       auditService.EventSigner
	exportSigner ExportSigner
	logger       *slog.Logger
	now          func() time.Time

	mu     sync.RWMutex
	events []*auditDomain.Event
	head   int
	count  int
}

// NewAuditLog creates an audit log. exportSigner may be nil, in which case
// Export fails with ErrExportUnavailable.
func NewAuditLog(
	config Config,
	redactor *auditService.Redactor,
	signer auditService.EventSigner,
	exportSigner ExportSigner,
	logger *slog.Logger,
) AuditLog {
	capacity := config.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &auditLog{
		redactor:     redactor,
		signer:       signer,
		exportSigner: exportSigner,
		logger:       logger,
		now:          time.Now,
		events:       make([]*auditDomain.Event, capacity),
	}
}

// Record sanitizes, signs and appends the event.
func (a *auditLog) Record(ctx context.Context, event auditDomain.Event) (*auditDomain.Event, error) {
	if err := event.Validate(); err != nil {
		return nil, errors.Wrap(auditDomain.ErrInvalidEvent, err.Error())
	}

	if event.ID == uuid.Nil {
		event.ID = uuid.Must(uuid.NewV7())
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = a.now().UTC()
	}
	event.Metadata = a.redactor.Sanitize(event.Metadata)
	event.Signature = nil

	if a.signer != nil {
		signature, err := a.signer.Sign(&event)
		if err != nil {
			return nil, fmt.Errorf("failed to sign audit event: %w", err)
		}
		event.Signature = signature
	}

	stored := event
	a.mu.Lock()
	a.events[(a.head+a.count)%len(a.events)] = &stored
	if a.count < len(a.events) {
		a.count++
	} else {
		a.head = (a.head + 1) % len(a.events)
	}
	a.mu.Unlock()

	if a.logger != nil {
		a.logger.Debug("audit event recorded",
			slog.String("event_type", string(event.Type)),
			slog.String("operation", event.Operation),
			slog.String("status", string(event.Status)),
		)
	}

	return copyEvent(&stored), nil
}

// Query filters the buffer, oldest first.
func (a *auditLog) Query(filter auditDomain.Filter) []*auditDomain.Event {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make([]*auditDomain.Event, 0)
	for i := 0; i < a.count; i++ {
		event := a.events[(a.head+i)%len(a.events)]
		if filter.Matches(event) {
			result = append(result, copyEvent(event))
		}
	}

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[len(result)-filter.Limit:]
	}
	return result
}

// Stats walks the buffer and aggregates counts.
func (a *auditLog) Stats() auditDomain.Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := auditDomain.Stats{ByType: make(map[auditDomain.EventType]int)}
	for i := 0; i < a.count; i++ {
		event := a.events[(a.head+i)%len(a.events)]
		stats.Total++
		stats.ByType[event.Type]++
		switch event.Status {
		case auditDomain.StatusSuccess:
			stats.SuccessCount++
		case auditDomain.StatusFailure:
			stats.FailureCount++
		case auditDomain.StatusWarning:
			stats.WarningCount++
		}
	}
	return stats
}

// Clear drops every event.
func (a *auditLog) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.events {
		a.events[i] = nil
	}
	a.head = 0
	a.count = 0
}

// Verify checks every buffered signature and reports the first mismatch.
func (a *auditLog) Verify() error {
	if a.signer == nil {
		return nil
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	for i := 0; i < a.count; i++ {
		event := a.events[(a.head+i)%len(a.events)]
		if err := a.signer.Verify(event); err != nil {
			return fmt.Errorf("event %s: %w", event.ID, err)
		}
	}
	return nil
}

// Export signs the matching events with the export signer.
func (a *auditLog) Export(ctx context.Context, filter auditDomain.Filter) (*auditDomain.SignedExport, error) {
	if a.exportSigner == nil {
		return nil, auditDomain.ErrExportUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	export := &auditDomain.SignedExport{
		Events:     a.Query(filter),
		ExportedAt: a.now().UTC(),
		Algorithm:  a.exportSigner.Algorithm(),
		PublicKey:  a.exportSigner.PublicKey(),
	}

	message, err := ExportMessage(export)
	if err != nil {
		return nil, err
	}

	signature, err := a.exportSigner.Sign(message)
	if err != nil {
		return nil, fmt.Errorf("failed to sign audit export: %w", err)
	}
	export.Signature = signature
	return export, nil
}

// ExportMessage returns the bytes covered by an export signature.
func ExportMessage(export *auditDomain.SignedExport) ([]byte, error) {
	events, err := json.Marshal(export.Events)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audit export: %w", err)
	}

	message := make([]byte, 0, len(events)+len(export.Algorithm)+16)
	message = binary.BigEndian.AppendUint64(message, uint64(export.ExportedAt.UnixNano()))
	message = append(message, export.Algorithm...)
	message = append(message, 0)
	message = append(message, events...)
	return message, nil
}

// VerifyExport checks an export signature against its embedded public key.
func VerifyExport(export *auditDomain.SignedExport, signer ExportSigner) error {
	message, err := ExportMessage(export)
	if err != nil {
		return err
	}
	if !signer.Verify(export.PublicKey, message, export.Signature) {
		return auditDomain.ErrSignatureInvalid
	}
	return nil
}

func copyEvent(event *auditDomain.Event) *auditDomain.Event {
	c := *event
	c.Metadata = maps.Clone(event.Metadata)
	c.Signature = append([]byte(nil), event.Signature...)
	return &c
}
