package domain

import (
	"encoding/json"
	"fmt"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
)

// RecordPrefix namespaces value records inside every store so they never
// collide with root key records sharing a backend.
const RecordPrefix = "values/"

// RecordName returns the store name of the record for key.
func RecordName(key string) string {
	return RecordPrefix + key
}

// KeyFromRecordName reverses RecordName. ok is false for names outside the
// value namespace.
func KeyFromRecordName(name string) (string, bool) {
	if len(name) <= len(RecordPrefix) || name[:len(RecordPrefix)] != RecordPrefix {
		return "", false
	}
	return name[len(RecordPrefix):], true
}

// Record is the persisted form of one value: the storage key it was written
// under and its envelope. The key is repeated inside the record and bound into
// the envelope as associated data, so a record copied to another name fails to
// decrypt.
type Record struct {
	Key         string                 `json:"key"`
	Sensitivity Sensitivity            `json:"sensitivity"`
	Envelope    *cryptoDomain.Envelope `json:"envelope"`
}

// MarshalRecord encodes a record for storage.
func MarshalRecord(record *Record) ([]byte, error) {
	return json.Marshal(record)
}

// UnmarshalRecord decodes and structurally validates a stored record.
func UnmarshalRecord(data []byte) (*Record, error) {
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if record.Envelope == nil {
		return nil, fmt.Errorf("%w: missing envelope", ErrCorruptRecord)
	}
	if err := record.Envelope.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return &record, nil
}
