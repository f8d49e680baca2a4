package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// QueueRecordID is the primary key of the singleton queue row.
const QueueRecordID = 1

// ImportRequest asks for the translated document of a provider project to be imported.
type ImportRequest struct {
	ProjectID  string    `json:"projectid"`
	DocumentID string    `json:"documentid"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Validate checks both identifiers with ValidateID.
func (r ImportRequest) Validate() error {
	if err := ValidateID("project id", r.ProjectID); err != nil {
		return err
	}
	return ValidateID("document id", r.DocumentID)
}

// RequestList is a custom type for storing queued requests as JSON in the database.
type RequestList []ImportRequest

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the list.
//   - error: non-nil if marshaling fails.
func (l RequestList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (l *RequestList) Scan(value interface{}) error {
	if value == nil {
		*l = RequestList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan RequestList")
		}
		bytes = []byte(str)
	}
	if len(bytes) == 0 {
		*l = RequestList{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// QueueRecord is the single persisted record that serializes import runs.
// RunningDocumentID is set if and only if a run is executing.
type QueueRecord struct {
	ID                uint        `gorm:"primaryKey;autoIncrement:false" json:"-"`
	Queued            RequestList `gorm:"type:text" json:"queued"`
	RunningDocumentID *string     `gorm:"type:text" json:"running_document_id,omitempty"`
	RunningProjectID  *string     `gorm:"type:text" json:"running_project_id,omitempty"`
	RunningSince      *time.Time  `json:"running_since,omitempty"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// TableName returns the database table name for QueueRecord.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (QueueRecord) TableName() string {
	return "import_queue"
}

// IsRunning reports whether a run currently holds the queue.
func (q *QueueRecord) IsRunning() bool {
	return q.RunningDocumentID != nil
}
