package domain

import "time"

// RunStatus represents the status of an import run.
// Values include RunStatusRunning, RunStatusNotReady, RunStatusImported, and RunStatusFailed.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusNotReady RunStatus = "not_ready"
	RunStatusImported RunStatus = "imported"
	RunStatusFailed   RunStatus = "failed"
)

// ImportRun records one fetch, serialize, write, trigger and update pass for a document.
type ImportRun struct {
	ID           string     `gorm:"type:text;primaryKey" json:"id"`
	ProjectID    string     `gorm:"type:text;not null;index:idx_import_runs_document" json:"project_id"`
	DocumentID   string     `gorm:"type:text;not null;index:idx_import_runs_document" json:"document_id"`
	ItemType     ItemType   `gorm:"type:text" json:"item_type,omitempty"`
	ItemID       string     `gorm:"type:text" json:"item_id,omitempty"`
	Locale       string     `gorm:"type:text" json:"locale,omitempty"`
	Status       RunStatus  `gorm:"type:text;index;default:running" json:"status"`
	Outcome      JobOutcome `gorm:"type:text" json:"outcome,omitempty"`
	ArtifactPath string     `gorm:"type:text" json:"artifact_path,omitempty"`
	ErrorLog     string     `json:"error_log,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName returns the database table name for ImportRun.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (ImportRun) TableName() string {
	return "import_runs"
}
