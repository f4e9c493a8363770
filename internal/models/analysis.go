package models

import (
	"time"

	"github.com/google/uuid"
)

type AnalysisStatus string

const (
	StatusProcessing AnalysisStatus = "processing"
	StatusCompleted  AnalysisStatus = "completed"
	StatusFailed     AnalysisStatus = "failed"
)

// Analysis is the persisted record of one pipeline run. The full result is
// stored as a JSON blob so completed reports can be re-fetched without
// re-running the pipeline.
type Analysis struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CVDocumentID uuid.UUID      `gorm:"type:uuid;not null" json:"cv_document_id"`
	CurrentRole  string         `gorm:"type:text" json:"current_role"`
	TargetRole   string         `gorm:"type:text" json:"target_role"`
	Status       AnalysisStatus `gorm:"not null;default:'processing'" json:"status"`
	ResultJSON   *string        `gorm:"type:jsonb" json:"-"`
	ErrorMessage *string        `gorm:"type:text" json:"error_message,omitempty"`
	DurationMS   int64          `gorm:"type:bigint" json:"duration_ms"`
	CreatedAt    time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	CVDocument Document `gorm:"foreignKey:CVDocumentID" json:"-"`
}

func (Analysis) TableName() string {
	return "analyses"
}
