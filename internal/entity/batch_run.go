package entity

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Batch operation names recorded in batch_runs.
const (
	BatchOperationGeneratePredictions = "generate_predictions"
	BatchOperationEvaluatePending     = "evaluate_pending"
	BatchOperationRunTradeCycle       = "run_trade_cycle"
)

// BatchRun is the audit record of one batch operation. Batch operations always
// complete; per-item failures are collected in Errors rather than aborting.
type BatchRun struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Operation   string         `gorm:"type:varchar(50);not null;index" json:"operation"`
	Counts      datatypes.JSON `gorm:"type:jsonb" json:"counts"`
	Errors      pq.StringArray `gorm:"type:text[]" json:"errors"`
	StartedAt   time.Time      `gorm:"not null" json:"started_at"`
	CompletedAt sql.NullTime   `json:"completed_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (BatchRun) TableName() string {
	return "batch_runs"
}
