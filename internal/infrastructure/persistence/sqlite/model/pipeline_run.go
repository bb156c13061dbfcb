package model

type PipelineRun struct {
	ID            uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	RunID         string  `gorm:"column:run_id;type:text;not null;uniqueIndex"`
	State         string  `gorm:"column:state;type:text;not null"`
	StartedAt     string  `gorm:"column:started_at;type:text;not null;index"`
	FinishedAt    *string `gorm:"column:finished_at;type:text"`
	TotalRecords  int     `gorm:"column:total_records;not null"`
	FailureReason *string `gorm:"column:failure_reason;type:text"`
}

func (PipelineRun) TableName() string {
	return "pipeline_runs"
}

type PipelineStepMetric struct {
	ID             uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	RunID          string `gorm:"column:run_id;type:text;not null;index"`
	Layer          string `gorm:"column:layer;type:text;not null"`
	Source         string `gorm:"column:source;type:text;not null"`
	Records        int    `gorm:"column:records;not null"`
	ValidRecords   int    `gorm:"column:valid_records;not null"`
	InvalidRecords int    `gorm:"column:invalid_records;not null"`
	DurationMicros int64  `gorm:"column:duration_micros;not null"`
}

func (PipelineStepMetric) TableName() string {
	return "pipeline_step_metrics"
}
