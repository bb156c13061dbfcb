package model

type LayerSnapshot struct {
	ID          uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	RunID       string `gorm:"column:run_id;type:text;not null;uniqueIndex:idx_layer_snapshot_key"`
	Layer       string `gorm:"column:layer;type:text;not null;uniqueIndex:idx_layer_snapshot_key"`
	Source      string `gorm:"column:source;type:text;not null;uniqueIndex:idx_layer_snapshot_key"`
	PayloadJSON string `gorm:"column:payload_json;type:text;not null"`
	CreatedAt   string `gorm:"column:created_at;type:text;not null"`
}

func (LayerSnapshot) TableName() string {
	return "layer_snapshots"
}
