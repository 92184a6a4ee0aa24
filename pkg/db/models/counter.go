package models

// Counter is a named monotonic cursor into the registry feed. One row per
// cursor name, upserted by the sync cycle only.
type Counter struct {
	ID     string `gorm:"column:id;primaryKey"`
	Number int64  `gorm:"column:number;not null"`
}

func (Counter) TableName() string { return "counters" }
