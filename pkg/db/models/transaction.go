package models

import "time"

// Transaction is one raw event fetched from the registry feed, keyed by the
// registry's own event id. Rows live only until the reconciliation pass either
// purges them (handled) or flags them erroneous (kept for operator review).
type Transaction struct {
	ID          int64      `gorm:"column:id;primaryKey;autoIncrement:false"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null"`
	PublishedAt time.Time  `gorm:"column:published_at;not null"`
	DocumentURL *string    `gorm:"column:document_url"`
	CaseRef     string     `gorm:"column:case_ref;not null"`
	EventType   string     `gorm:"column:event_type;not null"`
	Description string     `gorm:"column:description"`
	Section     string     `gorm:"column:section"`
	SectionItem *int       `gorm:"column:section_item"`
	Note        string     `gorm:"column:note;type:text"`
	Error       bool       `gorm:"column:error;not null;default:false"`
	FetchedAt   time.Time  `gorm:"column:fetched_at;autoCreateTime"`
}

func (Transaction) TableName() string { return "transactions" }
