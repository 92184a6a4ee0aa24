package models

import (
	"time"

	"github.com/google/uuid"
)

// Insolvency is a user's watch definition for one case number/year. Detailed
// subscriptions track every event; plain ones only business-relevant events.
type Insolvency struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Desc      string    `gorm:"column:description;not null"`
	Number    int       `gorm:"column:number;not null;index:idx_insolvency_case"`
	Year      int       `gorm:"column:year;not null;index:idx_insolvency_case"`
	Detailed  bool      `gorm:"column:detailed;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Insolvency) TableName() string { return "insolvencies" }
