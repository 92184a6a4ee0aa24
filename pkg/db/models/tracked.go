package models

import (
	"time"

	"github.com/google/uuid"
)

// Tracked is a pending-notification marker. At most one row may exist per
// (user, description, case); re-detecting the same change must not duplicate
// the marker.
type Tracked struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_tracked_identity"`
	Desc      string    `gorm:"column:description;not null;uniqueIndex:uq_tracked_identity"`
	VecID     uint      `gorm:"column:vec_id;not null;uniqueIndex:uq_tracked_identity"`
	Vec       Vec       `gorm:"foreignKey:VecID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Tracked) TableName() string { return "tracked" }
