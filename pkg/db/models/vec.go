package models

import "time"

// Vec is one insolvency proceeding. Case identity is the tuple
// (origin-court code, sequential number, year); the sequential number is never
// unique across courts.
type Vec struct {
	ID          uint       `gorm:"column:id;primaryKey"`
	Court       string     `gorm:"column:court;not null;uniqueIndex:uq_vec_identity"`
	Number      int        `gorm:"column:number;not null;uniqueIndex:uq_vec_identity"`
	Year        int        `gorm:"column:year;not null;uniqueIndex:uq_vec_identity"`
	FirstAction *time.Time `gorm:"column:first_action"`
	LastAction  *time.Time `gorm:"column:last_action"`
	StruckOff   *time.Time `gorm:"column:struck_off"`
	StateKindID *uint      `gorm:"column:state_kind_id"`
	State       *StateKind `gorm:"foreignKey:StateKindID"`
	Senate      *int       `gorm:"column:senate"`
	Link        *string    `gorm:"column:link"`
	Roles       []Role     `gorm:"many2many:vec_role"`
}

func (Vec) TableName() string { return "veci" }
