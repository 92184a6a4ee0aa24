package models

// Role associates one person with one role kind. Cases reference roles through
// the vec_role join table; detachment removes the join row, not the role.
type Role struct {
	ID         uint     `gorm:"column:id;primaryKey"`
	OsobaID    uint     `gorm:"column:osoba_id;not null;uniqueIndex:uq_role_identity"`
	Osoba      Osoba    `gorm:"foreignKey:OsobaID"`
	RoleKindID uint     `gorm:"column:role_kind_id;not null;uniqueIndex:uq_role_identity"`
	RoleKind   RoleKind `gorm:"foreignKey:RoleKindID"`
}

func (Role) TableName() string { return "role" }
