package models

// StateKind is a lazily-created lookup row for a case state description
// (druh stavu řízení).
type StateKind struct {
	ID   uint   `gorm:"column:id;primaryKey"`
	Desc string `gorm:"column:description;not null;unique"`
}

func (StateKind) TableName() string { return "state_kinds" }

// RoleKind is a lazily-created lookup row for a role description
// (druh role v řízení): debtor, trustee, creditor, motioner.
type RoleKind struct {
	ID   uint   `gorm:"column:id;primaryKey"`
	Desc string `gorm:"column:description;not null;unique"`
}

func (RoleKind) TableName() string { return "role_kinds" }
