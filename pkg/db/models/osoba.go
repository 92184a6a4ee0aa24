package models

import "time"

// Osoba is a person known to the registry. Person identity is scoped by the
// origin court: (court, person id) pairs from different courts are distinct
// people even when the ids collide.
type Osoba struct {
	ID           uint       `gorm:"column:id;primaryKey"`
	Court        string     `gorm:"column:court;not null;uniqueIndex:uq_osoba_identity"`
	PersonID     string     `gorm:"column:person_id;not null;uniqueIndex:uq_osoba_identity"`
	Name         string     `gorm:"column:name;not null"`
	BusinessName string     `gorm:"column:business_name"`
	GivenName    string     `gorm:"column:given_name"`
	TitleBefore  string     `gorm:"column:title_before"`
	TitleAfter   string     `gorm:"column:title_after"`
	ICO          string     `gorm:"column:ico"`
	DIC          string     `gorm:"column:dic"`
	BirthDate    *time.Time `gorm:"column:birth_date"`
	BirthID      string     `gorm:"column:birth_id"`
	Addresses    []Adresa   `gorm:"many2many:osoba_adresa"`
}

func (Osoba) TableName() string { return "osoby" }
