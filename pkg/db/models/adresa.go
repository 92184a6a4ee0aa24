package models

// Adresa is a deduplicated address dimension row: two events producing the
// same full field tuple share one row. Rows are detached from persons, never
// deleted.
type Adresa struct {
	ID          uint   `gorm:"column:id;primaryKey"`
	Kind        string `gorm:"column:kind;uniqueIndex:uq_adresa_tuple"`
	City        string `gorm:"column:city;uniqueIndex:uq_adresa_tuple"`
	Street      string `gorm:"column:street;uniqueIndex:uq_adresa_tuple"`
	HouseNumber string `gorm:"column:house_number;uniqueIndex:uq_adresa_tuple"`
	District    string `gorm:"column:district;uniqueIndex:uq_adresa_tuple"`
	Country     string `gorm:"column:country;uniqueIndex:uq_adresa_tuple"`
	PostalCode  string `gorm:"column:postal_code;uniqueIndex:uq_adresa_tuple"`
	Phone       string `gorm:"column:phone;uniqueIndex:uq_adresa_tuple"`
	Fax         string `gorm:"column:fax;uniqueIndex:uq_adresa_tuple"`
	Text        string `gorm:"column:text;uniqueIndex:uq_adresa_tuple"`
}

func (Adresa) TableName() string { return "adresy" }
