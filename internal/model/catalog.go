package model

// Settlement 城鎮
type Settlement struct {
	ID         int    `json:"ID_TELEPULES" db:"id"`
	Name       string `json:"TELEPULES" db:"name"`
	PostalCode string `json:"IRSZAM" db:"postal_code"`
	County     string `json:"MEGYE" db:"county"`
}

// Category 服務類別
type Category struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
