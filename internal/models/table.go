package models

type TableStatus string

const (
	TableEmpty    TableStatus = "Empty"
	TableOccupied TableStatus = "Occupied"
	TableReserved TableStatus = "Reserved"
)

func (s TableStatus) Valid() bool {
	switch s {
	case TableEmpty, TableOccupied, TableReserved:
		return true
	}
	return false
}

type Table struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	TableNumber string      `gorm:"size:10;uniqueIndex;not null" json:"table_number"`
	Status      TableStatus `gorm:"size:20;not null;default:'Empty'" json:"status"`
	Orders      []Order     `json:"-"`
	Audit
}
