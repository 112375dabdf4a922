package models

import "time"

// DateLayout is the storage format of produccion.fecha.
const DateLayout = "2006-01-02"

// DayLabels are the weekday column headers, Monday first. Wednesday uses "X"
// so that every label is distinct.
var DayLabels = [7]string{"L", "M", "X", "J", "V", "S", "D"}

// WeekdayIndex maps a date to 0 (Monday) .. 6 (Sunday).
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// DayLabel returns the label stored in produccion.dia for the given date.
func DayLabel(t time.Time) string {
	return DayLabels[WeekdayIndex(t)]
}

// ProductionEntry is a row of the produccion table. (Date, ProductID) is unique.
type ProductionEntry struct {
	ID        int64   `gorm:"column:id_produccion;primaryKey;autoIncrement" json:"id"`
	Date      string  `gorm:"column:fecha" json:"date"`
	ProductID int64   `gorm:"column:producto_id" json:"product_id"`
	Day       string  `gorm:"column:dia" json:"day"`
	Quantity  float64 `gorm:"column:cantidad" json:"quantity"`
	Cost      float64 `gorm:"column:costo" json:"cost"`
	Area      string  `gorm:"column:area" json:"area"`
}

func (ProductionEntry) TableName() string { return "produccion" }

// ProductionRecord is a production row joined with its product.
type ProductionRecord struct {
	ProductID int64     `gorm:"column:id_producto" json:"product_id"`
	Product   string    `gorm:"column:producto" json:"product"`
	Unit      string    `gorm:"column:unidad" json:"unit"`
	Day       string    `gorm:"column:dia" json:"day"`
	RawDate   string    `gorm:"column:fecha" json:"-"`
	Date      time.Time `gorm:"-" json:"date"`
	Quantity  float64   `gorm:"column:cantidad" json:"quantity"`
}

// ProductionRequest registers quantity produced for a product on a date
// (today when Date is empty).
type ProductionRequest struct {
	ProductID int64   `json:"product_id" binding:"required"`
	Quantity  float64 `json:"quantity" binding:"required"`
	Area      string  `json:"area"`
	Date      string  `json:"date"`
}
