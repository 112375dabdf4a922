package models

import (
	"fmt"
	"strings"
)

// CatalogKind identifies one of the three inventory tables browsed from the UI.
type CatalogKind string

const (
	KindProducts       CatalogKind = "productos"
	KindRawMaterials   CatalogKind = "materiasprimas"
	KindResaleProducts CatalogKind = "productosreventa"
)

// ParseCatalogKind accepts the table name or its URL slug.
func ParseCatalogKind(value string) (CatalogKind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "productos", "products":
		return KindProducts, nil
	case "materiasprimas", "materias-primas", "raw-materials":
		return KindRawMaterials, nil
	case "productosreventa", "productos-reventa", "resale-products":
		return KindResaleProducts, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, value)
	}
}

const (
	StatusActive   = "Activo"
	StatusInactive = "Inactivo"
)

// IsActiveStatus interprets the mixed status encodings found in legacy rows.
func IsActiveStatus(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "activo", "1", "t":
		return true
	}
	return false
}

// StatusLabel is the inverse of IsActiveStatus for values written by this application.
func StatusLabel(active bool) string {
	if active {
		return StatusActive
	}
	return StatusInactive
}

// Supplier is a row of the proveedor table.
type Supplier struct {
	ID   int64  `gorm:"column:id_proveedor;primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:nombre_proveedor" json:"name" binding:"required"`
}

func (Supplier) TableName() string { return "proveedor" }

// Product is a manufactured item.
type Product struct {
	ID       int64   `gorm:"column:id_producto;primaryKey;autoIncrement" json:"id"`
	Name     string  `gorm:"column:nombre_producto" json:"name"`
	Unit     string  `gorm:"column:unidad_medida_producto" json:"unit"`
	Area     string  `gorm:"column:area_producto" json:"area"`
	Quantity float64 `gorm:"column:cantidad_producto" json:"quantity"`
	Status   string  `gorm:"column:estatus_producto" json:"status"`
}

func (Product) TableName() string { return "productos" }

// RawMaterial is an input consumed by recipes.
type RawMaterial struct {
	ID         int64   `gorm:"column:id_mp;primaryKey;autoIncrement" json:"id"`
	Name       string  `gorm:"column:nombre_mp" json:"name"`
	Unit       string  `gorm:"column:unidad_medida_mp" json:"unit"`
	SupplierID *int64  `gorm:"column:proveedor" json:"supplier_id,omitempty"`
	Quantity   float64 `gorm:"column:cantidad_comprada_mp" json:"quantity"`
	UnitCost   float64 `gorm:"column:costo_unitario_mp" json:"unit_cost"`
	Status     string  `gorm:"column:estatus_mp" json:"status"`
}

func (RawMaterial) TableName() string { return "materiasprimas" }

// ResaleProduct is bought from a supplier and sold without transformation.
type ResaleProduct struct {
	ID         int64   `gorm:"column:id_prev;primaryKey;autoIncrement" json:"id"`
	Name       string  `gorm:"column:nombre_prev" json:"name"`
	Unit       string  `gorm:"column:unidad_medida_prev" json:"unit"`
	SupplierID *int64  `gorm:"column:proveedor" json:"supplier_id,omitempty"`
	Quantity   float64 `gorm:"column:cantidad_prev" json:"quantity"`
	Status     string  `gorm:"column:estatus_prev" json:"status"`
}

func (ResaleProduct) TableName() string { return "productosreventa" }

// CatalogItem is the uniform row shown for any CatalogKind. Extra carries the
// product area or the supplier name depending on the kind.
type CatalogItem struct {
	ID       int64   `gorm:"column:id" json:"id"`
	Name     string  `gorm:"column:nombre" json:"name"`
	Unit     string  `gorm:"column:unidad" json:"unit"`
	Extra    string  `gorm:"column:extra" json:"extra"`
	Quantity float64 `gorm:"column:cantidad" json:"quantity"`
	Status   string  `gorm:"column:estatus" json:"status"`
	Active   bool    `gorm:"-" json:"active"`
}

// StockUpdate changes the on-hand quantity and/or status of a catalog row.
type StockUpdate struct {
	Quantity *float64 `json:"quantity"`
	Active   *bool    `json:"active"`
}

// NewProductRequest is the payload used to create a product.
type NewProductRequest struct {
	Name     string  `json:"name" binding:"required"`
	Unit     string  `json:"unit" binding:"required"`
	Area     string  `json:"area"`
	Quantity float64 `json:"quantity"`
}

// NewRawMaterialRequest is the payload used to create a raw material.
type NewRawMaterialRequest struct {
	Name       string  `json:"name" binding:"required"`
	Unit       string  `json:"unit" binding:"required"`
	SupplierID *int64  `json:"supplier_id"`
	Quantity   float64 `json:"quantity"`
	UnitCost   float64 `json:"unit_cost"`
}

// NewResaleProductRequest is the payload used to create a resale product.
type NewResaleProductRequest struct {
	Name       string  `json:"name" binding:"required"`
	Unit       string  `json:"unit" binding:"required"`
	SupplierID *int64  `json:"supplier_id"`
	Quantity   float64 `json:"quantity"`
}
