package models

// RecipeLine is a bill-of-materials row: QuantityPerUnit of a raw material is
// consumed for every unit of the product.
type RecipeLine struct {
	ID              int64   `gorm:"column:id_formula;primaryKey;autoIncrement" json:"-"`
	ProductID       int64   `gorm:"column:producto_id" json:"product_id"`
	MaterialID      int64   `gorm:"column:id_mp" json:"material_id" binding:"required"`
	QuantityPerUnit float64 `gorm:"column:cantidad_mp_por_unidad" json:"quantity_per_unit" binding:"required"`
}

func (RecipeLine) TableName() string { return "formulas" }

// RecipeComponent is a recipe line joined with the raw material's name and unit cost.
type RecipeComponent struct {
	ProductID       int64   `gorm:"column:producto_id" json:"product_id"`
	MaterialID      int64   `gorm:"column:id_mp" json:"material_id"`
	Material        string  `gorm:"column:materia_prima" json:"material"`
	QuantityPerUnit float64 `gorm:"column:cantidad" json:"quantity_per_unit"`
	UnitPrice       float64 `gorm:"column:precio" json:"unit_price"`
}
