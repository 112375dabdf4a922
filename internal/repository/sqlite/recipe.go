package sqlite

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/quimo/inventario/internal/domain/models"
)

const recipeQuery = `SELECT f.producto_id,
		f.id_mp,
		COALESCE(m.nombre_mp, '') AS materia_prima,
		COALESCE(f.cantidad_mp_por_unidad, 0) AS cantidad,
		COALESCE(m.costo_unitario_mp, 0) AS precio
	FROM formulas f
	JOIN materiasprimas m ON f.id_mp = m.id_mp`

// RecipeComponents returns the recipe lines of the given products, or of every
// product when none is given.
func (r *Repository) RecipeComponents(ctx context.Context, productIDs ...int64) ([]models.RecipeComponent, error) {
	var lines []models.RecipeComponent
	query := r.db.WithContext(ctx)
	var err error
	if len(productIDs) == 0 {
		err = query.Raw(recipeQuery + " ORDER BY f.producto_id, m.nombre_mp").Scan(&lines).Error
	} else {
		err = query.Raw(recipeQuery+" WHERE f.producto_id IN ? ORDER BY f.producto_id, m.nombre_mp", productIDs).Scan(&lines).Error
	}
	if err != nil {
		return nil, fmt.Errorf("load recipes: %w", err)
	}
	return lines, nil
}

// ReplaceRecipe swaps the whole bill of materials of a product.
func (r *Repository) ReplaceRecipe(ctx context.Context, productID int64, lines []models.RecipeLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Product{}).Where("id_producto = ?", productID).Count(&count).Error; err != nil {
			return fmt.Errorf("check product %d: %w", productID, err)
		}
		if count == 0 {
			return fmt.Errorf("product %d: %w", productID, models.ErrNotFound)
		}

		if err := tx.Where("producto_id = ?", productID).Delete(&models.RecipeLine{}).Error; err != nil {
			return fmt.Errorf("clear recipe of product %d: %w", productID, err)
		}
		if len(lines) == 0 {
			return nil
		}

		for i := range lines {
			if err := checkRawMaterial(tx, lines[i].MaterialID); err != nil {
				return err
			}
			lines[i].ID = 0
			lines[i].ProductID = productID
		}
		if err := tx.Create(&lines).Error; err != nil {
			return fmt.Errorf("save recipe of product %d: %w", productID, err)
		}
		return nil
	})
}

func checkRawMaterial(tx *gorm.DB, id int64) error {
	var count int64
	if err := tx.Model(&models.RawMaterial{}).Where("id_mp = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("check raw material %d: %w", id, err)
	}
	if count == 0 {
		return fmt.Errorf("raw material %d: %w", id, models.ErrNotFound)
	}
	return nil
}
