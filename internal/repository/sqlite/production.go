package sqlite

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quimo/inventario/internal/domain/models"
)

// UpsertProduction inserts the entry or, when a row already exists for the
// same (fecha, producto_id), adds its quantity and cost to the stored row.
// The product's on-hand quantity grows by the same amount in the same
// transaction. The stored row is returned.
func (r *Repository) UpsertProduction(ctx context.Context, entry models.ProductionEntry) (*models.ProductionEntry, error) {
	var stored models.ProductionEntry

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("id_producto = ?", entry.ProductID).
			Update("cantidad_producto", gorm.Expr("COALESCE(cantidad_producto, 0) + ?", entry.Quantity))
		if res.Error != nil {
			return fmt.Errorf("increase stock of product %d: %w", entry.ProductID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("product %d: %w", entry.ProductID, models.ErrNotFound)
		}

		entry.ID = 0
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "fecha"}, {Name: "producto_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"cantidad": gorm.Expr("produccion.cantidad + excluded.cantidad"),
				"costo":    gorm.Expr("COALESCE(produccion.costo, 0) + excluded.costo"),
			}),
		}).Create(&entry).Error
		if err != nil {
			return fmt.Errorf("upsert production: %w", err)
		}

		return tx.Where("fecha = ? AND producto_id = ?", entry.Date, entry.ProductID).First(&stored).Error
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("production upserted",
		zap.Int64("product_id", stored.ProductID),
		zap.String("date", stored.Date),
		zap.Float64("quantity", stored.Quantity))
	return &stored, nil
}

// ProductionBetween returns production joined with product names for the
// calendar days in [from, to].
func (r *Repository) ProductionBetween(ctx context.Context, from, to time.Time) ([]models.ProductionRecord, error) {
	var rows []models.ProductionRecord
	err := r.db.WithContext(ctx).Raw(`SELECT p.id_producto,
			COALESCE(p.nombre_producto, '') AS producto,
			COALESCE(p.unidad_medida_producto, '') AS unidad,
			COALESCE(pr.dia, '') AS dia,
			CAST(pr.fecha AS TEXT) AS fecha,
			COALESCE(pr.cantidad, 0) AS cantidad
		FROM produccion pr
		JOIN productos p ON pr.producto_id = p.id_producto
		WHERE substr(pr.fecha, 1, 10) >= ? AND substr(pr.fecha, 1, 10) <= ?
		ORDER BY pr.fecha, p.nombre_producto`,
		from.Format(models.DateLayout), to.Format(models.DateLayout)).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load production: %w", err)
	}

	valid := rows[:0]
	for _, row := range rows {
		date, err := parseDate(row.RawDate)
		if err != nil {
			r.logger.Debug("skip production row with invalid date", zap.String("value", row.RawDate), zap.Error(err))
			continue
		}
		row.Date = date
		valid = append(valid, row)
	}
	return valid, nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(value) > 10 {
		value = value[:10]
	}
	return time.Parse(models.DateLayout, value)
}
