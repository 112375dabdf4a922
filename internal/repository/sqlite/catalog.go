package sqlite

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/quimo/inventario/internal/domain/models"
)

type catalogTable struct {
	table     string
	idColumn  string
	idFilter  string
	qtyColumn string
	status    string
	query     string
	order     string
}

var catalogTables = map[models.CatalogKind]catalogTable{
	models.KindProducts: {
		table:     "productos",
		idColumn:  "id_producto",
		idFilter:  "id_producto",
		qtyColumn: "cantidad_producto",
		status:    "estatus_producto",
		query: `SELECT id_producto AS id,
			COALESCE(nombre_producto, '') AS nombre,
			COALESCE(unidad_medida_producto, '') AS unidad,
			COALESCE(area_producto, '') AS extra,
			COALESCE(cantidad_producto, 0) AS cantidad,
			COALESCE(CAST(estatus_producto AS TEXT), '') AS estatus
		FROM productos`,
		order: "nombre_producto",
	},
	models.KindRawMaterials: {
		table:     "materiasprimas",
		idColumn:  "id_mp",
		idFilter:  "m.id_mp",
		qtyColumn: "cantidad_comprada_mp",
		status:    "estatus_mp",
		query: `SELECT m.id_mp AS id,
			COALESCE(m.nombre_mp, '') AS nombre,
			COALESCE(m.unidad_medida_mp, '') AS unidad,
			COALESCE(p.nombre_proveedor, '') AS extra,
			COALESCE(m.cantidad_comprada_mp, 0) AS cantidad,
			COALESCE(CAST(m.estatus_mp AS TEXT), '') AS estatus
		FROM materiasprimas m
		LEFT JOIN proveedor p ON m.proveedor = p.id_proveedor`,
		order: "m.nombre_mp",
	},
	models.KindResaleProducts: {
		table:     "productosreventa",
		idColumn:  "id_prev",
		idFilter:  "r.id_prev",
		qtyColumn: "cantidad_prev",
		status:    "estatus_prev",
		query: `SELECT r.id_prev AS id,
			COALESCE(r.nombre_prev, '') AS nombre,
			COALESCE(r.unidad_medida_prev, '') AS unidad,
			COALESCE(p.nombre_proveedor, '') AS extra,
			COALESCE(r.cantidad_prev, 0) AS cantidad,
			COALESCE(CAST(r.estatus_prev AS TEXT), '') AS estatus
		FROM productosreventa r
		LEFT JOIN proveedor p ON r.proveedor = p.id_proveedor`,
		order: "r.nombre_prev",
	},
}

func lookupCatalog(kind models.CatalogKind) (catalogTable, error) {
	t, ok := catalogTables[kind]
	if !ok {
		return catalogTable{}, fmt.Errorf("%w: %q", models.ErrUnknownKind, kind)
	}
	return t, nil
}

// ListCatalog returns every row of the given kind ordered by name.
func (r *Repository) ListCatalog(ctx context.Context, kind models.CatalogKind) ([]models.CatalogItem, error) {
	t, err := lookupCatalog(kind)
	if err != nil {
		return nil, err
	}

	var items []models.CatalogItem
	if err := r.db.WithContext(ctx).Raw(t.query + " ORDER BY " + t.order).Scan(&items).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", t.table, err)
	}
	for i := range items {
		items[i].Active = models.IsActiveStatus(items[i].Status)
	}
	return items, nil
}

// GetCatalogItem loads a single row of the given kind.
func (r *Repository) GetCatalogItem(ctx context.Context, kind models.CatalogKind, id int64) (*models.CatalogItem, error) {
	t, err := lookupCatalog(kind)
	if err != nil {
		return nil, err
	}

	var item models.CatalogItem
	res := r.db.WithContext(ctx).Raw(t.query+" WHERE "+t.idFilter+" = ?", id).Scan(&item)
	if res.Error != nil {
		return nil, fmt.Errorf("get %s %d: %w", t.table, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.ErrNotFound
	}
	item.Active = models.IsActiveStatus(item.Status)
	return &item, nil
}

// UpdateStock sets the on-hand quantity and/or the status of a catalog row.
func (r *Repository) UpdateStock(ctx context.Context, kind models.CatalogKind, id int64, update models.StockUpdate) error {
	t, err := lookupCatalog(kind)
	if err != nil {
		return err
	}

	values := map[string]interface{}{}
	if update.Quantity != nil {
		values[t.qtyColumn] = *update.Quantity
	}
	if update.Active != nil {
		values[t.status] = models.StatusLabel(*update.Active)
	}
	if len(values) == 0 {
		return nil
	}

	res := r.db.WithContext(ctx).Table(t.table).Where(t.idColumn+" = ?", id).Updates(values)
	if res.Error != nil {
		return fmt.Errorf("update %s %d: %w", t.table, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListSuppliers returns suppliers ordered by name.
func (r *Repository) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := r.db.WithContext(ctx).Raw(`SELECT id_proveedor, COALESCE(nombre_proveedor, '') AS nombre_proveedor
		FROM proveedor ORDER BY nombre_proveedor`).Scan(&suppliers).Error
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return suppliers, nil
}

// CreateSupplier inserts a supplier and fills its id.
func (r *Repository) CreateSupplier(ctx context.Context, supplier *models.Supplier) error {
	if err := r.db.WithContext(ctx).Create(supplier).Error; err != nil {
		return fmt.Errorf("create supplier: %w", err)
	}
	return nil
}

// CreateProduct inserts a product and fills its id.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// CreateRawMaterial inserts a raw material and fills its id.
func (r *Repository) CreateRawMaterial(ctx context.Context, material *models.RawMaterial) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkSupplier(tx, material.SupplierID); err != nil {
			return err
		}
		if err := tx.Create(material).Error; err != nil {
			return fmt.Errorf("create raw material: %w", err)
		}
		return nil
	})
}

// CreateResaleProduct inserts a resale product and fills its id.
func (r *Repository) CreateResaleProduct(ctx context.Context, product *models.ResaleProduct) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkSupplier(tx, product.SupplierID); err != nil {
			return err
		}
		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("create resale product: %w", err)
		}
		return nil
	})
}

func checkSupplier(tx *gorm.DB, id *int64) error {
	if id == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&models.Supplier{}).Where("id_proveedor = ?", *id).Count(&count).Error; err != nil {
		return fmt.Errorf("check supplier %d: %w", *id, err)
	}
	if count == 0 {
		return fmt.Errorf("supplier %d: %w", *id, models.ErrNotFound)
	}
	return nil
}

// GetProduct loads a product by id.
func (r *Repository) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id_producto = ?", id).First(&product).Error; err != nil {
		return nil, notFound(err)
	}
	return &product, nil
}

// RawMaterials returns every raw material with a missing unit cost read as zero.
func (r *Repository) RawMaterials(ctx context.Context) ([]models.RawMaterial, error) {
	var materials []models.RawMaterial
	err := r.db.WithContext(ctx).Raw(`SELECT id_mp,
			COALESCE(nombre_mp, '') AS nombre_mp,
			COALESCE(unidad_medida_mp, '') AS unidad_medida_mp,
			proveedor,
			COALESCE(cantidad_comprada_mp, 0) AS cantidad_comprada_mp,
			COALESCE(costo_unitario_mp, 0) AS costo_unitario_mp,
			COALESCE(CAST(estatus_mp AS TEXT), '') AS estatus_mp
		FROM materiasprimas ORDER BY nombre_mp`).Scan(&materials).Error
	if err != nil {
		return nil, fmt.Errorf("list raw materials: %w", err)
	}
	return materials, nil
}
