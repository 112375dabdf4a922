package sqlite

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Migrator upgrades quimo.db files created by older versions of the app.
// Every step is safe to run more than once.
type Migrator struct {
	db     *gorm.DB
	logger *zap.Logger
	logf   func(format string, args ...interface{})
}

// NewMigrator returns a migrator over the repository connection. logf receives
// human readable progress lines; nil discards them.
func NewMigrator(repo *Repository, logf func(format string, args ...interface{})) *Migrator {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Migrator{db: repo.db, logger: repo.logger.Named("migrator"), logf: logf}
}

type columnInfo struct {
	Name string `gorm:"column:name"`
}

type indexInfo struct {
	Name   string `gorm:"column:name"`
	Unique int    `gorm:"column:unique"`
}

func (m *Migrator) columns(ctx context.Context, db *gorm.DB, table string) (map[string]bool, error) {
	var cols []columnInfo
	if err := db.WithContext(ctx).Raw("PRAGMA table_info(" + table + ")").Scan(&cols).Error; err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", table, err)
	}
	out := make(map[string]bool, len(cols))
	for _, c := range cols {
		out[strings.ToLower(c.Name)] = true
	}
	return out, nil
}

// AddColumnIfMissing runs ALTER TABLE ADD COLUMN unless the column is already
// there. It reports whether the column was added.
func (m *Migrator) AddColumnIfMissing(ctx context.Context, table, column, definition string) (bool, error) {
	if !identifierPattern.MatchString(table) || !identifierPattern.MatchString(column) {
		return false, fmt.Errorf("invalid identifier %q.%q", table, column)
	}
	if !m.db.WithContext(ctx).Migrator().HasTable(table) {
		return false, fmt.Errorf("table %s does not exist", table)
	}

	cols, err := m.columns(ctx, m.db, table)
	if err != nil {
		return false, err
	}
	if cols[strings.ToLower(column)] {
		m.logf("column %s.%s already exists", table, column)
		return false, nil
	}

	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition)
	if err := m.db.WithContext(ctx).Exec(stmt).Error; err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate column name") {
			m.logf("column %s.%s already exists", table, column)
			return false, nil
		}
		return false, fmt.Errorf("add column %s.%s: %w", table, column, err)
	}

	m.logf("added column %s.%s", table, column)
	m.logger.Info("column added", zap.String("table", table), zap.String("column", column))
	return true, nil
}

// AddProductionColumns adds costo and area to produccion.
func (m *Migrator) AddProductionColumns(ctx context.Context) error {
	if _, err := m.AddColumnIfMissing(ctx, productionTable, "costo", "REAL DEFAULT 0.0"); err != nil {
		return err
	}
	if _, err := m.AddColumnIfMissing(ctx, productionTable, "area", "TEXT"); err != nil {
		return err
	}
	return nil
}

// HasProductionUniqueKey reports whether produccion has a unique index on
// exactly (fecha, producto_id).
func (m *Migrator) HasProductionUniqueKey(ctx context.Context) (bool, error) {
	return hasUniqueKey(ctx, m.db, productionTable, "fecha", "producto_id")
}

func hasUniqueKey(ctx context.Context, db *gorm.DB, table string, columns ...string) (bool, error) {
	var indexes []indexInfo
	if err := db.WithContext(ctx).Raw("PRAGMA index_list(" + table + ")").Scan(&indexes).Error; err != nil {
		return false, fmt.Errorf("list indexes of %s: %w", table, err)
	}

	want := make(map[string]bool, len(columns))
	for _, c := range columns {
		want[c] = true
	}

	for _, idx := range indexes {
		if idx.Unique != 1 {
			continue
		}
		var cols []columnInfo
		if err := db.WithContext(ctx).Raw("PRAGMA index_info(" + quoteIdent(idx.Name) + ")").Scan(&cols).Error; err != nil {
			return false, fmt.Errorf("read index %s: %w", idx.Name, err)
		}
		if len(cols) != len(want) {
			continue
		}
		match := true
		for _, c := range cols {
			if !want[strings.ToLower(c.Name)] {
				match = false
				break
			}
		}
		if match {
			return true, nil
		}
	}
	return false, nil
}

// RebuildProductionTable recreates produccion with UNIQUE(fecha, producto_id).
// Rows sharing a (fecha, producto_id) pair are merged by summing cantidad and
// costo; rows without a date or whose product no longer exists are dropped.
// The whole rebuild runs in one transaction and is skipped when the unique key
// already exists. It reports whether the table was rebuilt.
func (m *Migrator) RebuildProductionTable(ctx context.Context) (bool, error) {
	if err := m.AddProductionColumns(ctx); err != nil {
		return false, err
	}

	const next = productionTable + "_nueva"
	rebuilt := false

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := hasUniqueKey(ctx, tx, productionTable, "fecha", "producto_id")
		if err != nil {
			return err
		}
		if ok {
			m.logf("%s already has UNIQUE(fecha, producto_id)", productionTable)
			return nil
		}

		var before int64
		if err := tx.Raw("SELECT COUNT(*) FROM " + productionTable).Scan(&before).Error; err != nil {
			return fmt.Errorf("count %s: %w", productionTable, err)
		}

		// Rows pointing at deleted products would violate the new foreign key.
		var orphans int64
		if err := tx.Raw(`SELECT COUNT(*) FROM ` + productionTable + ` p
			WHERE p.producto_id IS NOT NULL
			AND NOT EXISTS (SELECT 1 FROM productos WHERE id_producto = p.producto_id)`).Scan(&orphans).Error; err != nil {
			return fmt.Errorf("count orphan rows: %w", err)
		}
		if orphans > 0 {
			m.logf("skipping %d rows of unknown products", orphans)
			m.logger.Warn("skipping orphan production rows", zap.Int64("rows", orphans))
		}

		steps := []struct {
			desc string
			stmt string
		}{
			{"drop leftover " + next, "DROP TABLE IF EXISTS " + next},
			{"create " + next, productionTableDDL(next, false)},
			{"copy rows", fmt.Sprintf(`INSERT INTO %s (id_produccion, fecha, producto_id, dia, cantidad, costo, area)
				SELECT MIN(id_produccion), fecha, producto_id,
					COALESCE(MIN(dia), ''),
					COALESCE(SUM(cantidad), 0),
					SUM(COALESCE(costo, 0)),
					MAX(area)
				FROM %s
				WHERE fecha IS NOT NULL
					AND producto_id IN (SELECT id_producto FROM productos)
				GROUP BY fecha, producto_id`, next, productionTable)},
			{"drop " + productionTable, "DROP TABLE " + productionTable},
			{"rename " + next, fmt.Sprintf("ALTER TABLE %s RENAME TO %s", next, productionTable)},
		}
		for _, step := range steps {
			if err := tx.Exec(step.stmt).Error; err != nil {
				return fmt.Errorf("%s: %w", step.desc, err)
			}
			m.logf("%s: ok", step.desc)
		}

		var after int64
		if err := tx.Raw("SELECT COUNT(*) FROM " + productionTable).Scan(&after).Error; err != nil {
			return fmt.Errorf("count rebuilt %s: %w", productionTable, err)
		}
		m.logf("copied %d rows into %d (merged or skipped %d)", before, after, before-after)
		m.logger.Info("production table rebuilt", zap.Int64("rows_before", before), zap.Int64("rows_after", after))
		rebuilt = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rebuild %s: %w", productionTable, err)
	}
	return rebuilt, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
