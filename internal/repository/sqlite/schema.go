package sqlite

import "fmt"

const productionTable = "produccion"

func schemaStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS proveedor (
			id_proveedor     INTEGER PRIMARY KEY AUTOINCREMENT,
			nombre_proveedor TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS productos (
			id_producto            INTEGER PRIMARY KEY AUTOINCREMENT,
			nombre_producto        TEXT NOT NULL,
			unidad_medida_producto TEXT,
			area_producto          TEXT,
			cantidad_producto      REAL DEFAULT 0,
			estatus_producto       TEXT DEFAULT 'Activo'
		)`,
		`CREATE TABLE IF NOT EXISTS materiasprimas (
			id_mp                INTEGER PRIMARY KEY AUTOINCREMENT,
			nombre_mp            TEXT NOT NULL,
			unidad_medida_mp     TEXT,
			proveedor            INTEGER REFERENCES proveedor (id_proveedor),
			cantidad_comprada_mp REAL DEFAULT 0,
			costo_unitario_mp    REAL DEFAULT 0,
			estatus_mp           TEXT DEFAULT 'Activo'
		)`,
		`CREATE TABLE IF NOT EXISTS productosreventa (
			id_prev            INTEGER PRIMARY KEY AUTOINCREMENT,
			nombre_prev        TEXT NOT NULL,
			unidad_medida_prev TEXT,
			proveedor          INTEGER REFERENCES proveedor (id_proveedor),
			cantidad_prev      REAL DEFAULT 0,
			estatus_prev       TEXT DEFAULT 'Activo'
		)`,
		productionTableDDL(productionTable, true),
		`CREATE TABLE IF NOT EXISTS formulas (
			id_formula             INTEGER PRIMARY KEY AUTOINCREMENT,
			producto_id            INTEGER NOT NULL REFERENCES productos (id_producto),
			id_mp                  INTEGER NOT NULL REFERENCES materiasprimas (id_mp),
			cantidad_mp_por_unidad REAL NOT NULL,
			UNIQUE (producto_id, id_mp)
		)`,
	}
}

// productionTableDDL is shared by the initial schema and the table rebuild.
func productionTableDDL(name string, ifNotExists bool) string {
	clause := ""
	if ifNotExists {
		clause = "IF NOT EXISTS "
	}
	return fmt.Sprintf(`CREATE TABLE %s%s (
			id_produccion INTEGER PRIMARY KEY AUTOINCREMENT,
			fecha         TEXT NOT NULL,
			producto_id   INTEGER NOT NULL,
			dia           TEXT NOT NULL,
			cantidad      REAL NOT NULL,
			costo         REAL DEFAULT 0.0,
			area          TEXT,
			FOREIGN KEY (producto_id) REFERENCES productos (id_producto),
			UNIQUE (fecha, producto_id)
		)`, clause, name)
}
