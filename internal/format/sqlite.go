package format

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"
	_ "github.com/mattn/go-sqlite3"

	"github.com/formbench/formbench/pkg/types"
)

// SQLiteHandler implements Handler over a single-table SQLite file.
// Filterable fields get typed columns so filtered reads and
// aggregations execute as SQL; the full record travels in a
// snappy-compressed JSON payload column.
//
// Not part of the default format list; register it explicitly with
// -formats to include it in a comparison.
type SQLiteHandler struct{}

// NewSQLiteHandler creates a sqlite format handler.
func NewSQLiteHandler() *SQLiteHandler {
	return &SQLiteHandler{}
}

func (h *SQLiteHandler) Name() string      { return "sqlite" }
func (h *SQLiteHandler) Extension() string { return ".sqlite" }

const sqliteCreateTable = `
	CREATE TABLE orders (
		order_id TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		shipping_country TEXT NOT NULL,
		total_amount REAL NOT NULL,
		order_date INTEGER NOT NULL,
		payload BLOB NOT NULL
	) WITHOUT ROWID
`

const sqliteInsert = `INSERT INTO orders (order_id, category, shipping_country, total_amount, order_date, payload) VALUES (?, ?, ?, ?, ?, ?)`

func sqliteOpenForWrite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	// WAL during the build, checkpointed back to a single file on close
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: set journal mode: %w", err)
	}
	if _, err := db.Exec(sqliteCreateTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: create orders table: %w", err)
	}
	if _, err := db.Exec("CREATE INDEX idx_orders_category ON orders(category)"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: create category index: %w", err)
	}
	return db, nil
}

func sqliteFinalize(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("sqlite: checkpoint WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=DELETE"); err != nil {
		return fmt.Errorf("sqlite: reset journal mode: %w", err)
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("sqlite: close database: %w", err)
	}
	return nil
}

func sqliteInsertBatch(db *sql.DB, orders []types.Order) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite: begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(sqliteInsert)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}

	for _, o := range orders {
		payload, err := json.Marshal(o)
		if err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("sqlite: marshal payload: %w", err)
		}
		compressed := snappy.Encode(nil, payload)

		if _, err := stmt.Exec(o.OrderID, o.Category, o.ShippingCountry, o.TotalAmount, o.OrderDateMillis(), compressed); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("sqlite: insert row: %w", err)
		}
	}

	if err := stmt.Close(); err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite: close statement: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit batch: %w", err)
	}
	return nil
}

// Write writes a fully materialized batch into a fresh database file.
func (h *SQLiteHandler) Write(orders []types.Order, path string) error {
	db, err := sqliteOpenForWrite(path)
	if err != nil {
		return err
	}
	if err := sqliteInsertBatch(db, orders); err != nil {
		db.Close()
		return err
	}
	return sqliteFinalize(db)
}

// WriteStream inserts batches as they arrive, one transaction per
// batch.
func (h *SQLiteHandler) WriteStream(batches <-chan []types.Order, path string, progress ProgressFunc) (int, error) {
	db, err := sqliteOpenForWrite(path)
	if err != nil {
		return 0, err
	}

	total := 0
	for batch := range batches {
		if err := sqliteInsertBatch(db, batch); err != nil {
			db.Close()
			return total, err
		}
		total += len(batch)
		if progress != nil {
			progress(total)
		}
	}

	return total, sqliteFinalize(db)
}

// ReadFull scans every payload in the table.
func (h *SQLiteHandler) ReadFull(path string, fn ScanFunc) error {
	return h.scanPayloads(path, "SELECT payload FROM orders", nil, fn)
}

// ReadFiltered pushes the category predicate into SQL.
func (h *SQLiteHandler) ReadFiltered(path string, category string, fn ScanFunc) error {
	return h.scanPayloads(path, "SELECT payload FROM orders WHERE category = ?", []interface{}{category}, fn)
}

// Aggregate executes the grouped sum entirely inside SQLite.
func (h *SQLiteHandler) Aggregate(path string) (map[string]float64, error) {
	db, err := sql.Open("sqlite3", sqliteReadDSN(path))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.Query("SELECT shipping_country, SUM(total_amount) FROM orders GROUP BY shipping_country")
	if err != nil {
		return nil, fmt.Errorf("sqlite: aggregate query: %w", err)
	}
	defer rows.Close()

	sums := make(map[string]float64)
	for rows.Next() {
		var country string
		var total float64
		if err := rows.Scan(&country, &total); err != nil {
			return nil, fmt.Errorf("sqlite: scan aggregate row: %w", err)
		}
		sums[country] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: aggregate rows: %w", err)
	}
	return sums, nil
}

func (h *SQLiteHandler) scanPayloads(path, query string, args []interface{}, fn ScanFunc) error {
	db, err := sql.Open("sqlite3", sqliteReadDSN(path))
	if err != nil {
		return fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("sqlite: query payloads: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var compressed []byte
		if err := rows.Scan(&compressed); err != nil {
			return fmt.Errorf("sqlite: scan payload: %w", err)
		}
		payload, err := snappy.Decode(nil, compressed)
		if err != nil {
			return fmt.Errorf("sqlite: decompress payload: %w", err)
		}
		var o types.Order
		if err := json.Unmarshal(payload, &o); err != nil {
			return fmt.Errorf("sqlite: unmarshal payload: %w", err)
		}
		if err := fn(o); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: payload rows: %w", err)
	}
	return nil
}

func sqliteReadDSN(path string) string {
	return "file:" + path + "?mode=ro"
}
