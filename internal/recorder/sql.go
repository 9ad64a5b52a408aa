package recorder

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"ChartFeed/internal/model"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQLRecorder persists reload events and series snapshots to SQLite or
// PostgreSQL.
type SQLRecorder struct {
	db     *sqlx.DB
	driver string
	mu     sync.Mutex
}

// NewSQLRecorder opens (or creates) the database and runs migrations.
func NewSQLRecorder(driver, dsn string) (*SQLRecorder, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
	}

	r := &SQLRecorder{db: db, driver: driver}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] %s recorder opened", driver)
	return r, nil
}

func (r *SQLRecorder) migrate() error {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if r.driver == DriverPostgres {
		id = "BIGSERIAL PRIMARY KEY"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS reload_events (
			id          ` + id + `,
			timestamp   BIGINT NOT NULL,
			session_id  TEXT,
			asset_id    TEXT,
			currency    TEXT,
			period      TEXT,
			row_count   INTEGER,
			empty       BOOLEAN,
			stale       BOOLEAN,
			error       TEXT,
			duration_ms BIGINT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reload_ts ON reload_events(timestamp)`,

		`CREATE TABLE IF NOT EXISTS series_snapshots (
			id         ` + id + `,
			timestamp  BIGINT NOT NULL,
			session_id TEXT,
			asset_id   TEXT NOT NULL,
			currency   TEXT NOT NULL,
			period     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshot_key ON series_snapshots(asset_id, currency, period)`,

		`CREATE TABLE IF NOT EXISTS snapshot_rows (
			snapshot_id BIGINT NOT NULL,
			instant     BIGINT NOT NULL,
			price       DOUBLE PRECISION,
			price_btc   DOUBLE PRECISION,
			price_usd   DOUBLE PRECISION,
			volume      DOUBLE PRECISION,
			volume24    DOUBLE PRECISION
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshot_rows ON snapshot_rows(snapshot_id, instant)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLRecorder) RecordReload(evt *ReloadEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(r.db.Rebind(`INSERT INTO reload_events
		(timestamp, session_id, asset_id, currency, period, row_count, empty, stale, error, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?,?)`),
		time.Now().Unix(), evt.SessionID, evt.AssetID, evt.Currency, evt.Period,
		evt.Rows, evt.Empty, evt.Stale, evt.Err, evt.Duration.Milliseconds(),
	)
	return err
}

func (r *SQLRecorder) RecordSnapshot(snap *SeriesSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowx(tx.Rebind(`INSERT INTO series_snapshots
		(timestamp, session_id, asset_id, currency, period)
		VALUES (?,?,?,?,?) RETURNING id`),
		time.Now().Unix(), snap.SessionID, snap.AssetID, snap.Currency, snap.Period,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	stmt, err := tx.Preparex(tx.Rebind(`INSERT INTO snapshot_rows
		(snapshot_id, instant, price, price_btc, price_usd, volume, volume24)
		VALUES (?,?,?,?,?,?,?)`))
	if err != nil {
		return fmt.Errorf("prepare rows: %w", err)
	}
	defer stmt.Close()

	for _, row := range snap.Rows {
		if _, err := stmt.Exec(id, row.Instant.Unix(), row.Close, row.PriceBTC, row.PriceUSD, row.Volume, row.Volume24); err != nil {
			return fmt.Errorf("insert row %s: %w", row.DateLabel, err)
		}
	}
	return tx.Commit()
}

// snapshotRow is the stored shape of one OHLCV row.
type snapshotRow struct {
	Instant  int64   `db:"instant"`
	Price    float64 `db:"price"`
	PriceBTC float64 `db:"price_btc"`
	PriceUSD float64 `db:"price_usd"`
	Volume   float64 `db:"volume"`
	Volume24 float64 `db:"volume24"`
}

// LatestSnapshot loads the most recent series stored for the selection.
// It returns nil rows when nothing was recorded.
func (r *SQLRecorder) LatestSnapshot(assetID, currency, period string) ([]model.OHLCVRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []int64
	err := r.db.Select(&ids, r.db.Rebind(`SELECT id FROM series_snapshots
		WHERE asset_id = ? AND currency = ? AND period = ?
		ORDER BY id DESC LIMIT 1`), assetID, currency, period)
	if err != nil {
		return nil, fmt.Errorf("find snapshot: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var stored []snapshotRow
	err = r.db.Select(&stored, r.db.Rebind(`SELECT instant, price, price_btc, price_usd, volume, volume24
		FROM snapshot_rows WHERE snapshot_id = ? ORDER BY instant`), ids[0])
	if err != nil {
		return nil, fmt.Errorf("load snapshot rows: %w", err)
	}
	rows := make([]model.OHLCVRow, len(stored))
	for i, s := range stored {
		rows[i] = model.NewRow(time.Unix(s.Instant, 0), s.Price, s.PriceBTC, s.PriceUSD, s.Volume, s.Volume24)
	}
	return rows, nil
}

// ReloadCount returns how many reload events have been stored.
func (r *SQLRecorder) ReloadCount() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	if err := r.db.Get(&n, `SELECT COUNT(*) FROM reload_events`); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *SQLRecorder) Close() error {
	log.Printf("[INFO] closing %s recorder", r.driver)
	return r.db.Close()
}
