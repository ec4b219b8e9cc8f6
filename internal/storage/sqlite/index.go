package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/yegors/airportdb/internal/airportdb"
	"github.com/yegors/airportdb/internal/geo"
	"github.com/yegors/airportdb/pkg/logger"
	_ "modernc.org/sqlite"
)

// SearchQuery filters index entries. Zero values match everything.
type SearchQuery struct {
	Region      string // exact region code
	IdentPrefix string
	MinRunwayFt int
	Limit       int
	Offset      int
}

// IndexStorage mirrors the airport index into SQLite for ad hoc queries
type IndexStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewIndexStorage opens (creating if needed) the index mirror at dbPath
func NewIndexStorage(dbPath string, log *logger.Logger) (*IndexStorage, error) {
	storageLogger := log.Named("sqlite")

	storageLogger.Info("Initializing SQLite index mirror",
		logger.String("path", dbPath))

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA cache_size=10000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set %q: %w", pragma, err)
		}
	}

	if err := initDatabase(db, storageLogger); err != nil {
		db.Close()
		return nil, err
	}

	return &IndexStorage{db: db, logger: storageLogger}, nil
}

// Close closes the database connection
func (s *IndexStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// initDatabase initializes the database schema
func initDatabase(db *sql.DB, log *logger.Logger) error {
	log.Debug("Initializing database schema")

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS airports (
			ident TEXT PRIMARY KEY,
			icao TEXT,
			iata TEXT,
			region TEXT,
			lat REAL NOT NULL,
			lon REAL NOT NULL,
			elev_ft REAL NOT NULL,
			max_runway_len_ft INTEGER NOT NULL DEFAULT 0,
			ta_ft INTEGER NOT NULL DEFAULT 0,
			tl_ft INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create airports table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sync_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			airac_cycle INTEGER NOT NULL,
			entries INTEGER NOT NULL,
			synced_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create sync_state table: %w", err)
	}

	// Create indexes for the search filters
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_airports_icao ON airports(icao)",
		"CREATE INDEX IF NOT EXISTS idx_airports_iata ON airports(iata)",
		"CREATE INDEX IF NOT EXISTS idx_airports_region ON airports(region)",
		"CREATE INDEX IF NOT EXISTS idx_airports_rwy ON airports(max_runway_len_ft)",
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// ReplaceAll swaps the mirrored index for entries in a single transaction
func (s *IndexStorage) ReplaceAll(entries []airportdb.IndexEntry, airacCycle int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM airports"); err != nil {
		return fmt.Errorf("failed to clear airports: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO airports (ident, icao, iata, region, lat, lon, elev_ft, max_runway_len_ft, ta_ft, tl_ft)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare airport insert statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.Exec(
			e.Ident,
			nullIfEmpty(e.ICAO),
			nullIfEmpty(e.IATA),
			nullIfEmpty(e.CC),
			e.Pos.Lat,
			e.Pos.Lon,
			e.Pos.Elev,
			e.MaxRunwayLenFt,
			e.TA,
			e.TL,
		)
		if err != nil {
			return fmt.Errorf("failed to insert airport %s: %w", e.Ident, err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO sync_state (id, airac_cycle, entries, synced_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET airac_cycle = excluded.airac_cycle,
			entries = excluded.entries, synced_at = excluded.synced_at
	`, airacCycle, len(entries), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record sync state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit index mirror: %w", err)
	}

	s.logger.Info("Index mirror updated",
		logger.Int("entries", len(entries)),
		logger.Int("airac_cycle", airacCycle))
	return nil
}

// SyncState returns the AIRAC cycle and entry count of the last sync. ok is
// false if the mirror was never populated.
func (s *IndexStorage) SyncState() (airacCycle, entries int, ok bool, err error) {
	err = s.db.QueryRow("SELECT airac_cycle, entries FROM sync_state WHERE id = 1").Scan(&airacCycle, &entries)
	if err == sql.ErrNoRows {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to query sync state: %w", err)
	}
	return airacCycle, entries, true, nil
}

// Count returns the number of mirrored airports
func (s *IndexStorage) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM airports").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count airports: %w", err)
	}
	return n, nil
}

// Search returns mirrored entries matching q, ordered by ident
func (s *IndexStorage) Search(q SearchQuery) ([]airportdb.IndexEntry, error) {
	var (
		where []string
		args  []interface{}
	)
	if q.Region != "" {
		where = append(where, "region = ?")
		args = append(args, strings.ToUpper(q.Region))
	}
	if q.IdentPrefix != "" {
		where = append(where, "ident LIKE ? ESCAPE '\\'")
		args = append(args, escapeLike(strings.ToUpper(q.IdentPrefix))+"%")
	}
	if q.MinRunwayFt > 0 {
		where = append(where, "max_runway_len_ft >= ?")
		args = append(args, q.MinRunwayFt)
	}

	query := `SELECT ident, icao, iata, region, lat, lon, elev_ft, max_runway_len_ft, ta_ft, tl_ft FROM airports`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY ident LIMIT ? OFFSET ?"

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, q.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query airports: %w", err)
	}
	defer rows.Close()

	var entries []airportdb.IndexEntry
	for rows.Next() {
		var (
			e                  airportdb.IndexEntry
			icao, iata, region sql.NullString
			lat, lon, elev     float64
		)
		if err := rows.Scan(&e.Ident, &icao, &iata, &region, &lat, &lon, &elev,
			&e.MaxRunwayLenFt, &e.TA, &e.TL); err != nil {
			return nil, fmt.Errorf("failed to scan airport: %w", err)
		}
		e.ICAO, e.IATA, e.CC = icao.String, iata.String, region.String
		e.Pos = geo.Position{Lat: lat, Lon: lon, Elev: elev}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate airports: %w", err)
	}
	return entries, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
