// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package dataset

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/soundprint/internal/catalog"
	"github.com/tomtom215/soundprint/internal/logging"
)

// EngineConfig tunes the embedded DuckDB instance used for ingestion and
// columnar I/O.
type EngineConfig struct {
	Threads   int
	MaxMemory string
}

// Engine is an in-memory DuckDB database. It holds no persistent state; every
// operation pins one connection so staging tables stay visible to the
// statements that follow.
type Engine struct {
	db *sql.DB
}

// IngestStats counts what ingestion kept and dropped.
type IngestStats struct {
	SourceRows      int64 `json:"source_rows"`
	BadIdentifiers  int64 `json:"bad_identifiers"`
	MissingFeatures int64 `json:"missing_features"`
	Kept            int64 `json:"kept"`

	// ColumnarWritten reports whether the columnar cache export succeeded.
	ColumnarWritten bool `json:"columnar_written"`
}

const (
	stagedTable     = "staged"
	normalizedTable = "normalized"
	catalogTable    = "neighbor_catalog"
)

// OpenEngine starts an in-memory DuckDB database.
func OpenEngine(cfg EngineConfig) (*Engine, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "2GB"
	}

	// Insertion order must be preserved: "first occurrence wins" during the
	// build depends on rows arriving in source order.
	connStr := fmt.Sprintf(":memory:?threads=%d&max_memory=%s&preserve_insertion_order=true&autoinstall_known_extensions=false&autoload_known_extensions=false",
		threads, maxMemory)

	db, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close() //nolint:errcheck // best-effort cleanup on error path
		return nil, fmt.Errorf("failed to connect to duckdb: %w", err)
	}
	return &Engine{db: db}, nil
}

// Close releases the database.
func (e *Engine) Close() error {
	return e.db.Close()
}

// ReadSource ingests the raw CSV at path: identifiers are normalized with the
// catalog.IDExpr rule, features are parsed as doubles, and rows with a bad
// identifier or a missing required feature are dropped.
//
// When columnarOut is set the normalized table is also exported there as
// Parquet. Export failures are logged and reported through
// IngestStats.ColumnarWritten; they never fail the read.
func (e *Engine) ReadSource(ctx context.Context, path, columnarOut string) ([]catalog.Row, IngestStats, error) {
	var stats IngestStats

	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to acquire duckdb connection: %w", err)
	}
	defer conn.Close()

	if err := stageSource(ctx, conn, path); err != nil {
		return nil, stats, err
	}

	err = conn.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT
			count(*),
			count(*) FILTER (WHERE track_id IS NULL OR artist_id IS NULL),
			count(*) FILTER (WHERE track_id IS NOT NULL AND artist_id IS NOT NULL AND NOT (%s))
		FROM %s`, requiredFeaturesPresent, stagedTable)).
		Scan(&stats.SourceRows, &stats.BadIdentifiers, &stats.MissingFeatures)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to count staged rows: %w", err)
	}

	if _, err := conn.ExecContext(ctx, fmt.Sprintf(`
		CREATE OR REPLACE TABLE %s AS
		SELECT %s FROM %s
		WHERE track_id IS NOT NULL AND artist_id IS NOT NULL AND %s`,
		normalizedTable, rowColumns, stagedTable, requiredFeaturesPresent)); err != nil {
		return nil, stats, fmt.Errorf("failed to build normalized table: %w", err)
	}
	dropQuietly(ctx, conn, stagedTable)

	rows, err := queryRows(ctx, conn, fmt.Sprintf("SELECT %s FROM %s", rowColumns, normalizedTable))
	if err != nil {
		return nil, stats, err
	}
	stats.Kept = int64(len(rows))

	if columnarOut != "" {
		if err := writeTable(ctx, conn, normalizedTable, columnarOut); err != nil {
			logging.Warn().Err(err).Str("path", columnarOut).Msg("Failed to write columnar cache")
		} else {
			stats.ColumnarWritten = true
		}
	}
	dropQuietly(ctx, conn, normalizedTable)

	return rows, stats, nil
}

// ReadColumnar loads a flat-table cache written by ReadSource.
func (e *Engine) ReadColumnar(ctx context.Context, path string) ([]catalog.Row, error) {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire duckdb connection: %w", err)
	}
	defer conn.Close()

	return queryRows(ctx, conn, fmt.Sprintf("SELECT %s FROM read_parquet(%s)", rowColumns, quoteLiteral(path)))
}

// WriteColumnar writes rows as a ZSTD-compressed Parquet file at path.
func (e *Engine) WriteColumnar(ctx context.Context, path string, rows []catalog.Row) error {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire duckdb connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, fmt.Sprintf(`
		CREATE OR REPLACE TABLE %s (
			track_id VARCHAR, artist_id VARCHAR, track_name VARCHAR, artist_name VARCHAR,
			tempo DOUBLE, energy DOUBLE, valence DOUBLE, danceability DOUBLE,
			acousticness DOUBLE, liveness DOUBLE
		)`, normalizedTable)); err != nil {
		return fmt.Errorf("failed to create normalized table: %w", err)
	}
	defer dropQuietly(ctx, conn, normalizedTable)

	err = appendRows(conn, normalizedTable, len(rows), func(i int) []driver.Value {
		r := &rows[i]
		return []driver.Value{
			r.TrackID, r.ArtistID, r.TrackName, r.ArtistName,
			r.Tempo, r.Energy, r.Valence, r.Danceability,
			optional(r.Acousticness), optional(r.Liveness),
		}
	})
	if err != nil {
		return err
	}
	return writeTable(ctx, conn, normalizedTable, path)
}

// WriteNeighborCatalog persists the catalog entries in order. The position
// column keeps the file aligned with the neighbor index.
func (e *Engine) WriteNeighborCatalog(ctx context.Context, path string, entries []catalog.NeighborEntry) error {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire duckdb connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, fmt.Sprintf(`
		CREATE OR REPLACE TABLE %s (
			position BIGINT, track_id VARCHAR, track_name VARCHAR, artist_name VARCHAR,
			tempo DOUBLE, energy DOUBLE, valence DOUBLE, danceability DOUBLE,
			acousticness DOUBLE, liveness DOUBLE
		)`, catalogTable)); err != nil {
		return fmt.Errorf("failed to create catalog table: %w", err)
	}
	defer dropQuietly(ctx, conn, catalogTable)

	err = appendRows(conn, catalogTable, len(entries), func(i int) []driver.Value {
		ne := &entries[i]
		f := ne.Features
		return []driver.Value{
			int64(i), ne.TrackID, ne.TrackName, ne.ArtistName,
			f.Tempo, f.Energy, f.Valence, f.Danceability, f.Acousticness, f.Liveness,
		}
	})
	if err != nil {
		return err
	}
	return writeTable(ctx, conn, catalogTable, path)
}

// ReadNeighborCatalog loads entries written by WriteNeighborCatalog.
func (e *Engine) ReadNeighborCatalog(ctx context.Context, path string) ([]catalog.NeighborEntry, error) {
	rows, err := e.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT track_id, track_name, artist_name,
			tempo, energy, valence, danceability, acousticness, liveness
		FROM read_parquet(%s)
		ORDER BY position`, quoteLiteral(path)))
	if err != nil {
		return nil, fmt.Errorf("failed to read neighbor catalog: %w", err)
	}
	defer rows.Close()

	var out []catalog.NeighborEntry
	for rows.Next() {
		var ne catalog.NeighborEntry
		f := &ne.Features
		if err := rows.Scan(&ne.TrackID, &ne.TrackName, &ne.ArtistName,
			&f.Tempo, &f.Energy, &f.Valence, &f.Danceability, &f.Acousticness, &f.Liveness); err != nil {
			return nil, fmt.Errorf("failed to scan neighbor catalog: %w", err)
		}
		out = append(out, ne)
	}
	return out, rows.Err()
}

const rowColumns = `track_id, artist_id, track_name, artist_name,
	tempo, energy, valence, danceability, acousticness, liveness`

const requiredFeaturesPresent = `coalesce(isfinite(tempo) AND isfinite(energy) AND isfinite(valence) AND isfinite(danceability), false)`

// stageSource reads the CSV as text and applies identifier and numeric
// normalization. Nothing is filtered yet so the drop counts can be computed.
func stageSource(ctx context.Context, conn *sql.Conn, path string) error {
	query := fmt.Sprintf(`
		CREATE OR REPLACE TABLE %s AS
		SELECT
			%s AS track_id,
			%s AS artist_id,
			coalesce(track_name, '') AS track_name,
			coalesce(artist_name, '') AS artist_name,
			TRY_CAST(tempo AS DOUBLE) AS tempo,
			TRY_CAST(energy AS DOUBLE) AS energy,
			TRY_CAST(valence AS DOUBLE) AS valence,
			TRY_CAST(danceability AS DOUBLE) AS danceability,
			%s AS acousticness,
			%s AS liveness
		FROM read_csv(%s, header = true, all_varchar = true)`,
		stagedTable,
		catalog.IDExpr("track_uri", catalog.KindTrack),
		catalog.IDExpr("artist_uri", catalog.KindArtist),
		finiteOrNull("acousticness"),
		finiteOrNull("liveness"),
		quoteLiteral(path),
	)
	if _, err := conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to read source %s: %w", path, err)
	}
	return nil
}

func finiteOrNull(column string) string {
	return fmt.Sprintf("(CASE WHEN isfinite(TRY_CAST(%[1]s AS DOUBLE)) THEN TRY_CAST(%[1]s AS DOUBLE) END)", column)
}

func queryRows(ctx context.Context, conn *sql.Conn, query string) ([]catalog.Row, error) {
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	var out []catalog.Row
	for rows.Next() {
		var r catalog.Row
		var ac, lv sql.NullFloat64
		if err := rows.Scan(&r.TrackID, &r.ArtistID, &r.TrackName, &r.ArtistName,
			&r.Tempo, &r.Energy, &r.Valence, &r.Danceability, &ac, &lv); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if ac.Valid {
			r.Acousticness = catalog.Float(ac.Float64)
		}
		if lv.Valid {
			r.Liveness = catalog.Float(lv.Float64)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return out, nil
}

// appendRows bulk-loads n rows into table through the DuckDB appender.
func appendRows(conn *sql.Conn, table string, n int, row func(i int) []driver.Value) error {
	return conn.Raw(func(driverConn any) error {
		dc, ok := driverConn.(driver.Conn)
		if !ok {
			return errors.New("unexpected duckdb driver connection type")
		}
		appender, err := duckdb.NewAppenderFromConn(dc, "", table)
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		for i := 0; i < n; i++ {
			if err := appender.AppendRow(row(i)...); err != nil {
				appender.Close() //nolint:errcheck // already failing
				return fmt.Errorf("failed to append row %d: %w", i, err)
			}
		}
		if err := appender.Close(); err != nil {
			return fmt.Errorf("failed to flush appender: %w", err)
		}
		return nil
	})
}

// writeTable copies table to a Parquet file. The export lands in a temporary
// file first so a crash never leaves a truncated file that looks fresh.
func writeTable(ctx context.Context, conn *sql.Conn, table, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("%w: %w", catalog.ErrCacheWrite, err)
	}
	tmp := path + ".tmp"
	query := fmt.Sprintf(`
		COPY %s TO ? (
			FORMAT PARQUET,
			COMPRESSION 'ZSTD',
			ROW_GROUP_SIZE 100000
		)`, table)
	if _, err := conn.ExecContext(ctx, query, tmp); err != nil {
		os.Remove(tmp) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("%w: export %s: %w", catalog.ErrCacheWrite, table, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("%w: %w", catalog.ErrCacheWrite, err)
	}
	return nil
}

func dropQuietly(ctx context.Context, conn *sql.Conn, table string) {
	if _, err := conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		logging.Debug().Err(err).Str("table", table).Msg("Failed to drop staging table")
	}
}

func optional(f *float64) driver.Value {
	if f == nil {
		return nil
	}
	return *f
}

// quoteLiteral renders s as a SQL string literal. Table functions such as
// read_csv take their path as a constant, not a bound parameter.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
