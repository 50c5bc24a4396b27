package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/prepkit/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/prepkit/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
)

// DBFileName is the database file created inside the index directory.
const DBFileName = "index.db"

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// index_meta keys.
const (
	metaBuilt      = "built"
	metaModel      = "model"
	metaBuiltAt    = "built_at"
	metaDimensions = "dimensions"
)

// Ensure VectorIndex implements the interfaces.
var (
	_ driven.VectorIndex     = (*VectorIndex)(nil)
	_ driven.AtomicRebuilder = (*VectorIndex)(nil)
)

// VectorIndex is a SQLite-persisted vector index with an in-memory search snapshot.
type VectorIndex struct {
	db   *sql.DB
	path string

	// writeMu serialises writers so the snapshot mirrors commit order.
	writeMu  sync.Mutex
	snapshot *memory.VectorIndex
}

// Open opens or creates the index in dir and loads its contents.
// If dir is empty, defaults to ~/.prepkit/index.
func Open(dir string) (*VectorIndex, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".prepkit", "index")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dir, DBFileName)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	x := &VectorIndex{
		db:       db,
		path:     dbPath,
		snapshot: memory.NewVectorIndex(),
	}

	if err := x.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	if err := x.load(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("loading index: %w", err)
	}

	return x, nil
}

// Path returns the database file path.
func (x *VectorIndex) Path() string {
	return x.path
}

// Close closes the database connection.
func (x *VectorIndex) Close() error {
	return x.db.Close()
}

// Upsert writes entries, replacing existing entries with the same chunk ID.
// Replaced entries move to the end of the insertion order.
func (x *VectorIndex) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	x.writeMu.Lock()
	defer x.writeMu.Unlock()

	info, _ := x.snapshot.Info(ctx)
	dims := info.Dimensions
	if dims == 0 {
		dims = len(entries[0].Vector)
	}
	if err := checkDimensions(entries, dims); err != nil {
		return err
	}

	err := x.withTx(ctx, func(tx *sql.Tx) error {
		for i := range entries {
			if _, err := tx.ExecContext(ctx,
				"DELETE FROM entries WHERE chunk_id = ?", entries[i].Chunk.ID); err != nil {
				return fmt.Errorf("deleting entry: %w", err)
			}
		}
		if err := insertEntries(ctx, tx, entries); err != nil {
			return err
		}
		return writeMeta(ctx, tx, map[string]string{
			metaBuilt:      "1",
			metaDimensions: strconv.Itoa(dims),
			metaBuiltAt:    time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
	if err != nil {
		return err
	}

	return x.snapshot.Upsert(ctx, entries)
}

// Rebuild replaces every entry in one transaction.
func (x *VectorIndex) Rebuild(ctx context.Context, entries []domain.IndexEntry, model string) error {
	var dims int
	if len(entries) > 0 {
		dims = len(entries[0].Vector)
	}
	if err := checkDimensions(entries, dims); err != nil {
		return err
	}

	x.writeMu.Lock()
	defer x.writeMu.Unlock()

	err := x.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM entries"); err != nil {
			return fmt.Errorf("clearing entries: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM index_meta"); err != nil {
			return fmt.Errorf("clearing index meta: %w", err)
		}
		if err := insertEntries(ctx, tx, entries); err != nil {
			return err
		}
		return writeMeta(ctx, tx, map[string]string{
			metaBuilt:      "1",
			metaModel:      model,
			metaDimensions: strconv.Itoa(dims),
			metaBuiltAt:    time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
	if err != nil {
		return err
	}

	return x.snapshot.Rebuild(ctx, entries, model)
}

// Search returns the k entries most similar to query.
func (x *VectorIndex) Search(ctx context.Context, query []float32, k int) ([]domain.RetrievalResult, error) {
	return x.snapshot.Search(ctx, query, k)
}

// Clear removes every entry and marks the index as unbuilt.
func (x *VectorIndex) Clear(ctx context.Context) error {
	x.writeMu.Lock()
	defer x.writeMu.Unlock()

	err := x.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM entries"); err != nil {
			return fmt.Errorf("clearing entries: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM index_meta"); err != nil {
			return fmt.Errorf("clearing index meta: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return x.snapshot.Clear(ctx)
}

// Info describes the index contents.
func (x *VectorIndex) Info(ctx context.Context) (domain.IndexInfo, error) {
	return x.snapshot.Info(ctx)
}

// load reads the persisted entries into the snapshot.
func (x *VectorIndex) load(ctx context.Context) error {
	meta, err := x.readMeta(ctx)
	if err != nil {
		return err
	}

	info := domain.IndexInfo{
		Built: meta[metaBuilt] == "1",
		Model: meta[metaModel],
	}
	if d, err := strconv.Atoi(meta[metaDimensions]); err == nil {
		info.Dimensions = d
	}
	if ts, err := time.Parse(time.RFC3339Nano, meta[metaBuiltAt]); err == nil {
		info.BuiltAt = ts
	}

	rows, err := x.db.QueryContext(ctx, `
		SELECT chunk_id, document_id, source, content, position,
		       start_offset, end_offset, metadata, vector
		FROM entries ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.IndexEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating entries: %w", err)
	}

	return x.snapshot.Restore(entries, info)
}

func (x *VectorIndex) readMeta(ctx context.Context) (map[string]string, error) {
	rows, err := x.db.QueryContext(ctx, "SELECT key, value FROM index_meta")
	if err != nil {
		return nil, fmt.Errorf("querying index meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning index meta: %w", err)
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

func (x *VectorIndex) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// migrate runs all pending migrations.
func (x *VectorIndex) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := x.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := x.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_index.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := x.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := x.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

func insertEntries(ctx context.Context, tx *sql.Tx, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (chunk_id, document_id, source, content, position,
		                     start_offset, end_offset, metadata, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range entries {
		c := entries[i].Chunk
		metaJSON, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata for %s: %w", c.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			c.ID, c.DocumentID, c.Source, c.Content, c.Position,
			c.Start, c.End, string(metaJSON), float32SliceToBytes(entries[i].Vector),
		); err != nil {
			return fmt.Errorf("inserting entry %s: %w", c.ID, err)
		}
	}
	return nil
}

func writeMeta(ctx context.Context, tx *sql.Tx, meta map[string]string) error {
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO index_meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v); err != nil {
			return fmt.Errorf("writing index meta %s: %w", k, err)
		}
	}
	return nil
}

func checkDimensions(entries []domain.IndexEntry, dims int) error {
	for i := range entries {
		if n := len(entries[i].Vector); n == 0 || n != dims {
			return fmt.Errorf("%w: entry %q has %d dimensions, want %d",
				domain.ErrDimensionMismatch, entries[i].Chunk.ID, n, dims)
		}
	}
	return nil
}

// scanEntry scans a single entry row.
func scanEntry(rows *sql.Rows) (*domain.IndexEntry, error) {
	var (
		c            domain.Chunk
		metadataJSON sql.NullString
		vectorBlob   []byte
	)
	if err := rows.Scan(&c.ID, &c.DocumentID, &c.Source, &c.Content, &c.Position,
		&c.Start, &c.End, &metadataJSON, &vectorBlob); err != nil {
		return nil, fmt.Errorf("scanning entry: %w", err)
	}

	if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != jsonNull {
		if err := json.Unmarshal([]byte(metadataJSON.String), &c.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata for %s: %w", c.ID, err)
		}
	}

	return &domain.IndexEntry{Chunk: c, Vector: bytesToFloat32Slice(vectorBlob)}, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
