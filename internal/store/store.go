// Package store implements C5: the persistent index (spec §4.7). It is
// grounded on Yakitrak-obsidian-cli's pkg/embeddings/sqlite/store.go —
// the same Open/EnsureSchema/upsert-via-ON-CONFLICT shape, generalized
// from note embeddings to FileEntry rows, and extended with an FTS5
// virtual table for content search and a monotonic schema_version
// migration guard (spec §4.7's "fail with IndexCorrupted" clause).
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/filesieve/filesieve/internal/fserr"
	"github.com/filesieve/filesieve/internal/model"
)

// currentSchemaVersion is bumped whenever the schema below changes in a
// way that requires a migration step.
const currentSchemaVersion = 1

// Store is a pooled connection to the embedded SQLite index.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the index at path, applying pragmas and
// running schema migrations. poolSize bounds concurrent connections
// (spec §6 Configuration db_pool_size); cacheKiB sizes SQLite's page
// cache (spec §4.7's "large cache" durability hint).
func Open(path string, poolSize int, cacheKiB int) (*Store, error) {
	if path == "" {
		return nil, fserr.New(fserr.Configuration, "index_path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fserr.Wrap(fserr.Database, "open index", err)
	}
	if poolSize <= 0 {
		poolSize = 10
	}
	db.SetMaxOpenConns(poolSize)

	s := &Store{db: db}
	if err := s.applyPragmas(cacheKiB); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) applyPragmas(cacheKiB int) error {
	if cacheKiB <= 0 {
		cacheKiB = 8192
	}
	stmts := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
		fmt.Sprintf("PRAGMA cache_size = -%d;", cacheKiB),
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fserr.Wrap(fserr.Database, "apply pragma: "+stmt, err)
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fserr.Wrap(fserr.Database, "close index", err)
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS schema_version (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		version INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS files (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		path          TEXT NOT NULL UNIQUE,
		name          TEXT NOT NULL,
		extension     TEXT NOT NULL DEFAULT '',
		parent_path   TEXT NOT NULL DEFAULT '',
		size          INTEGER NOT NULL DEFAULT 0,
		created_at    INTEGER,
		modified_at   INTEGER,
		accessed_at   INTEGER,
		is_directory  INTEGER NOT NULL DEFAULT 0,
		is_hidden     INTEGER NOT NULL DEFAULT 0,
		is_symlink    INTEGER NOT NULL DEFAULT 0,
		mime_type     TEXT NOT NULL DEFAULT '',
		file_hash     TEXT NOT NULL DEFAULT '',
		content_preview TEXT NOT NULL DEFAULT '',
		indexed_at    INTEGER NOT NULL,
		last_verified INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_files_name ON files(name COLLATE NOCASE);`,
	`CREATE INDEX IF NOT EXISTS idx_files_extension ON files(extension COLLATE NOCASE);`,
	`CREATE INDEX IF NOT EXISTS idx_files_parent_path ON files(parent_path);`,
	`CREATE INDEX IF NOT EXISTS idx_files_modified_at ON files(modified_at);`,
	`CREATE INDEX IF NOT EXISTS idx_files_size ON files(size);`,
	`CREATE INDEX IF NOT EXISTS idx_files_is_directory ON files(is_directory);`,
	`CREATE INDEX IF NOT EXISTS idx_files_file_hash ON files(file_hash);`,
	`CREATE TABLE IF NOT EXISTS file_contents (
		file_id    INTEGER PRIMARY KEY REFERENCES files(id) ON DELETE CASCADE,
		preview    TEXT NOT NULL DEFAULT '',
		word_count INTEGER NOT NULL DEFAULT 0,
		line_count INTEGER NOT NULL DEFAULT 0,
		encoding   TEXT NOT NULL DEFAULT ''
	);`,
	// files_fts is an external-content table: files itself stores every
	// indexed value, and the triggers below keep the FTS index in sync.
	// A contentless table would need the same 'delete'-command dance on
	// every write path (insert/update/delete); mirroring files avoids
	// hand-maintaining that invariant at every call site.
	`CREATE VIRTUAL TABLE IF NOT EXISTS files_fts USING fts5(
		name, path, content_preview, content='files', content_rowid='id', tokenize='porter unicode61'
	);`,
	`CREATE TRIGGER IF NOT EXISTS files_ai AFTER INSERT ON files BEGIN
		INSERT INTO files_fts(rowid, name, path, content_preview)
		VALUES (new.id, new.name, new.path, new.content_preview);
	END;`,
	`CREATE TRIGGER IF NOT EXISTS files_ad AFTER DELETE ON files BEGIN
		INSERT INTO files_fts(files_fts, rowid, name, path, content_preview)
		VALUES ('delete', old.id, old.name, old.path, old.content_preview);
	END;`,
	`CREATE TRIGGER IF NOT EXISTS files_au AFTER UPDATE ON files BEGIN
		INSERT INTO files_fts(files_fts, rowid, name, path, content_preview)
		VALUES ('delete', old.id, old.name, old.path, old.content_preview);
		INSERT INTO files_fts(rowid, name, path, content_preview)
		VALUES (new.id, new.name, new.path, new.content_preview);
	END;`,
	`CREATE TABLE IF NOT EXISTS exclusion_rules (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		pattern    TEXT NOT NULL,
		kind       TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		UNIQUE(pattern, kind)
	);`,
	`CREATE TABLE IF NOT EXISTS access_log (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		file_id     INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
		accessed_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_access_log_file_id ON access_log(file_id);`,
	`CREATE TABLE IF NOT EXISTS search_history (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		query_line TEXT NOT NULL,
		run_at     INTEGER NOT NULL,
		result_count INTEGER NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS index_metadata (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`,
}

// migrate applies schemaStatements idempotently, then checks the
// persisted schema_version: missing/equal is fine, greater fails with
// IndexCorrupted (spec §4.7), lesser would run ordered migration steps
// (none exist yet beyond the baseline).
func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fserr.Wrap(fserr.Database, "begin migration", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range schemaStatements {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fserr.Wrap(fserr.Database, "apply schema statement", err)
		}
	}

	var persisted int
	row := tx.QueryRowContext(ctx, `SELECT version FROM schema_version WHERE id = 1`)
	scanErr := row.Scan(&persisted)
	switch {
	case errors.Is(scanErr, sql.ErrNoRows):
		if _, err = tx.ExecContext(ctx, `INSERT INTO schema_version (id, version) VALUES (1, ?)`, currentSchemaVersion); err != nil {
			return fserr.Wrap(fserr.Database, "initialize schema_version", err)
		}
	case scanErr != nil:
		err = scanErr
		return fserr.Wrap(fserr.Database, "read schema_version", err)
	case persisted > currentSchemaVersion:
		err = fserr.Newf(fserr.IndexCorrupted, "index schema version %d is newer than supported version %d", persisted, currentSchemaVersion)
		return err
	case persisted < currentSchemaVersion:
		if _, err = tx.ExecContext(ctx, `UPDATE schema_version SET version = ? WHERE id = 1`, currentSchemaVersion); err != nil {
			return fserr.Wrap(fserr.Database, "update schema_version", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fserr.Wrap(fserr.Database, "commit migration", err)
	}
	return nil
}

// UpsertBatch inserts or updates entries atomically: all rows commit or
// none do (spec §4.7/§5 "insert_files_batch is atomic").
func (s *Store) UpsertBatch(ctx context.Context, entries []model.FileEntry) ([]int64, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fserr.Wrap(fserr.Database, "begin batch", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ids := make([]int64, len(entries))
	for i, e := range entries {
		var id int64
		id, err = upsertOne(ctx, tx, e)
		if err != nil {
			return nil, fserr.Wrap(fserr.Database, "upsert file: "+e.Path, err)
		}
		ids[i] = id
		// files_ai/files_au triggers keep files_fts in sync with this
		// upsert; no separate write against the FTS table is needed.
	}

	if err = tx.Commit(); err != nil {
		return nil, fserr.Wrap(fserr.Database, "commit batch", err)
	}
	return ids, nil
}

func upsertOne(ctx context.Context, tx *sql.Tx, e model.FileEntry) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO files (path, name, extension, parent_path, size, created_at, modified_at, accessed_at,
			is_directory, is_hidden, is_symlink, mime_type, file_hash, indexed_at, last_verified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name = excluded.name,
			extension = excluded.extension,
			parent_path = excluded.parent_path,
			size = excluded.size,
			created_at = excluded.created_at,
			modified_at = excluded.modified_at,
			accessed_at = excluded.accessed_at,
			is_directory = excluded.is_directory,
			is_hidden = excluded.is_hidden,
			is_symlink = excluded.is_symlink,
			mime_type = excluded.mime_type,
			file_hash = excluded.file_hash,
			indexed_at = excluded.indexed_at,
			last_verified = excluded.last_verified
	`,
		e.Path, e.Name, e.Extension, e.ParentPath, e.Size,
		toUnix(e.CreatedAt), toUnix(e.ModifiedAt), toUnix(e.AccessedAt),
		boolToInt(e.IsDirectory), boolToInt(e.IsHidden), boolToInt(e.IsSymlink),
		e.MimeType, e.FileHash, e.IndexedAt.Unix(), e.LastVerified.Unix(),
	)
	if err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err == nil && id > 0 {
		return id, nil
	}

	var existing int64
	row := tx.QueryRowContext(ctx, `SELECT id FROM files WHERE path = ?`, e.Path)
	if scanErr := row.Scan(&existing); scanErr != nil {
		return 0, scanErr
	}
	return existing, nil
}

// UpsertContent stores a content preview for fileID (spec §4.7
// file_contents: 1:1, upsert on conflict). The same preview is mirrored
// onto files.content_preview, whose files_au trigger keeps files_fts in
// sync — no direct write against the FTS table is needed or valid here.
func (s *Store) UpsertContent(ctx context.Context, fileID int64, preview model.ContentPreview) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO file_contents (file_id, preview, word_count, line_count, encoding)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(file_id) DO UPDATE SET
			preview = excluded.preview,
			word_count = excluded.word_count,
			line_count = excluded.line_count,
			encoding = excluded.encoding
	`, fileID, preview.Preview, preview.WordCount, preview.LineCount, preview.Encoding)
	if err != nil {
		return fserr.Wrap(fserr.Database, "upsert content", err)
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE files SET content_preview = ? WHERE id = ?`, preview.Preview, fileID); err != nil {
		return fserr.Wrap(fserr.Database, "index fts content", err)
	}
	return nil
}

// FindByPath looks up a single entry by its unique path (spec: O(log N)
// via the UNIQUE index).
func (s *Store) FindByPath(ctx context.Context, path string) (model.FileEntry, bool, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE path = ?`, path)
	return scanOne(row)
}

// FindByID looks up a single entry by its row id.
func (s *Store) FindByID(ctx context.Context, id int64) (model.FileEntry, bool, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	return scanOne(row)
}

// SearchByName performs a case-insensitive substring search on name.
func (s *Store) SearchByName(ctx context.Context, substr string, limit int) ([]model.FileEntry, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		WHERE name LIKE ? ESCAPE '\' COLLATE NOCASE
		ORDER BY id LIMIT ?
	`, likePattern(substr), limit)
	if err != nil {
		return nil, fserr.Wrap(fserr.Database, "search by name", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

// SearchByExtension finds entries with the given lowercased extension.
func (s *Store) SearchByExtension(ctx context.Context, ext string, limit int) ([]model.FileEntry, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		WHERE extension = ? COLLATE NOCASE
		ORDER BY id LIMIT ?
	`, strings.ToLower(ext), limit)
	if err != nil {
		return nil, fserr.Wrap(fserr.Database, "search by extension", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

// SearchContent returns file ids whose indexed content matches pattern
// via the FTS5 virtual table.
func (s *Store) SearchContent(ctx context.Context, pattern string, limit int) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rowid FROM files_fts WHERE files_fts MATCH ? LIMIT ?
	`, pattern, limit)
	if err != nil {
		return nil, fserr.Wrap(fserr.Database, "search content", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fserr.Wrap(fserr.Database, "scan content match", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetAllFiles paginates the full file set with a stable (id-ordered)
// cursor.
func (s *Store) GetAllFiles(ctx context.Context, limit, offset int) ([]model.FileEntry, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		ORDER BY id LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fserr.Wrap(fserr.Database, "get all files", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

// GetFilesUnderPath paginates entries whose path is at or below prefix,
// used by the incremental indexer to compute add/update/remove deltas
// scoped to a single root.
func (s *Store) GetFilesUnderPath(ctx context.Context, prefix string, limit, offset int) ([]model.FileEntry, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		WHERE path = ? OR path LIKE ? ESCAPE '\'
		ORDER BY id LIMIT ? OFFSET ?
	`, prefix, likePrefix(prefix), limit, offset)
	if err != nil {
		return nil, fserr.Wrap(fserr.Database, "get files under path", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

// DeleteByPath removes a single entry (and its cascaded content/access
// rows) by path. The files_ad trigger removes the matching files_fts
// entry as part of the same DELETE; files_fts is never written directly.
func (s *Store) DeleteByPath(ctx context.Context, path string) error {
	var id int64
	row := s.db.QueryRowContext(ctx, `SELECT id FROM files WHERE path = ?`, path)
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fserr.Wrap(fserr.Database, "lookup for delete", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id); err != nil {
		return fserr.Wrap(fserr.Database, "delete file", err)
	}
	return nil
}

// ClearAll empties access_log, file_contents, files and search_history
// (spec §4.7); schema_version, index_metadata and exclusion_rules keep
// their rows.
// files_fts is not listed here: it is an external-content table mirroring
// files, so the files_ad trigger empties it as a side effect of the
// DELETE FROM files below; a direct DELETE against files_fts is invalid.
func (s *Store) ClearAll(ctx context.Context) error {
	stmts := []string{
		`DELETE FROM access_log;`,
		`DELETE FROM file_contents;`,
		`DELETE FROM files;`,
		`DELETE FROM search_history;`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fserr.Wrap(fserr.Database, "clear all: "+stmt, err)
		}
	}
	return nil
}

// Vacuum compacts the database file.
func (s *Store) Vacuum(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `VACUUM;`); err != nil {
		return fserr.Wrap(fserr.Database, "vacuum", err)
	}
	return nil
}

// GetStats aggregates index counts and on-disk size (spec §4.7
// get_stats).
func (s *Store) GetStats(ctx context.Context) (model.IndexStats, error) {
	var stats model.IndexStats
	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE is_directory = 0),
			COUNT(*) FILTER (WHERE is_directory = 1),
			COALESCE(SUM(size), 0),
			COUNT(DISTINCT extension) FILTER (WHERE extension != '')
		FROM files
	`)
	if err := row.Scan(&stats.TotalFiles, &stats.TotalDirectories, &stats.TotalSizeBytes, &stats.DistinctExtensions); err != nil {
		return model.IndexStats{}, fserr.Wrap(fserr.Database, "get stats", err)
	}

	var pageCount, pageSize int64
	if err := s.db.QueryRowContext(ctx, `PRAGMA page_count;`).Scan(&pageCount); err == nil {
		if err := s.db.QueryRowContext(ctx, `PRAGMA page_size;`).Scan(&pageSize); err == nil {
			stats.SizeOnDiskBytes = uint64(pageCount * pageSize)
		}
	}
	return stats, nil
}

// RecordAccess appends an access_log row (spec §6 enable_access_tracking).
func (s *Store) RecordAccess(ctx context.Context, fileID int64) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO access_log (file_id, accessed_at) VALUES (?, ?)`, fileID, time.Now().Unix())
	if err != nil {
		return fserr.Wrap(fserr.Database, "record access", err)
	}
	return nil
}

// RecordSearchHistory logs an executed query line for housekeeping.
func (s *Store) RecordSearchHistory(ctx context.Context, queryLine string, resultCount int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_history (query_line, run_at, result_count) VALUES (?, ?, ?)
	`, queryLine, time.Now().Unix(), resultCount)
	if err != nil {
		return fserr.Wrap(fserr.Database, "record search history", err)
	}
	return nil
}

// TrimAccessLog deletes all but the most recent keep rows, addressing
// the open question of access_log's unbounded growth (spec §9) as an
// explicit housekeeping operation rather than automatic behavior.
func (s *Store) TrimAccessLog(ctx context.Context, keep int) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM access_log WHERE id NOT IN (
			SELECT id FROM access_log ORDER BY id DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fserr.Wrap(fserr.Database, "trim access log", err)
	}
	return nil
}

// AddExclusionRule persists an exclusion rule so it survives restarts.
func (s *Store) AddExclusionRule(ctx context.Context, rule model.ExclusionRule) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exclusion_rules (pattern, kind, created_at) VALUES (?, ?, ?)
		ON CONFLICT(pattern, kind) DO NOTHING
	`, rule.Pattern, string(rule.Kind), rule.CreatedAt.Unix())
	if err != nil {
		return fserr.Wrap(fserr.Database, "add exclusion rule", err)
	}
	return nil
}

// ListExclusionRules returns all persisted exclusion rules.
func (s *Store) ListExclusionRules(ctx context.Context) ([]model.ExclusionRule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT pattern, kind, created_at FROM exclusion_rules ORDER BY id`)
	if err != nil {
		return nil, fserr.Wrap(fserr.Database, "list exclusion rules", err)
	}
	defer rows.Close()

	var out []model.ExclusionRule
	for rows.Next() {
		var pattern, kind string
		var createdAt int64
		if err := rows.Scan(&pattern, &kind, &createdAt); err != nil {
			return nil, fserr.Wrap(fserr.Database, "scan exclusion rule", err)
		}
		out = append(out, model.ExclusionRule{
			Pattern:   pattern,
			Kind:      model.ExclusionRuleKind(kind),
			CreatedAt: time.Unix(createdAt, 0),
		})
	}
	return out, rows.Err()
}

const selectColumns = `
	SELECT id, path, name, extension, parent_path, size, created_at, modified_at, accessed_at,
		is_directory, is_hidden, is_symlink, mime_type, file_hash, indexed_at, last_verified
	FROM files
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOne(row *sql.Row) (model.FileEntry, bool, error) {
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.FileEntry{}, false, nil
		}
		return model.FileEntry{}, false, fserr.Wrap(fserr.Database, "scan entry", err)
	}
	return e, true, nil
}

func scanAll(rows *sql.Rows) ([]model.FileEntry, error) {
	var out []model.FileEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fserr.Wrap(fserr.Database, "scan entry", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEntry(r rowScanner) (model.FileEntry, error) {
	var e model.FileEntry
	var createdAt, modifiedAt, accessedAt sql.NullInt64
	var isDir, isHidden, isSymlink int
	var indexedAt, lastVerified int64

	err := r.Scan(&e.ID, &e.Path, &e.Name, &e.Extension, &e.ParentPath, &e.Size,
		&createdAt, &modifiedAt, &accessedAt,
		&isDir, &isHidden, &isSymlink,
		&e.MimeType, &e.FileHash, &indexedAt, &lastVerified)
	if err != nil {
		return model.FileEntry{}, err
	}

	e.CreatedAt = fromUnix(createdAt)
	e.ModifiedAt = fromUnix(modifiedAt)
	e.AccessedAt = fromUnix(accessedAt)
	e.IsDirectory = isDir != 0
	e.IsHidden = isHidden != 0
	e.IsSymlink = isSymlink != 0
	e.IndexedAt = time.Unix(indexedAt, 0)
	e.LastVerified = time.Unix(lastVerified, 0)
	return e, nil
}

func toUnix(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func fromUnix(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.Unix(n.Int64, 0)
	return &t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// likePattern escapes %, _, and \ for a contains-style LIKE search.
func likePattern(s string) string {
	return "%" + escapeLike(s) + "%"
}

// likePrefix builds a descendant-path LIKE pattern ("prefix/%").
func likePrefix(prefix string) string {
	return escapeLike(prefix) + "/%"
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
