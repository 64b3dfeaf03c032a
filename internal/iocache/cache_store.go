// Package iocache stores cache partitions in memory or in a SQL database.
package iocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for cache partitions.
const (
	partitionsTable = "sw_cache_partitions"
	entriesTable    = "sw_cache_entries"
)

// MaxMySQLKeyLength is the longest request key the MySQL schema can hold (VARCHAR(512)).
const MaxMySQLKeyLength = 512

// SQLStorage handles durable partition storage using various database backends.
type SQLStorage struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
	now     func() time.Time
}

var _ contract.CacheStorage = &SQLStorage{} // Compile-time check

// openDB opens and pings the database for backend.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, string, error) {
	var db *sql.DB
	var err error
	var driverName string

	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetCacheDBFilePath()
		}
		db, err = sql.Open(driverName, dbPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to initialize SQLite cache at %q: %w. Ensure the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		driverName = "mysql"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to connect to MySQL cache: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=mysecretpassword dbname=postgres
		driverName = "pgx"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to connect to PostgreSQL cache: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	default:
		return nil, "", fmt.Errorf("unsupported cache backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}
	return db, driverName, nil
}

// NewSQLStorage migrates the schema to the latest version and opens the storage.
func NewSQLStorage(backend schema.DatabaseBackend, connStr string) (*SQLStorage, error) {
	if _, err := MigrateCache(backend, connStr, -1); err != nil {
		return nil, fmt.Errorf("failed to prepare cache schema: %w", err)
	}

	db, _, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	return &SQLStorage{db: db, backend: backend, connStr: connStr, now: time.Now}, nil
}

// bind rewrites ? placeholders into the backend's parameter syntax.
func (s *SQLStorage) bind(query string) string {
	if s.backend != schema.PostgreSQLBackend {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// getInsertPartitionQuery returns the insert-if-absent query for partitions.
func (s *SQLStorage) getInsertPartitionQuery() string {
	switch s.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT IGNORE INTO %s (partition_name, created_at) VALUES (?, ?)`, partitionsTable)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (partition_name, created_at) VALUES ($1, $2) ON CONFLICT (partition_name) DO NOTHING`, partitionsTable)
	default: // SQLite
		return fmt.Sprintf(`INSERT OR IGNORE INTO %s (partition_name, created_at) VALUES (?, ?)`, partitionsTable)
	}
}

// getLockPartitionQuery returns a query that reads the partition row and holds it until the
// transaction ends, so a concurrent Delete cannot interleave with a write.
// SQLite runs on a single connection and needs no row lock.
func (s *SQLStorage) getLockPartitionQuery() string {
	query := fmt.Sprintf(`SELECT partition_name FROM %s WHERE partition_name = ?`, partitionsTable)
	switch s.backend {
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		query += " FOR UPDATE"
	}
	return s.bind(query)
}

// getUpsertEntryQuery returns the UPSERT query for entries.
func (s *SQLStorage) getUpsertEntryQuery() string {
	const cols = `partition_name, request_key, status, status_text, response_type, response_url, headers, body, stored_at`
	switch s.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE status = new.status, status_text = new.status_text, response_type = new.response_type,
			response_url = new.response_url, headers = new.headers, body = new.body, stored_at = new.stored_at`, entriesTable, cols)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (partition_name, request_key) DO UPDATE SET status = EXCLUDED.status, status_text = EXCLUDED.status_text,
			response_type = EXCLUDED.response_type, response_url = EXCLUDED.response_url, headers = EXCLUDED.headers,
			body = EXCLUDED.body, stored_at = EXCLUDED.stored_at`, entriesTable, cols)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, entriesTable, cols)
	}
}

// Open returns the named partition, creating it if absent.
func (s *SQLStorage) Open(ctx context.Context, name string) (contract.Cache, error) {
	if name == "" {
		return nil, errors.New("partition name cannot be empty")
	}
	if _, err := s.db.ExecContext(ctx, s.getInsertPartitionQuery(), name, s.now().UnixNano()); err != nil {
		return nil, fmt.Errorf("failed to open partition %s: %w", name, err)
	}
	return &sqlCache{storage: s, name: name}, nil
}

// Lookup returns the named partition without creating it.
func (s *SQLStorage) Lookup(ctx context.Context, name string) (contract.Cache, error) {
	ok, err := s.Has(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up partition %s: %w", name, err)
	}
	if !ok {
		return nil, contract.ErrNotFound
	}
	return &sqlCache{storage: s, name: name}, nil
}

// Has reports whether the named partition exists.
func (s *SQLStorage) Has(ctx context.Context, name string) (bool, error) {
	var n int
	query := s.bind(fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE partition_name = ?`, partitionsTable))
	if err := s.db.QueryRowContext(ctx, query, name).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Keys lists partition names in creation order.
func (s *SQLStorage) Keys(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT partition_name FROM %s ORDER BY created_at, partition_name`, partitionsTable)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes the named partition and its entries in one transaction.
func (s *SQLStorage) Delete(ctx context.Context, name string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	// Partition row first: writers lock it in the same order.
	res, err := tx.ExecContext(ctx, s.bind(fmt.Sprintf(`DELETE FROM %s WHERE partition_name = ?`, partitionsTable)), name)
	if err != nil {
		return false, fmt.Errorf("failed to delete partition %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, s.bind(fmt.Sprintf(`DELETE FROM %s WHERE partition_name = ?`, entriesTable)), name); err != nil {
		return false, fmt.Errorf("failed to delete entries of %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Match looks key up in every partition, oldest first.
func (s *SQLStorage) Match(ctx context.Context, key string) (*schema.Response, error) {
	query := s.bind(fmt.Sprintf(`SELECT e.status, e.status_text, e.response_type, e.response_url, e.headers, e.body
		FROM %s e JOIN %s p ON e.partition_name = p.partition_name
		WHERE e.request_key = ? ORDER BY p.created_at, p.partition_name LIMIT 1`, entriesTable, partitionsTable))
	return scanResponse(s.db.QueryRowContext(ctx, query, key))
}

// Entries describes every stored response.
func (s *SQLStorage) Entries(ctx context.Context) ([]schema.CacheEntryRecord, error) {
	query := fmt.Sprintf(`SELECT e.partition_name, e.request_key, e.status, e.response_type, LENGTH(e.body), e.stored_at
		FROM %s e JOIN %s p ON e.partition_name = p.partition_name
		ORDER BY p.created_at, p.partition_name, e.stored_at, e.request_key`, entriesTable, partitionsTable)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []schema.CacheEntryRecord
	for rows.Next() {
		var r schema.CacheEntryRecord
		var typ string
		var storedAt int64
		if err := rows.Scan(&r.Partition, &r.Key, &r.Status, &typ, &r.BodyBytes, &storedAt); err != nil {
			return nil, err
		}
		r.Type = schema.ResponseType(typ)
		r.StoredAt = time.Unix(0, storedAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetStatus returns status information about the storage.
func (s *SQLStorage) GetStatus(ctx context.Context) (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(s.backend),
		Connected: s.db != nil,
	}
	if s.db == nil {
		return status, nil
	}

	partitions, err := s.Keys(ctx)
	if err != nil {
		return status, fmt.Errorf("failed to list partitions: %w", err)
	}
	status.Partitions = partitions

	query := fmt.Sprintf(`SELECT COUNT(*), COALESCE(SUM(LENGTH(e.body)), 0), COALESCE(MAX(e.stored_at), 0), COALESCE(MIN(e.stored_at), 0)
		FROM %s e JOIN %s p ON e.partition_name = p.partition_name`, entriesTable, partitionsTable)
	var lastTs, oldestTs int64
	if err := s.db.QueryRowContext(ctx, query).Scan(&status.TotalEntries, &status.TotalBodyBytes, &lastTs, &oldestTs); err != nil {
		return status, fmt.Errorf("failed to get entry totals: %w", err)
	}
	if status.TotalEntries > 0 {
		status.LastEntryTime = time.Unix(0, lastTs)
		status.OldestEntryTime = time.Unix(0, oldestTs)
	}
	return status, nil
}

// DatabaseName returns the database named in a MySQL DSN, or "" for other backends.
func (s *SQLStorage) DatabaseName() string {
	if s.backend != schema.MySQLBackend {
		return ""
	}
	cfg, err := mysql.ParseDSN(s.connStr)
	if err != nil {
		return ""
	}
	return cfg.DBName
}

// Close closes the underlying DB connection.
func (s *SQLStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// sqlCache is one partition of a SQLStorage.
type sqlCache struct {
	storage *SQLStorage
	name    string
}

var _ contract.Cache = &sqlCache{} // Compile-time check

// Name returns the partition name.
func (c *sqlCache) Name() string { return c.name }

// Match returns the response stored for key in this partition.
func (c *sqlCache) Match(ctx context.Context, key string) (*schema.Response, error) {
	s := c.storage
	query := s.bind(fmt.Sprintf(`SELECT status, status_text, response_type, response_url, headers, body
		FROM %s WHERE partition_name = ? AND request_key = ?`, entriesTable))
	return scanResponse(s.db.QueryRowContext(ctx, query, c.name, key))
}

// Put stores resp under key.
func (c *sqlCache) Put(ctx context.Context, key string, resp *schema.Response) error {
	return c.PutAll(ctx, []contract.CacheEntry{{Key: key, Response: resp}})
}

// PutAll stores every entry in one transaction. A deleted partition rejects the write.
func (c *sqlCache) PutAll(ctx context.Context, entries []contract.CacheEntry) error {
	s := c.storage
	if s.backend == schema.MySQLBackend {
		for _, e := range entries {
			if n := utf8.RuneCountInString(e.Key); n > MaxMySQLKeyLength {
				return fmt.Errorf("request key of %d characters exceeds the MySQL limit of %d: %s", n, MaxMySQLKeyLength, e.Key)
			}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var name string
	if err := tx.QueryRowContext(ctx, s.getLockPartitionQuery(), c.name).Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("partition %s: %w", c.name, contract.ErrNotFound)
		}
		return fmt.Errorf("failed to check partition %s: %w", c.name, err)
	}

	stmt, err := tx.PrepareContext(ctx, s.getUpsertEntryQuery())
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	storedAt := s.now().UnixNano()
	for _, e := range entries {
		headers, err := json.Marshal(e.Response.Header)
		if err != nil {
			return fmt.Errorf("failed to encode headers of %s: %w", e.Key, err)
		}
		body := e.Response.Body
		if body == nil {
			body = []byte{}
		}
		if _, err := stmt.ExecContext(ctx, c.name, e.Key, e.Response.Status, e.Response.StatusText,
			string(e.Response.Type), e.Response.URL, string(headers), body, storedAt); err != nil {
			return fmt.Errorf("failed to store %s: %w", e.Key, err)
		}
	}
	return tx.Commit()
}

// Keys lists the stored request keys.
func (c *sqlCache) Keys(ctx context.Context) ([]string, error) {
	s := c.storage
	query := s.bind(fmt.Sprintf(`SELECT request_key FROM %s WHERE partition_name = ? ORDER BY stored_at, request_key`, entriesTable))
	rows, err := s.db.QueryContext(ctx, query, c.name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// scanResponse decodes one response row.
func scanResponse(row *sql.Row) (*schema.Response, error) {
	var resp schema.Response
	var typ, headers string
	if err := row.Scan(&resp.Status, &resp.StatusText, &typ, &resp.URL, &headers, &resp.Body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contract.ErrNotFound
		}
		return nil, err
	}
	resp.Type = schema.ResponseType(typ)
	resp.Header = http.Header{}
	if err := json.Unmarshal([]byte(headers), &resp.Header); err != nil {
		return nil, fmt.Errorf("failed to decode stored headers: %w", err)
	}
	if resp.Header == nil {
		resp.Header = http.Header{}
	}
	return &resp, nil
}
