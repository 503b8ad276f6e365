package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/bookbot/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/bookbot/internal/core/domain"
	"github.com/custodia-labs/bookbot/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CartStore = (*Store)(nil)

// dbFile is the database file name inside the data directory.
const dbFile = "carts.db"

// Store is a SQLite-backed cart store.
type Store struct {
	db   *sql.DB
	path string

	// mu serialises Update calls within the process.
	mu sync.Mutex
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.bookbot/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".bookbot", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the session's cart in insertion order.
func (s *Store) Get(ctx context.Context, session string) (domain.Cart, error) {
	return loadCart(ctx, s.db, session)
}

// Update runs fn inside a transaction and rewrites the session's rows.
func (s *Store) Update(ctx context.Context, session string, fn func(domain.Cart) (domain.Cart, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	cart, err := loadCart(ctx, tx, session)
	if err != nil {
		return err
	}

	updated, err := fn(cart)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE session = ?`, session); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}

	for pos, item := range updated {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cart_items (session, position, book_id, title, author, genre, price, stock)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, session, pos, item.BookID, item.Title, item.Author, item.Genre, item.Price, item.Stock)
		if err != nil {
			return fmt.Errorf("saving cart item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cart: %w", err)
	}
	return nil
}

// Sessions lists sessions with at least one item.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT session FROM cart_items ORDER BY session`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, id)
	}
	return sessions, rows.Err()
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadCart(ctx context.Context, q querier, session string) (domain.Cart, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT book_id, title, author, genre, price, stock
		FROM cart_items WHERE session = ? ORDER BY position
	`, session)
	if err != nil {
		return nil, fmt.Errorf("loading cart: %w", err)
	}
	defer rows.Close()

	cart := domain.Cart{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.BookID, &item.Title, &item.Author, &item.Genre, &item.Price, &item.Stock); err != nil {
			return nil, fmt.Errorf("scanning cart item: %w", err)
		}
		cart = append(cart, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cart: %w", err)
	}
	return cart, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_carts.up.sql" -> 1
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
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
