// Package catalog keeps a persistent SQLite index of library documents, so
// lookups do not have to probe every root.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"ldtools/dom"
)

const schema = `
CREATE TABLE IF NOT EXISTS roots (
	idx     INTEGER PRIMARY KEY,
	path    TEXT NOT NULL,
	archive INTEGER NOT NULL,
	built   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS documents (
	key     TEXT PRIMARY KEY,
	root    INTEGER NOT NULL REFERENCES roots(idx),
	path    TEXT NOT NULL,
	folder  INTEGER NOT NULL
);
`

// Catalog is safe for concurrent use, access to the connection is
// serialized.
type Catalog struct {
	mu   sync.Mutex
	conn *sqlite.Conn
	path string
}

// Open opens or creates catalog database.
func Open(path string) (*Catalog, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate)
	if err != nil {
		return nil, fmt.Errorf("unable to open catalog %s: %w", path, err)
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to prepare catalog %s: %w", path, err)
	}
	return &Catalog{conn: conn, path: path}, nil
}

func (c *Catalog) Path() string { return c.path }

// Build replaces catalog content with documents found in roots. Earlier
// roots take precedence. Returns number of indexed documents.
func (c *Catalog) Build(ctx context.Context, roots []Root, log *zap.Logger) (count int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return 0, errors.New("catalog is closed")
	}

	c.conn.SetInterrupt(ctx.Done())
	defer c.conn.SetInterrupt(nil)

	defer sqlitex.Save(c.conn)(&err)

	if err := sqlitex.ExecuteScript(c.conn, `DELETE FROM documents; DELETE FROM roots;`, nil); err != nil {
		return 0, fmt.Errorf("unable to clear catalog: %w", err)
	}

	stamp := time.Now().UTC().Format(time.RFC3339)
	for i, root := range roots {
		if err := sqlitex.Execute(c.conn, `INSERT INTO roots (idx, path, archive, built) VALUES (?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{i, root.Path, boolInt(root.Archive), stamp}}); err != nil {
			return 0, fmt.Errorf("unable to store root %s: %w", root, err)
		}

		added, shadowed := 0, 0
		err := Scan(ctx, root, func(key string, loc Location) error {
			if err := sqlitex.Execute(c.conn, `INSERT OR IGNORE INTO documents (key, root, path, folder) VALUES (?, ?, ?, ?)`,
				&sqlitex.ExecOptions{Args: []any{key, i, loc.Path, loc.Rank}}); err != nil {
				return err
			}
			if c.conn.Changes() > 0 {
				added++
			} else {
				shadowed++
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
		log.Debug("Library root indexed",
			zap.Stringer("root", root), zap.Int("documents", added), zap.Int("shadowed", shadowed))
		count += added
	}
	return count, nil
}

// Locate finds where document with the given name is stored.
func (c *Catalog) Locate(name string) (loc Location, found bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return Location{}, false, errors.New("catalog is closed")
	}

	err = sqlitex.Execute(c.conn,
		`SELECT r.path, r.archive, d.path, d.folder FROM documents d JOIN roots r ON r.idx = d.root WHERE d.key = ?`,
		&sqlitex.ExecOptions{
			Args: []any{dom.NameKey(name)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				loc = Location{
					Root: Root{Path: stmt.ColumnText(0), Archive: stmt.ColumnInt(1) != 0},
					Path: stmt.ColumnText(2),
					Rank: stmt.ColumnInt(3),
				}
				found = true
				return nil
			},
		})
	if err != nil {
		return Location{}, false, fmt.Errorf("unable to locate %s: %w", name, err)
	}
	return loc, found, nil
}

// Count returns number of indexed documents.
func (c *Catalog) Count() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return 0, errors.New("catalog is closed")
	}
	n, err := sqlitex.ResultInt(c.conn.Prep(`SELECT count(*) FROM documents`))
	if err != nil {
		return 0, fmt.Errorf("unable to count documents: %w", err)
	}
	return n, nil
}

// Roots returns roots catalog was built from, in precedence order.
func (c *Catalog) Roots() ([]Root, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, errors.New("catalog is closed")
	}
	var roots []Root
	err := sqlitex.Execute(c.conn, `SELECT path, archive FROM roots ORDER BY idx`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			roots = append(roots, Root{Path: stmt.ColumnText(0), Archive: stmt.ColumnInt(1) != 0})
			return nil
		}})
	if err != nil {
		return nil, fmt.Errorf("unable to read roots: %w", err)
	}
	return roots, nil
}

func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
