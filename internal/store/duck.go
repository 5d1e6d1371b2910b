// Package store persists log collections to DuckDB, so selections can be
// handed to SQL tooling. The query engine itself knows nothing about
// storage; this is the boundary collaborator.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/Geun-Oh/ufwlog/internal/entry"
	"github.com/Geun-Oh/ufwlog/internal/logfile"
	"github.com/Geun-Oh/ufwlog/internal/query"
)

// Duck wraps a DuckDB handle. An empty path opens an in-memory database.
type Duck struct {
	db *sql.DB
}

// Open connects to the database file at path, creating it if needed.
func Open(path string) (*Duck, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb %s: %w", path, err)
	}
	return &Duck{db: db}, nil
}

// Close releases the database handle.
func (d *Duck) Close() error { return d.db.Close() }

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

const schema = `CREATE TABLE IF NOT EXISTS %s (
	ts TIMESTAMP,
	hostname VARCHAR,
	action VARCHAR,
	iface_in VARCHAR,
	iface_out VARCHAR,
	src VARCHAR,
	dst VARCHAR,
	proto VARCHAR,
	len BIGINT,
	spt BIGINT,
	dpt BIGINT,
	ttl BIGINT,
	extra VARCHAR,
	raw_line VARCHAR
)`

// Save appends every record of the collection into the named table,
// creating the table on first use. The whole collection goes in one
// transaction; any failure rolls it back.
func (d *Duck) Save(table string, f *logfile.File) error {
	if !tableName.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	if _, err := d.db.Exec(fmt.Sprintf(schema, table)); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO %s VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", table))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range f.Records() {
		extra, err := extraJSON(r)
		if err != nil {
			return err
		}
		_, err = stmt.Exec(
			timeOf(r, query.Timestamp),
			textOf(r, query.Hostname),
			textOf(r, query.Action),
			textOf(r, query.In),
			textOf(r, query.Out),
			textOf(r, query.Src),
			textOf(r, query.Dst),
			textOf(r, query.Proto),
			intOf(r, query.Len),
			intOf(r, query.Spt),
			intOf(r, query.Dpt),
			intOf(r, query.Ttl),
			extra,
			r.Raw(),
		)
		if err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func textOf(r *entry.Record, f query.Field) any {
	v, ok := r.Get(f.Name())
	if !ok {
		return nil
	}
	return v.Text()
}

func intOf(r *entry.Record, f query.Field) any {
	v, ok := r.Get(f.Name())
	if !ok {
		return nil
	}
	n, ok := v.Int()
	if !ok {
		return nil
	}
	return n
}

func timeOf(r *entry.Record, f query.Field) any {
	v, ok := r.Get(f.Name())
	if !ok {
		return nil
	}
	t, ok := v.Time()
	if !ok {
		return nil
	}
	return t
}

func extraJSON(r *entry.Record) (any, error) {
	names := r.ExtraNames()
	if len(names) == 0 {
		return nil, nil
	}
	bag := make(map[string]string, len(names))
	for _, k := range names {
		v, _ := r.Extra(k)
		bag[k] = v
	}
	b, err := json.Marshal(bag)
	if err != nil {
		return nil, fmt.Errorf("marshal extra bag: %w", err)
	}
	return string(b), nil
}
