package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cmdapi/model"

	_ "github.com/mattn/go-sqlite3"
)

// DB is a Store backed by SQLite.
type DB struct {
	conn *sql.DB
}

// Open opens (creating if needed) the SQLite database at path. The special
// path ":memory:" gives a private, non-durable database.
func Open(path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection serialises every statement, so readers never see a
	// half-applied write and ":memory:" stays a single database.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate sqlite db: %w", err)
	}

	return db, nil
}

func (d *DB) migrate() error {
	_, err := d.conn.Exec(`
		CREATE TABLE IF NOT EXISTS commands (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			how_to TEXT NOT NULL DEFAULT '',
			platform TEXT NOT NULL DEFAULT '',
			command_line TEXT NOT NULL DEFAULT ''
		);
	`)
	return err
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) List() ([]model.Command, error) {
	rows, err := d.conn.Query(`
		SELECT id, how_to, platform, command_line
		FROM commands
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list commands: %w", err)
	}
	defer rows.Close()

	commands := []model.Command{}
	for rows.Next() {
		var c model.Command
		if err := rows.Scan(&c.ID, &c.HowTo, &c.Platform, &c.CommandLine); err != nil {
			return nil, fmt.Errorf("scan command: %w", err)
		}
		commands = append(commands, c)
	}
	return commands, rows.Err()
}

func (d *DB) Get(id int64) (model.Command, bool, error) {
	return get(d.conn, id)
}

func (d *DB) Create(c model.Command) (model.Command, error) {
	result, err := d.conn.Exec(
		`INSERT INTO commands (how_to, platform, command_line) VALUES (?, ?, ?)`,
		c.HowTo, c.Platform, c.CommandLine,
	)
	if err != nil {
		return model.Command{}, fmt.Errorf("insert command: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return model.Command{}, fmt.Errorf("insert command: %w", err)
	}
	c.ID = id
	return c, nil
}

func (d *DB) Update(id int64, c model.Command) (bool, error) {
	result, err := d.conn.Exec(
		`UPDATE commands SET how_to = ?, platform = ?, command_line = ? WHERE id = ?`,
		c.HowTo, c.Platform, c.CommandLine, id,
	)
	if err != nil {
		return false, fmt.Errorf("update command %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update command %d: %w", id, err)
	}
	return n > 0, nil
}

func (d *DB) Remove(id int64) (model.Command, bool, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return model.Command{}, false, fmt.Errorf("remove command %d: %w", id, err)
	}
	defer tx.Rollback()

	prior, ok, err := get(tx, id)
	if err != nil || !ok {
		return model.Command{}, false, err
	}
	if _, err := tx.Exec(`DELETE FROM commands WHERE id = ?`, id); err != nil {
		return model.Command{}, false, fmt.Errorf("remove command %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return model.Command{}, false, fmt.Errorf("remove command %d: %w", id, err)
	}
	return prior, true, nil
}

func (d *DB) Count() (int, error) {
	var count int
	if err := d.conn.QueryRow(`SELECT COUNT(*) FROM commands`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count commands: %w", err)
	}
	return count, nil
}

type queryRower interface {
	QueryRow(query string, args ...any) *sql.Row
}

func get(q queryRower, id int64) (model.Command, bool, error) {
	var c model.Command
	err := q.QueryRow(
		`SELECT id, how_to, platform, command_line FROM commands WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.HowTo, &c.Platform, &c.CommandLine)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Command{}, false, nil
	}
	if err != nil {
		return model.Command{}, false, fmt.Errorf("get command %d: %w", id, err)
	}
	return c, true, nil
}
