package data

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// DB wraps *sql.DB with the configured driver name so repositories can write
// queries with "?" placeholders regardless of the backing store.
type DB struct {
	*sql.DB
	Driver string
}

// InitDB opens the audit store for the configured driver and runs migrations.
// Supported drivers: sqlite (default), postgres, mysql, sqlserver.
func InitDB(driver, dsn string) (*DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	d := &DB{DB: db, Driver: driver}
	if err := runMigrations(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Rebind converts "?" placeholders to the dialect the driver expects.
func (d *DB) Rebind(query string) string {
	switch d.Driver {
	case "postgres", "sqlserver":
		var b strings.Builder
		n := 0
		for _, r := range query {
			if r != '?' {
				b.WriteRune(r)
				continue
			}
			n++
			if d.Driver == "postgres" {
				b.WriteString("$" + strconv.Itoa(n))
			} else {
				b.WriteString("@p" + strconv.Itoa(n))
			}
		}
		return b.String()
	default:
		return query
	}
}

func (d *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return d.DB.Exec(d.Rebind(query), args...)
}

func (d *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return d.DB.Query(d.Rebind(query), args...)
}

func (d *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return d.DB.QueryRow(d.Rebind(query), args...)
}

// InsertReturningID runs an INSERT and reports the generated row id.
// lib/pq and go-mssqldb do not implement LastInsertId, so those dialects get
// a RETURNING / OUTPUT clause spliced in before the VALUES keyword.
func (d *DB) InsertReturningID(query string, args ...interface{}) (int64, error) {
	var id int64
	switch d.Driver {
	case "postgres":
		err := d.QueryRow(query+" RETURNING id", args...).Scan(&id)
		return id, err
	case "sqlserver":
		q := strings.Replace(query, "VALUES", "OUTPUT INSERTED.id VALUES", 1)
		err := d.QueryRow(q, args...).Scan(&id)
		return id, err
	default:
		res, err := d.Exec(query, args...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}
}

func runMigrations(d *DB) error {
	var idCol, timeType, timeDefault, textType string
	switch d.Driver {
	case "postgres":
		idCol = "BIGSERIAL PRIMARY KEY"
		timeType = "TIMESTAMPTZ"
		timeDefault = "NOW()"
		textType = "TEXT"
	case "mysql":
		idCol = "BIGINT PRIMARY KEY AUTO_INCREMENT"
		timeType = "DATETIME"
		timeDefault = "CURRENT_TIMESTAMP"
		textType = "TEXT"
	case "sqlserver":
		idCol = "BIGINT IDENTITY(1,1) PRIMARY KEY"
		timeType = "DATETIME2"
		timeDefault = "SYSUTCDATETIME()"
		textType = "NVARCHAR(MAX)"
	default: // sqlite
		idCol = "INTEGER PRIMARY KEY AUTOINCREMENT"
		timeType = "DATETIME"
		timeDefault = "CURRENT_TIMESTAMP"
		textType = "TEXT"
	}

	createTable := func(name, body string) string {
		if d.Driver == "sqlserver" {
			return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (%s)", name, name, body)
		}
		return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", name, body)
	}

	// username is VARCHAR(191) so the unique index fits MySQL's key limit
	stmts := []string{
		createTable("users", fmt.Sprintf(`
			id %s,
			username VARCHAR(191) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			twofa_digest VARCHAR(64) NOT NULL,
			is_admin SMALLINT NOT NULL DEFAULT 0,
			created_at %s NOT NULL DEFAULT %s
		`, idCol, timeType, timeDefault)),
		createTable("login_records", fmt.Sprintf(`
			id %s,
			username VARCHAR(191) NOT NULL,
			logged_in_at %s NOT NULL,
			logged_out_at %s,
			FOREIGN KEY(username) REFERENCES users(username)
		`, idCol, timeType, timeType)),
		createTable("query_records", fmt.Sprintf(`
			id %s,
			username VARCHAR(191) NOT NULL,
			query_text %s NOT NULL,
			result_text %s NOT NULL,
			created_at %s NOT NULL,
			FOREIGN KEY(username) REFERENCES users(username)
		`, idCol, textType, textType, timeType)),
	}

	for _, s := range stmts {
		if _, err := d.DB.Exec(s); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
