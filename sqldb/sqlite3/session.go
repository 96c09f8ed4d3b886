// Package sqlite3 contains the sqlite3-specific bits of the sql layer.
package sqlite3

import (
	"database/sql"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

const InsertIgnore = "INSERT OR IGNORE"

func NewSessionStore(db *sql.DB) scs.Store {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);

		CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)

	return sqlite3store.New(db)
}
