// Package mysql contains the mysql-specific bits of the sql layer.
package mysql

import (
	"database/sql"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/v2"
)

const InsertIgnore = "INSERT IGNORE"

func NewSessionStore(db *sql.DB) scs.Store {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			token CHAR(43) PRIMARY KEY,
			data BLOB NOT NULL,
			expiry TIMESTAMP(6) NOT NULL,
			INDEX sessions_expiry_idx (expiry)
		);`)

	return mysqlstore.New(db)
}
