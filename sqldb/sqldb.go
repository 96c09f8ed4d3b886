// Package sqldb implements the core fact-source interfaces on database/sql.
// The SQL dialect is restricted to what sqlite3 and mysql have in common,
// except for "INSERT OR IGNORE"/"INSERT IGNORE", which is chosen by driver
// where needed.
package sqldb

import (
	"database/sql"
	"log"
)

func mustPrepare(db *sql.DB, query string) *sql.Stmt {
	stmt, err := db.Prepare(query)
	if err != nil {
		log.Fatalf("error preparing %s: %v", query, err)
	}
	return stmt
}
