package sqldb

import (
	"database/sql"

	"github.com/wansing/confer/auth"
)

type CapabilityDB struct {
	getAll *sql.Stmt
	grant  *sql.Stmt
	revoke *sql.Stmt
}

func NewCapabilityDB(db *sql.DB) *CapabilityDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS capability (
			contactId int(11) NOT NULL,
			name varchar(40) NOT NULL,
			value int(11) NOT NULL,
			PRIMARY KEY (contactId, name)
		);`)

	var capabilityDB = &CapabilityDB{}
	capabilityDB.getAll = mustPrepare(db, "SELECT name, value FROM capability WHERE contactId = ?")
	capabilityDB.grant = mustPrepare(db, "REPLACE INTO capability (contactId, name, value) VALUES (?, ?, ?)")
	capabilityDB.revoke = mustPrepare(db, "DELETE FROM capability WHERE contactId = ? AND name = ?")
	return capabilityDB
}

func (db *CapabilityDB) GetCapabilities(contactID int) (auth.Capabilities, error) {

	var caps = auth.Capabilities{}

	rows, err := db.getAll.Query(contactID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var value int
		if err = rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		caps[name] = value
	}

	return caps, nil
}

func (db *CapabilityDB) GrantCapability(contactID int, key string, value int) error {
	_, err := db.grant.Exec(contactID, key, value)
	return err
}

func (db *CapabilityDB) RevokeCapability(contactID int, key string) error {
	_, err := db.revoke.Exec(contactID, key)
	return err
}
