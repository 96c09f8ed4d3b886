package sqldb

import (
	"database/sql"
)

type ConflictDB struct {
	get    *sql.Stmt
	getAll *sql.Stmt
	getOf  *sql.Stmt
	upsert *sql.Stmt
	remove *sql.Stmt
}

func NewConflictDB(db *sql.DB) *ConflictDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS conflict (
			paperId int(11) NOT NULL,
			contactId int(11) NOT NULL,
			conflict int(11) NOT NULL,
			PRIMARY KEY (paperId, contactId)
		);`)

	var conflictDB = &ConflictDB{}
	conflictDB.get = mustPrepare(db, "SELECT conflict FROM conflict WHERE paperId = ? AND contactId = ? LIMIT 1")
	conflictDB.getAll = mustPrepare(db, "SELECT contactId, conflict FROM conflict WHERE paperId = ?")
	conflictDB.getOf = mustPrepare(db, "SELECT paperId, conflict FROM conflict WHERE contactId = ?")
	conflictDB.upsert = mustPrepare(db, "REPLACE INTO conflict (paperId, contactId, conflict) VALUES (?, ?, ?)")
	conflictDB.remove = mustPrepare(db, "DELETE FROM conflict WHERE paperId = ? AND contactId = ?")
	return conflictDB
}

func (db *ConflictDB) GetConflict(paperID, contactID int) (int, error) {
	var conflict int
	err := db.get.QueryRow(paperID, contactID).Scan(&conflict)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return conflict, err
}

func (db *ConflictDB) GetConflicts(paperID int) (map[int]int, error) {

	var conflicts = map[int]int{}

	rows, err := db.getAll.Query(paperID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var contactID, conflict int
		if err = rows.Scan(&contactID, &conflict); err != nil {
			return nil, err
		}
		conflicts[contactID] = conflict
	}

	return conflicts, nil
}

func (db *ConflictDB) GetConflictsOf(contactID int) (map[int]int, error) {

	var conflicts = map[int]int{}

	rows, err := db.getOf.Query(contactID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var paperID, conflict int
		if err = rows.Scan(&paperID, &conflict); err != nil {
			return nil, err
		}
		conflicts[paperID] = conflict
	}

	return conflicts, nil
}

func (db *ConflictDB) SetConflict(paperID, contactID, conflict int) error {
	if conflict == 0 {
		_, err := db.remove.Exec(paperID, contactID)
		return err
	}
	_, err := db.upsert.Exec(paperID, contactID, conflict)
	return err
}
