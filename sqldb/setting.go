package sqldb

import (
	"database/sql"
)

type SettingDB struct {
	get    *sql.Stmt
	upsert *sql.Stmt
	remove *sql.Stmt
}

func NewSettingDB(db *sql.DB) *SettingDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS setting (
			name varchar(40) PRIMARY KEY,
			value bigint NOT NULL
		);`)

	var settingDB = &SettingDB{}
	settingDB.get = mustPrepare(db, "SELECT value FROM setting WHERE name = ? LIMIT 1")
	settingDB.upsert = mustPrepare(db, "REPLACE INTO setting (name, value) VALUES (?, ?)")
	settingDB.remove = mustPrepare(db, "DELETE FROM setting WHERE name = ?")
	return settingDB
}

func (db *SettingDB) GetSetting(name string) (int64, error) {
	var value int64
	err := db.get.QueryRow(name).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return value, err
}

func (db *SettingDB) SetSetting(name string, value int64) error {
	if value == 0 {
		_, err := db.remove.Exec(name)
		return err
	}
	_, err := db.upsert.Exec(name, value)
	return err
}
