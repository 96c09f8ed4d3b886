package sqldb

import (
	"database/sql"

	"github.com/wansing/confer/core"
)

// TrackDB stores track rules with an explicit position because the order of
// the tracks decides which one a paper falls into. All rules of a track
// share one position.
type TrackDB struct {
	getAll      *sql.Stmt
	getPosition *sql.Stmt
	maxPosition *sql.Stmt
	insert      *sql.Stmt
	remove      *sql.Stmt
}

func NewTrackDB(db *sql.DB) *TrackDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS trackRule (
			position int(11) NOT NULL,
			tag varchar(80) NOT NULL,
			perm varchar(20) NOT NULL,
			permValue varchar(80) NOT NULL,
			PRIMARY KEY (tag, perm)
		);`)

	var trackDB = &TrackDB{}
	trackDB.getAll = mustPrepare(db, "SELECT tag, perm, permValue FROM trackRule ORDER BY position, tag, perm")
	trackDB.getPosition = mustPrepare(db, "SELECT position FROM trackRule WHERE tag = ? LIMIT 1")
	trackDB.maxPosition = mustPrepare(db, "SELECT COALESCE(MAX(position), 0) FROM trackRule")
	trackDB.insert = mustPrepare(db, "REPLACE INTO trackRule (position, tag, perm, permValue) VALUES (?, ?, ?, ?)")
	trackDB.remove = mustPrepare(db, "DELETE FROM trackRule WHERE tag = ?")
	return trackDB
}

func (db *TrackDB) GetTrackRules() ([]core.TrackRule, error) {

	var rules = []core.TrackRule{}

	rows, err := db.getAll.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rule core.TrackRule
		if err = rows.Scan(&rule.Tag, &rule.Right, &rule.Perm); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return rules, nil
}

func (db *TrackDB) InsertTrackRule(tag, right, perm string) error {
	tag = clean(tag)

	var position int
	err := db.getPosition.QueryRow(tag).Scan(&position)
	if err == sql.ErrNoRows {
		// new track, append it
		if err := db.maxPosition.QueryRow().Scan(&position); err != nil {
			return err
		}
		position++
	} else if err != nil {
		return err
	}

	_, err = db.insert.Exec(position, tag, right, perm)
	return err
}

func (db *TrackDB) RemoveTrack(tag string) error {
	_, err := db.remove.Exec(clean(tag))
	return err
}
