package sqldb

import (
	"database/sql"

	"github.com/wansing/confer/core"
)

type paper struct {
	id            int
	title         string
	abstract      string
	manager       int
	lead          int
	shepherd      int
	timeSubmitted int64
	timeWithdrawn int64
	outcome       int
	blind         bool
}

func (p *paper) ID() int              { return p.id }
func (p *paper) Title() string        { return p.title }
func (p *paper) Abstract() string     { return p.abstract }
func (p *paper) ManagerID() int       { return p.manager }
func (p *paper) LeadID() int          { return p.lead }
func (p *paper) ShepherdID() int      { return p.shepherd }
func (p *paper) TimeSubmitted() int64 { return p.timeSubmitted }
func (p *paper) TimeWithdrawn() int64 { return p.timeWithdrawn }
func (p *paper) Outcome() int         { return p.outcome }
func (p *paper) Blind() bool          { return p.blind }

const paperColumns = "id, title, abstract, managerId, leadId, shepherdId, timeSubmitted, timeWithdrawn, outcome, blind"

type PaperDB struct {
	db           *sql.DB
	get          *sql.Stmt
	getAll       *sql.Stmt
	count        *sql.Stmt
	getTags      *sql.Stmt
	addTag       *sql.Stmt
	removeTag    *sql.Stmt
	insert       *sql.Stmt
	update       *sql.Stmt
	setOutcome   *sql.Stmt
	setManager   *sql.Stmt
	setLead      *sql.Stmt
	setShepherd  *sql.Stmt
	setSubmitted *sql.Stmt
	setWithdrawn *sql.Stmt
}

func NewPaperDB(db *sql.DB, insertIgnore string) *PaperDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS paper (
			id INTEGER PRIMARY KEY,
			title text NOT NULL,
			abstract text NOT NULL DEFAULT '',
			managerId int(11) NOT NULL DEFAULT 0,
			leadId int(11) NOT NULL DEFAULT 0,
			shepherdId int(11) NOT NULL DEFAULT 0,
			timeSubmitted int(11) NOT NULL DEFAULT 0,
			timeWithdrawn int(11) NOT NULL DEFAULT 0,
			outcome int(11) NOT NULL DEFAULT 0,
			blind int(1) NOT NULL DEFAULT 0
		);`)
	db.Exec(`
		CREATE TABLE IF NOT EXISTS paperTag (
			paperId int(11) NOT NULL,
			tag varchar(80) NOT NULL,
			PRIMARY KEY (paperId, tag)
		);`)

	var paperDB = &PaperDB{}
	paperDB.db = db
	paperDB.get = mustPrepare(db, "SELECT "+paperColumns+" FROM paper WHERE id = ? LIMIT 1")
	paperDB.getAll = mustPrepare(db, "SELECT "+paperColumns+" FROM paper ORDER BY id LIMIT ? OFFSET ?")
	paperDB.count = mustPrepare(db, "SELECT COUNT(1) FROM paper")
	paperDB.getTags = mustPrepare(db, "SELECT tag FROM paperTag WHERE paperId = ? ORDER BY tag")
	paperDB.addTag = mustPrepare(db, insertIgnore+" INTO paperTag (paperId, tag) VALUES (?, ?)")
	paperDB.removeTag = mustPrepare(db, "DELETE FROM paperTag WHERE paperId = ? AND tag = ?")
	paperDB.insert = mustPrepare(db, "INSERT INTO paper (title, abstract, blind) VALUES (?, ?, ?)")
	paperDB.update = mustPrepare(db, "UPDATE paper SET title = ?, abstract = ? WHERE id = ?")
	paperDB.setOutcome = mustPrepare(db, "UPDATE paper SET outcome = ? WHERE id = ?")
	paperDB.setManager = mustPrepare(db, "UPDATE paper SET managerId = ? WHERE id = ?")
	paperDB.setLead = mustPrepare(db, "UPDATE paper SET leadId = ? WHERE id = ?")
	paperDB.setShepherd = mustPrepare(db, "UPDATE paper SET shepherdId = ? WHERE id = ?")
	paperDB.setSubmitted = mustPrepare(db, "UPDATE paper SET timeSubmitted = ? WHERE id = ?")
	paperDB.setWithdrawn = mustPrepare(db, "UPDATE paper SET timeWithdrawn = ? WHERE id = ?")
	return paperDB
}

func (db *PaperDB) scan(row *sql.Row) (core.DBPaper, error) {
	var p = &paper{}
	err := row.Scan(&p.id, &p.title, &p.abstract, &p.manager, &p.lead, &p.shepherd,
		&p.timeSubmitted, &p.timeWithdrawn, &p.outcome, &p.blind)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (db *PaperDB) GetPaper(id int) (core.DBPaper, error) {
	return db.scan(db.get.QueryRow(id))
}

func (db *PaperDB) GetAllPapers(limit, offset int) ([]core.DBPaper, error) {

	var all = []core.DBPaper{}

	rows, err := db.getAll.Query(limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p = &paper{}
		err = rows.Scan(&p.id, &p.title, &p.abstract, &p.manager, &p.lead, &p.shepherd,
			&p.timeSubmitted, &p.timeWithdrawn, &p.outcome, &p.blind)
		if err != nil {
			return nil, err
		}
		all = append(all, p)
	}

	return all, nil
}

func (db *PaperDB) CountPapers() (int, error) {
	var count int
	err := db.count.QueryRow().Scan(&count)
	return count, err
}

func (db *PaperDB) GetPaperTags(paperID int) ([]string, error) {

	var tags = []string{}

	rows, err := db.getTags.Query(paperID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var tag string
		if err = rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, nil
}

func (db *PaperDB) AddPaperTag(paperID int, tag string) error {
	_, err := db.addTag.Exec(paperID, clean(tag))
	return err
}

func (db *PaperDB) RemovePaperTag(paperID int, tag string) error {
	_, err := db.removeTag.Exec(paperID, clean(tag))
	return err
}

func (db *PaperDB) InsertPaper(title, abstract string, blind bool) (core.DBPaper, error) {
	res, err := db.insert.Exec(title, abstract, blind)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &paper{id: int(id), title: title, abstract: abstract, blind: blind}, nil
}

func (db *PaperDB) UpdatePaper(p core.DBPaper, title, abstract string) error {
	_, err := db.update.Exec(title, abstract, p.ID())
	if err == nil {
		if row, ok := p.(*paper); ok {
			row.title = title
			row.abstract = abstract
		}
	}
	return err
}

func (db *PaperDB) SetOutcome(p core.DBPaper, outcome int) error {
	_, err := db.setOutcome.Exec(outcome, p.ID())
	if err == nil {
		if row, ok := p.(*paper); ok {
			row.outcome = outcome
		}
	}
	return err
}

func (db *PaperDB) SetManager(p core.DBPaper, contactID int) error {
	_, err := db.setManager.Exec(contactID, p.ID())
	if err == nil {
		if row, ok := p.(*paper); ok {
			row.manager = contactID
		}
	}
	return err
}

func (db *PaperDB) SetLead(p core.DBPaper, contactID int) error {
	_, err := db.setLead.Exec(contactID, p.ID())
	if err == nil {
		if row, ok := p.(*paper); ok {
			row.lead = contactID
		}
	}
	return err
}

func (db *PaperDB) SetShepherd(p core.DBPaper, contactID int) error {
	_, err := db.setShepherd.Exec(contactID, p.ID())
	if err == nil {
		if row, ok := p.(*paper); ok {
			row.shepherd = contactID
		}
	}
	return err
}

func (db *PaperDB) SetTimeSubmitted(p core.DBPaper, ts int64) error {
	_, err := db.setSubmitted.Exec(ts, p.ID())
	if err == nil {
		if row, ok := p.(*paper); ok {
			row.timeSubmitted = ts
		}
	}
	return err
}

func (db *PaperDB) SetTimeWithdrawn(p core.DBPaper, ts int64) error {
	_, err := db.setWithdrawn.Exec(ts, p.ID())
	if err == nil {
		if row, ok := p.(*paper); ok {
			row.timeWithdrawn = ts
		}
	}
	return err
}
