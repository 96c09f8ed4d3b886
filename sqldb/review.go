package sqldb

import (
	"database/sql"

	"github.com/wansing/confer/core"
)

type review struct {
	id            int
	paperID       int
	contactID     int
	typ           int
	timeSubmitted int64
	round         int
	token         int64
	requestedBy   int
	overallMerit  int
	commentsForPC string
}

func (r *review) ID() int               { return r.id }
func (r *review) PaperID() int          { return r.paperID }
func (r *review) ContactID() int        { return r.contactID }
func (r *review) Type() core.ReviewType { return core.ReviewType(r.typ) }
func (r *review) TimeSubmitted() int64  { return r.timeSubmitted }
func (r *review) Round() int            { return r.round }
func (r *review) Token() int64          { return r.token }
func (r *review) OverallMerit() int     { return r.overallMerit }
func (r *review) CommentsForPC() string { return r.commentsForPC }

const reviewColumns = "id, paperId, contactId, type, timeSubmitted, round, token, requestedBy, overallMerit, commentsForPc"

type ReviewDB struct {
	get           *sql.Stmt
	getByToken    *sql.Stmt
	getAll        *sql.Stmt
	getOf         *sql.Stmt
	countOf       *sql.Stmt
	countRequests *sql.Stmt
	insert        *sql.Stmt
	updateForm    *sql.Stmt
	setToken      *sql.Stmt
	setSubmitted  *sql.Stmt
	remove        *sql.Stmt
}

func NewReviewDB(db *sql.DB) *ReviewDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS review (
			id INTEGER PRIMARY KEY,
			paperId int(11) NOT NULL,
			contactId int(11) NOT NULL,
			type int(11) NOT NULL,
			timeSubmitted int(11) NOT NULL DEFAULT 0,
			round int(11) NOT NULL DEFAULT 0,
			token bigint NOT NULL DEFAULT 0,
			requestedBy int(11) NOT NULL DEFAULT 0,
			overallMerit int(11) NOT NULL DEFAULT 0,
			commentsForPc text NOT NULL DEFAULT '',
			UNIQUE (paperId, contactId)
		);`)

	var reviewDB = &ReviewDB{}
	reviewDB.get = mustPrepare(db, "SELECT "+reviewColumns+" FROM review WHERE paperId = ? AND contactId = ? LIMIT 1")
	reviewDB.getByToken = mustPrepare(db, "SELECT "+reviewColumns+" FROM review WHERE token = ? LIMIT 1")
	reviewDB.getAll = mustPrepare(db, "SELECT "+reviewColumns+" FROM review WHERE paperId = ? ORDER BY id")
	reviewDB.getOf = mustPrepare(db, "SELECT "+reviewColumns+" FROM review WHERE contactId = ? ORDER BY paperId")
	reviewDB.countOf = mustPrepare(db, "SELECT COUNT(1) FROM review WHERE contactId = ?")
	reviewDB.countRequests = mustPrepare(db, "SELECT COUNT(1) FROM review WHERE requestedBy = ?")
	reviewDB.insert = mustPrepare(db, "INSERT INTO review (paperId, contactId, type, round, requestedBy) VALUES (?, ?, ?, ?, ?)")
	reviewDB.updateForm = mustPrepare(db, "UPDATE review SET overallMerit = ?, commentsForPc = ? WHERE id = ?")
	reviewDB.setToken = mustPrepare(db, "UPDATE review SET token = ? WHERE id = ?")
	reviewDB.setSubmitted = mustPrepare(db, "UPDATE review SET timeSubmitted = ? WHERE id = ?")
	reviewDB.remove = mustPrepare(db, "DELETE FROM review WHERE id = ?")
	return reviewDB
}

func (db *ReviewDB) scan(row *sql.Row) (core.DBReview, error) {
	var r = &review{}
	err := row.Scan(&r.id, &r.paperID, &r.contactID, &r.typ, &r.timeSubmitted, &r.round, &r.token, &r.requestedBy, &r.overallMerit, &r.commentsForPC)
	if err == sql.ErrNoRows {
		return nil, core.ErrNoReview
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (db *ReviewDB) GetReview(paperID, contactID int) (core.DBReview, error) {
	return db.scan(db.get.QueryRow(paperID, contactID))
}

func (db *ReviewDB) GetReviewByToken(token int64) (core.DBReview, error) {
	return db.scan(db.getByToken.QueryRow(token))
}

func (db *ReviewDB) queryReviews(stmt *sql.Stmt, arg int) ([]core.DBReview, error) {

	var all = []core.DBReview{}

	rows, err := stmt.Query(arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var r = &review{}
		err = rows.Scan(&r.id, &r.paperID, &r.contactID, &r.typ, &r.timeSubmitted, &r.round, &r.token, &r.requestedBy, &r.overallMerit, &r.commentsForPC)
		if err != nil {
			return nil, err
		}
		all = append(all, r)
	}

	return all, nil
}

func (db *ReviewDB) GetReviews(paperID int) ([]core.DBReview, error) {
	return db.queryReviews(db.getAll, paperID)
}

func (db *ReviewDB) GetReviewsOf(contactID int) ([]core.DBReview, error) {
	return db.queryReviews(db.getOf, contactID)
}

func (db *ReviewDB) CountReviewsOf(contactID int) (int, error) {
	var count int
	err := db.countOf.QueryRow(contactID).Scan(&count)
	return count, err
}

func (db *ReviewDB) CountReviewRequestsBy(contactID int) (int, error) {
	var count int
	err := db.countRequests.QueryRow(contactID).Scan(&count)
	return count, err
}

func (db *ReviewDB) InsertReview(paperID, contactID int, typ core.ReviewType, round, requestedBy int) error {
	_, err := db.insert.Exec(paperID, contactID, int(typ), round, requestedBy)
	return err
}

func (db *ReviewDB) UpdateReviewForm(r core.DBReview, merit int, comments string) error {
	_, err := db.updateForm.Exec(merit, comments, r.ID())
	if err == nil {
		if row, ok := r.(*review); ok {
			row.overallMerit = merit
			row.commentsForPC = comments
		}
	}
	return err
}

func (db *ReviewDB) SetReviewToken(r core.DBReview, token int64) error {
	_, err := db.setToken.Exec(token, r.ID())
	if err == nil {
		if row, ok := r.(*review); ok {
			row.token = token
		}
	}
	return err
}

func (db *ReviewDB) SubmitReview(r core.DBReview, ts int64) error {
	_, err := db.setSubmitted.Exec(ts, r.ID())
	if err == nil {
		if row, ok := r.(*review); ok {
			row.timeSubmitted = ts
		}
	}
	return err
}

func (db *ReviewDB) DeleteReview(r core.DBReview) error {
	_, err := db.remove.Exec(r.ID())
	return err
}
