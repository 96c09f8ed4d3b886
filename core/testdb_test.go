package core

import (
	"sort"

	"github.com/wansing/confer/auth"
)

// In-memory fact sources for testing the rights engine without a database.

type testUser struct {
	id       int
	name     string
	roles    auth.Role
	disabled bool
	tags     auth.ContactTags
}

func (u *testUser) ID() int                       { return u.id }
func (u *testUser) Name() string                  { return u.name }
func (u *testUser) Roles() auth.Role              { return u.roles }
func (u *testUser) Disabled() bool                { return u.disabled }
func (u *testUser) ContactTags() auth.ContactTags { return u.tags }

type testPaper struct {
	id            int
	title         string
	abstract      string
	managerID     int
	leadID        int
	shepherdID    int
	timeSubmitted int64
	timeWithdrawn int64
	outcome       int
	blind         bool
}

func (p *testPaper) ID() int              { return p.id }
func (p *testPaper) Title() string        { return p.title }
func (p *testPaper) Abstract() string     { return p.abstract }
func (p *testPaper) ManagerID() int       { return p.managerID }
func (p *testPaper) LeadID() int          { return p.leadID }
func (p *testPaper) ShepherdID() int      { return p.shepherdID }
func (p *testPaper) TimeSubmitted() int64 { return p.timeSubmitted }
func (p *testPaper) TimeWithdrawn() int64 { return p.timeWithdrawn }
func (p *testPaper) Outcome() int         { return p.outcome }
func (p *testPaper) Blind() bool          { return p.blind }

type memPaperDB struct {
	papers map[int]*testPaper
	tags   map[int][]string
	nextID int
}

func newMemPaperDB() *memPaperDB {
	return &memPaperDB{papers: map[int]*testPaper{}, tags: map[int][]string{}, nextID: 1}
}

func (db *memPaperDB) GetPaper(id int) (DBPaper, error) {
	if p, ok := db.papers[id]; ok {
		return p, nil
	}
	return nil, ErrUnauthorized
}

func (db *memPaperDB) GetAllPapers(limit, offset int) ([]DBPaper, error) {
	var ids []int
	for id := range db.papers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	var result []DBPaper
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(result) == limit {
			break
		}
		result = append(result, db.papers[id])
	}
	return result, nil
}

func (db *memPaperDB) CountPapers() (int, error) {
	return len(db.papers), nil
}

func (db *memPaperDB) GetPaperTags(paperID int) ([]string, error) {
	return db.tags[paperID], nil
}

func (db *memPaperDB) AddPaperTag(paperID int, tag string) error {
	db.tags[paperID] = append(db.tags[paperID], tag)
	return nil
}

func (db *memPaperDB) RemovePaperTag(paperID int, tag string) error {
	var kept []string
	for _, t := range db.tags[paperID] {
		if t != tag {
			kept = append(kept, t)
		}
	}
	db.tags[paperID] = kept
	return nil
}

func (db *memPaperDB) InsertPaper(title, abstract string, blind bool) (DBPaper, error) {
	var p = &testPaper{id: db.nextID, title: title, abstract: abstract, blind: blind}
	db.nextID++
	db.papers[p.id] = p
	return p, nil
}

func (db *memPaperDB) UpdatePaper(p DBPaper, title, abstract string) error {
	var row = p.(*testPaper)
	row.title = title
	row.abstract = abstract
	return nil
}

func (db *memPaperDB) SetOutcome(p DBPaper, outcome int) error {
	p.(*testPaper).outcome = outcome
	return nil
}

func (db *memPaperDB) SetManager(p DBPaper, contactID int) error {
	p.(*testPaper).managerID = contactID
	return nil
}

func (db *memPaperDB) SetLead(p DBPaper, contactID int) error {
	p.(*testPaper).leadID = contactID
	return nil
}

func (db *memPaperDB) SetShepherd(p DBPaper, contactID int) error {
	p.(*testPaper).shepherdID = contactID
	return nil
}

func (db *memPaperDB) SetTimeSubmitted(p DBPaper, ts int64) error {
	p.(*testPaper).timeSubmitted = ts
	return nil
}

func (db *memPaperDB) SetTimeWithdrawn(p DBPaper, ts int64) error {
	p.(*testPaper).timeWithdrawn = ts
	return nil
}

type memConflictDB struct {
	rows map[[2]int]int // (paper id, contact id) -> conflict
}

func newMemConflictDB() *memConflictDB {
	return &memConflictDB{rows: map[[2]int]int{}}
}

func (db *memConflictDB) GetConflict(paperID, contactID int) (int, error) {
	return db.rows[[2]int{paperID, contactID}], nil
}

func (db *memConflictDB) GetConflicts(paperID int) (map[int]int, error) {
	var result = map[int]int{}
	for key, conflict := range db.rows {
		if key[0] == paperID {
			result[key[1]] = conflict
		}
	}
	return result, nil
}

func (db *memConflictDB) GetConflictsOf(contactID int) (map[int]int, error) {
	var result = map[int]int{}
	for key, conflict := range db.rows {
		if key[1] == contactID {
			result[key[0]] = conflict
		}
	}
	return result, nil
}

func (db *memConflictDB) SetConflict(paperID, contactID, conflict int) error {
	if conflict == 0 {
		delete(db.rows, [2]int{paperID, contactID})
	} else {
		db.rows[[2]int{paperID, contactID}] = conflict
	}
	return nil
}

type testReview struct {
	id            int
	paperID       int
	contactID     int
	typ           ReviewType
	timeSubmitted int64
	round         int
	token         int64
	requestedBy   int
	overallMerit  int
	commentsForPC string
}

func (r *testReview) ID() int               { return r.id }
func (r *testReview) PaperID() int          { return r.paperID }
func (r *testReview) ContactID() int        { return r.contactID }
func (r *testReview) Type() ReviewType      { return r.typ }
func (r *testReview) TimeSubmitted() int64  { return r.timeSubmitted }
func (r *testReview) Round() int            { return r.round }
func (r *testReview) Token() int64          { return r.token }
func (r *testReview) OverallMerit() int     { return r.overallMerit }
func (r *testReview) CommentsForPC() string { return r.commentsForPC }

type memReviewDB struct {
	rows   []*testReview
	nextID int
}

func newMemReviewDB() *memReviewDB {
	return &memReviewDB{nextID: 1}
}

func (db *memReviewDB) GetReview(paperID, contactID int) (DBReview, error) {
	for _, row := range db.rows {
		if row.paperID == paperID && row.contactID == contactID {
			return row, nil
		}
	}
	return nil, ErrNoReview
}

func (db *memReviewDB) GetReviewByToken(token int64) (DBReview, error) {
	for _, row := range db.rows {
		if row.token == token {
			return row, nil
		}
	}
	return nil, ErrNoReview
}

func (db *memReviewDB) GetReviews(paperID int) ([]DBReview, error) {
	var result []DBReview
	for _, row := range db.rows {
		if row.paperID == paperID {
			result = append(result, row)
		}
	}
	return result, nil
}

func (db *memReviewDB) GetReviewsOf(contactID int) ([]DBReview, error) {
	var result []DBReview
	for _, row := range db.rows {
		if row.contactID == contactID {
			result = append(result, row)
		}
	}
	return result, nil
}

func (db *memReviewDB) CountReviewsOf(contactID int) (int, error) {
	var n int
	for _, row := range db.rows {
		if row.contactID == contactID {
			n++
		}
	}
	return n, nil
}

func (db *memReviewDB) CountReviewRequestsBy(contactID int) (int, error) {
	var n int
	for _, row := range db.rows {
		if row.requestedBy == contactID {
			n++
		}
	}
	return n, nil
}

func (db *memReviewDB) InsertReview(paperID, contactID int, typ ReviewType, round, requestedBy int) error {
	db.rows = append(db.rows, &testReview{
		id:          db.nextID,
		paperID:     paperID,
		contactID:   contactID,
		typ:         typ,
		round:       round,
		requestedBy: requestedBy,
	})
	db.nextID++
	return nil
}

func (db *memReviewDB) UpdateReviewForm(r DBReview, merit int, comments string) error {
	r.(*testReview).overallMerit = merit
	r.(*testReview).commentsForPC = comments
	return nil
}

func (db *memReviewDB) SetReviewToken(r DBReview, token int64) error {
	r.(*testReview).token = token
	return nil
}

func (db *memReviewDB) SubmitReview(r DBReview, ts int64) error {
	r.(*testReview).timeSubmitted = ts
	return nil
}

func (db *memReviewDB) DeleteReview(r DBReview) error {
	var kept []*testReview
	for _, row := range db.rows {
		if row != r.(*testReview) {
			kept = append(kept, row)
		}
	}
	db.rows = kept
	return nil
}

type memSettingDB struct {
	values map[string]int64
}

func newMemSettingDB() *memSettingDB {
	return &memSettingDB{values: map[string]int64{}}
}

func (db *memSettingDB) GetSetting(name string) (int64, error) {
	return db.values[name], nil
}

func (db *memSettingDB) SetSetting(name string, value int64) error {
	if value == 0 {
		delete(db.values, name)
	} else {
		db.values[name] = value
	}
	return nil
}

type memTrackDB struct {
	rules []TrackRule
}

func (db *memTrackDB) GetTrackRules() ([]TrackRule, error) {
	return db.rules, nil
}

func (db *memTrackDB) InsertTrackRule(tag, right, perm string) error {
	db.rules = append(db.rules, TrackRule{Tag: tag, Right: right, Perm: perm})
	return nil
}

func (db *memTrackDB) RemoveTrack(tag string) error {
	var kept []TrackRule
	for _, rule := range db.rules {
		if rule.Tag != tag {
			kept = append(kept, rule)
		}
	}
	db.rules = kept
	return nil
}

type memCapabilityDB struct {
	grants map[int]auth.Capabilities
}

func newMemCapabilityDB() *memCapabilityDB {
	return &memCapabilityDB{grants: map[int]auth.Capabilities{}}
}

func (db *memCapabilityDB) GetCapabilities(contactID int) (auth.Capabilities, error) {
	var result = auth.Capabilities{}
	for key, value := range db.grants[contactID] {
		result[key] = value
	}
	return result, nil
}

func (db *memCapabilityDB) GrantCapability(contactID int, key string, value int) error {
	if db.grants[contactID] == nil {
		db.grants[contactID] = auth.Capabilities{}
	}
	db.grants[contactID][key] = value
	return nil
}

func (db *memCapabilityDB) RevokeCapability(contactID int, key string) error {
	delete(db.grants[contactID], key)
	return nil
}

// testEnv bundles a CoreDB over in-memory fact sources with a stubbed clock.
type testEnv struct {
	db     *CoreDB
	now    int64
	nextID int // contact ids
}

func newTestEnv() *testEnv {
	var env = &testEnv{now: 1000000, nextID: 1}
	env.db = &CoreDB{
		CapabilityDB: newMemCapabilityDB(),
		ConflictDB:   newMemConflictDB(),
		PaperDB:      newMemPaperDB(),
		ReviewDB:     newMemReviewDB(),
		SettingDB:    newMemSettingDB(),
		TrackDB:      &memTrackDB{},
		Now:          func() int64 { return env.now },
	}
	return env
}

func (env *testEnv) user(name string, roles auth.Role, tags string) *Identity {
	var u = &testUser{
		id:    env.nextID,
		name:  name,
		roles: roles,
		tags:  auth.ParseContactTags(tags),
	}
	env.nextID++
	return env.db.NewIdentity(u)
}

func (env *testEnv) paper(title string, tags ...string) *Paper {
	dbPaper, err := env.db.PaperDB.InsertPaper(title, "", false)
	if err != nil {
		panic(err)
	}
	for _, tag := range tags {
		if err := env.db.PaperDB.AddPaperTag(dbPaper.ID(), tag); err != nil {
			panic(err)
		}
	}
	env.db.BumpRightsEpoch()
	p, err := env.db.NewPaper(dbPaper.ID())
	if err != nil {
		panic(err)
	}
	return p
}

// reload discards the request-local caches of a paper.
func (env *testEnv) reload(p *Paper) *Paper {
	fresh, err := env.db.NewPaper(p.ID())
	if err != nil {
		panic(err)
	}
	return fresh
}

// submit marks a paper submitted without moving the clock.
func (env *testEnv) submit(p *Paper) {
	if err := env.db.FinalizePaper(p); err != nil {
		panic(err)
	}
}
