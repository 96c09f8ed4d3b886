package core

import (
	"strings"
)

// TagSet holds the tags attached to a paper.
type TagSet map[string]struct{}

func NewTagSet(tags []string) TagSet {
	var set = make(TagSet, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			set[tag] = struct{}{}
		}
	}
	return set
}

func (s TagSet) Has(tag string) bool {
	_, ok := s[strings.ToLower(tag)]
	return ok
}

type DBPaper interface {
	ID() int
	Title() string
	Abstract() string
	ManagerID() int  // assigned manager, zero if none
	LeadID() int     // discussion lead, zero if none
	ShepherdID() int // shepherd of an accepted paper, zero if none
	TimeSubmitted() int64
	TimeWithdrawn() int64
	Outcome() int // positive accepted, negative rejected, zero undecided
	Blind() bool  // per-paper flag, relevant with BlindOptional
}

type PaperDB interface {
	GetPaper(id int) (DBPaper, error)
	GetAllPapers(limit, offset int) ([]DBPaper, error)
	CountPapers() (int, error)
	GetPaperTags(paperID int) ([]string, error)
	AddPaperTag(paperID int, tag string) error
	RemovePaperTag(paperID int, tag string) error
	InsertPaper(title, abstract string, blind bool) (DBPaper, error)
	UpdatePaper(p DBPaper, title, abstract string) error
	SetOutcome(p DBPaper, outcome int) error
	SetManager(p DBPaper, contactID int) error
	SetLead(p DBPaper, contactID int) error
	SetShepherd(p DBPaper, contactID int) error
	SetTimeSubmitted(p DBPaper, ts int64) error
	SetTimeWithdrawn(p DBPaper, ts int64) error
}

// Paper wraps a DBPaper with its tags and the per-identity facts and rights
// this request has looked at. Papers are request-local; the only shared
// state they read is the rights epoch.
type Paper struct {
	DBPaper
	Tags TagSet

	db        *CoreDB
	conflicts map[int]Conflict          // by contact id, includes "none" results
	reviews   map[*Identity]*Review     // viewer's review row, nil is cached too
	rights    map[*Identity]*rightsPair // forced and unforced, per identity
}

// rightsPair holds the unforced and the conflict-bypassing variant of the
// decision record, each with the epoch it was computed under. Each variant
// is replaced wholesale, never mutated while readable.
type rightsPair struct {
	unforced      *PaperRights
	unforcedEpoch uint64
	forced        *PaperRights
	forcedEpoch   uint64
}

// NewPaper loads a paper and its tags.
func (c *CoreDB) NewPaper(id int) (*Paper, error) {
	dbPaper, err := c.PaperDB.GetPaper(id)
	if err != nil {
		return nil, err
	}
	tags, err := c.PaperDB.GetPaperTags(id)
	if err != nil {
		return nil, err
	}
	return c.newPaper(dbPaper, NewTagSet(tags)), nil
}

func (c *CoreDB) newPaper(dbPaper DBPaper, tags TagSet) *Paper {
	return &Paper{
		DBPaper:   dbPaper,
		Tags:      tags,
		db:        c,
		conflicts: map[int]Conflict{},
		reviews:   map[*Identity]*Review{},
		rights:    map[*Identity]*rightsPair{},
	}
}

func (p *Paper) Submitted() bool {
	return p.TimeSubmitted() > 0 && !p.Withdrawn()
}

func (p *Paper) Withdrawn() bool {
	return p.TimeWithdrawn() > 0
}

func (p *Paper) Decided() bool {
	return p.Outcome() != 0
}

func (p *Paper) Accepted() bool {
	return p.Outcome() > 0
}

// Conflict returns the viewer's conflict level. A missing row, an anonymous
// viewer or a database error all mean ConflictNone.
func (p *Paper) Conflict(id *Identity) Conflict {
	if id.user == nil {
		return ConflictNone
	}
	var contactID = id.user.ID()
	if conflict, ok := p.conflicts[contactID]; ok {
		return conflict
	}
	var conflict = ConflictNone
	if value, err := p.db.ConflictDB.GetConflict(p.ID(), contactID); err == nil {
		conflict = Conflict(value)
	}
	p.conflicts[contactID] = conflict
	return conflict
}

// ReviewOf returns the viewer's review row for this paper: their own row, a
// row matching their review token, or the row of the contact a
// reviewer-accept capability delegates for. Nil if there is none.
func (p *Paper) ReviewOf(id *Identity) *Review {
	if rev, ok := p.reviews[id]; ok {
		return rev
	}
	var rev *Review
	if id.user != nil {
		if row, err := p.db.ReviewDB.GetReview(p.ID(), id.user.ID()); err == nil {
			rev = &Review{row}
		}
	}
	if rev == nil && id.reviewToken != 0 {
		if row, err := p.db.ReviewDB.GetReviewByToken(id.reviewToken); err == nil && row.PaperID() == p.ID() {
			rev = &Review{row}
		}
	}
	if rev == nil {
		if delegate := id.capabilities.ReviewAccept(p.ID()); delegate != 0 {
			if row, err := p.db.ReviewDB.GetReview(p.ID(), delegate); err == nil {
				rev = &Review{row}
			}
		}
	}
	p.reviews[id] = rev
	return rev
}

// OwnsReview returns whether the identity owns the given review row, either
// as the assigned reviewer or by presenting its token.
func (p *Paper) OwnsReview(id *Identity, rev *Review) bool {
	if rev == nil {
		return false
	}
	if id.user != nil && rev.ContactID() == id.user.ID() {
		return true
	}
	if id.reviewToken != 0 && rev.Token() == id.reviewToken {
		return true
	}
	if delegate := id.capabilities.ReviewAccept(p.ID()); delegate != 0 && rev.ContactID() == delegate {
		return true
	}
	return false
}
