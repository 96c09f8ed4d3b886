package core

import (
	"errors"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/wansing/confer/auth"
	"github.com/wansing/confer/util"
)

var ErrUnauthorized = errors.New("unauthorized")

type CapabilityDB interface {
	GetCapabilities(contactID int) (auth.Capabilities, error)
	GrantCapability(contactID int, key string, value int) error
	RevokeCapability(contactID int, key string) error
}

type CoreDB struct {
	CapabilityDB
	ConflictDB
	PaperDB
	ReviewDB
	SettingDB
	TrackDB
	UserDB auth.UserDB

	SessionManager *scs.SessionManager
	HMACSecret     string       // exported because main sets it
	Now            func() int64 // defaults to time.Now().Unix

	epoch uint64       // the rights epoch, read/written atomically
	facts atomic.Value // *factSnapshot, replaced wholesale, never mutated
}

// factSnapshot caches the track table and conference settings for one
// rights epoch.
type factSnapshot struct {
	epoch    uint64
	tracks   *TrackTable
	settings *Settings
}

func (c *CoreDB) Init(sessionStore scs.Store, cookiePath string) error {

	if c.HMACSecret == "" {
		var err error
		c.HMACSecret, err = util.RandomString32()
		if err == nil {
			log.Println("generating random HMAC secret")
		} else {
			return err
		}
	}

	if c.Now == nil {
		c.Now = func() int64 { return time.Now().Unix() }
	}

	c.SessionManager = scs.New()
	c.SessionManager.Store = sessionStore
	c.SessionManager.Cookie.Path = cookiePath + "/"
	c.SessionManager.Cookie.Persist = false
	c.SessionManager.Cookie.SameSite = http.SameSiteLaxMode // good CSRF protection if HTTP GET doesn't modify anything
	c.SessionManager.Cookie.Secure = false                  // else running on localhost or behind a http proxy fails
	c.SessionManager.IdleTimeout = 12 * time.Hour
	c.SessionManager.Lifetime = 720 * time.Hour

	return nil
}

// RightsEpoch returns the current rights epoch.
func (c *CoreDB) RightsEpoch() uint64 {
	return atomic.LoadUint64(&c.epoch)
}

// BumpRightsEpoch invalidates every cached rights decision in the process.
// Every mutation of a fact that could change any user's rights must call it
// exactly once per logical change. The CoreDB mutation shadows do that
// themselves.
func (c *CoreDB) BumpRightsEpoch() {
	atomic.AddUint64(&c.epoch, 1)
}

// factsNow returns the fact snapshot for the current epoch, reloading it if
// the epoch has moved on. Load errors fall back to the most restrictive
// interpretation.
func (c *CoreDB) factsNow() *factSnapshot {
	var epoch = c.RightsEpoch()
	if v := c.facts.Load(); v != nil {
		if f := v.(*factSnapshot); f.epoch == epoch {
			return f
		}
	}

	var f = &factSnapshot{epoch: epoch}

	rules, err := c.TrackDB.GetTrackRules()
	if err == nil {
		f.tracks, err = NewTrackTableFromRules(rules)
	}
	if err != nil {
		log.Printf("loading tracks: %v", err)
		f.tracks = NewTrackTable(nil)
	}

	f.settings, err = loadSettings(c.SettingDB)
	if err != nil {
		log.Printf("loading settings: %v", err)
		f.settings = &Settings{
			Blindness:   BlindAlways,
			SeeDecision: SeeDecAdmin,
		}
	}
	f.settings.Now = c.Now

	c.facts.Store(f)
	return f
}

// Tracks returns the track table of the current epoch.
func (c *CoreDB) Tracks() *TrackTable {
	return c.factsNow().tracks
}

// Settings returns the conference settings of the current epoch.
func (c *CoreDB) Settings() *Settings {
	return c.factsNow().settings
}

// shadows UserDB.SetPassword
func (c *CoreDB) SetPassword(u auth.DBUser, password string) error {
	if password == "" {
		return auth.ErrEmptyPassword
	}
	return c.UserDB.SetPassword(u, password)
}

// SetRoles shadows UserDB.SetRoles and bumps the rights epoch.
func (c *CoreDB) SetRoles(u auth.DBUser, roles auth.Role) error {
	if err := c.UserDB.SetRoles(u, roles); err != nil {
		return err
	}
	c.BumpRightsEpoch()
	return nil
}

// SetContactTags shadows UserDB.SetContactTags and bumps the rights epoch.
func (c *CoreDB) SetContactTags(u auth.DBUser, tags auth.ContactTags) error {
	if err := c.UserDB.SetContactTags(u, tags); err != nil {
		return err
	}
	c.BumpRightsEpoch()
	return nil
}

// SetConflict shadows ConflictDB.SetConflict and bumps the rights epoch.
func (c *CoreDB) SetConflict(p *Paper, contactID int, conflict Conflict) error {
	if err := c.ConflictDB.SetConflict(p.ID(), contactID, int(conflict)); err != nil {
		return err
	}
	c.BumpRightsEpoch()
	return nil
}

// AddTrackRule shadows TrackDB.InsertTrackRule and bumps the rights epoch.
func (c *CoreDB) AddTrackRule(tag string, right TrackRight, perm TrackPerm) error {
	if err := c.TrackDB.InsertTrackRule(tag, right.String(), perm.String()); err != nil {
		return err
	}
	c.BumpRightsEpoch()
	return nil
}

// RemoveTrack shadows TrackDB.RemoveTrack and bumps the rights epoch.
func (c *CoreDB) RemoveTrack(tag string) error {
	if err := c.TrackDB.RemoveTrack(tag); err != nil {
		return err
	}
	c.BumpRightsEpoch()
	return nil
}

// GrantCapability shadows CapabilityDB.GrantCapability and bumps the rights epoch.
func (c *CoreDB) GrantCapability(contactID int, key string, value int) error {
	if err := c.CapabilityDB.GrantCapability(contactID, key, value); err != nil {
		return err
	}
	c.BumpRightsEpoch()
	return nil
}

// RevokeCapability shadows CapabilityDB.RevokeCapability and bumps the rights epoch.
func (c *CoreDB) RevokeCapability(contactID int, key string) error {
	if err := c.CapabilityDB.RevokeCapability(contactID, key); err != nil {
		return err
	}
	c.BumpRightsEpoch()
	return nil
}

// SetReviewToken shadows ReviewDB.SetReviewToken and bumps the rights epoch.
func (c *CoreDB) SetReviewToken(r DBReview, token int64) error {
	if err := c.ReviewDB.SetReviewToken(r, token); err != nil {
		return err
	}
	c.BumpRightsEpoch()
	return nil
}

// AddReview shadows ReviewDB.InsertReview and bumps the rights epoch.
func (c *CoreDB) AddReview(p *Paper, contactID int, typ ReviewType, round, requestedBy int) error {
	if err := c.ReviewDB.InsertReview(p.ID(), contactID, typ, round, requestedBy); err != nil {
		return err
	}
	c.BumpRightsEpoch()
	return nil
}

// UpdateReviewForm shadows ReviewDB.UpdateReviewForm. Form contents carry
// no rights facts, so the epoch stays.
func (c *CoreDB) UpdateReviewForm(r DBReview, merit int, comments string) error {
	return c.ReviewDB.UpdateReviewForm(r, merit, comments)
}

// SubmitReview shadows ReviewDB.SubmitReview and bumps the rights epoch.
func (c *CoreDB) SubmitReview(r DBReview) error {
	if err := c.ReviewDB.SubmitReview(r, c.Now()); err != nil {
		return err
	}
	c.BumpRightsEpoch()
	return nil
}

// DeleteReview shadows ReviewDB.DeleteReview and bumps the rights epoch.
func (c *CoreDB) DeleteReview(r DBReview) error {
	if err := c.ReviewDB.DeleteReview(r); err != nil {
		return err
	}
	c.BumpRightsEpoch()
	return nil
}

// AddPaperTag shadows PaperDB.AddPaperTag and bumps the rights epoch,
// because paper tags decide track matching.
func (c *CoreDB) AddPaperTag(p *Paper, tag string) error {
	if err := c.PaperDB.AddPaperTag(p.ID(), tag); err != nil {
		return err
	}
	c.BumpRightsEpoch()
	return nil
}

// RemovePaperTag shadows PaperDB.RemovePaperTag and bumps the rights epoch.
func (c *CoreDB) RemovePaperTag(p *Paper, tag string) error {
	if err := c.PaperDB.RemovePaperTag(p.ID(), tag); err != nil {
		return err
	}
	c.BumpRightsEpoch()
	return nil
}

// UpdatePaper shadows PaperDB.UpdatePaper. Title and abstract carry no
// rights facts, so the epoch stays.
func (c *CoreDB) UpdatePaper(p *Paper, title, abstract string) error {
	return c.PaperDB.UpdatePaper(p.DBPaper, title, abstract)
}

// SetManager shadows PaperDB.SetManager and bumps the rights epoch.
func (c *CoreDB) SetManager(p *Paper, contactID int) error {
	if err := c.PaperDB.SetManager(p.DBPaper, contactID); err != nil {
		return err
	}
	c.BumpRightsEpoch()
	return nil
}

// SetLead shadows PaperDB.SetLead and bumps the rights epoch.
func (c *CoreDB) SetLead(p *Paper, contactID int) error {
	if err := c.PaperDB.SetLead(p.DBPaper, contactID); err != nil {
		return err
	}
	c.BumpRightsEpoch()
	return nil
}

// SetShepherd shadows PaperDB.SetShepherd and bumps the rights epoch.
func (c *CoreDB) SetShepherd(p *Paper, contactID int) error {
	if err := c.PaperDB.SetShepherd(p.DBPaper, contactID); err != nil {
		return err
	}
	c.BumpRightsEpoch()
	return nil
}

// SetOutcome shadows PaperDB.SetOutcome and bumps the rights epoch.
func (c *CoreDB) SetOutcome(p *Paper, outcome int) error {
	if err := c.PaperDB.SetOutcome(p.DBPaper, outcome); err != nil {
		return err
	}
	c.BumpRightsEpoch()
	return nil
}

// SetSetting shadows SettingDB.SetSetting and bumps the rights epoch.
func (c *CoreDB) SetSetting(name string, value int64) error {
	if err := c.SettingDB.SetSetting(name, value); err != nil {
		return err
	}
	c.BumpRightsEpoch()
	return nil
}

// CreatePaper registers a new paper draft with the given contact as its
// author. One epoch bump covers both writes.
func (c *CoreDB) CreatePaper(title, abstract string, blind bool, authorID int) (*Paper, error) {
	dbPaper, err := c.PaperDB.InsertPaper(title, abstract, blind)
	if err != nil {
		return nil, err
	}
	if err := c.ConflictDB.SetConflict(dbPaper.ID(), authorID, int(ConflictAuthor)); err != nil {
		return nil, err
	}
	c.BumpRightsEpoch()
	return c.newPaper(dbPaper, TagSet{}), nil
}

// FinalizePaper marks the paper submitted.
func (c *CoreDB) FinalizePaper(p *Paper) error {
	if err := c.PaperDB.SetTimeSubmitted(p.DBPaper, c.Now()); err != nil {
		return err
	}
	c.BumpRightsEpoch()
	return nil
}

// WithdrawPaper withdraws the paper.
func (c *CoreDB) WithdrawPaper(p *Paper) error {
	if err := c.PaperDB.SetTimeWithdrawn(p.DBPaper, c.Now()); err != nil {
		return err
	}
	c.BumpRightsEpoch()
	return nil
}

// RevivePaper reverts a withdrawal.
func (c *CoreDB) RevivePaper(p *Paper) error {
	if err := c.PaperDB.SetTimeWithdrawn(p.DBPaper, 0); err != nil {
		return err
	}
	c.BumpRightsEpoch()
	return nil
}
