package core

import (
	"github.com/wansing/confer/auth"
)

// ViewAuthorsState values.
const (
	AuthorsHidden       = 0
	AuthorsForceVisible = 1 // visible only after forcing the conflict override
	AuthorsVisible      = 2
)

// PaperRights is the cached decision record for one (identity, paper) pair.
// It is immutable once built and replaced wholesale on recomputation.
type PaperRights struct {
	AllowAdminister   bool // may administer, possibly only after forcing
	CanAdminister     bool // administers right now
	AllowPC           bool // PC rights, conflict-gated
	AllowPCBroad      bool // PC rights regardless of conflict
	PotentialReviewer bool
	AllowReview       bool
	ActAuthor         bool
	AllowAuthor       bool
	ActAuthorView     bool
	AllowAuthorView   bool
	CanViewDecision   bool
	ViewAuthorsState  int // AuthorsHidden, AuthorsForceVisible or AuthorsVisible

	ViewConflict Conflict // the conflict level the rights were gated on (none if forced)
	ConflictType Conflict // the raw conflict level
	ReviewType   ReviewType
	Forced       bool
}

// Rights returns the decision record for the identity, memoized on the
// paper. The conflict-bypassing ("forced") variant is selected iff the
// identity carries OverrideConflict and could administer the paper at all;
// both variants are cached independently and recomputed only when the
// rights epoch has moved past them.
func (p *Paper) Rights(id *Identity) *PaperRights {
	id.refresh()

	pair, ok := p.rights[id]
	if !ok {
		pair = &rightsPair{}
		p.rights[id] = pair
	}
	var epoch = p.db.RightsEpoch()

	if pair.unforced == nil || pair.unforcedEpoch != epoch {
		pair.unforced = p.computeRights(id, false)
		pair.unforcedEpoch = epoch
	}
	if !id.HasOverride(OverrideConflict) || !pair.unforced.AllowAdminister {
		return pair.unforced
	}
	if pair.forced == nil || pair.forcedEpoch != epoch {
		pair.forced = p.computeRights(id, true)
		pair.forcedEpoch = epoch
	}
	return pair.forced
}

// computeRights builds a PaperRights record. It cannot fail; absent facts
// default to the most restrictive interpretation.
func (p *Paper) computeRights(id *Identity, forced bool) *PaperRights {
	var tracks = p.db.Tracks()
	var settings = p.db.Settings()
	var cx = p.Conflict(id)
	var rev = p.ReviewOf(id)
	var revType = ReviewNone
	if rev != nil {
		revType = rev.Type()
	}

	// vcx is the conflict the rights are gated on. Forcing views the paper
	// as if unconflicted.
	var vcx = cx
	if forced {
		vcx = ConflictNone
	}

	var r = &PaperRights{
		ViewConflict: vcx,
		ConflictType: cx,
		ReviewType:   revType,
		Forced:       forced,
	}

	var isManager = id.ID() != 0 && p.ManagerID() == id.ID()
	var isLead = id.ID() != 0 && p.LeadID() == id.ID()
	var managerOK = p.ManagerID() == 0 || vcx.IsUnconflicted()

	// track checks pass by definition for rights outside the dangerous mask
	var trackViewOK = !id.dangerousMask.Has(TrackView) ||
		tracks.Check(p.Tags, id.tags, TrackView)
	var trackAdminOK = !id.dangerousMask.Has(TrackAdmin) ||
		tracks.Check(p.Tags, id.tags, TrackAdmin)

	switch {
	case isManager:
		r.AllowAdminister = true
	case id.roles.Privileged() && managerOK && trackViewOK && trackAdminOK:
		r.AllowAdminister = true
	case id.roles.Has(auth.PC) && managerOK && tracks.AdminGrant(p.Tags, id.tags):
		r.AllowAdminister = true
	case id.roles.Has(auth.Root):
		r.AllowAdminister = true
	}

	r.CanAdminister = r.AllowAdminister && vcx.IsUnconflicted()

	// track-aware PC membership for this paper
	var isPCPaper = id.roles.IsPCLike() &&
		(tracks.Empty() ||
			revType >= ReviewPC ||
			isLead ||
			!tracks.Sensitive(TrackView) ||
			tracks.Check(p.Tags, id.tags, TrackView))

	r.AllowPCBroad = r.AllowAdminister || isPCPaper
	r.AllowPC = r.CanAdminister || (isPCPaper && vcx.IsUnconflicted())

	// reviewer status
	var assrevOK = true
	if id.dangerousMask.Has(TrackAssRev) || id.dangerousMask.Has(TrackUnassRev) {
		assrevOK = tracks.Check(p.Tags, id.tags, TrackAssRev) &&
			tracks.Check(p.Tags, id.tags, TrackUnassRev)
	}
	r.PotentialReviewer = rev != nil || isLead ||
		((r.AllowAdminister || isPCPaper) && assrevOK)
	r.AllowReview = r.PotentialReviewer && (r.CanAdminister || vcx.IsUnconflicted())

	// authorship
	r.ActAuthor = vcx.IsAuthor()
	r.AllowAuthor = r.ActAuthor || r.AllowAdminister

	// author-view: the conflict view-level, escalated by an author-view
	// capability for accountless viewers
	var viewLevel = ConflictNone
	if vcx.IsAuthor() {
		viewLevel = vcx
	}
	if id.capabilities.AuthorView(p.ID()) && !id.roles.IsPCLike() && rev == nil {
		viewLevel = ConflictAuthor
	}
	r.ActAuthorView = viewLevel.IsAuthor()
	r.AllowAuthorView = r.ActAuthorView || r.AllowAdminister

	r.CanViewDecision = p.canViewDecision(r, settings, rev)
	r.ViewAuthorsState = p.viewAuthorsState(r, settings, rev)

	return r
}

func (p *Paper) canViewDecision(r *PaperRights, s *Settings, rev *Review) bool {
	if r.CanAdminister {
		return true
	}
	if r.ActAuthorView && s.SeeDecision == SeeDecAuthor {
		return true
	}
	if r.AllowPCBroad && s.SeeDecision >= SeeDecUnconflictedPC &&
		(s.SeeDecision == SeeDecAuthor || r.ViewConflict.IsUnconflicted()) {
		return true
	}
	if rev.Submitted() && s.SeeDecision >= SeeDecReviewer &&
		(r.AllowPCBroad || s.ExtRevSeeDecision) {
		return true
	}
	return false
}

func (p *Paper) viewAuthorsState(r *PaperRights, s *Settings, rev *Review) int {
	if r.ActAuthorView {
		return AuthorsVisible
	}
	if !r.AllowPCBroad && rev == nil {
		return AuthorsHidden
	}

	var nonblind bool
	switch s.Blindness {
	case BlindNever:
		nonblind = true
	case BlindOptional:
		nonblind = !p.Blind()
	case BlindUntilReview:
		nonblind = rev.Submitted()
	case BlindAlways:
		nonblind = r.CanViewDecision && p.Accepted()
	}

	if nonblind {
		if r.CanAdminister {
			return AuthorsVisible
		}
		if p.Submitted() && s.PCSeeAllSubmissions {
			return AuthorsVisible
		}
		return AuthorsHidden
	}
	if r.AllowAdminister {
		return AuthorsForceVisible
	}
	return AuthorsHidden
}
