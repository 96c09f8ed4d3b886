package core

// Permission predicates on reviews. A nil *Review stands for "any review of
// this paper".

// CanViewReview decides whether the review (its submitted values, not the
// reviewer identity) is visible. Drafts are visible only to their owner and
// to administrators.
func (p *Paper) CanViewReview(id *Identity, rev *Review) bool {
	if id.Disabled() {
		return false
	}
	var r = p.Rights(id)
	if r.CanAdminister {
		return true
	}
	if p.OwnsReview(id, rev) {
		return true
	}
	if rev != nil && !rev.Submitted() {
		return false
	}
	if r.ActAuthorView {
		return r.CanViewDecision
	}
	if r.AllowPC {
		if id.dangerousMask.Has(TrackViewRev) &&
			!p.db.Tracks().Check(p.Tags, id.tags, TrackViewRev) {
			return false
		}
		return true
	}
	// external reviewers see the other reviews once their own is in
	if own := p.ReviewOf(id); own.Submitted() && p.db.Settings().ExtRevSeeReviews {
		return true
	}
	return false
}

// CanViewAllReviews returns whether the identity passes the view-all-reviews
// track gate, for listings that aggregate over papers.
func (p *Paper) CanViewAllReviews(id *Identity) bool {
	var r = p.Rights(id)
	if r.CanAdminister {
		return true
	}
	if !r.AllowPC {
		return false
	}
	if id.dangerousMask.Has(TrackViewAllRev) &&
		!p.db.Tracks().Check(p.Tags, id.tags, TrackViewAllRev) {
		return false
	}
	return true
}

// CanViewReviewIdentity decides whether the reviewer's name is visible.
// Author-view identities never see reviewer names.
func (p *Paper) CanViewReviewIdentity(id *Identity, rev *Review) bool {
	var r = p.Rights(id)
	if r.CanAdminister {
		return true
	}
	if p.OwnsReview(id, rev) {
		return true
	}
	if !r.AllowPC {
		return false
	}
	if id.dangerousMask.Has(TrackViewRevID) &&
		!p.db.Tracks().Check(p.Tags, id.tags, TrackViewRevID) {
		return false
	}
	return true
}

// reviewDeadline names the hard deadline that applies to a review type.
func reviewDeadline(typ ReviewType) string {
	if typ == ReviewExternal {
		return DeadlineExtRevHard
	}
	return DeadlinePCRevHard
}

// PermReview decides whether the identity may write a review of this paper.
func (p *Paper) PermReview(id *Identity) *Reason {
	if id.Disabled() {
		return deny(ReasonDisabledAccount)
	}
	var r = p.Rights(id)
	if !r.PotentialReviewer {
		return deny(ReasonMissingPermission)
	}
	if !r.AllowReview {
		return deny(ReasonConflict)
	}
	if p.Withdrawn() {
		return deny(ReasonWithdrawn)
	}
	if !p.Submitted() {
		return deny(ReasonNotSubmitted)
	}
	if r.CanAdminister || id.HasOverride(OverrideDeadlines) {
		return nil
	}
	var s = p.db.Settings()
	if !s.Opened(DeadlineRevOpen) {
		return denyDeadline(DeadlineRevOpen, r.AllowAdminister)
	}
	if s.DeadlinePassed(reviewDeadline(r.ReviewType)) {
		return denyDeadline(reviewDeadline(r.ReviewType), r.AllowAdminister)
	}
	return nil
}

func (p *Paper) CanReview(id *Identity) bool {
	return p.PermReview(id) == nil
}

// PermSubmitReview decides whether the given review can be submitted:
// the identity owns or administers it, the deadline has not passed (or is
// overridden), and the reviewer terms have been accepted.
func (p *Paper) PermSubmitReview(id *Identity, rev *Review) *Reason {
	if id.Disabled() {
		return deny(ReasonDisabledAccount)
	}
	if rev == nil {
		return deny(ReasonReviewerMismatch)
	}
	var r = p.Rights(id)
	if !p.OwnsReview(id, rev) && !r.CanAdminister {
		return deny(ReasonReviewerMismatch)
	}
	var s = p.db.Settings()
	if s.ClickthroughRev > 0 && int64(id.capabilities.Clickthrough()) < s.ClickthroughRev &&
		!r.CanAdminister {
		return deny(ReasonMissingPermission)
	}
	if r.CanAdminister || id.HasOverride(OverrideDeadlines) {
		return nil
	}
	if s.DeadlinePassed(reviewDeadline(rev.Type())) {
		return denyDeadline(reviewDeadline(rev.Type()), r.AllowAdminister)
	}
	return nil
}

func (p *Paper) CanSubmitReview(id *Identity, rev *Review) bool {
	return p.PermSubmitReview(id, rev) == nil
}

// PermAcceptReview decides whether the identity may accept the review
// assignment, possibly on behalf of a delegated contact via a
// reviewer-accept capability.
func (p *Paper) PermAcceptReview(id *Identity, rev *Review) *Reason {
	if id.Disabled() {
		return deny(ReasonDisabledAccount)
	}
	if rev == nil || !p.OwnsReview(id, rev) {
		return deny(ReasonReviewerMismatch)
	}
	if rev.Submitted() {
		return deny(ReasonMissingPermission)
	}
	return nil
}

func (p *Paper) CanAcceptReview(id *Identity, rev *Review) bool {
	return p.PermAcceptReview(id, rev) == nil
}

// PermDeclineReview mirrors PermAcceptReview.
func (p *Paper) PermDeclineReview(id *Identity, rev *Review) *Reason {
	return p.PermAcceptReview(id, rev)
}

func (p *Paper) CanDeclineReview(id *Identity, rev *Review) bool {
	return p.PermDeclineReview(id, rev) == nil
}

// PermRequestReview decides whether the identity may request an external
// review for this paper.
func (p *Paper) PermRequestReview(id *Identity) *Reason {
	if id.Disabled() {
		return deny(ReasonDisabledAccount)
	}
	var r = p.Rights(id)
	if r.CanAdminister {
		return nil
	}
	if !r.AllowReview || r.ReviewType < ReviewPC {
		return deny(ReasonMissingPermission)
	}
	if p.db.Settings().DeadlinePassed(DeadlineExtRevHard) && !id.HasOverride(OverrideDeadlines) {
		return denyDeadline(DeadlineExtRevHard, r.AllowAdminister)
	}
	return nil
}

func (p *Paper) CanRequestReview(id *Identity) bool {
	return p.PermRequestReview(id) == nil
}

// CanRateReview returns whether the identity may rate the review. Raters
// must be unconflicted PC members and must not own the review.
func (p *Paper) CanRateReview(id *Identity, rev *Review) bool {
	if rev == nil || p.OwnsReview(id, rev) {
		return false
	}
	return p.Rights(id).AllowPC && p.CanViewReview(id, rev)
}

// CanStartReview returns whether a fresh review of this paper could begin
// right now.
func (p *Paper) CanStartReview(id *Identity) bool {
	return p.PermReview(id) == nil
}
