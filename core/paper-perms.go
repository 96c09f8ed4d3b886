package core

// Permission predicates on papers. Every CanX has a matching PermX which
// returns a Reason for denial paths, for UI messaging. Predicates are pure
// functions of PaperRights, the track table, the view-score bound and the
// conference settings; they never re-derive role or conflict facts.

// PermViewPaper decides whether the identity may see that the paper exists
// and view its non-author metadata.
func (p *Paper) PermViewPaper(id *Identity) *Reason {
	if id.Disabled() {
		return deny(ReasonDisabledAccount)
	}
	var r = p.Rights(id)
	if r.AllowAdminister {
		return nil
	}
	if r.ActAuthorView {
		return nil
	}
	if p.Withdrawn() {
		return deny(ReasonWithdrawn)
	}
	if p.ReviewOf(id) != nil {
		return nil
	}
	if r.AllowPCBroad {
		if p.Submitted() || p.db.Settings().PCSeeAllSubmissions {
			return nil
		}
		return deny(ReasonNotSubmitted)
	}
	return deny(ReasonMissingPermission)
}

func (p *Paper) CanViewPaper(id *Identity) bool {
	return p.PermViewPaper(id) == nil
}

// PermViewPDF additionally passes the paper through the view-PDF track gate.
func (p *Paper) PermViewPDF(id *Identity) *Reason {
	if reason := p.PermViewPaper(id); reason != nil {
		return reason
	}
	var r = p.Rights(id)
	if r.AllowAdminister || r.ActAuthorView || p.OwnsReview(id, p.ReviewOf(id)) {
		return nil
	}
	if id.dangerousMask.Has(TrackViewPDF) &&
		!p.db.Tracks().Check(p.Tags, id.tags, TrackViewPDF) {
		return deny(ReasonMissingPermission)
	}
	return nil
}

func (p *Paper) CanViewPDF(id *Identity) bool {
	return p.PermViewPDF(id) == nil
}

// PermUpdatePaper decides whether the identity may edit the submission.
func (p *Paper) PermUpdatePaper(id *Identity) *Reason {
	if id.Disabled() {
		return deny(ReasonDisabledAccount)
	}
	var r = p.Rights(id)
	if !r.AllowAuthor {
		return deny(ReasonMissingPermission)
	}
	if p.Withdrawn() {
		return deny(ReasonWithdrawn)
	}
	if r.CanAdminister || id.HasOverride(OverrideEditConditions) {
		return nil
	}
	if p.db.Settings().DeadlinePassed(DeadlineSubUpdate) && !id.HasOverride(OverrideDeadlines) {
		return denyDeadline(DeadlineSubUpdate, r.AllowAdminister)
	}
	return nil
}

func (p *Paper) CanUpdatePaper(id *Identity) bool {
	return p.PermUpdatePaper(id) == nil
}

// PermFinalizePaper decides whether the submission can be marked final.
func (p *Paper) PermFinalizePaper(id *Identity) *Reason {
	if reason := p.PermUpdatePaper(id); reason != nil {
		return reason
	}
	if p.Submitted() {
		return nil // idempotent
	}
	var r = p.Rights(id)
	if r.CanAdminister || id.HasOverride(OverrideDeadlines) {
		return nil
	}
	if p.db.Settings().DeadlinePassed(DeadlineSubSub) {
		return denyDeadline(DeadlineSubSub, r.AllowAdminister)
	}
	return nil
}

func (p *Paper) CanFinalizePaper(id *Identity) bool {
	return p.PermFinalizePaper(id) == nil
}

// PermWithdrawPaper decides whether the paper can be withdrawn. Authors can
// withdraw until a decision is in; administrators always can.
func (p *Paper) PermWithdrawPaper(id *Identity) *Reason {
	if id.Disabled() {
		return deny(ReasonDisabledAccount)
	}
	var r = p.Rights(id)
	if p.Withdrawn() {
		return deny(ReasonWithdrawn)
	}
	if r.CanAdminister {
		return nil
	}
	if !r.AllowAuthor {
		return deny(ReasonMissingPermission)
	}
	if p.Decided() && !id.HasOverride(OverrideEditConditions) {
		return &Reason{Code: ReasonMissingPermission, OverrideAvailable: r.AllowAdminister}
	}
	return nil
}

func (p *Paper) CanWithdrawPaper(id *Identity) bool {
	return p.PermWithdrawPaper(id) == nil
}

// PermRevivePaper decides whether a withdrawal can be reverted.
func (p *Paper) PermRevivePaper(id *Identity) *Reason {
	if id.Disabled() {
		return deny(ReasonDisabledAccount)
	}
	var r = p.Rights(id)
	if !p.Withdrawn() {
		return deny(ReasonMissingPermission)
	}
	if r.CanAdminister {
		return nil
	}
	if !r.AllowAuthor {
		return deny(ReasonMissingPermission)
	}
	if p.db.Settings().DeadlinePassed(DeadlineSubUpdate) && !id.HasOverride(OverrideDeadlines) {
		return denyDeadline(DeadlineSubUpdate, r.AllowAdminister)
	}
	return nil
}

func (p *Paper) CanRevivePaper(id *Identity) bool {
	return p.PermRevivePaper(id) == nil
}

// CanViewAuthors returns whether the author list is visible right now.
func (p *Paper) CanViewAuthors(id *Identity) bool {
	return p.Rights(id).ViewAuthorsState == AuthorsVisible
}

// CanViewAuthorsForced returns whether the author list is visible at least
// after forcing the conflict override.
func (p *Paper) CanViewAuthorsForced(id *Identity) bool {
	return p.Rights(id).ViewAuthorsState >= AuthorsForceVisible
}

// CanViewConflicts returns whether the paper's conflict list is visible.
func (p *Paper) CanViewConflicts(id *Identity) bool {
	var r = p.Rights(id)
	return r.CanAdminister || r.ActAuthorView
}

// CanViewDecision returns whether the paper's outcome is visible.
func (p *Paper) CanViewDecision(id *Identity) bool {
	return p.Rights(id).CanViewDecision
}

// CanSetDecision returns whether the identity may decide the paper.
func (p *Paper) CanSetDecision(id *Identity) bool {
	return p.Rights(id).CanAdminister
}

// CanViewManager returns whether the assigned manager is visible.
func (p *Paper) CanViewManager(id *Identity) bool {
	var r = p.Rights(id)
	return r.CanAdminister || r.AllowPC
}

// CanViewLead returns whether the discussion lead is visible.
func (p *Paper) CanViewLead(id *Identity) bool {
	var r = p.Rights(id)
	if r.CanAdminister || r.AllowPC {
		return true
	}
	return id.ID() != 0 && p.LeadID() == id.ID()
}

// CanViewShepherd returns whether the shepherd is visible. Shepherds of
// accepted papers are visible to everyone who may see the decision.
func (p *Paper) CanViewShepherd(id *Identity) bool {
	var r = p.Rights(id)
	if r.CanAdminister || r.AllowPC {
		return true
	}
	return p.Accepted() && r.CanViewDecision
}

// CanSetManager returns whether the identity may assign a paper manager.
// Only chairs and the site contact may, because managers trump them.
func (p *Paper) CanSetManager(id *Identity) bool {
	return id.roles.Privileged() && !id.Disabled()
}

// CanSetLead returns whether the identity may assign the discussion lead.
func (p *Paper) CanSetLead(id *Identity) bool {
	return p.Rights(id).CanAdminister
}

// CanSetShepherd returns whether the identity may assign the shepherd.
func (p *Paper) CanSetShepherd(id *Identity) bool {
	return p.Rights(id).CanAdminister
}
