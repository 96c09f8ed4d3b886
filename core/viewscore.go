package core

// ViewScore is an ordinal visibility level attached to a review field or
// derived value. Levels are integers so that the lattice order is the
// numeric order.
type ViewScore int

const (
	ViewScoreAdminOnly    ViewScore = -3
	ViewScoreReviewerOnly ViewScore = -2
	ViewScorePC           ViewScore = -1
	ViewScoreAuthorDec    ViewScore = 0 // authors, once the decision is visible to them
	ViewScoreAuthor       ViewScore = 1
)

// Bounds for ViewScoreBound. A bound is the maximum level that is NOT
// visible; a value is visible iff its score exceeds the bound.
const (
	BoundAdmin    ViewScore = ViewScoreAdminOnly - 1    // everything visible
	BoundReviewer ViewScore = ViewScoreReviewerOnly - 1 // own review
	BoundPC       ViewScore = ViewScorePC - 1
	BoundAuthor   ViewScore = ViewScoreAuthorDec - 1 // author who may see the decision
	BoundBlind    ViewScore = ViewScoreAuthor - 1    // author before the decision
	BoundNone     ViewScore = ViewScoreAuthor        // everything hidden
)

func (s ViewScore) String() string {
	switch s {
	case ViewScoreAdminOnly:
		return "admin-only"
	case ViewScoreReviewerOnly:
		return "reviewer-only"
	case ViewScorePC:
		return "pc"
	case ViewScoreAuthorDec:
		return "author-after-decision"
	case ViewScoreAuthor:
		return "author"
	}
	return "unknown"
}

// ViewScoreBound returns the maximum invisible ViewScore of the given
// review for the identity, per the lattice above. A nil review stands for
// "any review of this paper" and never yields BoundReviewer.
func (p *Paper) ViewScoreBound(id *Identity, rev *Review) ViewScore {
	var rights = p.Rights(id)

	if rights.CanAdminister {
		return BoundAdmin
	}
	if rev != nil && p.OwnsReview(id, rev) {
		return BoundReviewer
	}
	if !p.CanViewReview(id, rev) {
		return BoundNone
	}
	if rights.ActAuthorView {
		if rights.CanViewDecision {
			return BoundAuthor
		}
		return BoundBlind
	}
	return BoundPC
}

// CanViewReviewField returns whether one field of a review is visible,
// which is the review visibility gate plus the field's own view score.
func (p *Paper) CanViewReviewField(id *Identity, rev *Review, field ReviewField) bool {
	if !p.CanViewReview(id, rev) {
		return false
	}
	return field.ViewScore > p.ViewScoreBound(id, rev)
}
