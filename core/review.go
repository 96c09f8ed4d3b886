package core

import (
	"errors"
	"strconv"
)

// ReviewType orders review assignments by weight. Types of ReviewPC and
// above make the reviewer a PC-grade reviewer for the paper.
type ReviewType int

const (
	ReviewNone      ReviewType = 0
	ReviewExternal  ReviewType = 1
	ReviewPC        ReviewType = 2
	ReviewSecondary ReviewType = 3
	ReviewPrimary   ReviewType = 4
	ReviewMeta      ReviewType = 5
)

func (t ReviewType) String() string {
	switch t {
	case ReviewNone:
		return "none"
	case ReviewExternal:
		return "external"
	case ReviewPC:
		return "pc"
	case ReviewSecondary:
		return "secondary"
	case ReviewPrimary:
		return "primary"
	case ReviewMeta:
		return "meta"
	}
	return "unknown"
}

// ErrNoReview is returned by ReviewDB implementations when no row matches.
var ErrNoReview = errors.New("no review")

type DBReview interface {
	ID() int
	PaperID() int
	ContactID() int
	Type() ReviewType
	TimeSubmitted() int64 // zero if the review is a draft
	Round() int
	Token() int64 // zero if no token has been issued

	OverallMerit() int     // 1..5, zero if not filled in
	CommentsForPC() string // never shown to authors
}

// Review wraps a DBReview row.
type Review struct {
	DBReview
}

func (r *Review) Submitted() bool {
	return r != nil && r.TimeSubmitted() > 0
}

// ReviewField is one field of the review form. Its ViewScore decides who
// gets to see submitted values (see Paper.CanViewReviewField).
type ReviewField struct {
	Code      string
	Name      string
	ViewScore ViewScore
}

// ReviewForm is the review form, in display order.
var ReviewForm = []ReviewField{
	{Code: "overallMerit", Name: "Overall merit", ViewScore: ViewScoreAuthor},
	{Code: "commentsForPC", Name: "Comments for the committee", ViewScore: ViewScorePC},
}

// FieldValue returns the stored value of one form field, empty if the field
// has not been filled in.
func (r *Review) FieldValue(field ReviewField) string {
	switch field.Code {
	case "overallMerit":
		if merit := r.OverallMerit(); merit > 0 {
			return strconv.Itoa(merit)
		}
	case "commentsForPC":
		return r.CommentsForPC()
	}
	return ""
}

type ReviewDB interface {
	GetReview(paperID, contactID int) (DBReview, error) // ErrNoReview if there is none
	GetReviewByToken(token int64) (DBReview, error)
	GetReviews(paperID int) ([]DBReview, error)
	GetReviewsOf(contactID int) ([]DBReview, error)
	CountReviewsOf(contactID int) (int, error)
	CountReviewRequestsBy(contactID int) (int, error)
	InsertReview(paperID, contactID int, typ ReviewType, round, requestedBy int) error
	UpdateReviewForm(r DBReview, merit int, comments string) error
	SetReviewToken(r DBReview, token int64) error
	SubmitReview(r DBReview, ts int64) error
	DeleteReview(r DBReview) error
}
