package core

import (
	"time"
)

// Blindness is the conference-wide submission blindness mode.
type Blindness int

const (
	BlindNever       Blindness = 0 // authors are always visible
	BlindOptional    Blindness = 1 // per-paper flag decides
	BlindAlways      Blindness = 2
	BlindUntilReview Blindness = 3 // authors appear once the viewer submitted a review
)

// DecisionVisibility says who may see paper decisions besides administrators.
type DecisionVisibility int

const (
	SeeDecAdmin          DecisionVisibility = 0
	SeeDecReviewer       DecisionVisibility = 1 // reviewers with a submitted review
	SeeDecUnconflictedPC DecisionVisibility = 2
	SeeDecAuthor         DecisionVisibility = 3 // authors too
)

// Deadline and mode setting names.
const (
	SettingBlindness     = "sub_blind"
	SettingSeeDecision   = "seedec"
	SettingPCSeeAll      = "pc_seeall"
	SettingExtRevSeeDec  = "extrev_seedec"
	SettingExtRevSeeRevs = "extrev_view"
	SettingClickthrough  = "clickthrough_rev"

	DeadlineSubReg     = "sub_reg"
	DeadlineSubUpdate  = "sub_update"
	DeadlineSubSub     = "sub_sub"
	DeadlineRevOpen    = "rev_open"
	DeadlinePCRevSoft  = "pcrev_soft"
	DeadlinePCRevHard  = "pcrev_hard"
	DeadlineExtRevSoft = "extrev_soft"
	DeadlineExtRevHard = "extrev_hard"
	DeadlineRespOpen   = "resp_open"
	DeadlineRespDone   = "resp_done"
)

var deadlineNames = []string{
	DeadlineSubReg, DeadlineSubUpdate, DeadlineSubSub,
	DeadlineRevOpen, DeadlinePCRevSoft, DeadlinePCRevHard,
	DeadlineExtRevSoft, DeadlineExtRevHard,
	DeadlineRespOpen, DeadlineRespDone,
}

// DeadlineNames returns the known deadline setting names in display order.
func DeadlineNames() []string {
	return append([]string{}, deadlineNames...)
}

type SettingDB interface {
	GetSetting(name string) (int64, error) // zero if unset
	SetSetting(name string, value int64) error
}

// Settings is a read-only snapshot of the conference settings, cached
// epoch-tagged on the CoreDB. All facts default to the most restrictive
// interpretation when unset.
type Settings struct {
	Blindness           Blindness
	SeeDecision         DecisionVisibility
	PCSeeAllSubmissions bool // PC may see submitted papers before the review process opened
	ExtRevSeeDecision   bool
	ExtRevSeeReviews    bool  // external reviewers may see the other reviews of their paper
	ClickthroughRev     int64 // version of the reviewer terms, zero if none required

	deadlines map[string]int64
	Now       func() int64 // defaults to time.Now().Unix, tests stub it
}

func loadSettings(db SettingDB) (*Settings, error) {
	var s = &Settings{
		deadlines: make(map[string]int64),
		Now:       func() int64 { return time.Now().Unix() },
	}
	blind, err := db.GetSetting(SettingBlindness)
	if err != nil {
		return nil, err
	}
	s.Blindness = Blindness(blind)
	seedec, err := db.GetSetting(SettingSeeDecision)
	if err != nil {
		return nil, err
	}
	s.SeeDecision = DecisionVisibility(seedec)
	for name, target := range map[string]*bool{
		SettingPCSeeAll:      &s.PCSeeAllSubmissions,
		SettingExtRevSeeDec:  &s.ExtRevSeeDecision,
		SettingExtRevSeeRevs: &s.ExtRevSeeReviews,
	} {
		v, err := db.GetSetting(name)
		if err != nil {
			return nil, err
		}
		*target = v > 0
	}
	clickthrough, err := db.GetSetting(SettingClickthrough)
	if err != nil {
		return nil, err
	}
	s.ClickthroughRev = clickthrough
	for _, name := range deadlineNames {
		v, err := db.GetSetting(name)
		if err != nil {
			return nil, err
		}
		if v != 0 {
			s.deadlines[name] = v
		}
	}
	return s, nil
}

// Deadline returns the timestamp of a named deadline, zero if unset.
func (s *Settings) Deadline(name string) int64 {
	return s.deadlines[name]
}

// DeadlinePassed returns whether a deadline is set and has passed. An unset
// deadline never passes.
func (s *Settings) DeadlinePassed(name string) bool {
	var d = s.deadlines[name]
	return d != 0 && s.Now() > d
}

// Opened returns whether an opening timestamp is set and has been reached.
func (s *Settings) Opened(name string) bool {
	var d = s.deadlines[name]
	return d != 0 && s.Now() >= d
}
