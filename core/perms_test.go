package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wansing/confer/auth"
)

func (env *testEnv) setDeadline(t *testing.T, name string, ts int64) {
	t.Helper()
	assert.NoError(t, env.db.SetSetting(name, ts))
}

func (env *testEnv) makeAuthor(t *testing.T, id *Identity, p *Paper) *Paper {
	t.Helper()
	assert.NoError(t, env.db.SetConflict(p, id.ID(), ConflictAuthor))
	return env.reload(p)
}

func TestUpdatePaperDeadline(t *testing.T) {
	env := newTestEnv()
	author := env.user("author", 0, "")
	p := env.makeAuthor(t, author, env.paper("quantum gossip"))

	assert.Nil(t, p.PermUpdatePaper(author), "no deadline set, updates are open")

	env.setDeadline(t, DeadlineSubUpdate, env.now-60)
	reason := p.PermUpdatePaper(author)
	assert.NotNil(t, reason)
	assert.Equal(t, ReasonDeadline, reason.Code)
	assert.Equal(t, DeadlineSubUpdate, reason.Deadline)
	assert.False(t, reason.OverrideAvailable)

	author.SetOverrides(OverrideDeadlines)
	assert.Nil(t, p.PermUpdatePaper(author))
	author.SetOverrides(0)

	env.now -= 120 // now before the deadline again
	assert.Nil(t, p.PermUpdatePaper(author))
}

func TestAdministratorsIgnoreUpdateDeadline(t *testing.T) {
	env := newTestEnv()
	chair := env.user("chair", auth.Chair, "")
	p := env.paper("quantum gossip")
	env.setDeadline(t, DeadlineSubUpdate, env.now-60)

	assert.Nil(t, p.PermUpdatePaper(chair))

	// a merely forceable administrator gets the override hint instead
	assert.NoError(t, env.db.SetConflict(p, chair.ID(), ConflictAuthor))
	p = env.reload(p)
	reason := p.PermUpdatePaper(chair)
	assert.NotNil(t, reason)
	assert.True(t, reason.OverrideAvailable)
}

func TestWithdrawAndRevive(t *testing.T) {
	env := newTestEnv()
	author := env.user("author", 0, "")
	pc := env.user("pc", auth.PC, "")
	p := env.makeAuthor(t, author, env.paper("quantum gossip"))
	env.submit(p)

	assert.Nil(t, p.PermWithdrawPaper(author))
	assert.NotNil(t, p.PermWithdrawPaper(pc))
	assert.NotNil(t, p.PermRevivePaper(author), "nothing to revive yet")

	assert.NoError(t, env.db.WithdrawPaper(p))
	assert.True(t, p.Withdrawn())
	assert.NotNil(t, p.PermWithdrawPaper(author))
	assert.Nil(t, p.PermRevivePaper(author))

	// withdrawn papers disappear for the PC but not for their authors
	assert.False(t, p.CanViewPaper(pc))
	assert.True(t, p.CanViewPaper(author))

	assert.NoError(t, env.db.RevivePaper(p))
	assert.False(t, p.Withdrawn())
	assert.True(t, p.Submitted(), "reviving restores the submission")
}

func TestDecidedPaperBlocksAuthorWithdrawal(t *testing.T) {
	env := newTestEnv()
	author := env.user("author", 0, "")
	chair := env.user("chair", auth.Chair, "")
	p := env.makeAuthor(t, author, env.paper("quantum gossip"))
	env.submit(p)

	assert.NoError(t, env.db.SetOutcome(p, 1))
	assert.NotNil(t, p.PermWithdrawPaper(author))
	assert.Nil(t, p.PermWithdrawPaper(chair))

	author.SetOverrides(OverrideEditConditions)
	assert.Nil(t, p.PermWithdrawPaper(author))
}

func TestFinalizeIdempotentAndDeadlined(t *testing.T) {
	env := newTestEnv()
	author := env.user("author", 0, "")
	p := env.makeAuthor(t, author, env.paper("quantum gossip"))

	assert.Nil(t, p.PermFinalizePaper(author))

	env.setDeadline(t, DeadlineSubSub, env.now-60)
	reason := p.PermFinalizePaper(author)
	assert.NotNil(t, reason)
	assert.Equal(t, DeadlineSubSub, reason.Deadline)

	env.submit(p)
	assert.Nil(t, p.PermFinalizePaper(author), "already submitted, finalizing stays allowed")
}

func TestReviewNeedsOpenReviewPeriod(t *testing.T) {
	env := newTestEnv()
	pc := env.user("pc", auth.PC, "")
	p := env.paper("quantum gossip")
	env.submit(p)

	env.setDeadline(t, DeadlineRevOpen, env.now+3600)
	reason := p.PermReview(pc)
	assert.NotNil(t, reason)
	assert.Equal(t, DeadlineRevOpen, reason.Deadline)

	env.now += 3600
	assert.Nil(t, p.PermReview(pc))

	env.setDeadline(t, DeadlinePCRevHard, env.now-60)
	reason = p.PermReview(pc)
	assert.NotNil(t, reason)
	assert.Equal(t, DeadlinePCRevHard, reason.Deadline)
}

func TestExternalReviewerDeadline(t *testing.T) {
	env := newTestEnv()
	ext := env.user("ext", 0, "")
	p := env.paper("quantum gossip")
	env.submit(p)
	assert.NoError(t, env.db.AddReview(p, ext.ID(), ReviewExternal, 0, 0))
	p = env.reload(p)

	env.setDeadline(t, DeadlineRevOpen, env.now-3600)
	env.setDeadline(t, DeadlinePCRevHard, env.now-60)
	assert.Nil(t, p.PermReview(ext), "the PC deadline does not bind external reviewers")

	env.setDeadline(t, DeadlineExtRevHard, env.now-60)
	reason := p.PermReview(ext)
	assert.NotNil(t, reason)
	assert.Equal(t, DeadlineExtRevHard, reason.Deadline)
}

func TestSubmitReviewClickthrough(t *testing.T) {
	env := newTestEnv()
	pc := env.user("pc", auth.PC, "")
	p := env.paper("quantum gossip")
	env.submit(p)
	assert.NoError(t, env.db.AddReview(p, pc.ID(), ReviewPC, 0, 0))
	assert.NoError(t, env.db.SetSetting(SettingClickthrough, 2))
	p = env.reload(p)
	rev := p.ReviewOf(pc)

	reason := p.PermSubmitReview(pc, rev)
	assert.NotNil(t, reason, "the reviewer terms have not been accepted")

	pc.AddCapability(auth.ClickthroughKey, 1)
	assert.NotNil(t, p.PermSubmitReview(pc, rev), "an outdated terms version does not count")

	pc.AddCapability(auth.ClickthroughKey, 2)
	assert.Nil(t, p.PermSubmitReview(pc, rev))
}

func TestSubmitReviewOwnership(t *testing.T) {
	env := newTestEnv()
	pc := env.user("pc", auth.PC, "")
	other := env.user("other", auth.PC, "")
	chair := env.user("chair", auth.Chair, "")
	p := env.paper("quantum gossip")
	env.submit(p)
	assert.NoError(t, env.db.AddReview(p, pc.ID(), ReviewPC, 0, 0))
	p = env.reload(p)
	rev := p.ReviewOf(pc)

	assert.Nil(t, p.PermSubmitReview(pc, rev))
	assert.Equal(t, ReasonReviewerMismatch, p.PermSubmitReview(other, rev).Code)
	assert.Nil(t, p.PermSubmitReview(chair, rev), "administrators may submit any review")
	assert.Equal(t, ReasonReviewerMismatch, p.PermSubmitReview(pc, nil).Code)
}

func TestRequestReview(t *testing.T) {
	env := newTestEnv()
	primary := env.user("primary", auth.PC, "")
	ext := env.user("ext", 0, "")
	chair := env.user("chair", auth.Chair, "")
	p := env.paper("quantum gossip")
	env.submit(p)
	assert.NoError(t, env.db.AddReview(p, primary.ID(), ReviewPrimary, 0, 0))
	assert.NoError(t, env.db.AddReview(p, ext.ID(), ReviewExternal, 0, primary.ID()))
	p = env.reload(p)

	assert.Nil(t, p.PermRequestReview(primary))
	assert.Nil(t, p.PermRequestReview(chair))
	assert.NotNil(t, p.PermRequestReview(ext), "external reviewers cannot delegate further")

	env.setDeadline(t, DeadlineExtRevHard, env.now-60)
	assert.NotNil(t, p.PermRequestReview(primary))
	assert.Nil(t, p.PermRequestReview(chair))
}

func TestViewReview(t *testing.T) {
	env := newTestEnv()
	owner := env.user("owner", auth.PC, "")
	pc := env.user("pc", auth.PC, "")
	author := env.user("author", 0, "")
	p := env.paper("quantum gossip")
	env.submit(p)
	assert.NoError(t, env.db.SetConflict(p, author.ID(), ConflictAuthor))
	assert.NoError(t, env.db.AddReview(p, owner.ID(), ReviewPC, 0, 0))
	p = env.reload(p)
	rev := p.ReviewOf(owner)

	assert.True(t, p.CanViewReview(owner, rev), "owners see their own draft")
	assert.False(t, p.CanViewReview(pc, rev), "drafts are private")
	assert.False(t, p.CanViewReview(author, rev))

	assert.NoError(t, env.db.SubmitReview(rev.DBReview))
	p = env.reload(p)
	rev = p.ReviewOf(owner)

	assert.True(t, p.CanViewReview(pc, rev))
	assert.False(t, p.CanViewReview(author, rev), "authors wait for the decision")

	assert.NoError(t, env.db.SetSetting(SettingSeeDecision, int64(SeeDecAuthor)))
	p = env.reload(p)
	rev = p.ReviewOf(owner)
	assert.True(t, p.CanViewReview(author, rev))
}

func TestViewReviewIdentity(t *testing.T) {
	env := newTestEnv()
	owner := env.user("owner", auth.PC, "")
	pc := env.user("pc", auth.PC, "")
	author := env.user("author", 0, "")
	chair := env.user("chair", auth.Chair, "")
	p := env.paper("quantum gossip")
	env.submit(p)
	assert.NoError(t, env.db.SetConflict(p, author.ID(), ConflictAuthor))
	assert.NoError(t, env.db.AddReview(p, owner.ID(), ReviewPC, 0, 0))
	assert.NoError(t, env.db.SubmitReview(mustGetReview(t, env, p.ID(), owner.ID())))
	assert.NoError(t, env.db.SetSetting(SettingSeeDecision, int64(SeeDecAuthor)))
	p = env.reload(p)
	rev := p.ReviewOf(owner)

	assert.True(t, p.CanViewReviewIdentity(chair, rev))
	assert.True(t, p.CanViewReviewIdentity(owner, rev))
	assert.True(t, p.CanViewReviewIdentity(pc, rev))
	assert.False(t, p.CanViewReviewIdentity(author, rev), "reviews stay anonymous towards authors")
}

func TestExternalReviewerSeesOthersAfterSubmitting(t *testing.T) {
	env := newTestEnv()
	owner := env.user("owner", auth.PC, "")
	ext := env.user("ext", 0, "")
	p := env.paper("quantum gossip")
	env.submit(p)
	assert.NoError(t, env.db.AddReview(p, owner.ID(), ReviewPC, 0, 0))
	assert.NoError(t, env.db.AddReview(p, ext.ID(), ReviewExternal, 0, owner.ID()))
	assert.NoError(t, env.db.SubmitReview(mustGetReview(t, env, p.ID(), owner.ID())))
	assert.NoError(t, env.db.SetSetting(SettingExtRevSeeRevs, 1))
	p = env.reload(p)
	pcReview := &Review{mustGetReview(t, env, p.ID(), owner.ID())}

	assert.False(t, p.CanViewReview(ext, pcReview), "own review still pending")

	assert.NoError(t, env.db.SubmitReview(mustGetReview(t, env, p.ID(), ext.ID())))
	p = env.reload(p)
	assert.True(t, p.CanViewReview(ext, pcReview))

	assert.NoError(t, env.db.SetSetting(SettingExtRevSeeRevs, 0))
	p = env.reload(p)
	assert.False(t, p.CanViewReview(ext, pcReview))
}

func TestHiddenTags(t *testing.T) {
	env := newTestEnv()
	assert.NoError(t, env.db.AddTrackRule(DefaultTrackTag, TrackHiddenTag, RequireTag("senior")))
	chair := env.user("chair", auth.Chair, "")
	senior := env.user("senior", auth.PC, "senior")
	junior := env.user("junior", auth.PC, "")
	outsider := env.user("outsider", 0, "")
	p := env.paper("quantum gossip")
	env.submit(p)

	assert.True(t, HiddenTag("~secret"))
	assert.False(t, HiddenTag("secret"))

	assert.True(t, p.CanViewTag(chair, "~secret"))
	assert.True(t, p.CanViewTag(senior, "~secret"))
	assert.False(t, p.CanViewTag(junior, "~secret"))
	assert.True(t, p.CanViewTag(junior, "accept"))
	assert.False(t, p.CanViewTag(outsider, "accept"), "tags are PC-internal")

	assert.Nil(t, p.PermSetTag(senior, "~secret"))
	assert.NotNil(t, p.PermSetTag(junior, "~secret"))
	assert.Nil(t, p.PermSetTag(junior, "accept"))

	junior.SetOverrides(OverrideTagChecks)
	assert.Nil(t, p.PermSetTag(junior, "~secret"))
}

func TestConflictedPCTagging(t *testing.T) {
	env := newTestEnv()
	pc := env.user("pc", auth.PC, "")
	p := env.paper("quantum gossip")
	env.submit(p)
	assert.NoError(t, env.db.SetConflict(p, pc.ID(), ConflictPersonal))
	p = env.reload(p)

	reason := p.PermSetTag(pc, "accept")
	assert.NotNil(t, reason)
	assert.Equal(t, ReasonConflict, reason.Code)
}

func TestViewPDFTrackGate(t *testing.T) {
	env := newTestEnv()
	assert.NoError(t, env.db.AddTrackRule("hw", TrackViewPDF, RequireTag("hardware")))
	pc := env.user("pc", auth.PC, "")
	author := env.user("author", 0, "")
	p := env.paper("quantum gossip", "hw")
	env.submit(p)
	p = env.makeAuthor(t, author, p)

	assert.True(t, p.CanViewPaper(pc))
	assert.False(t, p.CanViewPDF(pc), "the track withholds the document")
	assert.True(t, p.CanViewPDF(author), "authors always get their own document")
}

func TestDeadlineHelpers(t *testing.T) {
	env := newTestEnv()
	s := env.db.Settings()

	assert.False(t, s.DeadlinePassed(DeadlineSubSub), "an unset deadline never passes")
	assert.False(t, s.Opened(DeadlineRevOpen), "an unset opening never opens")
	assert.Zero(t, s.Deadline(DeadlineSubSub))

	env.setDeadline(t, DeadlineSubSub, env.now+10)
	env.setDeadline(t, DeadlineRevOpen, env.now)
	s = env.db.Settings()
	assert.False(t, s.DeadlinePassed(DeadlineSubSub))
	assert.True(t, s.Opened(DeadlineRevOpen), "openings are inclusive")
	env.now += 11
	assert.True(t, s.DeadlinePassed(DeadlineSubSub))
}
